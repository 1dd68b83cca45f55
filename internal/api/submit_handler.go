package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shaiso/Analyzer/internal/queue"
)

// multipartMemory - сколько multipart-данных держится в памяти, остальное уходит во временные файлы.
const multipartMemory = 32 << 20

// Submit принимает zip-архив отчёта сканера и ставит задачу в очередь.
// POST /api/ce/submit (multipart/form-data)
//
// Поля: report (файл), projectKey, projectName, organization, submitter.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxReportSize {
		writeError(w, h.logger, reportTooLarge(h.maxReportSize))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxReportSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, reportTooLarge(h.maxReportSize))
			return
		}
		writeError(w, h.logger, badRequest("invalid multipart request"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("report")
	if err != nil {
		writeError(w, h.logger, badRequest("report file is required"))
		return
	}
	defer file.Close()

	report, err := io.ReadAll(file)
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("read report: %w", err))
		return
	}

	result, err := h.submitter.Submit(r.Context(), queue.Request{
		ProjectKey:      r.FormValue("projectKey"),
		ProjectName:     r.FormValue("projectName"),
		OrganizationKey: r.FormValue("organization"),
		SubmitterLogin:  r.FormValue("submitter"),
		Report:          report,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeSubmitted(w, result)
}
