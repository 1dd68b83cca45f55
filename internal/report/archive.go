package report

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Extract распаковывает zip-архив в dest на fsys.
// Возвращает количество распакованных файлов.
func Extract(fsys afero.Fs, r io.ReaderAt, size int64, dest string) (int, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		if errors.Is(err, zip.ErrInsecurePath) {
			return 0, fmt.Errorf("%w: %v", ErrUnsafePath, err)
		}
		return 0, fmt.Errorf("open zip: %w", err)
	}

	if err := fsys.MkdirAll(dest, 0o750); err != nil {
		return 0, fmt.Errorf("create %s: %w", dest, err)
	}

	count := 0
	for _, f := range zr.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return count, err
		}

		if f.FileInfo().IsDir() {
			if err := fsys.MkdirAll(target, 0o750); err != nil {
				return count, fmt.Errorf("create %s: %w", target, err)
			}
			continue
		}

		if err := extractFile(fsys, f, target); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

func extractFile(fsys afero.Fs, f *zip.File, target string) error {
	if err := fsys.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := fsys.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	return dst.Close()
}

// safeJoin не даёт элементам архива выйти за пределы dest (zip slip).
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	cleanDest := filepath.Clean(dest)
	if target != cleanDest && !strings.HasPrefix(target, cleanDest+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

// Pack упаковывает файлы директории src в zip-архив.
// Используется CLI для отправки отчёта из директории.
func Pack(fsys afero.Fs, src string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err := afero.Walk(fsys, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}

		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", src, err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}
