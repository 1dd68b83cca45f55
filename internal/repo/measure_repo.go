package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Analyzer/internal/domain"
)

// MeasureRepo - анализы и их показатели.
type MeasureRepo struct {
	pool *pgxpool.Pool
}

// NewMeasureRepo создаёт новый MeasureRepo.
func NewMeasureRepo(pool *pgxpool.Pool) *MeasureRepo {
	return &MeasureRepo{pool: pool}
}

// LastDuplications возвращает показатели дублирования последнего анализа проекта.
func (r *MeasureRepo) LastDuplications(ctx context.Context, projectUUID string) (domain.DuplicationMeasures, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.component_key, m.metric, m.value
		FROM measures m
		JOIN analyses a ON a.uuid = m.analysis_uuid
		WHERE a.project_uuid = $1 AND a.is_last
	`, projectUUID)
	if err != nil {
		return nil, fmt.Errorf("select last measures: %w", err)
	}
	defer rows.Close()

	out := make(domain.DuplicationMeasures)
	for rows.Next() {
		var (
			key, metric string
			value       float64
		)
		if err := rows.Scan(&key, &metric, &value); err != nil {
			return nil, fmt.Errorf("scan measure: %w", err)
		}
		m := out[key]
		setMetric(&m, metric, value)
		out[key] = m
	}
	return out, rows.Err()
}

func setMetric(m *domain.DuplicationMeasure, metric string, value float64) {
	switch metric {
	case domain.MetricLines:
		m.Lines = int(value)
	case domain.MetricDuplicatedLines:
		m.DuplicatedLines = int(value)
	case domain.MetricDuplicatedBlocks:
		m.DuplicatedBlocks = int(value)
	case domain.MetricDuplicatedFiles:
		m.DuplicatedFiles = int(value)
	case domain.MetricDuplicatedDensity:
		m.Density = value
	}
}

// SaveDuplications записывает анализ и его показатели; анализ становится последним.
func (r *MeasureRepo) SaveDuplications(ctx context.Context, md *domain.AnalysisMetadata, root *domain.Component, measures domain.DuplicationMeasures) error {
	analysisDate := md.AnalysisDate
	if analysisDate.IsZero() {
		analysisDate = time.Now().UTC()
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE analyses SET is_last = false WHERE project_uuid = $1 AND is_last`, md.Project.UUID); err != nil {
			return fmt.Errorf("reset last analysis: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO analyses (uuid, project_uuid, analysis_date, incremental, is_last)
			VALUES ($1, $2, $3, $4, true)
		`, md.AnalysisUUID, md.Project.UUID, analysisDate, md.Incremental); err != nil {
			return fmt.Errorf("insert analysis: %w", err)
		}

		rows := make([][]any, 0, len(measures)*5)
		root.Walk(func(c *domain.Component) bool {
			m, ok := measures[c.Key]
			if !ok {
				return true
			}
			for metric, value := range m.AsMap() {
				rows = append(rows, []any{md.AnalysisUUID, c.UUID, c.Key, metric, value})
			}
			return true
		})

		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"measures"},
			[]string{"analysis_uuid", "component_uuid", "component_key", "metric", "value"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copy measures: %w", err)
		}
		return nil
	})
}
