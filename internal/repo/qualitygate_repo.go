package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Analyzer/internal/domain"
)

// BuiltinDefaultGateID - встроенный gate по умолчанию.
const BuiltinDefaultGateID int64 = 1

// QualityGateRepo - quality gates.
type QualityGateRepo struct {
	pool *pgxpool.Pool
}

// NewQualityGateRepo создаёт новый QualityGateRepo.
func NewQualityGateRepo(pool *pgxpool.Pool) *QualityGateRepo {
	return &QualityGateRepo{pool: pool}
}

// FindByID возвращает gate по id. Отсутствие gate - не ошибка.
func (r *QualityGateRepo) FindByID(ctx context.Context, id int64) (*domain.QualityGate, bool, error) {
	gate, err := scanGate(r.pool.QueryRow(ctx, `SELECT id, name, conditions FROM quality_gates WHERE id = $1`, id))
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return gate, true, nil
}

// FindDefault возвращает gate по умолчанию организации или встроенный.
func (r *QualityGateRepo) FindDefault(ctx context.Context, org domain.Organization) (*domain.QualityGate, error) {
	gate, err := scanGate(r.pool.QueryRow(ctx, `
		SELECT g.id, g.name, g.conditions
		FROM quality_gates g
		WHERE g.id = COALESCE(
			(SELECT default_quality_gate_id FROM organizations WHERE uuid = $1),
			$2)
	`, org.UUID, BuiltinDefaultGateID))
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("default quality gate of %s: %w", org.Key, ErrNotFound)
	}
	return gate, err
}

// List возвращает все quality gates.
func (r *QualityGateRepo) List(ctx context.Context) ([]domain.QualityGate, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, conditions FROM quality_gates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list quality gates: %w", err)
	}
	defer rows.Close()

	var gates []domain.QualityGate
	for rows.Next() {
		g, err := scanGate(rows)
		if err != nil {
			return nil, err
		}
		gates = append(gates, *g)
	}
	return gates, rows.Err()
}

func scanGate(row pgx.Row) (*domain.QualityGate, error) {
	var gate domain.QualityGate
	var conditionsJSON []byte

	err := row.Scan(&gate.ID, &gate.Name, &conditionsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan quality gate: %w", err)
	}

	if conditionsJSON != nil {
		if err := json.Unmarshal(conditionsJSON, &gate.Conditions); err != nil {
			return nil, fmt.Errorf("unmarshal conditions: %w", err)
		}
	}
	return &gate, nil
}
