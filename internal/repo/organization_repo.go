package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Analyzer/internal/domain"
)

// OrganizationRepo - организации.
type OrganizationRepo struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepo создаёт новый OrganizationRepo.
func NewOrganizationRepo(pool *pgxpool.Pool) *OrganizationRepo {
	return &OrganizationRepo{pool: pool}
}

// GetByKey возвращает организацию по ключу.
func (r *OrganizationRepo) GetByKey(ctx context.Context, key string) (*domain.Organization, error) {
	var org domain.Organization
	err := r.pool.QueryRow(ctx, `SELECT uuid, kee FROM organizations WHERE kee = $1`, key).Scan(&org.UUID, &org.Key)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("organization %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select organization: %w", err)
	}
	return &org, nil
}

// Ensure возвращает организацию по ключу, создавая её при необходимости.
func (r *OrganizationRepo) Ensure(ctx context.Context, key string) (*domain.Organization, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO organizations (uuid, kee, name) VALUES ($1, $2, $2)
		ON CONFLICT (kee) DO NOTHING
	`, uuid.NewString(), key)
	if err != nil {
		return nil, fmt.Errorf("insert organization: %w", err)
	}
	return r.GetByKey(ctx, key)
}
