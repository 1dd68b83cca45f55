package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Analyzer/internal/domain"
	"github.com/shaiso/Analyzer/internal/index"
)

// ComponentRepo - компоненты проектов.
type ComponentRepo struct {
	pool *pgxpool.Pool
}

// NewComponentRepo создаёт новый ComponentRepo.
func NewComponentRepo(pool *pgxpool.Pool) *ComponentRepo {
	return &ComponentRepo{pool: pool}
}

// ProjectRecord - корневой компонент проекта.
type ProjectRecord struct {
	UUID string
	Key  string
	Name string
}

// EnsureProject возвращает проект по ключу, создавая его при необходимости.
func (r *ComponentRepo) EnsureProject(ctx context.Context, key, name string) (*ProjectRecord, error) {
	p, err := r.GetProjectByKey(ctx, key)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if name == "" {
		name = key
	}
	id := uuid.NewString()
	_, err = r.pool.Exec(ctx, `
		INSERT INTO components (uuid, project_uuid, kee, name, qualifier)
		VALUES ($1, $1, $2, $3, 'PROJECT')
	`, id, key, name)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return &ProjectRecord{UUID: id, Key: key, Name: name}, nil
}

// GetProjectByKey возвращает проект по ключу.
func (r *ComponentRepo) GetProjectByKey(ctx context.Context, key string) (*ProjectRecord, error) {
	var p ProjectRecord
	err := r.pool.QueryRow(ctx, `
		SELECT uuid, kee, name FROM components
		WHERE kee = $1 AND qualifier = 'PROJECT' AND uuid = project_uuid
	`, key).Scan(&p.UUID, &p.Key, &p.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select project: %w", err)
	}
	return &p, nil
}

// UUIDsByProject возвращает UUID компонентов проекта по ключу.
func (r *ComponentRepo) UUIDsByProject(ctx context.Context, projectUUID string) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT kee, uuid FROM components WHERE project_uuid = $1`, projectUUID)
	if err != nil {
		return nil, fmt.Errorf("select component uuids: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, id string
		if err := rows.Scan(&key, &id); err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		out[key] = id
	}
	return out, rows.Err()
}

// Upsert сохраняет дерево компонентов одним batch'ем в транзакции.
// Компоненты проекта, отсутствующие в дереве, удаляются.
func (r *ComponentRepo) Upsert(ctx context.Context, projectUUID string, root *domain.Component) error {
	now := time.Now().UTC()

	batch := &pgx.Batch{}
	keys := make([]string, 0, root.Count())
	root.Walk(func(c *domain.Component) bool {
		keys = append(keys, c.Key)
		batch.Queue(`
			INSERT INTO components (uuid, project_uuid, kee, name, qualifier, path, language, lines, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
			ON CONFLICT (uuid) DO UPDATE SET
				kee = EXCLUDED.kee,
				name = EXCLUDED.name,
				qualifier = EXCLUDED.qualifier,
				path = EXCLUDED.path,
				language = EXCLUDED.language,
				lines = EXCLUDED.lines,
				updated_at = EXCLUDED.updated_at
		`, c.UUID, projectUUID, c.Key, c.Name, string(c.Type), nullString(c.Path), nullString(c.Language), nullInt(c.Lines), now)
		return true
	})
	batch.Queue(`DELETE FROM components WHERE project_uuid = $1 AND NOT (kee = ANY($2))`, projectUUID, keys)

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert components: %w", err)
		}
		return nil
	})
}

// ProjectDocuments возвращает компоненты проекта для поискового индекса.
func (r *ComponentRepo) ProjectDocuments(ctx context.Context, projectUUID string) ([]index.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT uuid, kee, name, qualifier, path, language
		FROM components
		WHERE project_uuid = $1
		ORDER BY kee
	`, projectUUID)
	if err != nil {
		return nil, fmt.Errorf("select project documents: %w", err)
	}
	defer rows.Close()

	var docs []index.Document
	for rows.Next() {
		var path, language *string
		d := index.Document{ProjectUUID: projectUUID}
		if err := rows.Scan(&d.ComponentUUID, &d.Key, &d.Name, &d.Qualifier, &path, &language); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.Path = derefString(path)
		d.Language = derefString(language)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
