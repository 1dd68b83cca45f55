// Package index - локальный поисковый индекс компонентов на SQLite.
//
// Индекс строится из данных хранилища после каждого анализа: документы
// проекта полностью заменяются в одной транзакции.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName - имя файла базы индекса внутри директории.
const FileName = "index.db"

// ErrEmptyQuery - пустой поисковый запрос.
var ErrEmptyQuery = errors.New("empty search query")

// Document - проиндексированный компонент.
type Document struct {
	ProjectUUID   string
	ComponentUUID string
	Key           string
	Name          string
	Path          string
	Qualifier     string
	Language      string
	IndexedAt     time.Time
}

// DocumentSource отдаёт актуальные документы проекта.
type DocumentSource interface {
	ProjectDocuments(ctx context.Context, projectUUID string) ([]Document, error)
}

// Indexer - индекс на SQLite.
type Indexer struct {
	db     *sql.DB
	path   string
	source DocumentSource
	logger *slog.Logger
}

// Open открывает или создаёт индекс в директории dir.
func Open(dir string, source DocumentSource, logger *slog.Logger) (*Indexer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	// SQLite допускает одного писателя
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ix := &Indexer{db: db, path: path, source: source, logger: logger}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ix.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create index tables: %w", err)
	}

	return ix, nil
}

// Close закрывает базу.
func (ix *Indexer) Close() error {
	return ix.db.Close()
}

// Path возвращает путь к файлу базы.
func (ix *Indexer) Path() string {
	return ix.path
}

func (ix *Indexer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS components (
		component_uuid TEXT PRIMARY KEY,
		project_uuid TEXT NOT NULL,
		kee TEXT NOT NULL,
		name TEXT NOT NULL,
		path TEXT,
		qualifier TEXT NOT NULL,
		language TEXT,
		indexed_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_components_project ON components(project_uuid);
	CREATE INDEX IF NOT EXISTS idx_components_kee ON components(kee);
	`
	_, err := ix.db.ExecContext(context.Background(), schema)
	return err
}

// Index заменяет документы проекта актуальными из источника.
func (ix *Indexer) Index(ctx context.Context, projectUUID string) error {
	docs, err := ix.source.ProjectDocuments(ctx, projectUUID)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM components WHERE project_uuid = ?`, projectUUID); err != nil {
		return fmt.Errorf("delete project documents: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO components (component_uuid, project_uuid, kee, name, path, qualifier, language, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(component_uuid) DO UPDATE SET
			project_uuid = excluded.project_uuid,
			kee = excluded.kee,
			name = excluded.name,
			path = excluded.path,
			qualifier = excluded.qualifier,
			language = excluded.language,
			indexed_at = excluded.indexed_at`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx,
			d.ComponentUUID, projectUUID, d.Key, d.Name, d.Path, d.Qualifier, d.Language, now,
		); err != nil {
			return fmt.Errorf("insert %s: %w", d.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	ix.logger.Debug("project indexed", "project_uuid", projectUUID, "documents", len(docs))
	return nil
}

// Search ищет компоненты по подстроке ключа, имени или пути (без учёта регистра).
func (ix *Indexer) Search(ctx context.Context, query string, limit int) ([]Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 50
	}

	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := ix.db.QueryContext(ctx, `
		SELECT component_uuid, project_uuid, kee, name, COALESCE(path, ''), qualifier, COALESCE(language, ''), indexed_at
		FROM components
		WHERE lower(kee) LIKE ? OR lower(name) LIKE ? OR lower(COALESCE(path, '')) LIKE ?
		ORDER BY kee
		LIMIT ?`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			d         Document
			indexedAt int64
		)
		if err := rows.Scan(&d.ComponentUUID, &d.ProjectUUID, &d.Key, &d.Name, &d.Path, &d.Qualifier, &d.Language, &indexedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		d.IndexedAt = time.Unix(indexedAt, 0).UTC()
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// CountProject возвращает количество документов проекта.
func (ix *Indexer) CountProject(ctx context.Context, projectUUID string) (int, error) {
	var n int
	err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM components WHERE project_uuid = ?`, projectUUID).Scan(&n)
	return n, err
}

// DeleteProject удаляет документы проекта.
func (ix *Indexer) DeleteProject(ctx context.Context, projectUUID string) error {
	_, err := ix.db.ExecContext(ctx, `DELETE FROM components WHERE project_uuid = ?`, projectUUID)
	return err
}
