package repo

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// Schema возвращает DDL базы.
func Schema() string {
	return schema
}

// Migrate создаёт таблицы, если их нет. Идемпотентна.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	// Без аргументов pgx использует simple protocol, поэтому допустимо несколько statements
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
