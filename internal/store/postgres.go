package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"github.com/ironsheep/exam-builder/internal/imaging"
)

const createFragmentsTable = `
create table if not exists fragments (
    sheet      integer     not null,
    exercise   integer     not null,
    png        bytea       not null,
    created_at timestamptz not null default now(),
    primary key (sheet, exercise)
)`

// PostgresStore keeps PNG-encoded fragments in a PostgreSQL table.
type PostgresStore struct {
	DB *sql.DB
}

// OpenPostgres connects to dsn, verifies the connection and creates the
// fragments table if it does not exist.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is empty: set DATABASE_URL")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(1 * time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, createFragmentsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create fragments table: %w", err)
	}

	return &PostgresStore{DB: db}, nil
}

// Close closes the connection pool.
func (p *PostgresStore) Close() error {
	return p.DB.Close()
}

// Exists reports whether a row exists for key.
func (p *PostgresStore) Exists(ctx context.Context, key Key) (bool, error) {
	const q = `select exists(select 1 from fragments where sheet = $1 and exercise = $2)`
	var found bool
	if err := p.DB.QueryRowContext(ctx, q, key.Sheet, key.Exercise).Scan(&found); err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return found, nil
}

// Read decodes the fragment stored for key.
func (p *PostgresStore) Read(ctx context.Context, key Key) (image.Image, error) {
	const q = `select png from fragments where sheet = $1 and exercise = $2`
	var data []byte
	err := p.DB.QueryRowContext(ctx, q, key.Sheet, key.Exercise).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	img, err := imaging.DecodePNG(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return img, nil
}

// Write upserts the fragment for key.
func (p *PostgresStore) Write(ctx context.Context, key Key, img image.Image) error {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	const q = `
insert into fragments (sheet, exercise, png)
values ($1, $2, $3)
on conflict (sheet, exercise) do update set png = excluded.png, created_at = now()`
	if _, err := p.DB.ExecContext(ctx, q, key.Sheet, key.Exercise, data); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
