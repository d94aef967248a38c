package supabase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"brokerage/server/internal/analytics"
	"brokerage/server/internal/database"
	"brokerage/server/internal/models"
	"brokerage/server/internal/supabase/migrations"
)

const undefinedTable = "42P01"

// Store reads records from the hosted Postgres database.
type Store struct {
	Pool *pgxpool.Pool
}

func Connect(ctx context.Context, url string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() error {
	s.Pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// Migrate applies the embedded goose migrations.
func (s *Store) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(s.Pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Numeric and timestamp columns are read as text so rows with legacy formats still load.
const (
	propertiesQuery = `
		SELECT id, title, price::text, status, type, bedrooms, bathrooms, area::float8,
		       address::text, latitude::float8, longitude::float8,
		       created_at::text, updated_at::text
		FROM properties
		ORDER BY created_at NULLS LAST`

	clientsQuery = `
		SELECT id, name, email, phone, status, is_owner, created_at::text
		FROM clients
		ORDER BY created_at NULLS LAST`

	leadsQuery = `
		SELECT id, name, email, phone, ml_score::text, status, budget_min::text, budget_max::text,
		       created_at::text
		FROM leads
		ORDER BY created_at NULLS LAST`
)

func (s *Store) ListProperties(ctx context.Context) ([]models.PropertyRecord, error) {
	rows, err := s.Pool.Query(ctx, propertiesQuery)
	if err != nil {
		return nil, wrapQueryError("properties", err)
	}
	defer rows.Close()

	var records []models.PropertyRecord
	for rows.Next() {
		var r models.PropertyRecord
		var createdAt, updatedAt *string
		if err := rows.Scan(&r.ID, &r.Title, &r.Price, &r.Status, &r.PropertyType, &r.Bedrooms,
			&r.Bathrooms, &r.Area, &r.Address, &r.Latitude, &r.Longitude, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		r.CreatedAt = parseTimestamp(createdAt)
		r.UpdatedAt = parseTimestamp(updatedAt)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError("properties", err)
	}
	return records, nil
}

func (s *Store) ListClients(ctx context.Context) ([]models.ClientRecord, error) {
	rows, err := s.Pool.Query(ctx, clientsQuery)
	if err != nil {
		return nil, wrapQueryError("clients", err)
	}
	defer rows.Close()

	var records []models.ClientRecord
	for rows.Next() {
		var r models.ClientRecord
		var createdAt *string
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Phone, &r.Status, &r.IsOwner, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		r.CreatedAt = parseTimestamp(createdAt)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError("clients", err)
	}
	return records, nil
}

func (s *Store) ListLeads(ctx context.Context) ([]models.LeadRecord, error) {
	rows, err := s.Pool.Query(ctx, leadsQuery)
	if err != nil {
		return nil, wrapQueryError("leads", err)
	}
	defer rows.Close()

	var records []models.LeadRecord
	for rows.Next() {
		var r models.LeadRecord
		var createdAt *string
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Phone, &r.MLScore, &r.Status,
			&r.BudgetMin, &r.BudgetMax, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		r.CreatedAt = parseTimestamp(createdAt)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError("leads", err)
	}
	return records, nil
}

// UpsertBatch writes the batch in one transaction, replacing rows with the same id.
func (s *Store) UpsertBatch(ctx context.Context, batch models.RecordBatch) error {
	return pgx.BeginFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		for _, p := range batch.Properties {
			b.Queue(`
				INSERT INTO properties (id, title, price, status, type, bedrooms, bathrooms, area, address,
				                        latitude, longitude, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
				ON CONFLICT (id) DO UPDATE SET
					title = EXCLUDED.title, price = EXCLUDED.price, status = EXCLUDED.status,
					type = EXCLUDED.type, bedrooms = EXCLUDED.bedrooms, bathrooms = EXCLUDED.bathrooms,
					area = EXCLUDED.area, address = EXCLUDED.address, latitude = EXCLUDED.latitude,
					longitude = EXCLUDED.longitude, created_at = EXCLUDED.created_at,
					updated_at = EXCLUDED.updated_at`,
				p.ID, p.Title, p.Price, p.Status, p.PropertyType, p.Bedrooms, p.Bathrooms, p.Area, p.Address,
				p.Latitude, p.Longitude, p.CreatedAt, p.UpdatedAt)
		}
		for _, c := range batch.Clients {
			b.Queue(`
				INSERT INTO clients (id, name, email, phone, status, is_owner, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (id) DO UPDATE SET
					name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone,
					status = EXCLUDED.status, is_owner = EXCLUDED.is_owner, created_at = EXCLUDED.created_at`,
				c.ID, c.Name, c.Email, c.Phone, c.Status, c.IsOwner, c.CreatedAt)
		}
		for _, l := range batch.Leads {
			b.Queue(`
				INSERT INTO leads (id, name, email, phone, ml_score, status, budget_min, budget_max, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (id) DO UPDATE SET
					name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone,
					ml_score = EXCLUDED.ml_score, status = EXCLUDED.status,
					budget_min = EXCLUDED.budget_min, budget_max = EXCLUDED.budget_max,
					created_at = EXCLUDED.created_at`,
				l.ID, l.Name, l.Email, l.Phone, l.MLScore, l.Status, l.BudgetMin, l.BudgetMax, l.CreatedAt)
		}
		if b.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return wrapQueryError("record batch", err)
		}
		return nil
	})
}

func (s *Store) Counts(ctx context.Context) (models.RecordCounts, error) {
	var counts models.RecordCounts
	err := s.Pool.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM properties),
		       (SELECT count(*) FROM clients),
		       (SELECT count(*) FROM leads)
	`).Scan(&counts.Properties, &counts.Clients, &counts.Leads)
	if err != nil {
		return counts, wrapQueryError("counts", err)
	}
	return counts, nil
}

func parseTimestamp(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	return analytics.ParseTimestamp(*raw)
}

func wrapQueryError(table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("%w: %s: %s", database.ErrSchemaMissing, table, pgErr.Message)
	}
	return fmt.Errorf("failed to query %s: %w", table, err)
}
