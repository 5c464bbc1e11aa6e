package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"companyapi/internal/model"
	"companyapi/internal/repository"
)

// CompanyPostgres is a PostgreSQL implementation of repository.CompanyRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type CompanyPostgres struct {
	db *sql.DB

	schema      func(ctx context.Context) error
	schemaMu    sync.Mutex
	schemaReady atomic.Bool
}

// Option configures a CompanyPostgres.
type Option func(*CompanyPostgres)

// WithSchema registers a bootstrap that must succeed before the first query.
// A failed attempt is retried on the next call.
func WithSchema(fn func(ctx context.Context) error) Option {
	return func(r *CompanyPostgres) { r.schema = fn }
}

// NewCompanyPostgres creates a new CompanyPostgres repository.
func NewCompanyPostgres(db *sql.DB, opts ...Option) *CompanyPostgres {
	r := &CompanyPostgres{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ repository.CompanyRepository = (*CompanyPostgres)(nil)

// newID is swapped in tests to get deterministic ids.
var newID = uuid.New

// List returns all companies in insertion order.
func (r *CompanyPostgres) List(ctx context.Context) ([]model.Company, error) {
	const q = `
		SELECT id, name, size
		FROM companies
		ORDER BY created_at, id
	`
	if err := r.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Company, 0)
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Size); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID fetches a single company by its ID.
func (r *CompanyPostgres) FindByID(ctx context.Context, id string) (*model.Company, error) {
	uid, err := repository.ParseUUID(id)
	if err != nil {
		return nil, err
	}

	const q = `
		SELECT id, name, size
		FROM companies
		WHERE id = $1
	`
	if err := r.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	var c model.Company
	if err := r.db.QueryRowContext(ctx, q, uid.String()).Scan(&c.ID, &c.Name, &c.Size); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a new company row under a fresh UUID and returns the stored record.
func (r *CompanyPostgres) Create(ctx context.Context, in model.CompanyInput) (*model.Company, error) {
	const q = `
		INSERT INTO companies (id, name, size)
		VALUES ($1, $2, $3)
		RETURNING id, name, size
	`
	if err := r.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	var out model.Company
	if err := r.db.QueryRowContext(ctx, q, newID().String(), in.Name, in.Size).
		Scan(&out.ID, &out.Name, &out.Size); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a company by ID and reports repository.ErrNotFound when no row matched.
func (r *CompanyPostgres) Delete(ctx context.Context, id string) error {
	uid, err := repository.ParseUUID(id)
	if err != nil {
		return err
	}

	if err := r.EnsureSchema(ctx); err != nil {
		return err
	}
	const q = `DELETE FROM companies WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, uid.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Ping checks database connectivity.
func (r *CompanyPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// EnsureSchema runs the registered bootstrap once it succeeds; until then
// every call retries it.
func (r *CompanyPostgres) EnsureSchema(ctx context.Context) error {
	if r.schema == nil || r.schemaReady.Load() {
		return nil
	}
	r.schemaMu.Lock()
	defer r.schemaMu.Unlock()
	if r.schemaReady.Load() {
		return nil
	}
	if err := r.schema(ctx); err != nil {
		return fmt.Errorf("prepare schema: %w", err)
	}
	r.schemaReady.Store(true)
	return nil
}
