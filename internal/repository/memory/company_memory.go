package memory

import (
	"context"
	"math"
	"strconv"
	"sync"

	"companyapi/internal/model"
	"companyapi/internal/repository"
)

// CompanyMemory is a volatile repository.CompanyRepository kept in process
// memory. It is safe for concurrent use; insertion order is preserved.
type CompanyMemory struct {
	mu        sync.RWMutex
	companies []model.Company
	nextID    uint64
}

var _ repository.CompanyRepository = (*CompanyMemory)(nil)

// NewCompanyMemory creates a store holding a copy of seed. IDs handed out by
// Create continue after the largest numeric seed ID; non-numeric seed IDs and
// math.MaxUint64 are kept but do not affect numbering.
func NewCompanyMemory(seed ...model.Company) *CompanyMemory {
	m := &CompanyMemory{
		companies: make([]model.Company, 0, len(seed)),
		nextID:    1,
	}
	for _, c := range seed {
		m.companies = append(m.companies, c)
		if n, err := strconv.ParseUint(c.ID, 10, 64); err == nil && n >= m.nextID && n < math.MaxUint64 {
			m.nextID = n + 1
		}
	}
	return m
}

// List returns a snapshot of all companies.
func (m *CompanyMemory) List(_ context.Context) ([]model.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Company, len(m.companies))
	copy(out, m.companies)
	return out, nil
}

// FindByID returns the company with the given id or repository.ErrNotFound.
func (m *CompanyMemory) FindByID(_ context.Context, id string) (*model.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.companies {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

// Create appends a company under the next counter value.
func (m *CompanyMemory) Create(_ context.Context, in model.CompanyInput) (*model.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := model.Company{
		ID:   strconv.FormatUint(m.nextID, 10),
		Name: in.Name,
		Size: in.Size,
	}
	m.nextID++
	m.companies = append(m.companies, c)
	return &c, nil
}

// Delete removes every company with the given id. A miss is not an error.
func (m *CompanyMemory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.companies[:0]
	for _, c := range m.companies {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	m.companies = kept
	return nil
}

// Ping always succeeds.
func (m *CompanyMemory) Ping(_ context.Context) error {
	return nil
}
