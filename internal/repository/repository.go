// Package repository contains data access layer abstractions.
// Implementations live in subpackages (memory, postgres, objectstore, redisstore).
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"companyapi/internal/model"
)

var (
	// ErrNotFound is returned when no company matches the given id.
	ErrNotFound = errors.New("company not found")
	// ErrInvalidID is returned when an id cannot address a record in the store.
	ErrInvalidID = errors.New("invalid company id")
)

// CompanyRepository defines persistence for companies. No business logic here.
type CompanyRepository interface {
	// List returns every stored company. An empty store yields an empty, non-nil slice.
	List(ctx context.Context) ([]model.Company, error)

	// FindByID returns a company by its ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Company, error)

	// Create assigns an ID according to the store's policy, persists the
	// record and returns it.
	Create(ctx context.Context, in model.CompanyInput) (*model.Company, error)

	// Delete removes a company by ID. Persistent stores return ErrNotFound
	// when nothing matched; the in-memory store treats a miss as success.
	Delete(ctx context.Context, id string) error

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}

// ParseUUID validates an id for stores that use UUIDs as native identifiers.
func ParseUUID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return u, nil
}

// ValidateKey accepts any non-empty id that can be embedded in a storage key:
// no path separators and no control characters.
func ValidateKey(id string) error {
	if id == "" || strings.ContainsAny(id, "/\\") || strings.ContainsFunc(id, unicode.IsControl) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
