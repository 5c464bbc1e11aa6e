// Package objectstore keeps each company as a JSON document in an
// S3-compatible bucket under companies/<id>.json.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"companyapi/internal/model"
	"companyapi/internal/repository"
	"companyapi/internal/storage"
)

const (
	keyPrefix   = "companies/"
	keySuffix   = ".json"
	contentType = "application/json"
)

// CompanyObjectStore implements repository.CompanyRepository over storage.Storage.
type CompanyObjectStore struct {
	store storage.Storage

	// bucketReady is set once EnsureBucket has succeeded.
	bucketReady atomic.Bool
}

// NewCompanyObjectStore creates a repository backed by the given object storage.
func NewCompanyObjectStore(store storage.Storage) *CompanyObjectStore {
	return &CompanyObjectStore{store: store}
}

var _ repository.CompanyRepository = (*CompanyObjectStore)(nil)

var newID = uuid.New

func objectKey(id string) string {
	return path.Join(keyPrefix, id+keySuffix)
}

// List reads every document under the companies prefix.
func (r *CompanyObjectStore) List(ctx context.Context) ([]model.Company, error) {
	if err := r.ensureBucket(ctx); err != nil {
		return nil, err
	}
	objs, err := r.store.List(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	items := make([]model.Company, 0, len(objs))
	for _, o := range objs {
		if !strings.HasSuffix(o.Key, keySuffix) {
			continue
		}
		c, err := r.read(ctx, o.Key)
		if err != nil {
			// Removed between listing and reading.
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, *c)
	}
	return items, nil
}

// FindByID fetches and decodes a single document.
func (r *CompanyObjectStore) FindByID(ctx context.Context, id string) (*model.Company, error) {
	if err := repository.ValidateKey(id); err != nil {
		return nil, err
	}
	if err := r.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return r.read(ctx, objectKey(id))
}

// Create writes a new document under a fresh UUID.
func (r *CompanyObjectStore) Create(ctx context.Context, in model.CompanyInput) (*model.Company, error) {
	if err := r.ensureBucket(ctx); err != nil {
		return nil, err
	}
	c := model.Company{
		ID:   newID().String(),
		Name: in.Name,
		Size: in.Size,
	}
	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode company: %w", err)
	}
	if _, err := r.store.Put(ctx, objectKey(c.ID), bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: contentType,
	}); err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}
	return &c, nil
}

// Delete removes a document. S3 deletes are idempotent, so existence is
// checked first to report repository.ErrNotFound.
func (r *CompanyObjectStore) Delete(ctx context.Context, id string) error {
	if err := repository.ValidateKey(id); err != nil {
		return err
	}
	if err := r.ensureBucket(ctx); err != nil {
		return err
	}
	key := objectKey(id)
	if _, err := r.store.Stat(ctx, key); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("stat object: %w", err)
	}
	if err := r.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// Ping verifies the bucket is reachable, creating it if needed.
func (r *CompanyObjectStore) Ping(ctx context.Context) error {
	if err := r.store.EnsureBucket(ctx); err != nil {
		return err
	}
	r.bucketReady.Store(true)
	return nil
}

// ensureBucket retries the bucket check until one succeeds.
func (r *CompanyObjectStore) ensureBucket(ctx context.Context) error {
	if r.bucketReady.Load() {
		return nil
	}
	if err := r.Ping(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	return nil
}

func (r *CompanyObjectStore) read(ctx context.Context, key string) (*model.Company, error) {
	rc, _, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer rc.Close()

	var c model.Company
	if err := json.NewDecoder(rc).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &c, nil
}
