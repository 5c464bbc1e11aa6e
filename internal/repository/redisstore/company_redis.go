// Package redisstore stores each company as a Redis hash and keeps a sorted set
// of ids ordered by creation time.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"companyapi/internal/model"
	"companyapi/internal/repository"
)

const indexKey = "companies"

// companyHash mirrors the hash fields written for each company.
type companyHash struct {
	ID   string `redis:"id"`
	Name string `redis:"name"`
	Size int    `redis:"size"`
}

// CompanyRedis implements repository.CompanyRepository on top of go-redis.
type CompanyRedis struct {
	client redis.UniversalClient
}

var _ repository.CompanyRepository = (*CompanyRedis)(nil)

var (
	newID = uuid.New
	now   = time.Now
)

// NewCompanyRedis creates a repository using the given client.
func NewCompanyRedis(client redis.UniversalClient) *CompanyRedis {
	return &CompanyRedis{client: client}
}

// NewClient parses a redis:// connection string into a client. The
// connection itself is established lazily.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func companyKey(id string) string {
	return fmt.Sprintf("company:%s", id)
}

// List returns companies in creation order.
func (r *CompanyRedis) List(ctx context.Context) ([]model.Company, error) {
	ids, err := r.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read company index: %w", err)
	}
	items := make([]model.Company, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	if _, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, companyKey(id))
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("read companies: %w", err)
	}

	for _, cmd := range cmds {
		// Index entry without a hash: deleted concurrently.
		if len(cmd.Val()) == 0 {
			continue
		}
		c, err := decode(cmd)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, nil
}

// FindByID reads a company hash.
func (r *CompanyRedis) FindByID(ctx context.Context, id string) (*model.Company, error) {
	if err := repository.ValidateKey(id); err != nil {
		return nil, err
	}
	cmd := r.client.HGetAll(ctx, companyKey(id))
	if err := cmd.Err(); err != nil {
		return nil, fmt.Errorf("read company: %w", err)
	}
	if len(cmd.Val()) == 0 {
		return nil, repository.ErrNotFound
	}
	return decode(cmd)
}

// Create writes the hash and index entry in one MULTI/EXEC.
func (r *CompanyRedis) Create(ctx context.Context, in model.CompanyInput) (*model.Company, error) {
	c := model.Company{
		ID:   newID().String(),
		Name: in.Name,
		Size: in.Size,
	}
	if _, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, companyKey(c.ID), "id", c.ID, "name", c.Name, "size", c.Size)
		pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(now().UnixNano()), Member: c.ID})
		return nil
	}); err != nil {
		return nil, fmt.Errorf("write company: %w", err)
	}
	return &c, nil
}

// Delete removes the hash and index entry in one MULTI/EXEC.
func (r *CompanyRedis) Delete(ctx context.Context, id string) error {
	if err := repository.ValidateKey(id); err != nil {
		return err
	}
	var del *redis.IntCmd
	if _, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, companyKey(id))
		pipe.ZRem(ctx, indexKey, id)
		return nil
	}); err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if del.Val() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Ping checks the connection.
func (r *CompanyRedis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func decode(cmd *redis.MapStringStringCmd) (*model.Company, error) {
	var h companyHash
	if err := cmd.Scan(&h); err != nil {
		return nil, fmt.Errorf("decode company: %w", err)
	}
	return &model.Company{ID: h.ID, Name: h.Name, Size: h.Size}, nil
}
