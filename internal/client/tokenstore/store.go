// Package tokenstore persists the single opaque session token.
package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/adheretrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/adheretrack/internal/common"
)

var (
	// ErrStorage wraps every failure of the underlying storage. An absent
	// token is never reported as ErrStorage.
	ErrStorage = errors.New("token storage unavailable")
	// ErrEmptyToken is returned by Set for an empty token.
	ErrEmptyToken = errors.New("empty token")
)

// Store holds at most one token.
//
// Get returns ok == false with a nil error when no token is stored.
// Clear on an empty store is not an error.
type Store interface {
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// RepositoryStore keeps the token in the metadata repository under
// common.TokenKey.
type RepositoryStore struct {
	repo metadata.Repository
	key  string
}

func NewRepositoryStore(repo metadata.Repository) *RepositoryStore {
	return &RepositoryStore{repo: repo, key: common.TokenKey}
}

func (s *RepositoryStore) Get(ctx context.Context) (string, bool, error) {
	value, found, err := s.repo.Get(ctx, s.key)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !found || len(value) == 0 {
		return "", false, nil
	}
	return string(value), true, nil
}

func (s *RepositoryStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.repo.Set(ctx, s.key, []byte(token)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (s *RepositoryStore) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}
