package users

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/adheretrack/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	created, err := r.Create(ctx, &User{ID: "u1", Name: "Ann", Email: "Ann@Example.org"})
	require.NoError(t, err)
	assert.Equal(t, "u1", created.ID)

	byEmail, err := r.GetUserByEmail(ctx, "  ann@example.ORG ")
	require.NoError(t, err)
	assert.Equal(t, "Ann", byEmail.Name)

	byID, err := r.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ann@Example.org", byID.Email)
}

func TestMemoryRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.Create(ctx, &User{ID: "u1", Email: "a@example.org"})
	require.NoError(t, err)

	_, err = r.Create(ctx, &User{ID: "u2", Email: "A@EXAMPLE.ORG"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestMemoryRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.GetUserByEmail(ctx, "nobody@example.org")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = r.GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.Create(ctx, &User{ID: "u1", Name: "Ann", Email: "a@example.org"})
	require.NoError(t, err)

	u, err := r.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	u.Name = "changed"

	again, err := r.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", again.Name)
}

func TestMemoryRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryRepository().Create(ctx, &User{ID: "u1", Email: "a@example.org"})
	require.ErrorIs(t, err, context.Canceled)
}
