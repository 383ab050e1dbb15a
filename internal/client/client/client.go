package client

import (
	"context"

	"github.com/dmitrijs2005/adheretrack/internal/client/models"
)

// Client is the typed contract of the remote identity backend.
// Implementations perform no retries.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Register(ctx context.Context, name, email, password string) error
	Validate(ctx context.Context, token string) (*models.User, error)
}
