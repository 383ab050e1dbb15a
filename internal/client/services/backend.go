package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/adheretrack/internal/client/client"
	"github.com/dmitrijs2005/adheretrack/internal/client/models"
)

// withTimeout bounds a backend call by the configured timeout. A call that
// fails after its context expired is reported as client.ErrNetwork even if
// the client returned the bare context error.
func (m *SessionManager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

func (m *SessionManager) login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	res, err := m.client.Login(ctx, email, password)
	if err != nil {
		return nil, asNetworkError(ctx, err)
	}
	return res, nil
}

func (m *SessionManager) register(ctx context.Context, name, email, password string) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	if err := m.client.Register(ctx, name, email, password); err != nil {
		return asNetworkError(ctx, err)
	}
	return nil
}

func (m *SessionManager) validate(ctx context.Context, token string) (*models.User, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	user, err := m.client.Validate(ctx, token)
	if err != nil {
		return nil, asNetworkError(ctx, err)
	}
	if user == nil {
		user = &models.User{}
	}
	return user, nil
}

func asNetworkError(ctx context.Context, err error) error {
	if ctx.Err() != nil && !isClientError(err) {
		return fmt.Errorf("%w: %v", client.ErrNetwork, err)
	}
	return err
}

func isClientError(err error) bool {
	for _, target := range []error{
		client.ErrInvalidCredentials,
		client.ErrRegistrationFailed,
		client.ErrTokenInvalid,
		client.ErrNetwork,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
