package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/adheretrack/internal/client/models"
	"github.com/dmitrijs2005/adheretrack/internal/client/tokenstore"
)

// fakeClient implements client.Client for SessionManager tests.
type fakeClient struct {
	mu sync.Mutex

	LoginRet *models.LoginResult
	LoginErr error
	// LoginHook, when set, runs before Login returns
	LoginHook func(ctx context.Context)

	RegisterErr error

	ValidateRet  *models.User
	ValidateErr  error
	ValidateHook func(ctx context.Context)

	LoginCalls    int
	RegisterCalls int
	ValidateCalls int

	LastLoginEmail    string
	LastLoginPassword string
	LastRegisterName  string
	LastValidateToken string
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	f.mu.Lock()
	f.LoginCalls++
	f.LastLoginEmail = email
	f.LastLoginPassword = password
	hook, ret, err := f.LoginHook, f.LoginRet, f.LoginErr
	f.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (f *fakeClient) Register(ctx context.Context, name, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RegisterCalls++
	f.LastRegisterName = name
	return f.RegisterErr
}

func (f *fakeClient) Validate(ctx context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	f.ValidateCalls++
	f.LastValidateToken = token
	hook, ret, err := f.ValidateHook, f.ValidateRet, f.ValidateErr
	f.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}

var errDiskGone = errors.New("disk gone")

// fakeStore implements tokenstore.Store in memory with error injection.
type fakeStore struct {
	mu sync.Mutex

	token string
	has   bool

	GetErr   error
	SetErr   error
	ClearErr error

	SetCalls   int
	ClearCalls int
}

func newFakeStore(token string) *fakeStore {
	return &fakeStore{token: token, has: token != ""}
}

func (s *fakeStore) Get(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return "", false, s.GetErr
	}
	return s.token, s.has, nil
}

func (s *fakeStore) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SetCalls++
	if s.SetErr != nil {
		return s.SetErr
	}
	s.token, s.has = token, true
	return nil
}

func (s *fakeStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ClearCalls++
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.token, s.has = "", false
	return nil
}

func (s *fakeStore) stored() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.has
}

var _ tokenstore.Store = (*fakeStore)(nil)
