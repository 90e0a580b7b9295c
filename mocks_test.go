package userauth_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	userauth "github.com/auric-labs/go-userauth"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByUsername(ctx context.Context, username string) (*userauth.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*userauth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) FindByID(ctx context.Context, id int64) (*userauth.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*userauth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) PersistPasswordHash(ctx context.Context, userID int64, hash string) error {
	args := m.Called(ctx, userID, hash)
	return args.Error(0)
}

type MockSessionResolver struct {
	mock.Mock
}

func (m *MockSessionResolver) Resolve(ctx context.Context, token string) (*userauth.Principal, error) {
	args := m.Called(ctx, token)
	if p := args.Get(0); p != nil {
		return p.(*userauth.Principal), args.Error(1)
	}
	return nil, args.Error(1)
}
