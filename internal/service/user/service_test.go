package user

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	mock.Mock
	user.UserRepository
}

func (m *mockUserRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]user.User), args.Error(1)
}

func TestCreate_HashesPassword(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo)

	var stored user.User
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(user.User)
	}).Return(user.User{ID: "u1", Username: "frontdesk", Role: user.RoleUser}, nil).Once()

	resp, err := svc.Create(context.Background(), user.CreateUserRequest{Username: "frontdesk", Password: "password123"})
	require.NoError(t, err)

	assert.Equal(t, "u1", resp.ID)
	assert.Equal(t, "user", resp.Role)
	assert.Equal(t, user.RoleUser, stored.Role)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
}

func TestCreate_InvalidRequest(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo)

	_, err := svc.Create(context.Background(), user.CreateUserRequest{Username: "x", Password: "short", Role: "root"})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestList_MapsUsers(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo)
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	repo.On("List", mock.Anything).Return([]user.User{
		{ID: "u1", Username: "admin", PasswordHash: "secret", Role: user.RoleAdmin, CreatedAt: created, UpdatedAt: created},
	}, nil).Once()

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, user.UserResponse{
		ID:        "u1",
		Username:  "admin",
		Role:      "admin",
		CreatedAt: "2024-03-01 09:30:00",
		UpdatedAt: "2024-03-01 09:30:00",
	}, users[0])
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo)
	repo.On("List", mock.Anything).Return([]user.User(nil), nil).Once()

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}
