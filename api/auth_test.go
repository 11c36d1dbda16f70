package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/railbooking/railbooking/internal/domain"
	"github.com/railbooking/railbooking/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Register(ctx context.Context, input auth.RegisterInput) (int64, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuthUseCase) Login(ctx context.Context, username, password string) (*auth.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.LoginResult), args.Error(1)
}

func (m *MockAuthUseCase) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func TestAuthHandler_register(t *testing.T) {
	mockService := &MockAuthUseCase{}
	handler := NewAuthHandler(mockService)

	c, w := newTestContext(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"password": "pw1",
		"f_name":   "Alice",
	})

	mockService.On("Register", c.Request.Context(), mock.MatchedBy(func(in auth.RegisterInput) bool {
		return in.Username == "alice" && in.Password == "pw1" && in.FirstName != nil && *in.FirstName == "Alice" && in.MobileNo == nil
	})).Return(int64(1), nil).Once()

	handler.register(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response registerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(1), response.UserID)
	mockService.AssertExpectations(t)
}

func TestAuthHandler_register_Duplicate(t *testing.T) {
	mockService := &MockAuthUseCase{}
	handler := NewAuthHandler(mockService)

	c, w := newTestContext(http.MethodPost, "/api/auth/register", map[string]string{"username": "alice", "password": "pw1"})
	mockService.On("Register", c.Request.Context(), mock.Anything).Return(int64(0), domain.ErrDuplicateCredential).Once()

	handler.register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "username or mobile already exists", decodeMessage(t, w))
}

func TestAuthHandler_register_MissingPassword(t *testing.T) {
	mockService := &MockAuthUseCase{}
	handler := NewAuthHandler(mockService)

	c, w := newTestContext(http.MethodPost, "/api/auth/register", map[string]string{"username": "alice"})

	handler.register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation error: password required", decodeMessage(t, w))
	mockService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestAuthHandler_login(t *testing.T) {
	mockService := &MockAuthUseCase{}
	handler := NewAuthHandler(mockService)

	c, w := newTestContext(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "pw1"})

	name := "Alice"
	mockService.On("Login", c.Request.Context(), "alice", "pw1").Return(&auth.LoginResult{
		Token: "signed.token.value",
		User:  domain.User{ID: 1, Username: "alice", FirstName: &name, PasswordHash: "hash"},
	}, nil).Once()

	handler.login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"signed.token.value","user":{"user_id":1,"username":"alice","f_name":"Alice"}}`, w.Body.String())
}

func TestAuthHandler_login_InvalidCredentials(t *testing.T) {
	mockService := &MockAuthUseCase{}
	handler := NewAuthHandler(mockService)

	c, w := newTestContext(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "nope"})
	mockService.On("Login", c.Request.Context(), "alice", "nope").Return(nil, domain.ErrInvalidCredentials).Once()

	handler.login(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid credentials", decodeMessage(t, w))
}
