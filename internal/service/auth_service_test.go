package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/dto"
	"fintrack/internal/models"
	"fintrack/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memoryUserRepo struct {
	byID    map[uuid.UUID]*models.User
	byEmail map[string]*models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		byID:    make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (m *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user
	return nil
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	return user, nil
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	return user, nil
}

func newTestAuthService() *AuthService {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	return NewAuthService(newMemoryUserRepo(), jwtManager, zap.NewNop())
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := newTestAuthService()

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "jane",
		Email:    "jane@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected a token pair")
	}
	if resp.User.Email != "jane@example.com" {
		t.Errorf("unexpected user in response: %+v", resp.User)
	}

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "jane@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Errorf("expected same user id, got %s and %s", login.User.ID, resp.User.ID)
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService()

	req := &dto.RegisterRequest{Username: "jane", Email: "jane@example.com", Password: "hunter22"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc := newTestAuthService()

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "jane", Email: "jane@example.com", Password: "hunter22",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	svc := newTestAuthService()

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "jane", Email: "jane@example.com", Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), resp.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.User.ID != resp.User.ID {
		t.Errorf("expected same user id after refresh")
	}

	if _, err := svc.RefreshToken(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
