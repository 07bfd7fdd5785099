package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	domain "github.com/example/task-manager/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AuthModule provides account and authentication services.
type AuthModule struct {
	db      *gorm.DB
	service *AuthService
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule() *AuthModule {
	dbPath := os.Getenv("TASKS_DB_PATH")
	if dbPath == "" {
		dbPath = "tasks.db"
	}
	return &AuthModule{dbPath: dbPath}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start initializes the auth module.
func (m *AuthModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.User{}, &domain.PasswordReset{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	repo := NewUserRepository(db)
	hasher := NewPasswordHasher()
	jwtManager := NewJWTManager(loadJWTConfig())

	m.service = NewAuthService(repo, hasher, jwtManager)

	log.Printf("[auth] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	services := map[string]func(mono.ServiceContainer) error{
		"register": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "register", json.Unmarshal, json.Marshal, m.handleRegister)
		},
		"login": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "login", json.Unmarshal, json.Marshal, m.handleLogin)
		},
		"refresh-token": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "refresh-token", json.Unmarshal, json.Marshal, m.handleRefresh)
		},
		"validate-token": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken)
		},
		"get-user": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser)
		},
		"update-profile": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "update-profile", json.Unmarshal, json.Marshal, m.handleUpdateProfile)
		},
		"forgot-password": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "forgot-password", json.Unmarshal, json.Marshal, m.handleForgotPassword)
		},
		"reset-password": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "reset-password", json.Unmarshal, json.Marshal, m.handleResetPassword)
		},
	}

	for name, register := range services {
		if err := register(container); err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
	}

	log.Printf("[auth] Registered %d services", len(services))
	return nil
}

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	user, err := m.service.Register(ctx, req.Email, req.Password)
	if err != nil {
		return RegisterResponse{}, err
	}

	return RegisterResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	tokens, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}

	return LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		TokenType:    tokens.TokenType,
	}, nil
}

func (m *AuthModule) handleRefresh(ctx context.Context, req RefreshRequest, _ *mono.Msg) (RefreshResponse, error) {
	tokens, err := m.service.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		return RefreshResponse{}, err
	}

	return RefreshResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		TokenType:    tokens.TokenType,
	}, nil
}

func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		errMsg := "invalid token"
		if errors.Is(err, ErrExpiredToken) {
			errMsg = "token expired"
		}
		// Validation failures are a response, not a transport error.
		return ValidateTokenResponse{
			Valid: false,
			Error: errMsg,
		}, nil
	}

	return ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return GetUserResponse{}, err
	}

	return GetUserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Categories:  user.CategoryList(),
		CreatedAt:   user.CreatedAt,
	}, nil
}

func (m *AuthModule) handleUpdateProfile(ctx context.Context, req UpdateProfileRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.UpdateProfile(ctx, req.UserID, req.DisplayName, req.Categories)
	if err != nil {
		return GetUserResponse{}, err
	}

	return GetUserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Categories:  user.CategoryList(),
		CreatedAt:   user.CreatedAt,
	}, nil
}

func (m *AuthModule) handleForgotPassword(ctx context.Context, req ForgotPasswordRequest, _ *mono.Msg) (ForgotPasswordResponse, error) {
	reset, err := m.service.ForgotPassword(ctx, req.Email)
	if err != nil {
		return ForgotPasswordResponse{}, err
	}
	if reset == nil {
		return ForgotPasswordResponse{Issued: false}, nil
	}
	return ForgotPasswordResponse{
		Issued:    true,
		Token:     reset.Token,
		ExpiresAt: reset.ExpiresAt,
	}, nil
}

func (m *AuthModule) handleResetPassword(ctx context.Context, req ResetPasswordRequest, _ *mono.Msg) (ResetPasswordResponse, error) {
	if err := m.service.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return ResetPasswordResponse{}, err
	}
	return ResetPasswordResponse{Reset: true}, nil
}

// loadJWTConfig loads JWT configuration from environment variables.
func loadJWTConfig() JWTConfig {
	config := DefaultJWTConfig()

	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.SecretKey = secret
	}
	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		config.Issuer = issuer
	}

	return config
}
