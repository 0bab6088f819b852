package services

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"newsroom-cms/config"
	"newsroom-cms/models"
	"newsroom-cms/repositories"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Signup(ctx context.Context, req models.SignupRequest) (models.Result[*models.User], error)
	Login(ctx context.Context, req models.LoginRequest) (models.Result[models.AuthResponse], error)
	// Authenticate resolves a token to an active user.
	Authenticate(ctx context.Context, token string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (models.Result[*models.User], error)
	List(ctx context.Context, query models.ListQuery) (models.Result[[]models.User], error)
}

type authService struct {
	users  *ResourceService[models.User]
	jwt    config.JWTConfig
	now    func() time.Time
	logger *slog.Logger
}

func NewAuthService(userRepo repositories.DocumentRepository[models.User], jwtConfig config.JWTConfig, logger *slog.Logger) AuthService {
	return &authService{
		users:  NewResourceService(userRepo, logger, "user"),
		jwt:    jwtConfig,
		now:    time.Now,
		logger: logger.With("service", "auth"),
	}
}

func byEmail(email string) repositories.Filter {
	return repositories.Filter{Equals: map[string]interface{}{"email": strings.ToLower(email)}}
}

func (s *authService) Signup(ctx context.Context, req models.SignupRequest) (models.Result[*models.User], error) {
	if err := s.users.CheckDuplicate(ctx, byEmail(req.Email), "", "email", models.MsgAlreadyExist); err != nil {
		return models.Result[*models.User]{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Result[*models.User]{}, models.NewErrorInternalServer(err)
	}
	user := &models.User{
		Email:    strings.ToLower(req.Email),
		Password: string(hashedPassword),
	}
	return s.users.Create(ctx, user)
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (models.Result[models.AuthResponse], error) {
	res, err := s.users.FindOne(ctx, byEmail(req.Email), "", "")
	if err != nil {
		if models.IsNotFound(err) {
			return models.Result[models.AuthResponse]{}, models.NewErrorUnauthorized(models.MsgLoginFailed)
		}
		return models.Result[models.AuthResponse]{}, err
	}
	user := res.Data

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.Result[models.AuthResponse]{}, models.NewErrorUnauthorized(models.MsgLoginFailed)
	}

	token, _, err := s.jwt.IssueToken(*user, s.now())
	if err != nil {
		return models.Result[models.AuthResponse]{}, models.NewErrorInternalServer(err)
	}
	return models.NewResult(http.StatusOK, models.AuthResponse{Token: token, User: *user}, models.MsgLoginSuccess), nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwt.ParseToken(token)
	if err != nil {
		s.logger.Debug("token rejected", "error", err)
		return nil, models.NewErrorUnauthorized(models.MsgNotAuthorized)
	}
	res, err := s.users.FindByID(ctx, claims.UserID, "")
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewErrorUnauthorized(models.MsgNotAuthorized)
		}
		return nil, err
	}
	return res.Data, nil
}

func (s *authService) GetUserByID(ctx context.Context, id string) (models.Result[*models.User], error) {
	return s.users.FindByID(ctx, id, "id")
}

func (s *authService) List(ctx context.Context, query models.ListQuery) (models.Result[[]models.User], error) {
	return s.users.Find(ctx, query, repositories.Filter{})
}
