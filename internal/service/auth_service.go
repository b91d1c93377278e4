package service

import (
	"context"
	"errors"
	"time"

	"crystalerp/internal/config"
	"crystalerp/internal/dto"
	"crystalerp/internal/model"
	"crystalerp/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CreateOperator(ctx context.Context, req dto.CreateOperatorRequest) (*dto.OperatorResponse, error)
	ListOperators(ctx context.Context) ([]dto.OperatorResponse, error)
	DeactivateOperator(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo repository.OperatorRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.OperatorRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	op, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	return s.issueTokens(op)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token invalid or expired")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	operatorIDStr, ok := claims["operator_id"].(string)
	if !ok {
		return nil, errors.New("malformed token")
	}
	oid, err := uuid.Parse(operatorIDStr)
	if err != nil {
		return nil, errors.New("malformed token")
	}

	op, err := s.repo.FindByID(ctx, oid)
	if err != nil || !op.Active {
		return nil, errors.New("operator not found or inactive")
	}

	return s.issueTokens(op)
}

func (s *authService) CreateOperator(ctx context.Context, req dto.CreateOperatorRequest) (*dto.OperatorResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	op := &model.Operator{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, op); err != nil {
		return nil, err
	}
	resp := operatorToResponse(op)
	return &resp, nil
}

func (s *authService) ListOperators(ctx context.Context) ([]dto.OperatorResponse, error) {
	ops, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.OperatorResponse, len(ops))
	for i := range ops {
		resp[i] = operatorToResponse(&ops[i])
	}
	return resp, nil
}

func (s *authService) DeactivateOperator(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *authService) issueTokens(op *model.Operator) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(op, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(op, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         operatorToResponse(op),
	}, nil
}

func (s *authService) generateToken(op *model.Operator, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"operator_id": op.ID.String(),
		"username":    op.Username,
		"role":        op.Role,
		"exp":         time.Now().Add(duration).Unix(),
		"iat":         time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func operatorToResponse(op *model.Operator) dto.OperatorResponse {
	return dto.OperatorResponse{
		ID:       op.ID.String(),
		Username: op.Username,
		Name:     op.Name,
		Email:    op.Email,
		Role:     op.Role,
		Active:   op.Active,
	}
}
