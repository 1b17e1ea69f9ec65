package services

import (
	"context"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// OperatorRole is the role carried by every operator token
const OperatorRole = "operator"

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// AuthServiceImpl checks operator API keys against bcrypt hashes
type AuthServiceImpl struct {
	operators map[string]string
	tokens    *jwt.TokenService
}

// NewAuthService creates a new AuthServiceImpl. operators maps operator name
// to the bcrypt hash of its API key.
func NewAuthService(operators map[string]string, tokens *jwt.TokenService) *AuthServiceImpl {
	return &AuthServiceImpl{operators: operators, tokens: tokens}
}

// IssueToken handles operator login
func (s *AuthServiceImpl) IssueToken(ctx context.Context, req models.TokenRequest) (*models.TokenResponse, error) {
	hash, ok := s.operators[req.Operator]
	if !ok {
		slog.Warn("Token requested for unknown operator", "operator", req.Operator)
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.APIKey)); err != nil {
		slog.Warn("Token requested with wrong API key", "operator", req.Operator)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(req.Operator, OperatorRole)
	if err != nil {
		return nil, err
	}
	return &models.TokenResponse{Token: token, ExpiresAt: expiresAt.Unix()}, nil
}
