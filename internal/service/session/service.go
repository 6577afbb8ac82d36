package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"parfumerie/internal/domain"
	tokenrepo "parfumerie/internal/repository/token"
)

var ErrInvalidToken = errors.New("invalid token")

const DefaultTTL = 24 * time.Hour

type cartDropper interface {
	Delete(ctx context.Context, sessionID string) error
}

// Service hands out opaque bearer tokens, one session and one cart each.
type Service struct {
	tokens *tokenManager
	repo   tokenrepo.Repository
	carts  cartDropper
	ttl    time.Duration
	logger *zap.Logger
}

func New(repo tokenrepo.Repository, carts cartDropper, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		tokens: newTokenManager(repo),
		repo:   repo,
		carts:  carts,
		ttl:    ttl,
		logger: logger,
	}
}

// Open starts a new session.
func (s *Service) Open(ctx context.Context) (token, sessionID string, err error) {
	sessionID = uuid.NewString()
	token, err = s.tokens.Issue(ctx, sessionID, s.ttl)
	if err != nil {
		return "", "", &domain.CollaboratorError{Op: "issue session token", Err: err}
	}
	s.logger.Debug("session opened", zap.String("session_id", sessionID))
	return token, sessionID, nil
}

// Resolve maps a token to its session id.
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	meta, err := s.tokens.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", &domain.CollaboratorError{Op: "resolve session", Err: err}
	}
	return meta.SessionID, nil
}

// Close ends the session and drops its cart.
func (s *Service) Close(ctx context.Context, token string) error {
	sessionID, err := s.Resolve(ctx, token)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return &domain.CollaboratorError{Op: "delete session", Err: err}
	}
	if s.carts != nil {
		if err := s.carts.Delete(ctx, sessionID); err != nil {
			s.logger.Warn("session closed but cart not dropped",
				zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	s.logger.Debug("session closed", zap.String("session_id", sessionID))
	return nil
}

func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}
