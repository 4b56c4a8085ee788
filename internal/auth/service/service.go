package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"faceguard/internal/audit"
	"faceguard/internal/auth/metrics"
	"faceguard/internal/auth/models"
	"faceguard/internal/sentinel"
	dErrors "faceguard/pkg/domain-errors"
	"faceguard/pkg/secrets"
)

// Store persists client credentials.
// Error Contract:
// - Create returns sentinel.ErrConflict for a taken username
// - Get, RecordLogin and FindByToken return sentinel.ErrNotFound
type Store interface {
	Create(ctx context.Context, client models.Client) error
	Get(ctx context.Context, username string) (*models.Client, error)
	RecordLogin(ctx context.Context, username string, at time.Time, ip string) error
	FindByToken(ctx context.Context, token string) (*models.Client, error)
	Count(ctx context.Context) (int, error)
}

var (
	// ErrDuplicateUsername is returned by Register when the username is taken.
	ErrDuplicateUsername = dErrors.New(dErrors.CodeConflict, "username already exists")
	// ErrInvalidCredentials covers unknown usernames and wrong passwords alike.
	ErrInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
	ErrInvalidToken       = dErrors.New(dErrors.CodeUnauthorized, "invalid token")
)

type Option func(*Service)

type Service struct {
	store      Store
	auditor    *audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewService(store Store, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:      store,
		auditor:    auditor,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithBcryptCost sets the password hashing cost; values below bcrypt.MinCost
// are ignored.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Register creates a client with a bcrypt-hashed password and a fresh
// 256-bit bearer token.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest, origin models.Origin) (*models.Credentials, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := secrets.Hash(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	token, err := secrets.GenerateToken()
	if err != nil {
		return nil, err
	}

	client := models.Client{
		Username:         req.Username,
		PasswordHash:     hash,
		Email:            req.Email,
		Phone:            req.Phone,
		Purpose:          req.Purpose,
		Token:            token,
		RegisteredOn:     s.now(),
		RegisteredFromIP: origin.IP,
		RegisteredDevice: origin.Device,
	}
	if err := s.store.Create(ctx, client); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, ErrDuplicateUsername
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to save client")
	}

	s.emitAudit(ctx, audit.Event{
		Subject:  client.Username,
		Action:   string(audit.EventClientRegistered),
		Purpose:  client.Purpose,
		Decision: "granted",
	})
	s.incrementClientsRegistered()
	if s.logger != nil {
		s.logger.InfoContext(ctx, "client registered",
			"username", client.Username,
			"device", origin.Device,
		)
	}
	return &models.Credentials{Username: client.Username, Token: token}, nil
}

// VerifyCredentials checks a username and password. On success the login
// time and origin IP are recorded on the client.
func (s *Service) VerifyCredentials(ctx context.Context, username, password string, origin models.Origin) (*models.Credentials, error) {
	client, err := s.store.Get(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Burn a comparison so unknown usernames cost the same as wrong passwords.
			_ = secrets.Verify(password, s.dummy())
			s.loginFailed(ctx, username, "unknown_username")
			return nil, ErrInvalidCredentials
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read client")
	}

	if err := secrets.Verify(password, client.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.loginFailed(ctx, username, "wrong_password")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.store.RecordLogin(ctx, client.Username, s.now(), origin.IP); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to record login")
	}

	s.emitAudit(ctx, audit.Event{
		Subject:  client.Username,
		Action:   string(audit.EventLoginSucceeded),
		Decision: "granted",
	})
	s.incrementLogins("success")
	return &models.Credentials{Username: client.Username, Token: client.Token}, nil
}

// ResolveToken returns the username a bearer token was issued to.
func (s *Service) ResolveToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	client, err := s.store.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.emitAudit(ctx, audit.Event{
				Action:   string(audit.EventTokenRejected),
				Decision: "denied",
			})
			s.incrementTokenRejected()
			return "", ErrInvalidToken
		}
		return "", dErrors.Wrap(err, dErrors.CodeStorage, "failed to read client credentials")
	}
	return client.Username, nil
}

// VerifyToken reports whether token was issued by a prior registration.
func (s *Service) VerifyToken(ctx context.Context, token string) bool {
	_, err := s.ResolveToken(ctx, token)
	return err == nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("faceguard-timing-equalizer"), s.bcryptCost)
		if err == nil {
			s.dummyHash = string(h)
		}
	})
	return s.dummyHash
}

func (s *Service) loginFailed(ctx context.Context, username, reason string) {
	s.emitAudit(ctx, audit.Event{
		Subject:  username,
		Action:   string(audit.EventLoginFailed),
		Decision: "denied",
		Reason:   reason,
	})
	s.incrementLogins("failure")
	if s.logger != nil {
		s.logger.WarnContext(ctx, "login failed",
			"username", username,
			"reason", reason,
		)
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Emit(ctx, event)
}

func (s *Service) incrementClientsRegistered() {
	if s.metrics != nil {
		s.metrics.IncrementClientsRegistered()
	}
}

func (s *Service) incrementLogins(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementLogins(outcome)
	}
}

func (s *Service) incrementTokenRejected() {
	if s.metrics != nil {
		s.metrics.IncrementTokensRejected()
	}
}
