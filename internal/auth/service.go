// Package auth gates the API behind the seller's access PIN.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/docelucro/backend-doce/internal/common"
)

const defaultAccessTTL = 12 * time.Hour

// Service verifies the access PIN and issues session tokens. The app
// is single-tenant: one PIN, one document owner.
type Service struct {
	pinHash   string
	secret    []byte
	userID    string
	accessTTL time.Duration
	issuer    string
	audience  string
	clockSkew time.Duration
	now       func() time.Time
	signer    jwa.SignatureAlgorithm
}

// Config configures the auth service.
type Config struct {
	// PINHash is the argon2id hash of the seller's access PIN.
	PINHash   string
	Secret    string
	UserID    string
	AccessTTL time.Duration
	Issuer    string
	Audience  string
	ClockSkew time.Duration
}

// LoginResult bundles the token material returned after a login.
type LoginResult struct {
	AccessToken  string    `json:"access_token"`
	AccessExpiry time.Time `json:"access_expires_at"`
}

// NewService constructs a Service with sane defaults.
func NewService(cfg Config) (*Service, error) {
	if strings.TrimSpace(cfg.PINHash) == "" {
		return nil, errors.New("auth: pin hash is required")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	userID := strings.TrimSpace(cfg.UserID)
	if userID == "" {
		userID = "owner"
	}
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "backend-doce"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "doce-frontend"
	}
	clockSkew := cfg.ClockSkew
	if clockSkew < 0 {
		clockSkew = 0
	}
	return &Service{
		pinHash:   cfg.PINHash,
		secret:    []byte(secret),
		userID:    userID,
		accessTTL: accessTTL,
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
		now:       time.Now,
		signer:    jwa.HS256,
	}, nil
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Login verifies the PIN and returns a signed access token.
func (s *Service) Login(pin string) (LoginResult, error) {
	if s == nil {
		return LoginResult{}, errors.New("auth: service not configured")
	}
	match, err := argon2id.ComparePasswordAndHash(strings.TrimSpace(pin), s.pinHash)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: compare pin: %w", err)
	}
	if !match {
		return LoginResult{}, common.NewAppError("PIN_INVALID", "incorrect pin", http.StatusUnauthorized, common.ErrUnauthorized)
	}
	token, expiry, err := s.signAccessToken()
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: sign access token: %w", err)
	}
	return LoginResult{AccessToken: token, AccessExpiry: expiry}, nil
}

// ParseAccessToken validates the token and returns its subject.
func (s *Service) ParseAccessToken(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if algorithm != s.signer {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret))
	if err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if err := s.validateClaims(parsed); err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	return parsed.Subject(), nil
}

// validateClaims checks issuer, audience, and expiry against the
// service clock.
func (s *Service) validateClaims(tok jwt.Token) error {
	options := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(s.now)),
	}
	if s.clockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(s.clockSkew))
	}
	if s.issuer != "" {
		options = append(options, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		options = append(options, jwt.WithAudience(s.audience))
	}
	return jwt.Validate(tok, options...)
}

func (s *Service) signAccessToken() (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	token, err := jwt.NewBuilder().
		Subject(s.userID).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-s.clockSkew)).
		Expiration(expiresAt).
		Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", errors.New("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}
