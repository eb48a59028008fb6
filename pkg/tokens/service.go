package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Service signs and verifies access and refresh tokens under a single
// algorithm/key configuration. It holds no mutable state.
type Service struct {
	cfg        Config
	accessTTL  time.Duration
	refreshTTL time.Duration

	// now is swappable for expiry tests.
	now func() time.Time
}

// VerificationInfo is what an independently deployed verifier needs to check
// tokens. Under RS256 the key is only ever the public key; the private
// signing key never leaves the Service.
type VerificationInfo struct {
	Key       any
	Algorithm string
}

// Option tweaks a Service at construction.
type Option func(*Service)

// WithAccessTTL overrides the access-token lifetime.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Service) { s.accessTTL = ttl }
}

// WithRefreshTTL overrides the refresh-token lifetime.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(s *Service) { s.refreshTTL = ttl }
}

// WithClock overrides the time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a token service from a tagged key config.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	if cfg.method == nil || cfg.signKey == nil || cfg.verifyKey == nil {
		return nil, fmt.Errorf("%w: missing key configuration", ErrSigning)
	}

	s := &Service{
		cfg:        cfg,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AccessTTL reports the configured access-token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// SignAccessToken issues an access token for subject, merging extra claims.
// Registered claim names in extra are ignored rather than merged.
func (s *Service) SignAccessToken(subject string, extra map[string]any) (string, error) {
	return s.sign(subject, extra, s.accessTTL)
}

// SignRefreshToken issues a refresh token carrying only the subject. Refresh
// tokens must not leak authorization data, so there is deliberately no way to
// attach extra claims here.
func (s *Service) SignRefreshToken(subject string) (string, error) {
	return s.sign(subject, nil, s.refreshTTL)
}

func (s *Service) sign(subject string, extra map[string]any, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrSigning)
	}

	payload := buildPayload(subject, extra, s.now().UTC(), ttl)
	tok := jwt.NewWithClaims(s.cfg.method, payload)
	signed, err := tok.SignedString(s.cfg.signKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return signed, nil
}

// VerifyAccessToken checks the signature and expiry of an access token and
// returns its claims. Verification is pinned to the configured algorithm:
// a token whose header requests any other algorithm is rejected outright.
func (s *Service) VerifyAccessToken(token string) (Claims, error) {
	return s.verify(token)
}

// VerifyRefreshToken verifies a refresh token under the same discipline as
// access tokens. Callers take the subject from the result.
func (s *Service) VerifyRefreshToken(token string) (Claims, error) {
	return s.verify(token)
}

func (s *Service) verify(token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrTokenMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.cfg.method.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }),
	)

	payload := jwt.MapClaims{}
	parsed, err := parser.ParseWithClaims(token, payload, func(t *jwt.Token) (any, error) {
		return s.cfg.verifyKey, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		default:
			return Claims{}, ErrTokenInvalid
		}
	}
	if !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}

	return claimsFromPayload(payload)
}

// DescribeVerification exposes the verification key and algorithm so other
// services can verify tokens without holding signing secrets.
func (s *Service) DescribeVerification() VerificationInfo {
	return VerificationInfo{
		Key:       s.cfg.verifyKey,
		Algorithm: s.cfg.method.Alg(),
	}
}
