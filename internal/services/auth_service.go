package services

import (
	"context"
	"errors"
	"time"

	"telemed-chat/config"
	"telemed-chat/internal/domain/auth"
	telemed_errors "telemed-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthService verifies the access tokens issued by the telemedicine platform.
type AuthService struct {
	jwtSecret []byte
	issuer    string
	now       func() time.Time
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		jwtSecret: []byte(cfg.JWTSecret),
		issuer:    cfg.JWTIssuer,
		now:       time.Now,
	}
}

type Claims struct {
	UserID string   `json:"user_id,omitempty"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func (s *AuthService) ParseAccessToken(token string) (*Claims, error) {
	if token == "" {
		return nil, telemed_errors.ErrUnauthorized
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Join(telemed_errors.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, telemed_errors.ErrUnauthorized
	}
	return claims, nil
}

// Authenticate turns a bearer token into the caller's principal.
func (s *AuthService) Authenticate(token string) (auth.Principal, error) {
	claims, err := s.ParseAccessToken(token)
	if err != nil {
		return auth.Principal{}, err
	}

	subject := claims.UserID
	if subject == "" {
		subject = claims.Subject
	}
	id, err := uuid.Parse(subject)
	if err != nil {
		return auth.Principal{}, telemed_errors.ErrUnauthorized
	}
	return auth.Principal{ID: id, Email: claims.Email, Roles: claims.Roles}, nil
}

// IssueAccessToken signs a token for p. The platform's identity service is
// the real issuer; this exists for local tooling and tests.
func (s *AuthService) IssueAccessToken(p auth.Principal, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: p.ID.String(),
		Email:  p.Email,
		Roles:  p.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

type ctxKey string

const principalKey ctxKey = "principal"

func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	return p, ok
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return p.ID, true
}
