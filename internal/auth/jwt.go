package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig holds signer verification parameters.
type JWTConfig struct {
	Secret string
	Issuer string
}

// Claims represents the payload extracted from a JWT.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// ErrMissingToken is returned when the Authorization header is absent.
var ErrMissingToken = errors.New("missing bearer token")

// ErrInvalidToken wraps parsing/validation errors.
var ErrInvalidToken = errors.New("invalid bearer token")

// ErrRevokedToken is returned for tokens that were signed out.
var ErrRevokedToken = errors.New("token has been signed out")

// ParseToken validates an HS256 JWT and returns normalized claims.
func ParseToken(token string, cfg JWTConfig) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired()}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}

	return &Claims{
		Subject:   subject,
		Email:     email,
		ExpiresAt: exp.Time,
	}, nil
}

// JWTVerifier verifies self-issued bearer tokens. Signing out revokes a
// token until it would have expired anyway.
type JWTVerifier struct {
	cfg     JWTConfig
	now     func() time.Time
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewJWTVerifier constructs a JWTVerifier.
func NewJWTVerifier(cfg JWTConfig) *JWTVerifier {
	return &JWTVerifier{cfg: cfg, now: time.Now, revoked: make(map[string]time.Time)}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Session, error) {
	claims, err := ParseToken(token, v.cfg)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	_, revoked := v.revoked[fingerprint(token)]
	v.mu.Unlock()
	if revoked {
		return nil, ErrRevokedToken
	}

	return &Session{UserID: claims.Subject, Email: claims.Email, ExpiresAt: claims.ExpiresAt}, nil
}

func (v *JWTVerifier) Revoke(_ context.Context, token string) error {
	claims, err := ParseToken(token, v.cfg)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	now := v.now()
	for fp, exp := range v.revoked {
		if exp.Before(now) {
			delete(v.revoked, fp)
		}
	}
	v.revoked[fingerprint(token)] = claims.ExpiresAt
	return nil
}

func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}
