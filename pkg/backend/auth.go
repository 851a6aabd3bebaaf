package backend

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/softmembers/soft-members/pkg/access"
	"github.com/softmembers/soft-members/pkg/proto"
	"golang.org/x/crypto/bcrypt"
)

// ErrMissingSecret is returned when signing a token without a configured
// secret.
var ErrMissingSecret = errors.New("jwt secret is not configured")

// HashPassword hashes the password using bcrypt. A cost of zero uses the
// bcrypt default.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	crypt, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(crypt), nil
}

// VerifyPassword verifies the password against the hash.
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateSecret returns a random secret suitable for signing tokens.
func GenerateSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Error("unable to generate secret")
		return ""
	}

	return hex.EncodeToString(buf)
}

// Claims are the claims of a session token.
type Claims struct {
	jwt.RegisteredClaims
	Email string      `json:"email"`
	Role  access.Role `json:"role"`
}

// signingMethod is the only accepted token algorithm.
var signingMethod = jwt.SigningMethodHS256

// IssueToken returns a signed session token for the user.
func (d *Backend) IssueToken(user proto.User) (string, error) {
	secret := d.cfg.Auth.JWTSecret
	if secret == "" {
		return "", ErrMissingSecret
	}

	now := d.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    d.cfg.HTTP.PublicURL,
			Subject:   user.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d.cfg.TokenExpiry())),
		},
		Email: user.Email(),
		Role:  user.Role(),
	}

	token, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return token, nil
}

// ParseToken verifies a session token and returns its claims.
func (d *Backend) ParseToken(token string) (*Claims, error) {
	if token == "" {
		return nil, proto.ErrNoToken
	}

	secret := d.cfg.Auth.JWTSecret
	if secret == "" {
		return nil, proto.ErrInvalidToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(d.cfg.HTTP.PublicURL),
		jwt.WithTimeFunc(d.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, proto.ErrTokenExpired
	case err != nil:
		d.logger.Debug("invalid token", "err", err)
		return nil, proto.ErrInvalidToken
	}

	return &claims, nil
}
