package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type discriminator embedded in every claim set. Access and refresh
// tokens are additionally signed with independent secrets, so the type claim
// is a second line of defense, not the only one.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are the JWT claims carried by both token classes.
type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// CodecConfig holds the immutable signing configuration for a TokenCodec.
type CodecConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenCodec signs and verifies access and refresh tokens. The two classes
// use independent secrets: an access token can never verify as a refresh
// token and vice versa, even if the type claim were tampered with.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

// NewTokenCodec creates a codec from the given configuration.
func NewTokenCodec(cfg CodecConfig) *TokenCodec {
	return &TokenCodec{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
	}
}

// RefreshTTL returns the configured refresh token lifetime.
func (c *TokenCodec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// IssueAccess creates a signed access token for the given subject.
func (c *TokenCodec) IssueAccess(subject string) (string, error) {
	return c.issue(subject, TokenTypeAccess, c.accessTTL, c.accessSecret)
}

// IssueRefresh creates a signed refresh token for the given subject.
func (c *TokenCodec) IssueRefresh(subject string) (string, error) {
	return c.issue(subject, TokenTypeRefresh, c.refreshTTL, c.refreshSecret)
}

func (c *TokenCodec) issue(subject, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    c.issuer,
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// VerifyAccess parses and validates an access token, returning the claims.
func (c *TokenCodec) VerifyAccess(tokenString string) (*Claims, error) {
	return c.verify(tokenString, TokenTypeAccess, c.accessSecret)
}

// VerifyRefresh parses and validates a refresh token, returning the claims.
func (c *TokenCodec) VerifyRefresh(tokenString string) (*Claims, error) {
	return c.verify(tokenString, TokenTypeRefresh, c.refreshSecret)
}

func (c *TokenCodec) verify(tokenString, wantType string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse %s token: %w", wantType, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid %s token claims", wantType)
	}

	if claims.TokenType != wantType {
		return nil, fmt.Errorf("token type mismatch: want %s, got %s", wantType, claims.TokenType)
	}

	// Validate the subject here so a malformed identifier never propagates
	// into store lookups.
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("malformed token subject")
	}

	return claims, nil
}
