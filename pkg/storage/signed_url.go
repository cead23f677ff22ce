package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const signedURLIssuer = "qms-attachments"

// AttachmentClaims is the payload of a download token.
type AttachmentClaims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// SignedURLSigner creates and validates HS256 download tokens for attachments.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate returns a signed token granting read access to relPath. subject
// is recorded as the token subject (typically the owning query id).
func (s *SignedURLSigner) Generate(subject, relPath string) (string, time.Time, error) {
	if subject == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("subject and relPath required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)
	claims := AttachmentClaims{
		Path: relPath,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    signedURLIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign attachment token: %w", err)
	}
	return token, expiresAt.Truncate(time.Second), nil
}

// Parse validates a token and returns the embedded metadata.
// When allowExpired is true, the expiry check is skipped.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (subject, relPath string, expiresAt time.Time, err error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(signedURLIssuer),
		jwt.WithTimeFunc(s.now),
	}
	claims := &AttachmentClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if !(allowExpired && errors.Is(err, jwt.ErrTokenExpired)) {
			return "", "", time.Time{}, fmt.Errorf("invalid attachment token: %w", err)
		}
	}
	if claims.Path == "" {
		return "", "", time.Time{}, fmt.Errorf("invalid attachment token: missing path")
	}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return claims.Subject, claims.Path, expiresAt, nil
}
