package web

import (
	"errors"
	"fmt"
	"time"

	"autism-diet-planner/internal/app"

	"github.com/golang-jwt/jwt/v5"
)

const downloadTokenTTL = 30 * time.Minute

var ErrInvalidToken = errors.New("invalid or expired download token")

type downloadClaims struct {
	ResultID string `json:"rid"`
	Artifact string `json:"art"`
	jwt.RegisteredClaims
}

// TokenSigner issues and checks the signed links used for downloads.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token naming one artifact of one result.
func (s *TokenSigner) Sign(resultID string, kind app.Artifact) (string, error) {
	now := s.now()
	claims := &downloadClaims{
		ResultID: resultID,
		Artifact: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "diet-planner",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign download token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns the result ID and artifact it names.
func (s *TokenSigner) Parse(tokenString string) (string, app.Artifact, error) {
	claims := &downloadClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	kind, ok := app.ParseArtifact(claims.Artifact)
	if !ok || claims.ResultID == "" {
		return "", "", ErrInvalidToken
	}
	return claims.ResultID, kind, nil
}
