// Package auth guards the API with HS256 bearer tokens when a secret is configured.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/tradebook/internal/http/httpio"
)

const issuer = "tradebook"

// Issue signs a token for subject that expires after ttl. A zero ttl never expires.
func Issue(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("auth secret is empty")
	}

	claims := jwt.RegisteredClaims{
		Issuer:   issuer,
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
	}

	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Verify parses a signed token and returns its subject.
func Verify(secret, token string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return "", err
	}

	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}

	return claims.Subject, nil
}

// Middleware rejects requests without a valid "Authorization: Bearer" token.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "bearer") {
				httpio.JSON(w, http.StatusUnauthorized, map[string]string{"message": "bearer token required"})
				return
			}

			subject, err := Verify(secret, strings.TrimSpace(token))
			if err != nil {
				slog.Warn("rejected token", "path", r.URL.Path, "error", err)

				msg := "invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "token has expired"
				}

				httpio.JSON(w, http.StatusUnauthorized, map[string]string{"message": msg})

				return
			}

			slog.Debug("authenticated", "subject", subject, "path", r.URL.Path)

			next.ServeHTTP(w, r)
		})
	}
}
