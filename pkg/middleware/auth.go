/**
 * @description
 * This package provides middleware for the HTTP server, specifically for
 * handling authentication and per-caller rate limiting.
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: HS256 bearer token validation.
 */
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthContextKey is a custom type for the context key to avoid collisions.
type AuthContextKey string

const (
	// SubjectKey is the key used to store the caller's JWT subject in the request context.
	SubjectKey AuthContextKey = "subject"
	// AuthTokenKey is the key used to store the raw auth token in the request context.
	AuthTokenKey AuthContextKey = "authToken"
)

// ErrNoAuthHeader is returned when the Authorization header is missing.
var ErrNoAuthHeader = errors.New("authorization header is required")

// ErrMissingSubject is returned when a valid token carries no subject.
var ErrMissingSubject = errors.New("token has no subject")

// AuthOptions configures JWT validation. Issuer and Audience are enforced only when set.
type AuthOptions struct {
	Secret   []byte
	Issuer   string
	Audience string
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoAuthHeader
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid Authorization header format")
	}
	return parts[1], nil
}

// ParseSubject validates an HS256 token and returns its subject.
func ParseSubject(tokenString string, opts AuthOptions) (string, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return opts.Secret, nil
	}, parserOpts...)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}

// AuthMiddleware creates a middleware that validates a bearer JWT and stores its subject.
func AuthMiddleware(opts AuthOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}

			subject, err := ParseSubject(tokenString, opts)
			if err != nil {
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			ctx = context.WithValue(ctx, AuthTokenKey, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubjectFromContext retrieves the caller's subject from the request context.
// It returns an empty string if the subject is not found.
func GetSubjectFromContext(ctx context.Context) string {
	subject, ok := ctx.Value(SubjectKey).(string)
	if !ok {
		return ""
	}
	return subject
}

// GetAuthTokenFromContext retrieves the authorization token from the request context.
// It returns an empty string if the token is not found.
func GetAuthTokenFromContext(ctx context.Context) string {
	token, ok := ctx.Value(AuthTokenKey).(string)
	if !ok {
		return ""
	}
	return token
}
