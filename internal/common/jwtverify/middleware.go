package jwtverify

import (
	"context"
	"net/http"
	"strings"

	"github.com/inkwell/blog-backend/internal/common/constants"
	commonhttp "github.com/inkwell/blog-backend/internal/common/http"
	"github.com/inkwell/blog-backend/internal/common/logger"
)

type claimsKeyType struct{}

var claimsKey claimsKeyType

// AccessTokenValidator verifies a raw access token and returns its claims.
// The auth service implements it with signature, expiry and revocation checks.
type AccessTokenValidator interface {
	ValidateAccessToken(ctx context.Context, tokenString string) (Claims, error)
}

// Middleware rejects requests without a valid bearer token and stores the
// verified claims in the request context.
func Middleware(validator AccessTokenValidator, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing or malformed Authorization header", nil, traceID(r.Context()))
				return
			}

			claims, err := validator.ValidateAccessToken(r.Context(), tokenString)
			if err != nil {
				log.WithFields(r.Context(), logger.Fields{
					"path": r.URL.Path,
				}).Warnf("access token rejected: %v", err)
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeInvalidToken, "invalid or expired token", nil, traceID(r.Context()))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalMiddleware validates a bearer token when one is presented but lets
// anonymous requests through. Handlers that mix public reads with
// authenticated mutations use this and check claims per method.
func OptionalMiddleware(validator AccessTokenValidator, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validator.ValidateAccessToken(r.Context(), tokenString)
			if err != nil {
				log.WithFields(r.Context(), logger.Fields{
					"path": r.URL.Path,
				}).Warnf("access token rejected: %v", err)
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeInvalidToken, "invalid or expired token", nil, traceID(r.Context()))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the claims stored by Middleware.
func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}

func traceID(ctx context.Context) string {
	if id, ok := ctx.Value(constants.TraceIDKey).(string); ok {
		return id
	}
	return ""
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
