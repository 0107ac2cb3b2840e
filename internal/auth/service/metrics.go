package service

import (
	"github.com/inkwell/blog-backend/internal/observability/metrics"
)

func incrementUsersRegistered() {
	metrics.UsersRegistered.Inc()
}

func incrementLoginAttempts(result string) {
	metrics.LoginAttempts.WithLabelValues(result).Inc()
}

func incrementAccessTokensIssued() {
	metrics.AccessTokensIssued.Inc()
}

func incrementAccessTokensRevoked() {
	metrics.AccessTokensRevoked.Inc()
}

func incrementRefreshTokensIssued() {
	metrics.RefreshTokensIssued.Inc()
}

func incrementRefreshTokensUsed() {
	metrics.RefreshTokensUsed.Inc()
}

func incrementRefreshTokensRevoked() {
	metrics.RefreshTokensRevoked.Inc()
}

func incrementRefreshTokensExpired() {
	metrics.RefreshTokensExpired.Inc()
}

func incrementJWTValidations() {
	metrics.JWTValidationsTotal.Inc()
}

func incrementJWTExpired() {
	metrics.JWTValidationsExpired.Inc()
}

func incrementJWTInvalid() {
	metrics.JWTValidationsInvalid.Inc()
}

func incrementJWTRevokedChecks() {
	metrics.JWTRevokedChecksTotal.Inc()
}
