// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/peakcrest/roofline/app/dto"
	"github.com/peakcrest/roofline/config"
)

// AdminAuthMiddleware validates admin bearer tokens for the management API.
// Tokens are minted out of band and carry the configured issuer and
// audience; when an admin subject is configured it must match too.
type AdminAuthMiddleware struct {
	jwtConfig   config.JWTConfig
	adminConfig config.AdminConfig
}

// NewAdminAuthMiddleware creates a new admin authentication middleware
func NewAdminAuthMiddleware(jwtConfig config.JWTConfig, adminConfig config.AdminConfig) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{
		jwtConfig:   jwtConfig,
		adminConfig: adminConfig,
	}
}

// Authenticate is the middleware function that validates admin JWT tokens
func (m *AdminAuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Get the Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Authorization header is required",
				Error: dto.ErrorDetail{
					Code: "MISSING_AUTHORIZATION_HEADER",
				},
			})
		}

		// Check if the header starts with "Bearer "
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Invalid authorization header format. Expected 'Bearer <token>'",
				Error: dto.ErrorDetail{
					Code: "INVALID_AUTHORIZATION_FORMAT",
				},
			})
		}

		// Extract the token (remove "Bearer " prefix)
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Access token is required",
				Error: dto.ErrorDetail{
					Code: "MISSING_ACCESS_TOKEN",
				},
			})
		}

		claims, err := m.validateToken(token)
		if err != nil {
			var code, msg string
			if errors.Is(err, jwt.ErrTokenExpired) {
				code = "TOKEN_EXPIRED"
				msg = "Access token has expired"
			} else {
				code = "TOKEN_INVALID"
				msg = "Invalid access token"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: msg,
				Error:   dto.ErrorDetail{Code: code},
			})
		}

		// Store admin identity in context for downstream handlers
		c.Locals("admin_subject", claims.Subject)
		c.Locals("token_claims", claims)

		// Store RequestID for audit logging
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		// Continue to the next handler
		return c.Next()
	}
}

func (m *AdminAuthMiddleware) validateToken(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != m.jwtConfig.Algorithm {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(m.jwtConfig.SecretKey), nil
	},
		jwt.WithIssuer(m.jwtConfig.Issuer),
		jwt.WithAudience(m.jwtConfig.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	if m.adminConfig.Subject != "" && claims.Subject != m.adminConfig.Subject {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return claims, nil
}

// GetAdminSubjectFromContext extracts the admin subject from the request context
func GetAdminSubjectFromContext(c fiber.Ctx) (string, bool) {
	subject, ok := c.Locals("admin_subject").(string)
	return subject, ok
}
