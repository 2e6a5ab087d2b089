package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	httpdto "github.com/vibast-solutions/ms-go-user/app/dto/http"
	"github.com/vibast-solutions/ms-go-user/app/service"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextEmail    = "user_email"
	ContextClaims   = "claims"
)

type accessTokenValidator interface {
	ValidateAccessToken(tokenString string) (*service.Claims, error)
}

type AuthMiddleware struct {
	authService accessTokenValidator
}

func NewAuthMiddleware(authService accessTokenValidator) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireAuth answers 401 when no bearer credential is presented and 403 when
// the presented credential fails verification.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			logrus.WithField("path", c.Path()).Debug("Missing or malformed authorization header")
			return c.JSON(http.StatusUnauthorized, httpdto.Error(httpdto.MessageUnauthorized))
		}

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			logrus.WithField("path", c.Path()).Debug("Invalid or expired access token")
			return c.JSON(http.StatusForbidden, httpdto.Error(httpdto.MessageForbidden))
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextEmail, claims.Email)

		return next(c)
	}
}

// BearerToken extracts the credential from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
