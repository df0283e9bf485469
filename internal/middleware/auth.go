package middleware

import (
	"net/http"

	"photo_studio/internal/domain/models"
	authjwt "photo_studio/internal/lib/jwt"
	"photo_studio/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// ContextKey is where the admin JWT middleware stores the parsed claims.
const ContextKey = "admin"

// AdminClaims returns the claims of the token validated earlier in the chain.
func AdminClaims(c echo.Context) (*authjwt.AdminClaims, bool) {
	claims, ok := c.Get(ContextKey).(*authjwt.AdminClaims)

	return claims, ok && claims != nil
}

// RequireRole rejects tokens whose role differs from role.
func RequireRole(role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := AdminClaims(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationRequired)
			}
			if claims.Role != role {
				return c.JSON(http.StatusForbidden, response.ErrSuperAdminRequired)
			}

			return next(c)
		}
	}
}
