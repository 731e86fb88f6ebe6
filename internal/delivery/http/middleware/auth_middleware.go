package middleware

import (
	"context"
	"errors"
	"inys-backend/internal/delivery/http/response"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"inys-backend/pkg/audit"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires an admin token from the Authorization header or the
// auth_token cookie and loads the user behind it.
func AuthMiddleware(authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		// 1. Try to get token from Header
		if authHeader != "" {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		} else {
			// 2. Try to get token from Cookie
			cookie, err := c.Cookie("auth_token")
			if err == nil && cookie != "" {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		user, err := authUC.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			code, message := http.StatusUnauthorized, "Invalid token"
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				code, message = appErr.Code, appErr.Message
			}
			audit.Default().Log(c.Request.Context(), audit.Event{
				Event:       audit.EventUnauthorizedAccess,
				SubjectType: "ip",
				IP:          c.ClientIP(),
				RequestID:   c.GetString("RequestID"),
				Details:     map[string]interface{}{"path": c.FullPath()},
			})
			response.Error(c, code, message, nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), user.ID)
		c.Set(string(domain.KeyUserEmail), user.Email)
		c.Set(string(domain.KeyUserRoles), user.RoleNames())

		ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, user.ID)
		ctx = context.WithValue(ctx, domain.KeyUserEmail, user.Email)
		ctx = context.WithValue(ctx, domain.KeyUserRoles, user.RoleNames())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
