package middleware

import (
	"strings"

	"taskhive/internal/auth"

	"github.com/gin-gonic/gin"
)

// OptionalAuth sets user identity when a valid token is present and lets
// the request through either way. Invitation accept/decline work from an
// email link, with or without a session.
func (m *Auth) OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			ctx.Next()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		parsedToken, err := auth.VerifyJWT(token)
		if err != nil {
			ctx.Next()
			return
		}

		userID, tokenVersion, err := auth.GetDataFromToken(parsedToken)
		if err != nil {
			ctx.Next()
			return
		}

		user, err := m.UserService.GetUserByID(ctx.Request.Context(), userID)
		if err != nil || user.TokenVersion != tokenVersion {
			ctx.Next()
			return
		}

		ctx.Set("user_id", userID)
		ctx.Set("user_email", user.Email)
		ctx.Next()
	}
}
