package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/you/phoneauthsvc/domain"
)

// AuthMW validates bearer tokens and binds the session to the request.
type AuthMW struct {
	tokenSvc domain.TokenService
	sessions domain.SessionRepository
}

// NewAuthMW creates new JWT auth middleware
func NewAuthMW(tokenSvc domain.TokenService, sessions domain.SessionRepository) *AuthMW {
	return &AuthMW{tokenSvc: tokenSvc, sessions: sessions}
}

// WithJWT returns the authentication middleware
func (mw *AuthMW) WithJWT() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := mw.tokenSvc.ValidateAccessToken(tokenParts[1])
		if err != nil {
			switch err {
			case domain.ErrTokenExpired:
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			default:
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			c.Abort()
			return
		}

		// A token is only as alive as its session.
		if claims.SessionID != "" {
			session, err := mw.sessions.FindByID(c.Request.Context(), claims.SessionID)
			if err != nil || session == nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session invalid or expired"})
				c.Abort()
				return
			}
			if session.IdentityID != claims.IdentityID {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session identity mismatch"})
				c.Abort()
				return
			}
		}

		c.Set("identity_id", claims.IdentityID)
		c.Set("user_role", claims.Role)
		if claims.SessionID != "" {
			c.Set("session_id", claims.SessionID)
		}

		c.Next()
	})
}
