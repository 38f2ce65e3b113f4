package middleware

import (
	"context"
	"strings"

	"peymonak_backend/internal/util"
	"peymonak_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RevocationChecker reports whether a token id was revoked by logout or
// refresh rotation.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// AuthMiddleware accepts only unrevoked access tokens and stores the claims
// under "user".
func AuthMiddleware(secret string, revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret)
		if err != nil || claims.TokenType != util.TokenTypeAccess {
			logger.Log.Debug("Rejected token", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if revocations != nil {
			revoked, err := revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// Fail open when Redis is unavailable.
				logger.Log.Warn("Revocation check failed", zap.Error(err))
			} else if revoked {
				util.Unauthorized(c)
				c.Abort()
				return
			}
		}

		c.Set("user", claims)
		c.Next()
	}
}

type AccountActivityRepo interface {
	UpdateLastSeen(accountID uint) error
}

func ActivityMiddleware(repo AccountActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			// 异步更新，不阻塞主流程
			go func(id uint) {
				if err := repo.UpdateLastSeen(id); err != nil {
					logger.Log.Warn("Failed to update last seen", zap.Uint("account_id", id), zap.Error(err))
				}
			}(claims.AccountID)
		}
		c.Next()
	}
}
