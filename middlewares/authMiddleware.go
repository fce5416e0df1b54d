package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/growship/commerce_backend/models"
	"github.com/growship/commerce_backend/utils"
)

// AuthMiddleware validates the bearer token, loads the actor's profile and
// seeds the request context with identity + tenant scope for everything
// downstream.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token is required"})
			return
		}
		tokenString := strings.TrimPrefix(auth, "Bearer ")

		token, err := utils.JwtValidate(c.Request.Context(), tokenString)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		claims, ok := token.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		profile, err := models.GetUserProfile(c.Request.Context(), claims.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "profile not found"})
			return
		}
		if profile.UserStatus != models.UserStatusApproved {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is not approved"})
			return
		}

		ctx := c.Request.Context()
		ctx = utils.SetTokenInContext(ctx, tokenString)
		ctx = utils.SetUserIdInContext(ctx, profile.ID)
		ctx = utils.SetUserNameInContext(ctx, profile.FullName)
		ctx = utils.SetRoleInContext(ctx, string(profile.Role))
		ctx = utils.SetBrandIdInContext(ctx, profile.BrandId)
		if profile.DistributorId != nil {
			ctx = utils.SetDistributorIdInContext(ctx, *profile.DistributorId)
		}
		ctx = utils.SetIsAdminInContext(ctx, profile.Role == models.RoleSuperAdmin || profile.Role == models.RoleBrandAdmin)
		ctx = utils.SetCorrelationIdInContext(ctx, requestCorrelationId(c))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func requestCorrelationId(c *gin.Context) string {
	if id := c.GetHeader("X-Correlation-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}

// RequireRoles guards admin-only routes; run after AuthMiddleware.
func RequireRoles(roles ...models.RoleName) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := utils.GetRoleFromContext(c.Request.Context())
		for _, r := range roles {
			if string(r) == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}
