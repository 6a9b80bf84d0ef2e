package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sbs-nexus/docrisk/shared/tenant"
	"github.com/sbs-nexus/docrisk/shared/utils"
)

// TenantMiddleware binds the tenant id from a verified bearer token into
// the request context. Every downstream operation reads the tenant from
// there and nowhere else.
type TenantMiddleware struct {
	jwksValidator *utils.JWKSValidator
}

// NewTenantMiddleware creates a tenant middleware validating tokens
// against the given JWKS endpoint
func NewTenantMiddleware(jwksURL string) *TenantMiddleware {
	return &TenantMiddleware{
		jwksValidator: utils.NewJWKSValidator(jwksURL),
	}
}

// RequireTenant validates the bearer token and installs the tenant scope
func (tm *TenantMiddleware) RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			utils.UnauthorizedResponse(c, "Authorization token required")
			c.Abort()
			return
		}

		token, err := tm.jwksValidator.ValidateToken(tokenString)
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid token")
			c.Abort()
			return
		}

		// Tenant id comes from the identity provider's custom claim
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			utils.UnauthorizedResponse(c, "Invalid token claims")
			c.Abort()
			return
		}

		tenantID, _ := claims["custom:tenant_id"].(string)
		bindTenant(c, tenantID)
	}
}

// TenantHeaderMiddleware binds the tenant id from the X-Tenant-ID header.
// For internal wiring behind the gateway, where the token was already
// verified upstream. Empty ids are still rejected.
func TenantHeaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		bindTenant(c, c.GetHeader("X-Tenant-ID"))
	}
}

// bindTenant installs the tenant scope or rejects the request
func bindTenant(c *gin.Context, tenantID string) {
	ctx, err := tenant.WithTenant(c.Request.Context(), tenantID)
	if err != nil {
		utils.UnauthorizedResponse(c, "Tenant id missing or empty")
		c.Abort()
		return
	}
	c.Request = c.Request.WithContext(ctx)
	c.Set("tenant_id", tenantID)
	c.Next()
}

// extractToken extracts the bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if bearerToken == "" {
		return ""
	}

	parts := strings.SplitN(bearerToken, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}
