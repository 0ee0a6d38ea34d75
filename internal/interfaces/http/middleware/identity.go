package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/printshop/backend/internal/infrastructure/logger"
	"github.com/printshop/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Gin context keys holding the caller identity
const (
	UserIDKey = "user_id"
	ShopIDKey = "shop_id"
)

// IdentityConfig names the headers an upstream gateway uses to pass the
// authenticated caller.
type IdentityConfig struct {
	UserIDHeader string
	ShopIDHeader string
}

// DefaultIdentityConfig returns the default header names
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		UserIDHeader: "X-User-ID",
		ShopIDHeader: "X-Shop-ID",
	}
}

// RequireUser rejects requests without a valid user id header and stores
// the id for handlers and request logs.
func RequireUser(cfg IdentityConfig) gin.HandlerFunc {
	return requireIdentity(cfg.UserIDHeader, UserIDKey, "user")
}

// RequireShop rejects requests without a valid shop id header.
func RequireShop(cfg IdentityConfig) gin.HandlerFunc {
	return requireIdentity(cfg.ShopIDHeader, ShopIDKey, "shop")
}

func requireIdentity(header, key, what string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(header)
		if raw == "" {
			abortUnauthorized(c, "missing "+what+" identity")
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			abortUnauthorized(c, "invalid "+what+" identity")
			return
		}

		c.Set(key, id.String())
		ctx := c.Request.Context()
		reqLogger := logger.FromContext(ctx)
		if key == UserIDKey {
			ctx, reqLogger = logger.WithUserID(ctx, reqLogger, id.String())
		} else {
			reqLogger = reqLogger.With(zap.String(key, id.String()))
			ctx = logger.WithContext(ctx, reqLogger)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeUnauthorized, message, GetRequestID(c),
	))
}

// GetUserID returns the caller set by RequireUser
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	return parsedKey(c, UserIDKey)
}

// GetShopID returns the shop set by RequireShop
func GetShopID(c *gin.Context) (uuid.UUID, bool) {
	return parsedKey(c, ShopIDKey)
}

func parsedKey(c *gin.Context, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(key))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
