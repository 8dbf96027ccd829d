package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/service/domain"
)

const (
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
	userKey      = "user"
)

// RequestID reuses the caller's X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(requestIDKey, id)
		ctx.Header(RequestIDHeader, id)
		ctx.Next()
	}
}

func requestID(ctx *gin.Context) string {
	return ctx.GetString(requestIDKey)
}

func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		logger.Info("request",
			zap.String("request_id", requestID(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Int("size", ctx.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(ctx *gin.Context) string {
	value := ctx.GetHeader("Authorization")
	if !strings.HasPrefix(value, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(value, "Bearer "))
}

// RequireAuth rejects the request before any other validation unless the
// bearer token resolves to a user.
func RequireAuth(tokens domain.TokenService, logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := tokens.Authorize(ctx.Request.Context(), bearerToken(ctx))
		if err != nil {
			writeError(ctx, logger, err)
			ctx.Abort()
			return
		}
		ctx.Set(userKey, user)
		ctx.Next()
	}
}

func currentUser(ctx *gin.Context) *model.User {
	user, _ := ctx.MustGet(userKey).(*model.User)
	return user
}
