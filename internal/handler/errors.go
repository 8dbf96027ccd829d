package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs-lzh/cinema-booking/internal/service"
)

// writeError maps service error kinds to status codes. Anything
// unclassified is an internal error; its cause is logged, not returned.
func writeError(ctx *gin.Context, logger *zap.Logger, err error) {
	var conflict *service.SeatConflictError
	if errors.As(err, &conflict) {
		ctx.JSON(http.StatusConflict, gin.H{
			"error":     conflict.Error(),
			"busySeats": conflict.Seats,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error("Internal server error",
			zap.String("request_id", requestID(ctx)),
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
		ctx.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}

func writeBadRequest(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
