package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/cinema-booking/internal/app"
)

type BookingHandler struct {
	app *app.App
}

func NewBookingHandler(app *app.App) *BookingHandler {
	return &BookingHandler{
		app: app,
	}
}

type ReserveRequest struct {
	SessionID int   `json:"sessionId"`
	Seats     []int `json:"seats"`
}

func (h *BookingHandler) HandleReserve(ctx *gin.Context) {
	var req ReserveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBadRequest(ctx, "sessionId and seats must be integers")
		return
	}
	if req.SessionID <= 0 {
		writeBadRequest(ctx, "sessionId and seats are required")
		return
	}

	user := currentUser(ctx)
	booking, err := h.app.BookingWorkflow.Reserve(ctx.Request.Context(), user.ID, req.SessionID, req.Seats)
	if err != nil {
		writeError(ctx, h.app.Logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) HandleCancel(ctx *gin.Context) {
	bookingID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || bookingID <= 0 {
		writeBadRequest(ctx, "invalid booking id")
		return
	}

	user := currentUser(ctx)
	if err := h.app.BookingWorkflow.Cancel(ctx.Request.Context(), user.ID, bookingID); err != nil {
		writeError(ctx, h.app.Logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *BookingHandler) HandleMyBookings(ctx *gin.Context) {
	bookings, err := h.app.BookingService.ListForUser(ctx.Request.Context(), currentUser(ctx).ID)
	if err != nil {
		writeError(ctx, h.app.Logger, err)
		return
	}

	ctx.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) HandleSeats(ctx *gin.Context) {
	sessionID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	seatMap, err := h.app.BookingService.GetSeatMap(ctx.Request.Context(), sessionID)
	if err != nil {
		writeError(ctx, h.app.Logger, err)
		return
	}

	ctx.JSON(http.StatusOK, seatMap)
}
