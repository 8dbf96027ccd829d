package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/cinema-booking/internal/app"
	"github.com/qs-lzh/cinema-booking/internal/model"
)

type CatalogHandler struct {
	app *app.App
}

func NewCatalogHandler(app *app.App) *CatalogHandler {
	return &CatalogHandler{
		app: app,
	}
}

func (h *CatalogHandler) HandleMovies(ctx *gin.Context) {
	movies, err := h.app.MovieService.GetAllMovies(ctx.Request.Context())
	if err != nil {
		writeError(ctx, h.app.Logger, err)
		return
	}

	ctx.JSON(http.StatusOK, movies)
}

// HandleSessions lists all showtimes, or only those of ?movieId= when it is a number.
func (h *CatalogHandler) HandleSessions(ctx *gin.Context) {
	var (
		sessions []model.Session
		err      error
	)
	if movieID, convErr := strconv.Atoi(ctx.Query("movieId")); convErr == nil {
		sessions, err = h.app.ShowtimeService.GetShowtimesByMovieID(ctx.Request.Context(), movieID)
	} else {
		sessions, err = h.app.ShowtimeService.GetAllShowtimes(ctx.Request.Context())
	}
	if err != nil {
		writeError(ctx, h.app.Logger, err)
		return
	}

	ctx.JSON(http.StatusOK, sessions)
}
