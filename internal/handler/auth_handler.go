package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs-lzh/cinema-booking/internal/app"
)

type AuthHandler struct {
	app *app.App
}

func NewAuthHandler(app *app.App) *AuthHandler {
	return &AuthHandler{
		app: app,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) HandleRegister(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBadRequest(ctx, "Invalid JSON")
		return
	}

	user, err := h.app.CredentialService.Register(ctx.Request.Context(), req.Username, req.FullName, req.Password)
	if err != nil {
		writeError(ctx, h.app.Logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBadRequest(ctx, "Invalid JSON")
		return
	}

	user, err := h.app.CredentialService.Verify(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(ctx, h.app.Logger, err)
		return
	}

	token, err := h.app.TokenService.Issue(ctx.Request.Context(), user.ID)
	if err != nil {
		writeError(ctx, h.app.Logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user.Public(),
	})
}

func (h *AuthHandler) HandleMe(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"user": currentUser(ctx).Public()})
}

// HandleLogout always answers ok, even for a missing or unknown token.
func (h *AuthHandler) HandleLogout(ctx *gin.Context) {
	if token := bearerToken(ctx); token != "" {
		if err := h.app.TokenService.Revoke(ctx.Request.Context(), token); err != nil {
			h.app.Logger.Error("Failed to revoke token",
				zap.String("request_id", requestID(ctx)),
				zap.Error(err),
			)
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
