package handler

import (
	"errors"
	"net/http"

	"github.com/ktsuchiya/blockmarket-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type RequestCodeBody struct {
	PlayerName string `json:"playerName"`
}

type VerifyCodeBody struct {
	PlayerName string `json:"playerName"`
	Code       string `json:"code"`
}

type SessionResponse struct {
	Token      string `json:"token"`
	UID        string `json:"uid"`
	PlayerName string `json:"playerName"`
}

func (h *AuthHandler) RequestCode(c echo.Context) error {
	var body RequestCodeBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.RequestCode(c.Request().Context(), body.PlayerName); err != nil {
		switch {
		case errors.Is(err, service.ErrPlayerOffline):
			// The code is whispered in-game, so the player has to be online.
			return c.JSON(http.StatusConflict, NewErrorResponse("player_offline", "join the server first, then request a code"))
		case errors.Is(err, service.ErrNoConsole):
			return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("console_unavailable", "game server console is unreachable"))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "code_sent"})
}

func (h *AuthHandler) VerifyCode(c echo.Context) error {
	var body VerifyCodeBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	token, user, err := h.svc.VerifyCode(c.Request().Context(), body.PlayerName, body.Code)
	if err != nil {
		if errors.Is(err, service.ErrBadCode) {
			return c.JSON(http.StatusUnauthorized, NewErrorResponse("bad_code", "invalid or expired code"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusOK, SessionResponse{
		Token:      token,
		UID:        user.UID,
		PlayerName: user.PlayerName,
	})
}
