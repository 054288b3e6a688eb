package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"adoptchat/internal/entity"
	"adoptchat/internal/usecase"
)

type AuthHandler struct {
	authUc usecase.AuthUsecase
	log    *slog.Logger
}

func NewAuthHandler(authUc usecase.AuthUsecase, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUc: authUc,
		log:    log,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entity.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: describe(err)})
		return
	}

	authResponse, err := h.authUc.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrEmailAlreadyTaken) {
			writeJSON(w, http.StatusConflict, Response{Message: "email already taken"})
			return
		}
		h.log.Error("Register failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, Response{Message: "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, Response{Message: "registration successful", Data: authResponse})
}

// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entity.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: describe(err)})
		return
	}

	authResponse, err := h.authUc.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, Response{Message: "invalid email or password"})
			return
		}
		h.log.Error("Login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, Response{Message: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "login successful", Data: authResponse})
}
