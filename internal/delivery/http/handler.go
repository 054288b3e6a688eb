package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"adoptchat/internal/entity"
	"adoptchat/internal/repository"
	"adoptchat/internal/usecase"

	"github.com/go-chi/chi/v5"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HttpHandler struct {
	messageUc usecase.MessageUsecase
	fanout    usecase.DeliveryFanout
	userUc    usecase.UserUsecase
	pinger    Pinger
	log       *slog.Logger
}

// NewHttpHandler wires the chat endpoints. pinger may be nil when there is no
// external store to check.
func NewHttpHandler(messageUc usecase.MessageUsecase, fanout usecase.DeliveryFanout, userUc usecase.UserUsecase, pinger Pinger, log *slog.Logger) *HttpHandler {
	return &HttpHandler{
		messageUc: messageUc,
		fanout:    fanout,
		userUc:    userUc,
		pinger:    pinger,
		log:       log,
	}
}

type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// writeError maps usecase and storage errors onto status codes. Only server
// faults are logged.
func writeError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	var notFound *usecase.NotFoundError
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, Response{Message: notFound.Error()})
	case errors.Is(err, repository.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, Response{Message: "user not found"})
	default:
		log.Error(op+" failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, Response{Message: "internal server error"})
	}
}

// Method Post /chat/messages
func (h *HttpHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
		return
	}

	var req entity.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: describe(err)})
		return
	}

	view, err := h.messageUc.SendMessage(r.Context(), claims.UserId, req.ReceiverId, req.Content)
	if err != nil {
		writeError(w, h.log, "Send message", err)
		return
	}

	h.fanout.Deliver(r.Context(), view)

	writeJSON(w, http.StatusCreated, Response{Message: "success", Data: view})
}

// Method Get /chat/conversation?user1=&user2=
func (h *HttpHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	user1, err1 := parseId(r.URL.Query().Get("user1"))
	user2, err2 := parseId(r.URL.Query().Get("user2"))
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "user1 and user2 must be positive integers"})
		return
	}

	messages, err := h.messageUc.GetConversation(r.Context(), user1, user2)
	if err != nil {
		writeError(w, h.log, "Get conversation", err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success", Data: messages})
}

// Method Get /chat/inbox
func (h *HttpHandler) GetInbox(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
		return
	}

	inbox, err := h.messageUc.GetInbox(r.Context(), claims.UserId)
	if err != nil {
		writeError(w, h.log, "Get inbox", err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success", Data: inbox})
}

// Method Get /user/{id}
func (h *HttpHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userId, err := parseId(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid user id"})
		return
	}

	user, err := h.userUc.Resolve(r.Context(), userId)
	if err != nil {
		writeError(w, h.log, "Get user", err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success", Data: user})
}

// Method Get /healthz
func (h *HttpHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.log.Warn("Health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, Response{Message: "storage unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, Response{Message: "ok"})
}

func parseId(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("id must be positive")
	}
	return id, nil
}
