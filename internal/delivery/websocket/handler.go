package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"adoptchat/infrastructure/ws"
	"adoptchat/internal/entity"
	"adoptchat/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var (
	errUnknownFrame     = errors.New("unknown frame type")
	errMalformedFrame   = errors.New("malformed frame")
	errForbiddenTopic   = errors.New("destination not allowed")
	errInvalidSend      = errors.New("receiverId and content are required")
	errInvalidTopicName = errors.New("invalid destination")
)

type WebsocketHandler struct {
	hub       ws.IHub
	authUc    usecase.AuthUsecase
	messageUc usecase.MessageUsecase
	fanout    usecase.DeliveryFanout
	upgrader  websocket.Upgrader
	log       *slog.Logger
}

func NewWebsocketHandler(hub ws.IHub, authUc usecase.AuthUsecase, messageUc usecase.MessageUsecase, fanout usecase.DeliveryFanout, allowedOrigins []string, log *slog.Logger) *WebsocketHandler {
	return &WebsocketHandler{
		hub:       hub,
		authUc:    authUc,
		messageUc: messageUc,
		fanout:    fanout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Non-browser clients send no Origin.
				origin := r.Header.Get("Origin")
				return origin == "" || lo.Contains(allowedOrigins, origin)
			},
		},
		log: log,
	}
}

// HandleWebSocket upgrades an authenticated request to a live session. The
// session is subscribed to its user's private queue until it disconnects.
func (h *WebsocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	claims, err := h.authUc.ValidateAccessToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		h.log.Debug("Upgrade failed", "user", claims.UserId, "error", err)
		return
	}

	client := ws.NewClient(claims.UserId, h.hub, conn, h.log)
	h.hub.RegisterClient(client)

	ctx := r.Context()
	go client.WritePump()
	client.ReadPump(func(data []byte) {
		h.handleFrame(ctx, client, data)
	})
}

func (h *WebsocketHandler) handleFrame(ctx context.Context, client *ws.Client, data []byte) {
	var frame IncomingFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		h.reject(client, errMalformedFrame)
		return
	}

	var err error
	switch frame.Type {
	case FrameSend:
		err = h.send(ctx, client, frame)
	case FrameSubscribe:
		err = h.subscribe(client, frame.Destination)
	case FrameUnsubscribe:
		h.hub.Unsubscribe(client, frame.Destination)
	default:
		err = errUnknownFrame
	}
	if err != nil {
		h.reject(client, err)
	}
}

// send persists a message from the session's own user and delivers it live.
func (h *WebsocketHandler) send(ctx context.Context, client *ws.Client, frame IncomingFrame) error {
	req := entity.SendMessageRequest{ReceiverId: frame.ReceiverId, Content: frame.Content}
	if err := validate.Struct(req); err != nil {
		return errInvalidSend
	}

	view, err := h.messageUc.SendMessage(ctx, client.UserId, req.ReceiverId, req.Content)
	if err != nil {
		if usecase.IsNotFound(err) {
			return err
		}
		h.log.Error("Send message failed", "user", client.UserId, "error", err)
		return errors.New("message could not be sent")
	}

	h.fanout.Deliver(ctx, view)
	return nil
}

// subscribe admits a session to its own private queue and to the topics of
// conversations its user takes part in.
func (h *WebsocketHandler) subscribe(client *ws.Client, destination string) error {
	if err := validate.Struct(subscriptionRequest{Destination: destination}); err != nil {
		return errInvalidTopicName
	}

	if owner, ok := entity.IsUserDestination(destination); ok {
		if owner != client.UserId {
			return errForbiddenTopic
		}
	} else {
		a, b, ok := entity.ParseConversationDestination(destination)
		if !ok {
			return errInvalidTopicName
		}
		if a != client.UserId && b != client.UserId {
			return errForbiddenTopic
		}
	}

	h.hub.Subscribe(client, destination)
	return nil
}

func (h *WebsocketHandler) reject(client *ws.Client, reason error) {
	frame, err := json.Marshal(ErrorFrame{Type: FrameError, Error: reason.Error()})
	if err != nil {
		return
	}
	if !h.hub.SendToClient(client, frame) {
		h.log.Debug("Error frame dropped", "user", client.UserId, "session", client.Id)
	}
}
