package http

import (
	"net/http"

	wsDelivery "adoptchat/internal/delivery/websocket"

	"github.com/go-chi/chi/v5"
)

func MapHttpRoutes(r chi.Router, httpHandler *HttpHandler, websocketHandler *wsDelivery.WebsocketHandler, authHandler *AuthHandler, authMiddleware *AuthMiddleware) {
	r.Get("/healthz", httpHandler.Healthz)

	// Authenticated through the token query parameter
	r.Handle("/ws", http.HandlerFunc(websocketHandler.HandleWebSocket))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Route("/chat", func(r chi.Router) {
			r.Post("/messages", httpHandler.SendMessage)
			r.Get("/conversation", httpHandler.GetConversation)
			r.Get("/inbox", httpHandler.GetInbox)
		})

		r.Get("/user/{id}", httpHandler.GetUser)
	})
}
