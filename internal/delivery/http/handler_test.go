package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	wsDelivery "adoptchat/internal/delivery/websocket"
	"adoptchat/internal/entity"
	"adoptchat/internal/mocks"
	"adoptchat/internal/repository"
	"adoptchat/internal/usecase"
	"adoptchat/pkg/jwt"

	"github.com/go-chi/chi/v5"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type routerFixture struct {
	router    chi.Router
	messageUc *mocks.MockMessageUsecase
	userUc    *mocks.MockUserUsecase
	fanout    *mocks.MockDeliveryFanout
	authUc    usecase.AuthUsecase
	token     string
}

func newRouterFixture(t *testing.T, pinger Pinger) routerFixture {
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	messageUc := mocks.NewMockMessageUsecase(ctrl)
	userUc := mocks.NewMockUserUsecase(ctrl)
	fanout := mocks.NewMockDeliveryFanout(ctrl)
	authUc := usecase.NewAuthUsecase(repository.NewMemoryUserRepository(), jwt.NewJWTManager("http-secret", time.Hour))

	registered, err := authUc.Register(context.Background(), entity.RegisterRequest{
		Email:    "alice@example.com",
		Password: "password1",
		Name:     "Alice",
	})
	require.NoError(t, err)

	router := chi.NewRouter()
	MapHttpRoutes(router,
		NewHttpHandler(messageUc, fanout, userUc, pinger, log),
		wsDelivery.NewWebsocketHandler(mocks.NewMockIHub(ctrl), authUc, messageUc, fanout, nil, log),
		NewAuthHandler(authUc, log),
		NewAuthMiddleware(authUc),
	)

	return routerFixture{
		router:    router,
		messageUc: messageUc,
		userUc:    userUc,
		fanout:    fanout,
		authUc:    authUc,
		token:     registered.AccessToken,
	}
}

func (f routerFixture) do(method, target, body string, authenticated bool) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		r.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)
	return w
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHttpHandler_SendMessage(t *testing.T) {
	view := entity.MessageView{
		Id:           3,
		SenderId:     1,
		SenderName:   "Alice",
		ReceiverId:   2,
		ReceiverName: "Bob",
		Content:      "When can I meet Luna?",
		Timestamp:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	t.Run("should persist, fan out and return the view", func(t *testing.T) {
		req := require.New(t)
		f := newRouterFixture(t, nil)
		gomock.InOrder(
			f.messageUc.EXPECT().SendMessage(gomock.Any(), int64(1), int64(2), "When can I meet Luna?").Return(view, nil),
			f.fanout.EXPECT().Deliver(gomock.Any(), view).Times(1),
		)

		w := f.do(http.MethodPost, "/chat/messages", `{"receiverId":2,"content":"When can I meet Luna?"}`, true)

		req.Equal(http.StatusCreated, w.Code)
		var got entity.MessageView
		req.NoError(json.Unmarshal(decode(t, w).Data, &got))
		req.Equal(view, got)
	})

	t.Run("should answer 404 for an unknown receiver", func(t *testing.T) {
		req := require.New(t)
		f := newRouterFixture(t, nil)
		f.messageUc.EXPECT().SendMessage(gomock.Any(), int64(1), int64(99), "hi").
			Return(entity.MessageView{}, &usecase.NotFoundError{Entity: "receiver", Id: 99})
		f.fanout.EXPECT().Deliver(gomock.Any(), gomock.Any()).Times(0)

		w := f.do(http.MethodPost, "/chat/messages", `{"receiverId":99,"content":"hi"}`, true)

		req.Equal(http.StatusNotFound, w.Code)
		req.Equal("receiver 99 not found", decode(t, w).Message)
	})

	t.Run("should answer 500 for storage failures", func(t *testing.T) {
		req := require.New(t)
		f := newRouterFixture(t, nil)
		f.messageUc.EXPECT().SendMessage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(entity.MessageView{}, &repository.StorageError{Op: "insert message", Err: errors.New("no primary")})

		w := f.do(http.MethodPost, "/chat/messages", `{"receiverId":2,"content":"hi"}`, true)

		req.Equal(http.StatusInternalServerError, w.Code)
		req.Equal("internal server error", decode(t, w).Message)
	})

	t.Run("should answer 400 for invalid requests", func(t *testing.T) {
		f := newRouterFixture(t, nil)
		f.messageUc.EXPECT().SendMessage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		for _, body := range []string{`{"receiverId":2}`, `{"content":"hi"}`, `{"receiverId":-1,"content":"hi"}`, `not json`} {
			w := f.do(http.MethodPost, "/chat/messages", body, true)
			require.Equal(t, http.StatusBadRequest, w.Code, body)
		}
	})

	t.Run("should answer 401 without a token", func(t *testing.T) {
		req := require.New(t)
		f := newRouterFixture(t, nil)

		w := f.do(http.MethodPost, "/chat/messages", `{"receiverId":2,"content":"hi"}`, false)

		req.Equal(http.StatusUnauthorized, w.Code)
	})
}

func TestHttpHandler_GetConversation(t *testing.T) {
	t.Run("should return the history", func(t *testing.T) {
		req := require.New(t)
		f := newRouterFixture(t, nil)
		history := []entity.MessageView{{Id: 1, SenderId: 2, ReceiverId: 1, Content: "hello"}}
		f.messageUc.EXPECT().GetConversation(gomock.Any(), int64(1), int64(2)).Return(history, nil)

		w := f.do(http.MethodGet, "/chat/conversation?user1=1&user2=2", "", true)

		req.Equal(http.StatusOK, w.Code)
		var got []entity.MessageView
		req.NoError(json.Unmarshal(decode(t, w).Data, &got))
		req.Equal(history, got)
	})

	t.Run("should return an empty array rather than null", func(t *testing.T) {
		req := require.New(t)
		f := newRouterFixture(t, nil)
		f.messageUc.EXPECT().GetConversation(gomock.Any(), int64(1), int64(5)).Return([]entity.MessageView{}, nil)

		w := f.do(http.MethodGet, "/chat/conversation?user1=1&user2=5", "", true)

		req.Equal(http.StatusOK, w.Code)
		req.JSONEq(`[]`, string(decode(t, w).Data))
	})

	t.Run("should reject missing or invalid ids", func(t *testing.T) {
		f := newRouterFixture(t, nil)
		f.messageUc.EXPECT().GetConversation(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		for _, query := range []string{"", "?user1=1", "?user1=a&user2=2", "?user1=0&user2=2"} {
			w := f.do(http.MethodGet, "/chat/conversation"+query, "", true)
			require.Equal(t, http.StatusBadRequest, w.Code, query)
		}
	})
}

func TestHttpHandler_GetInbox(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t, nil)
	inbox := []entity.InboxEntry{{CounterpartId: 2, CounterpartName: "Bob", LastMessage: "See you", LastMessageAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}}
	f.messageUc.EXPECT().GetInbox(gomock.Any(), int64(1)).Return(inbox, nil)

	w := f.do(http.MethodGet, "/chat/inbox", "", true)

	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`[{"counterpartId":2,"counterpartName":"Bob","lastMessage":"See you","lastMessageAt":"2026-03-01T10:00:00Z"}]`, string(decode(t, w).Data))
}

func TestHttpHandler_GetUser(t *testing.T) {
	t.Run("should return the snapshot", func(t *testing.T) {
		req := require.New(t)
		f := newRouterFixture(t, nil)
		f.userUc.EXPECT().Resolve(gomock.Any(), int64(2)).Return(entity.UserSnapshot{Id: 2, DisplayName: "Bob"}, nil)

		w := f.do(http.MethodGet, "/user/2", "", true)

		req.Equal(http.StatusOK, w.Code)
		req.JSONEq(`{"id":2,"displayName":"Bob"}`, string(decode(t, w).Data))
	})

	t.Run("should answer 404 for an unknown user", func(t *testing.T) {
		req := require.New(t)
		f := newRouterFixture(t, nil)
		f.userUc.EXPECT().Resolve(gomock.Any(), int64(8)).Return(entity.UserSnapshot{}, repository.ErrUserNotFound)

		w := f.do(http.MethodGet, "/user/8", "", true)

		req.Equal(http.StatusNotFound, w.Code)
	})

	t.Run("should answer 400 for a malformed id", func(t *testing.T) {
		req := require.New(t)
		f := newRouterFixture(t, nil)

		w := f.do(http.MethodGet, "/user/bob", "", true)

		req.Equal(http.StatusBadRequest, w.Code)
	})
}

func TestHttpHandler_Healthz(t *testing.T) {
	t.Run("should be healthy without a store", func(t *testing.T) {
		req := require.New(t)
		f := newRouterFixture(t, nil)

		w := f.do(http.MethodGet, "/healthz", "", false)

		req.Equal(http.StatusOK, w.Code)
	})

	t.Run("should report an unreachable store", func(t *testing.T) {
		req := require.New(t)
		f := newRouterFixture(t, pingFunc(func(context.Context) error { return errors.New("no primary") }))

		w := f.do(http.MethodGet, "/healthz", "", false)

		req.Equal(http.StatusServiceUnavailable, w.Code)
	})
}
