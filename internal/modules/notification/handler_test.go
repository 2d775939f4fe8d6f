package notification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview/internal/domain"
	"bookreview/internal/pkg/jwt"
	"bookreview/internal/pkg/logger"
)

type stubUsers map[int64]*domain.User

func (s stubUsers) GetByID(_ context.Context, id int64, _ ...string) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func newServer(t *testing.T) (*httptest.Server, *Hub, *jwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	tokens := jwt.New("test-secret", time.Hour)
	users := stubUsers{7: {ID: 7, Username: "author", Role: domain.RoleAuthor, IsActive: true}}

	r := gin.New()
	NewHandler(hub, tokens, users, logger.Nop(), nil).RegisterRoutes(r.Group("/api/ws"))

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return srv, hub, tokens
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/notifications?token=" + token
}

func TestConnect_PushesEvents(t *testing.T) {
	srv, hub, tokens := newServer(t)
	token, err := tokens.GenerateToken(7, string(domain.RoleAuthor))
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.IsOnline(7) }, time.Second, 10*time.Millisecond)
	assert.True(t, hub.Notify(7, TypeReviewCreated, map[string]any{"review": 1}))

	var ev map[string]any
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, TypeReviewCreated, ev["type"])
	assert.Equal(t, float64(1), ev["data"].(map[string]any)["review"])
	assert.NotEmpty(t, ev["created_at"])
}

func TestConnect_RejectsMissingOrBadToken(t *testing.T) {
	srv, _, _ := newServer(t)

	for _, token := range []string{"", "garbage"} {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestNotify_OfflineUser(t *testing.T) {
	hub := NewHub()
	assert.False(t, hub.Notify(42, TypeFavoriteCreated, nil))
	assert.Equal(t, 0, hub.OnlineCount())
}

func TestRegister_ReplacesPreviousConnection(t *testing.T) {
	srv, hub, tokens := newServer(t)
	token, err := tokens.GenerateToken(7, string(domain.RoleAuthor))
	require.NoError(t, err)

	first, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	defer first.Close()
	require.Eventually(t, func() bool { return hub.IsOnline(7) }, time.Second, 10*time.Millisecond)

	second, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	defer second.Close()

	// the first connection is closed by the server
	require.NoError(t, first.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = first.ReadMessage()
	assert.Error(t, err)

	assert.Equal(t, 1, hub.OnlineCount())
	assert.True(t, hub.Notify(7, TypeFavoriteCreated, nil))

	var ev Event
	require.NoError(t, second.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, second.ReadJSON(&ev))
	assert.Equal(t, TypeFavoriteCreated, ev.Type)
}

// serverConn returns the server side of a fresh websocket connection.
func serverConn(t *testing.T) *websocket.Conn {
	t.Helper()
	conns := make(chan *websocket.Conn, 1)
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case conn := <-conns:
		return conn
	case <-time.After(time.Second):
		t.Fatal("no server connection")
		return nil
	}
}

func TestNotify_DoesNotWaitForSlowClient(t *testing.T) {
	hub := NewHub()
	// no writer is running, so nothing drains the queue
	c := newClient(serverConn(t), 1)
	hub.clients[7] = c

	start := time.Now()
	assert.True(t, hub.Notify(7, TypeReviewCreated, nil))
	assert.False(t, hub.Notify(7, TypeReviewCreated, nil))
	assert.Less(t, time.Since(start), time.Second)

	// a client that falls behind is dropped
	assert.False(t, hub.IsOnline(7))
	select {
	case <-c.done:
	default:
		t.Fatal("client not closed")
	}
	assert.False(t, hub.Notify(7, TypeReviewCreated, nil))
}

func TestUnregister_IgnoresStaleClient(t *testing.T) {
	hub := NewHub()
	first := hub.Register(7, serverConn(t))
	second := hub.Register(7, serverConn(t))

	hub.Unregister(7, first)
	assert.True(t, hub.IsOnline(7))

	hub.Unregister(7, second)
	assert.False(t, hub.IsOnline(7))
}
