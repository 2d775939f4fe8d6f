package notification

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"bookreview/internal/domain"
	"bookreview/internal/pkg/jwt"
	"bookreview/internal/pkg/response"
)

const (
	pingPeriod = 30 * time.Second
	pongWait   = 60 * time.Second
)

type tokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type userLoader interface {
	GetByID(ctx context.Context, id int64, preloads ...string) (*domain.User, error)
}

type Handler struct {
	hub      *Hub
	tokens   tokenValidator
	users    userLoader
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler builds the websocket endpoint. checkOrigin may be nil to accept any origin.
func NewHandler(hub *Hub, tokens tokenValidator, users userLoader, log *zap.Logger, checkOrigin func(*http.Request) bool) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		hub:    hub,
		tokens: tokens,
		users:  users,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *Handler) RegisterRoutes(ws *gin.RouterGroup) {
	ws.GET("/notifications", h.Connect)
}

// Connect
// @Summary		Notification stream
// @Description	Upgrades to a websocket and pushes review.created and favorite.created events. Browsers cannot set headers, so the access token goes in the query string.
// @Tags		Notifications
// @Param		token	query	string	true	"access token"
// @Success		101	"Switching Protocols"
// @Failure		401	{object}	map[string]interface{}
// @Router		/ws/notifications [get]
func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Unauthorized(c, "NOT_AUTHENTICATED", "Token is required. Use ?token=<access token>")
		return
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		code := "INVALID_TOKEN"
		if errors.Is(err, jwt.ErrExpiredToken) {
			code = "TOKEN_EXPIRED"
		}
		response.Unauthorized(c, code, "Given token not valid for any token type")
		return
	}

	u, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil || !u.IsActive {
		response.Unauthorized(c, "INVALID_TOKEN", "User not found or inactive")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := h.hub.Register(u.ID, conn)
	h.log.Debug("notification stream connected", zap.Int64("user_id", u.ID))
	defer func() {
		h.hub.Unregister(u.ID, cl)
		h.log.Debug("notification stream closed", zap.Int64("user_id", u.ID))
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.readLoop(conn, u.ID)
}

// readLoop drains client frames; the stream is push-only.
func (h *Handler) readLoop(conn *websocket.Conn, userID int64) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Info("notification stream error", zap.Int64("user_id", userID), zap.Error(err))
			}
			return
		}
	}
}
