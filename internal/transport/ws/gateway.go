package ws

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/praytyushpande/crewlyx/internal/domain/model"
	authsvc "github.com/praytyushpande/crewlyx/internal/services/auth"
	"github.com/praytyushpande/crewlyx/internal/services/notify"
)

// TokenValidator authenticates the token a client presents when opening a
// socket.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, accessToken string) (authsvc.AccessClaims, error)
}

// MatchAuthorizer decides whether a user may listen on a match channel.
type MatchAuthorizer interface {
	Get(ctx context.Context, matchID, requesterID int64) (model.Match, error)
}

// Subscriber opens broker subscriptions for connected clients.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) (*goredis.PubSub, error)
}

// Gateway upgrades authenticated HTTP requests to websocket connections and
// relays realtime events from the broker to each client. Every connection is
// subscribed to its user channel; clients opt into match channels with
// join-match commands.
type Gateway struct {
	auth       TokenValidator
	matches    MatchAuthorizer
	subscriber Subscriber
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

func NewGateway(auth TokenValidator, matches MatchAuthorizer, subscriber Subscriber, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		auth:       auth,
		matches:    matches,
		subscriber: subscriber,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (g *Gateway) Handle(w http.ResponseWriter, r *http.Request) {
	if g.auth == nil || g.subscriber == nil {
		http.Error(w, "realtime gateway is unavailable", http.StatusInternalServerError)
		return
	}

	token := bearerToken(r)
	if token == "" {
		http.Error(w, "token required", http.StatusUnauthorized)
		return
	}

	claims, err := g.auth.ValidateAccessToken(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	sub, err := g.subscriber.Subscribe(context.Background(), notify.UserChannel(claims.UserID))
	if err != nil {
		g.logger.Error("subscribe user channel", zap.Int64("user_id", claims.UserID), zap.Error(err))
		http.Error(w, "realtime gateway is unavailable", http.StatusInternalServerError)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		_ = sub.Close()
		g.logger.Warn("websocket upgrade", zap.Int64("user_id", claims.UserID), zap.Error(err))
		return
	}

	client := newClient(conn, sub, g.matches, claims.UserID, g.logger)
	go client.writePump()
	go client.relayPump()
	go client.readPump()
}

// bearerToken pulls the access token from the token query parameter, falling
// back to the Authorization header for non-browser clients.
func bearerToken(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
