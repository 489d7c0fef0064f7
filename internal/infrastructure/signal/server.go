package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"telecare/internal/core/domain"
	"telecare/internal/infrastructure/events"
	"telecare/internal/infrastructure/monitoring"
	"telecare/pkg/config"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Server accepts WebSocket connections, routes their frames, and guarantees
// that a connection's room membership dies with the connection. All relay
// state is in memory; a restart drops every call and clients reconnect and
// re-join.
type Server struct {
	cfg      *config.Config
	logger   *zap.SugaredLogger
	registry *Registry
	metrics  *monitoring.PrometheusCollector
	events   events.Publisher
	upgrader websocket.Upgrader

	connections atomic.Int64
	httpServer  *http.Server
}

func NewServer(cfg *config.Config, logger *zap.SugaredLogger, metrics *monitoring.PrometheusCollector, publisher events.Publisher) *Server {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		registry: NewRegistry(logger, metrics),
		metrics:  metrics,
		events:   publisher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The relay trusts whatever roomId/userId it is given, so there
			// is nothing origin checks would protect here.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	if cfg.Monitoring.PrometheusEnabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.HandleFunc("/", s.HandleWebSocket)

	s.httpServer = &http.Server{
		Addr:    cfg.Signal.Address,
		Handler: mux,
	}
	return s
}

// Registry exposes the room table, mainly for tests and health reporting.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Run serves until ctx is cancelled, then shuts down gracefully. A failure
// to bind the listen address is returned to the caller and is fatal; nothing
// after a successful bind terminates the process.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("signaling server listening", "address", s.cfg.Signal.Address)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Signal.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// HandleWebSocket upgrades the request and runs the connection until the
// transport closes. Room cleanup happens here, synchronously, before the
// handle is released: a connection that never joined skips it entirely.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	var limiter *rate.Limiter
	if s.cfg.RateLimiting.Enabled {
		limiter = rate.NewLimiter(
			rate.Limit(s.cfg.RateLimiting.WebSocket.MessagesPerSecond),
			s.cfg.RateLimiting.WebSocket.Burst,
		)
	}

	client := newClient(uuid.New().String(), conn, s.logger, clientOptions{
		writeTimeout: s.cfg.Signal.WriteTimeout,
		pingInterval: s.cfg.Signal.PingInterval,
		pongTimeout:  s.cfg.Signal.PongTimeout,
		maxFrameSize: s.cfg.Signal.MaxMessageSizeBytes,
		queueSize:    s.cfg.Signal.SendQueueSize,
		limiter:      limiter,
	})

	s.metrics.RecordConnectionOpened()
	s.connections.Add(1)
	s.logger.Infow("client connected", "client_id", client.ID, "remote_addr", r.RemoteAddr)

	go client.writePump()
	client.readPump(s.handleFrame, func() {
		s.metrics.RecordMessageDropped("rate_limited")
	})

	client.Close()
	s.cleanupClient(client)
	s.connections.Add(-1)
	s.metrics.RecordConnectionClosed()
	s.logger.Infow("client disconnected", "client_id", client.ID, "remote_addr", r.RemoteAddr)
}

func (s *Server) cleanupClient(client *Client) {
	roomID, userID, bound := client.Binding()
	if !bound {
		return
	}

	room, ok := s.registry.Get(roomID)
	if !ok {
		return
	}

	// A reconnect may have superseded this handle; Remove only evicts the
	// seat if this connection still holds it.
	removed, empty := room.Remove(userID, client)
	if !removed {
		return
	}

	if empty {
		s.registry.DeleteIfEmpty(roomID)
		s.events.Publish(&events.Event{Type: events.EventRoomDeleted, RoomID: roomID})
	}
	s.events.Publish(&events.Event{Type: events.EventUserDisconnected, RoomID: roomID, UserID: userID})
	s.logger.Infow("user left room", "room_id", roomID, "user_id", userID)
}

// handleFrame dispatches one inbound frame. Malformed input is reported to
// the sender and never closes the connection.
func (s *Server) handleFrame(client *Client, data []byte) {
	s.metrics.RecordMessageSize(len(data))

	env, err := ParseEnvelope(data)
	if err != nil {
		s.metrics.RecordProtocolError()
		client.Send(errorMessage(MsgInvalidJSON))
		return
	}

	switch env.Type {
	case TypeJoin:
		s.handleJoin(client, env)
	case TypeOffer, TypeAnswer, TypeCandidate:
		s.handleForward(client, env)
	case TypeKeepalive:
		client.Send(keepaliveAckMessage())
	default:
		s.metrics.RecordProtocolError()
		client.Send(errorMessage(MsgInvalidType))
	}
}

func (s *Server) handleJoin(client *Client, env *Envelope) {
	if env.RoomID == "" || env.UserID == "" {
		s.metrics.RecordProtocolError()
		client.Send(errorMessage(MsgMissingRoomIDs))
		return
	}

	if _, _, bound := client.Binding(); bound {
		client.Send(errorMessage(MsgAlreadyInRoom))
		return
	}

	roomID := domain.RoomID(env.RoomID)
	userID := domain.UserID(env.UserID)

	// A room can be deleted between GetOrCreate and Add when its last member
	// disconnects concurrently; the tombstoned room rejects the add and we
	// start over with a fresh one.
	var roomCreated bool
	for {
		room, created := s.registry.GetOrCreate(roomID)
		err := room.Add(client, userID)
		if errors.Is(err, domain.ErrRoomClosed) {
			continue
		}
		if errors.Is(err, domain.ErrRoomFull) {
			s.metrics.RecordJoinRejected()
			client.Send(errorMessage(MsgRoomFull))
			s.logger.Infow("join rejected, room full", "room_id", roomID, "user_id", userID)
			return
		}
		roomCreated = created
		break
	}

	client.Bind(roomID, userID)
	s.metrics.RecordJoinAccepted()
	if roomCreated {
		s.events.Publish(&events.Event{Type: events.EventRoomCreated, RoomID: roomID})
	}
	s.events.Publish(&events.Event{Type: events.EventUserJoined, RoomID: roomID, UserID: userID})
	s.logger.Infow("user joined room", "room_id", roomID, "user_id", userID)
}

func (s *Server) handleForward(client *Client, env *Envelope) {
	roomID, userID, bound := client.Binding()
	if !bound {
		client.Send(errorMessage(MsgNotInRoom))
		return
	}

	// The bound room wins over whatever roomId the frame claims; a sender
	// cannot route into a room it never joined.
	room, ok := s.registry.Get(roomID)
	if !ok {
		s.metrics.RecordMessageDropped("room_not_found")
		return
	}

	room.Forward(userID, env)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now(),
		"rooms":       s.registry.Count(),
		"connections": s.connections.Load(),
	})
}
