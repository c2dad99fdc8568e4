package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// CompletionStreamer is the slice of the completion provider the session
// handler depends on: prompt in, lazy fragment stream out.
type CompletionStreamer interface {
	StreamChat(ctx context.Context, prompt string) (*schema.StreamReader[*schema.Message], error)
}

// IdentityLookup resolves an authenticated username to a stored account.
type IdentityLookup interface {
	Exists(ctx context.Context, username string) bool
}

// promptRequest is the inbound message envelope.
type promptRequest struct {
	Prompt     string `json:"prompt"`
	TemplateID string `json:"templateId"`
}

// event is the outbound message envelope, tagged by Type.
type event struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	User      string `json:"user,omitempty"`
	Content   string `json:"content,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Session owns one authenticated websocket connection.
type Session struct {
	ID          string
	User        string
	ConnectedAt time.Time

	conn     *websocket.Conn
	cancel   context.CancelFunc
	writeMu  sync.Mutex
	inFlight atomic.Bool
	log      zerolog.Logger
}

// Handler upgrades, authenticates, and serves AI-chat websocket connections.
type Handler struct {
	gate       *Gate
	registry   *Registry
	provider   CompletionStreamer
	identities IdentityLookup
	upgrader   websocket.Upgrader
	log        zerolog.Logger
}

// NewHandler wires the websocket chat handler.
func NewHandler(gate *Gate, registry *Registry, provider CompletionStreamer, identities IdentityLookup, log zerolog.Logger) *Handler {
	return &Handler{
		gate:       gate,
		registry:   registry,
		provider:   provider,
		identities: identities,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log.With().Str("component", "ws-handler").Logger(),
	}
}

// ServeHTTP admits, upgrades, and runs the connection's read loop until close.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, _, err := h.gate.Admit(r)
	if err != nil {
		reason := "invalid token"
		if errors.Is(err, ErrMissingToken) {
			reason = "missing token"
		}
		h.log.Warn().Str("reason", reason).Str("remote", r.RemoteAddr).Msg("websocket handshake refused")
		http.Error(w, "authentication required", http.StatusForbidden)
		return
	}

	if !h.identities.Exists(r.Context(), identity) {
		h.log.Warn().Str("user", identity).Msg("websocket handshake refused: unknown identity")
		http.Error(w, "authentication required", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.serve(r.Context(), conn, identity)
}

func (h *Handler) serve(parent context.Context, conn *websocket.Conn, identity string) {
	ctx, cancel := context.WithCancel(parent)

	session := &Session{
		ID:          uuid.NewString(),
		User:        identity,
		ConnectedAt: time.Now().UTC(),
		conn:        conn,
		cancel:      cancel,
		log:         h.log.With().Str("user", identity).Logger(),
	}

	defer func() {
		cancel()
		h.registry.Unregister(identity, session)
		conn.Close()
		session.log.Info().Msg("websocket connection closed")
	}()

	// Admission context must be present by now; a blank identity means the
	// gate was bypassed somehow, so close without emitting anything.
	if identity == "" {
		session.closeWithServerError()
		return
	}

	if displaced := h.registry.Register(identity, session); displaced != nil {
		displaced.log.Info().Msg("session displaced by newer connection")
		displaced.closeWithServerError()
	}

	if err := session.send(event{
		Type:    "connected",
		Message: "Welcome " + identity + "! AI Chat is ready.",
		User:    identity,
	}); err != nil {
		return
	}

	session.log.Info().Msg("authenticated websocket connection established")

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go session.pingLoop(ctx)

	h.readLoop(ctx, session)
}

func (h *Handler) readLoop(ctx context.Context, s *Session) {
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		s.conn.SetReadDeadline(time.Now().Add(readTimeout))

		var req promptRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			s.sendError("invalid request: " + err.Error())
			continue
		}
		if req.Prompt == "" {
			s.sendError("prompt is required")
			continue
		}

		// One in-flight request per connection.
		if !s.inFlight.CompareAndSwap(false, true) {
			s.sendError("request already in progress")
			continue
		}

		s.log.Info().Str("template", req.TemplateID).Int("prompt_len", len(req.Prompt)).Msg("processing prompt")
		go h.streamResponse(ctx, s, req.Prompt)
	}
}

// streamResponse relays provider fragments for one request: processing, then
// chunks in provider order, then exactly one terminal complete or error
// event. A provider failure ends the request but keeps the connection open.
func (h *Handler) streamResponse(ctx context.Context, s *Session, prompt string) {
	defer s.inFlight.Store(false)

	if h.provider == nil {
		s.sendError("ai service unavailable")
		return
	}

	if err := s.send(event{Type: "processing", Message: "Processing your request..."}); err != nil {
		return
	}

	stream, err := h.provider.StreamChat(ctx, prompt)
	if err != nil {
		s.sendError(err.Error())
		return
	}
	defer stream.Close()

	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			s.send(event{Type: "complete", Timestamp: nowMillis()})
			return
		}
		if recvErr != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn().Err(recvErr).Msg("completion stream failed")
			s.sendError(recvErr.Error())
			return
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}

		if err := s.send(event{Type: "chunk", Content: chunk.Content, Timestamp: nowMillis()}); err != nil {
			return
		}
	}
}

// send writes one event, tearing the connection down on transport failure.
func (s *Session) send(evt event) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteJSON(evt); err != nil {
		s.log.Error().Err(err).Str("event", evt.Type).Msg("websocket write failed")
		s.closeWithServerError()
		return err
	}
	return nil
}

func (s *Session) sendError(message string) {
	s.send(event{Type: "error", Message: message, Timestamp: nowMillis()})
}

func (s *Session) closeWithServerError() {
	s.cancel()
	deadline := time.Now().Add(writeTimeout)
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseInternalServerErr, ""), deadline)
	s.conn.Close()
}

func (s *Session) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
