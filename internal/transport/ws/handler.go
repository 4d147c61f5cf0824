// Package ws streams lookup results over a WebSocket as each token completes.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/heartmarshall/khmer-lookup/internal/domain"
	"github.com/heartmarshall/khmer-lookup/pkg/ctxutil"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

// lookupService defines the minimal interface needed by Handler.
type lookupService interface {
	Tokenize(sentence string) []string
	EnrichEach(ctx context.Context, tokens []string, fn func(i int, rec domain.EnrichedToken)) domain.EnrichmentResult
}

// Handler serves GET /ws/lookup. Each text message from the client starts a
// lookup; the server answers with a tokens message, one entry message per
// completed token and a final done message. Lookups on one connection run
// one at a time. Closing the connection cancels the running lookup.
type Handler struct {
	svc        lookupService
	maxRunes   int
	upgrader   websocket.Upgrader
	pingPeriod time.Duration
	pongWait   time.Duration
	log        *slog.Logger
}

// NewHandler creates a Handler. allowedOrigins restricts the Origin header
// of the upgrade request; an empty list or "*" allows any origin.
func NewHandler(svc lookupService, maxRunes int, allowedOrigins []string, logger *slog.Logger) *Handler {
	h := &Handler{
		svc:        svc,
		maxRunes:   maxRunes,
		pingPeriod: pingPeriod,
		pongWait:   pongWait,
		log:        logger.With("handler", "ws"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// conn serializes writes to a websocket connection.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		h.log.WarnContext(r.Context(), "websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	c := &conn{ws: wsConn}
	defer wsConn.Close()

	// A hijacked request's context is not cancelled when the peer goes away;
	// the read loop owns cancellation instead.
	ctx, cancel := context.WithCancel(ctxutil.DetachRequestID(r.Context()))
	defer cancel()

	h.log.DebugContext(ctx, "websocket connected", slog.String("remote", r.RemoteAddr))

	requests := make(chan string, 1)
	go h.readLoop(ctx, cancel, c, requests)
	go h.pingLoop(ctx, c)

	for text := range requests {
		if err := h.stream(ctx, c, text); err != nil {
			if ctx.Err() == nil {
				h.log.WarnContext(ctx, "websocket write failed", slog.String("error", err.Error()))
			}
			return
		}
	}

	h.log.DebugContext(ctx, "websocket disconnected")
}

// readLoop decodes client requests until the connection fails, then cancels ctx.
// Invalid requests are answered with an error message, as is any request
// beyond the one that may wait behind a running lookup.
func (h *Handler) readLoop(ctx context.Context, cancel context.CancelFunc, c *conn, requests chan<- string) {
	defer close(requests)
	defer cancel()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(h.pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.InfoContext(ctx, "websocket closed unexpectedly", slog.String("error", err.Error()))
			}
			return
		}

		var req request
		if err := json.Unmarshal(data, &req); err != nil {
			h.replyError(ctx, c, "invalid request: expected {\"text\": \"...\"}")
			continue
		}
		if err := domain.ValidateSentence(req.Text, h.maxRunes); err != nil {
			h.replyError(ctx, c, validationMessage(err))
			continue
		}

		select {
		case requests <- req.Text:
		default:
			h.replyError(ctx, c, "a lookup is already running on this connection")
		}
	}
}

func (h *Handler) pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// stream runs one lookup and writes its messages. A cancelled lookup ends
// without a done message.
func (h *Handler) stream(ctx context.Context, c *conn, text string) error {
	tokens := h.svc.Tokenize(text)
	if err := c.writeJSON(tokensMessage{Type: typeTokens, Tokens: tokens}); err != nil {
		return err
	}

	var writeErr error
	results := h.svc.EnrichEach(ctx, tokens, func(i int, rec domain.EnrichedToken) {
		if writeErr != nil {
			return
		}
		writeErr = c.writeJSON(entryMessage{Type: typeEntry, Index: i, Entry: rec})
	})
	if writeErr != nil {
		return writeErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.writeJSON(doneMessage{Type: typeDone, Results: results})
}

func (h *Handler) replyError(ctx context.Context, c *conn, msg string) {
	if err := c.writeJSON(errorMessage{Type: typeError, Error: msg}); err != nil {
		h.log.DebugContext(ctx, "websocket error reply failed", slog.String("error", err.Error()))
	}
}

func validationMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) && len(ve.Errors) == 1 {
		return ve.Errors[0].Field + ": " + ve.Errors[0].Message
	}
	return err.Error()
}
