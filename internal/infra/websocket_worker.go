package infra

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketHandler defines feed-specific logic for the BaseWSWorker.
type WebSocketHandler interface {
	GetURL() string
	OnConnect(ctx context.Context, conn *websocket.Conn) error
	OnMessage(ctx context.Context, msg []byte)
	ID() string
}

// BaseWSWorker manages the lifecycle of a WebSocket subscription. Ordinary
// disconnects (remote close, protocol error, read timeout) are recovered
// locally by reconnecting with capped exponential backoff; they never reach
// the caller. Only MaxRetries consecutive connect failures surface on the
// Fatal channel, at which point the worker stops and leaves the verdict to
// whoever owns it.
type BaseWSWorker struct {
	handler WebSocketHandler
	mu      sync.RWMutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	fatal   chan error

	ReadTimeout time.Duration
	MaxRetries  int // consecutive connect failures before giving up; 0 retries forever
}

// NewBaseWSWorker creates a new generic WebSocket worker.
func NewBaseWSWorker(handler WebSocketHandler) *BaseWSWorker {
	return &BaseWSWorker{
		handler:     handler,
		fatal:       make(chan error, 1),
		ReadTimeout: 30 * time.Second,
	}
}

// Start initiates the connection loop.
func (w *BaseWSWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.runLoop(ctx)
}

// Stop terminates the worker. The reconnect loop observes cancellation
// promptly, including mid-backoff.
func (w *BaseWSWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.close()
	w.wg.Wait()
}

// Fatal delivers at most one error, when reconnection has been abandoned.
func (w *BaseWSWorker) Fatal() <-chan error {
	return w.fatal
}

func (w *BaseWSWorker) runLoop(ctx context.Context) {
	defer w.wg.Done()
	retries := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			retries++
			slog.Warn("WS connect failed",
				slog.String("id", w.handler.ID()),
				slog.Any("error", err),
				slog.Int("retries", retries))

			if w.MaxRetries > 0 && retries >= w.MaxRetries {
				w.fatal <- fmt.Errorf("%s: giving up after %d consecutive connect failures: %w",
					w.handler.ID(), retries, err)
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(Backoff(retries - 1)):
			}
			continue
		}

		retries = 0
		w.readLoop(ctx)
	}
}

func (w *BaseWSWorker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, w.handler.GetURL(), nil)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	if err := w.handler.OnConnect(ctx, conn); err != nil {
		w.close()
		return fmt.Errorf("OnConnect failed: %w", err)
	}

	slog.Info("WS connected", slog.String("id", w.handler.ID()))
	return nil
}

func (w *BaseWSWorker) readLoop(ctx context.Context) {
	for {
		w.mu.RLock()
		c := w.conn
		w.mu.RUnlock()
		if c == nil {
			return
		}

		c.SetReadDeadline(time.Now().Add(w.ReadTimeout))
		_, msg, err := c.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("WS read error, reconnecting",
					slog.String("id", w.handler.ID()),
					slog.Any("error", err))
			}
			w.close()
			return
		}

		w.handler.OnMessage(ctx, msg)
	}
}

// Write sends a message on the current connection, serialized against
// concurrent writers.
func (w *BaseWSWorker) Write(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.RLock()
	c := w.conn
	w.mu.RUnlock()

	if c == nil {
		return fmt.Errorf("ws not connected")
	}
	return c.WriteMessage(msgType, data)
}

func (w *BaseWSWorker) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}
