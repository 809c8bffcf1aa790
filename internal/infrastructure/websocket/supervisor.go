package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultStreamURL is the combined all-market ticker stream.
const DefaultStreamURL = "wss://stream.binance.com:9443/ws/!ticker@arr"

const (
	DefaultMaxAttempts    = 5
	DefaultRetryDelay     = 3 * time.Second
	handshakeTimeout      = 45 * time.Second
	pingInterval          = 30 * time.Second
	writeControlDeadline  = 10 * time.Second
	pongReadDeadlineBonus = 90 * time.Second
)

// Callbacks is the interface the supervisor exposes to the core. The core
// never sees the socket, only these events.
type Callbacks struct {
	OnConnected    func()
	OnDisconnected func()
	OnMessage      func(message []byte) error
}

// Supervisor owns the lifecycle of a single streaming connection: dialing,
// keepalive, bounded automatic reconnection with a fixed delay, and manual
// reconnect requests. Once automatic attempts are exhausted it stays
// disconnected until RequestReconnect is called.
type Supervisor struct {
	url         string
	callbacks   Callbacks
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	reconnectCh chan struct{}
}

func NewSupervisor(url string, maxAttempts int, retryDelay time.Duration, callbacks Callbacks, logger *slog.Logger) *Supervisor {
	if url == "" {
		url = DefaultStreamURL
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &Supervisor{
		url:         url,
		callbacks:   callbacks,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		logger:      logger,
		reconnectCh: make(chan struct{}, 1),
	}
}

// Run drives the connection until the context is cancelled or Close is
// called. It blocks; run it in its own goroutine.
func (s *Supervisor) Run(ctx context.Context) error {
	attempts := 0

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.isClosed() {
			return nil
		}

		conn, err := s.dial(ctx)
		if err != nil {
			attempts++
			s.logger.Warn("Stream connect failed",
				"attempt", attempts, "max", s.maxAttempts, "error", err)

			if attempts >= s.maxAttempts {
				s.logger.Error("Reconnect attempts exhausted, waiting for manual reconnect")
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-s.reconnectCh:
					attempts = 0
				}
				continue
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.reconnectCh:
				attempts = 0
			case <-time.After(s.retryDelay):
			}
			continue
		}

		attempts = 0
		s.setConn(conn)
		s.logger.Info("Stream connected", "url", s.url)
		if cb := s.callbacks.OnConnected; cb != nil {
			cb()
		}

		s.readLoop(ctx, conn)
		s.clearConn(conn)
		if cb := s.callbacks.OnDisconnected; cb != nil {
			cb()
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.isClosed() {
			return nil
		}

		// a dropped connection costs one attempt before the timed redial
		attempts++
		if attempts >= s.maxAttempts {
			s.logger.Error("Reconnect attempts exhausted, waiting for manual reconnect")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.reconnectCh:
				attempts = 0
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.reconnectCh:
			attempts = 0
		case <-time.After(s.retryDelay):
		}
	}
}

// RequestReconnect resets the attempt budget and forces a fresh connection.
// Idempotent and callable at any time, including while connected or after
// attempts were exhausted.
func (s *Supervisor) RequestReconnect() {
	select {
	case s.reconnectCh <- struct{}{}:
	default:
	}
	s.dropConn()
}

// Close shuts the supervisor down for good; Run returns after the current
// connection is torn down.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeControlDeadline),
		)
		return conn.Close()
	}
	return nil
}

func (s *Supervisor) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	return conn, err
}

func (s *Supervisor) readLoop(ctx context.Context, conn *websocket.Conn) {
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongReadDeadlineBonus))
	})

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(ctx, conn, done)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.logger.Warn("Stream read error", "error", err)
			}
			_ = conn.Close()
			return
		}

		if cb := s.callbacks.OnMessage; cb != nil {
			if err := cb(message); err != nil {
				s.logger.Error("Message handler error", "error", err)
			}
		}
	}
}

func (s *Supervisor) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeControlDeadline))
			if err != nil {
				s.logger.Warn("Ping failed", "error", err)
				_ = conn.Close()
				return
			}
		}
	}
}

func (s *Supervisor) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

func (s *Supervisor) clearConn(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
}

func (s *Supervisor) dropConn() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (s *Supervisor) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
