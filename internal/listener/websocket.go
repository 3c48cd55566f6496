package listener

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pixil98/go-log"

	"github.com/emberwild/worldserver/internal/gateway"
	"github.com/emberwild/worldserver/internal/messaging"
)

const (
	writeWait       = 10 * time.Second
	sendBuffer      = 64
	shutdownTimeout = 5 * time.Second
)

// WebListener serves the websocket endpoint browser clients connect to,
// plus the read-only REST routes. One goroutine reads each socket and
// feeds the gateway; a paired writer drains the connection's bus subject.
type WebListener struct {
	port uint16
	gw   *gateway.Gateway
	bus  *messaging.Bus

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
}

func NewWebListener(port uint16, gw *gateway.Gateway, bus *messaging.Bus) *WebListener {
	return &WebListener{
		port:  port,
		gw:    gw,
		bus:   bus,
		conns: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (l *WebListener) Start(ctx context.Context) error {
	router := l.gw.NewRouter()
	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		l.handleSocket(ctx, w, r)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", l.port),
		Handler: router,
	}

	// done signals that Start is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.GetLogger(ctx).WithError(err).Error("shutting down http server")
			}
			// Shutdown leaves hijacked connections alone; closing them
			// unblocks the per-socket read loops.
			l.closeConns()
		case <-done:
		}
	}()

	log.GetLogger(ctx).Infof("listening for websocket clients on :%d", l.port)

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websocket on port %d: %w", l.port, err)
	}

	return nil
}

func (l *WebListener) handleSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger(ctx)

	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithError(err).Error("upgrading websocket")
		return
	}

	connID := uuid.New().String()
	l.trackConn(conn)
	send := make(chan []byte, sendBuffer)

	unsub, err := l.bus.Subscribe(messaging.ConnSubject(connID), func(data []byte) {
		select {
		case send <- data:
		default:
			// A client that cannot keep up drops messages rather than
			// stalling the bus.
			logger.Warnf("dropping message for slow connection %s", connID)
		}
	})
	if err != nil {
		logger.WithError(err).Error("subscribing connection")
		l.untrackConn(conn)
		conn.Close()
		return
	}

	// Writer: drains the send channel until it closes or a write fails.
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		for data := range send {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}()

	// Reader: every frame goes to the gateway until the socket dies.
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		l.gw.Dispatch(ctx, connID, raw)
	}

	unsub()
	l.gw.Disconnect(ctx, connID)
	close(send)
	<-writeDone
	l.untrackConn(conn)
	conn.Close()
}

func (l *WebListener) trackConn(c *websocket.Conn) {
	l.mu.Lock()
	l.conns[c] = struct{}{}
	l.mu.Unlock()
}

func (l *WebListener) untrackConn(c *websocket.Conn) {
	l.mu.Lock()
	delete(l.conns, c)
	l.mu.Unlock()
}

// closeConns closes every open socket, failing any blocked reads.
func (l *WebListener) closeConns() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for c := range l.conns {
		c.Close()
	}
	l.conns = make(map[*websocket.Conn]struct{})
}
