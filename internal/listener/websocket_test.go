package listener

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestCloseConnsUnblocksReaders(t *testing.T) {
	l := NewWebListener(0, nil, nil)

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	readDone := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrading: %v", err)
			return
		}
		l.trackConn(conn)

		// Mirrors the read loop: blocks until the peer or closeConns
		// closes the socket.
		_, _, err = conn.ReadMessage()
		readDone <- err
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	defer client.Close()

	l.closeConns()

	select {
	case err := <-readDone:
		if err == nil {
			t.Error("read returned nil after close")
		}
	case <-time.After(time.Second):
		t.Fatal("read loop still blocked after closeConns")
	}
}

func TestUntrackConn(t *testing.T) {
	l := NewWebListener(0, nil, nil)
	c := &websocket.Conn{}

	l.trackConn(c)
	l.untrackConn(c)

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.conns) != 0 {
		t.Errorf("expected empty conn set, have %d", len(l.conns))
	}
}
