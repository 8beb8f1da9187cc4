package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/emberveil/client/internal/config"
)

// echoServer upgrades every request and echoes frames back.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
}

func testNetConfig(url string) config.NetworkConfig {
	cfg := config.Defaults().Network
	cfg.ServerURL = "ws" + strings.TrimPrefix(url, "http")
	return cfg
}

func TestSendAndReceiveRoundTrip(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	c, err := Dial(context.Background(), testNetConfig(srv.URL), zap.NewNop())
	assert.NoError(t, err)
	defer c.Close()

	assert.True(t, c.Send([]byte(`{"kind":"position"}`)))

	select {
	case frame := <-c.In():
		assert.JSONEq(t, `{"kind":"position"}`, string(frame))
	case <-time.After(2 * time.Second):
		t.Fatal("no echo within deadline")
	}
}

func TestDialFailure(t *testing.T) {
	cfg := config.Defaults().Network
	cfg.ServerURL = "ws://127.0.0.1:1/sim"
	_, err := Dial(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestCloseIsIdempotentAndSignalsDone(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	c, err := Dial(context.Background(), testNetConfig(srv.URL), zap.NewNop())
	assert.NoError(t, err)

	c.Close()
	c.Close()

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("done not signalled after close")
	}
	assert.False(t, c.Send([]byte("late")), "sends after close are refused")
}

func TestServerShutdownEndsSession(t *testing.T) {
	srv := echoServer(t)
	c, err := Dial(context.Background(), testNetConfig(srv.URL), zap.NewNop())
	assert.NoError(t, err)
	defer c.Close()

	srv.CloseClientConnections()

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end with the server")
	}
}
