package server_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthgate/internal/server"
)

func TestRun_ServesAndShutsDown(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan net.Addr, 1)
	var order []string

	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})

	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, h,
			server.WithAddress("127.0.0.1:0"),
			server.WithListenNotify(func(a net.Addr) { addrCh <- a }),
			server.WithStartupHook(func(context.Context) error { order = append(order, "start"); return nil }),
			server.WithShutdownHook(func(context.Context) error { order = append(order, "stop-1"); return nil }),
			server.WithShutdownHook(func(context.Context) error { order = append(order, "stop-2"); return nil }),
		)
	}()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr.String()+"/", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	require.Equal(t, []string{"start", "stop-1", "stop-2"}, order)
}

func TestRun_StartupHookFailure(t *testing.T) {
	t.Parallel()

	listened := false
	err := server.Run(context.Background(), http.NotFoundHandler(),
		server.WithAddress("127.0.0.1:0"),
		server.WithListenNotify(func(net.Addr) { listened = true }),
		server.WithStartupHook(func(context.Context) error { return errors.New("migrations failed") }),
	)

	require.ErrorIs(t, err, server.ErrStartupHook)
	require.False(t, listened)
}

func TestRun_ShutdownHookErrorsJoined(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	hookErr := errors.New("close pool")

	err := server.Run(ctx, http.NotFoundHandler(),
		server.WithAddress("127.0.0.1:0"),
		server.WithListenNotify(func(net.Addr) { cancel() }),
		server.WithShutdownHook(func(context.Context) error { return hookErr }),
	)
	require.ErrorIs(t, err, hookErr)
}

func TestRun_ListenFailure(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = server.Run(context.Background(), http.NotFoundHandler(), server.WithAddress(ln.Addr().String()))
	require.ErrorIs(t, err, server.ErrListen)
}
