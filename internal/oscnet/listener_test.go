package oscnet

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/oscbridge/internal/metrics"
)

type received struct {
	address string
	args    []string
}

func startListener(t *testing.T, deps ListenerDeps) (*Listener, <-chan received, int) {
	t.Helper()
	ch := make(chan received, 16)
	l := NewListener("127.0.0.1:0", HandlerFunc(func(_ context.Context, address string, args []string) {
		ch <- received{address: address, args: args}
	}), deps)

	require.NoError(t, l.Start(context.Background()))
	t.Cleanup(func() {
		_ = l.Stop(time.Second)
	})

	udp, ok := l.Addr().(*net.UDPAddr)
	require.True(t, ok)
	return l, ch, udp.Port
}

func waitFor(t *testing.T, ch <-chan received) received {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for OSC message")
		return received{}
	}
}

func TestListenerDeliversMessages(t *testing.T) {
	l, ch, port := startListener(t, ListenerDeps{})

	require.NoError(t, Send("127.0.0.1", port, "/1/play", "5"))

	got := waitFor(t, ch)
	assert.Equal(t, "/1/play", got.address)
	assert.Equal(t, []string{"5"}, got.args)
	assert.Equal(t, int64(1), l.Received())
}

func TestListenerFlattensBundles(t *testing.T) {
	_, ch, port := startListener(t, ListenerDeps{})

	bundle := osc.NewBundle(time.Now())
	require.NoError(t, bundle.Append(osc.NewMessage("/pause")))
	require.NoError(t, bundle.Append(osc.NewMessage("/seek", "30")))

	require.NoError(t, osc.NewClient("127.0.0.1", port).Send(bundle))

	seen := map[string][]string{}
	for i := 0; i < 2; i++ {
		r := waitFor(t, ch)
		seen[r.address] = r.args
	}
	assert.Equal(t, []string{}, seen["/pause"])
	assert.Equal(t, []string{"30"}, seen["/seek"])
}

func TestListenerSurvivesGarbage(t *testing.T) {
	m := metrics.New()
	_, ch, port := startListener(t, ListenerDeps{Metrics: m})

	conn, err := net.Dial("udp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("not an osc packet"))
	require.NoError(t, err)

	require.NoError(t, Send("127.0.0.1", port, "/stop"))
	got := waitFor(t, ch)
	assert.Equal(t, "/stop", got.address)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "oscbridge_osc_decode_errors_total 1"))
}

func TestListenerStop(t *testing.T) {
	l := NewListener("127.0.0.1:0", HandlerFunc(func(context.Context, string, []string) {}), ListenerDeps{})

	assert.Nil(t, l.Addr())
	assert.NoError(t, l.Stop(time.Second), "stop before start is a no-op")

	require.NoError(t, l.Start(context.Background()))
	require.NoError(t, l.Start(context.Background()), "start is idempotent")
	require.NoError(t, l.Stop(time.Second))
	require.NoError(t, l.Stop(time.Second))
}

func TestListenerStartFailsOnBusyPort(t *testing.T) {
	busy, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	l := NewListener(busy.LocalAddr().String(), HandlerFunc(func(context.Context, string, []string) {}), ListenerDeps{})
	assert.Error(t, l.Start(context.Background()))
}

func TestArguments(t *testing.T) {
	msg := osc.NewMessage("/x", int32(5), float32(1.5), "a", true, nil, int64(7), float64(2.25), []byte("b"))

	assert.Equal(t, []string{"5", "1.5", "a", "true", "", "7", "2.25", "b"}, Arguments(msg))
	assert.Empty(t, Arguments(osc.NewMessage("/y")))
}

func TestMessages(t *testing.T) {
	a, b, c := osc.NewMessage("/a"), osc.NewMessage("/b"), osc.NewMessage("/c")
	assert.Equal(t, []*osc.Message{a}, Messages(a))
	assert.Nil(t, Messages(nil))

	nested := &osc.Bundle{
		Messages: []*osc.Message{a},
		Bundles:  []*osc.Bundle{{Messages: []*osc.Message{b}}, {Messages: []*osc.Message{c}}},
	}
	assert.Equal(t, []*osc.Message{a, b, c}, Messages(nested))
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("/volume", "256", "x")
	assert.Equal(t, "/volume", msg.Address)
	assert.Equal(t, []interface{}{"256", "x"}, msg.Arguments)
}

func TestListenerRateLimit(t *testing.T) {
	m := metrics.New()
	_, ch, port := startListener(t, ListenerDeps{Metrics: m, Limiter: NewLimiter(0.001, 1)})

	bundle := osc.NewBundle(time.Now())
	require.NoError(t, bundle.Append(osc.NewMessage("/play")))
	require.NoError(t, bundle.Append(osc.NewMessage("/stop")))
	require.NoError(t, osc.NewClient("127.0.0.1", port).Send(bundle))

	got := waitFor(t, ch)
	assert.Equal(t, "/play", got.address)

	select {
	case r := <-ch:
		t.Fatalf("message %s should have been dropped", r.address)
	case <-time.After(200 * time.Millisecond):
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `oscbridge_messages_total{result="rate_limited"} 1`)
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 10))
	assert.Nil(t, NewLimiter(-1, 10))

	l := NewLimiter(5, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
}

func TestListenerHandlersOutliveStartContext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	handlerErr := make(chan error, 1)

	l := NewListener("127.0.0.1:0", HandlerFunc(func(ctx context.Context, _ string, _ []string) {
		close(started)
		<-release
		handlerErr <- ctx.Err()
	}), ListenerDeps{})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, l.Start(ctx))

	port := l.Addr().(*net.UDPAddr).Port
	require.NoError(t, Send("127.0.0.1", port, "/pause"))

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for handler")
	}

	cancel()
	close(release)

	require.NoError(t, l.Stop(2*time.Second))
	assert.NoError(t, <-handlerErr)
}
