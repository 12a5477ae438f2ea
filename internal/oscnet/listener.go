// Package oscnet carries OSC messages over UDP.
//
// Listener decodes datagrams with go-osc and hands every message to a
// Handler on its own goroutine. Send is the matching one-shot client.
package oscnet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/spf13/cast"
	"golang.org/x/time/rate"

	"evalgo.org/oscbridge/internal/metrics"
)

const (
	// DefaultListenAddr is where the bridge listens when nothing is configured.
	DefaultListenAddr = "127.0.0.1:5005"

	maxDatagramSize = 65535
	readDeadline    = 100 * time.Millisecond
)

// Handler receives decoded OSC messages. Implementations must be safe for
// concurrent use.
type Handler interface {
	Handle(ctx context.Context, address string, args []string)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, address string, args []string)

func (f HandlerFunc) Handle(ctx context.Context, address string, args []string) {
	f(ctx, address, args)
}

// ListenerDeps holds the optional listener dependencies.
type ListenerDeps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Limiter drops messages arriving faster than it allows. Nil accepts everything.
	Limiter *rate.Limiter
}

// NewLimiter returns a limiter for perSecond messages with the given burst,
// or nil when perSecond is not positive.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Listener receives OSC packets on a UDP socket.
type Listener struct {
	addr    string
	handler Handler
	logger  *slog.Logger
	metrics *metrics.Metrics
	limiter *rate.Limiter

	mu       sync.Mutex
	conn     net.PacketConn
	running  atomic.Bool
	shutdown chan struct{}
	done     chan struct{}
	inflight sync.WaitGroup

	received atomic.Int64
}

// NewListener creates a listener for addr. It does not bind until Start.
func NewListener(addr string, handler Handler, deps ListenerDeps) *Listener {
	if addr == "" {
		addr = DefaultListenAddr
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Listener{
		addr:    addr,
		handler: handler,
		logger:  logger.With(slog.String("component", "osc-listener")),
		metrics: deps.Metrics,
		limiter: deps.Limiter,
	}
}

// Start binds the socket and begins reading. It returns once the socket is
// bound; reading continues until ctx is cancelled or Stop is called.
// Cancelling ctx stops reading but does not cancel handlers already running.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running.Load() {
		return nil
	}

	conn, err := net.ListenPacket("udp", l.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.addr, err)
	}

	l.conn = conn
	l.shutdown = make(chan struct{})
	l.done = make(chan struct{})
	l.running.Store(true)

	l.logger.Info("osc_listener_started", slog.String("listen_addr", conn.LocalAddr().String()))

	go func() {
		defer close(l.done)
		l.readLoop(ctx, conn)
	}()

	return nil
}

// Addr returns the bound address, or nil before Start.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr()
}

// Received returns the number of datagrams read so far.
func (l *Listener) Received() int64 {
	return l.received.Load()
}

// Stop closes the socket and waits up to timeout for the read loop and all
// in-flight handlers to finish.
func (l *Listener) Stop(timeout time.Duration) error {
	l.mu.Lock()
	if !l.running.Load() {
		l.mu.Unlock()
		return nil
	}
	l.running.Store(false)
	close(l.shutdown)
	_ = l.conn.Close()
	done := l.done
	l.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		<-done
		l.inflight.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		l.logger.Info("osc_listener_stopped", slog.Int64("received", l.received.Load()))
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("osc listener stop timeout after %v", timeout)
	}
}

func (l *Listener) readLoop(ctx context.Context, conn net.PacketConn) {
	buf := make([]byte, maxDatagramSize)

	// Handlers outlive cancellation of ctx; Stop waits for them instead.
	handlerCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.shutdown:
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))

		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			l.logger.Warn("osc_read_failed", slog.String("error", err.Error()))
			continue
		}

		l.received.Add(1)

		packet, err := osc.ParsePacket(string(buf[:n]))
		if err != nil {
			l.metrics.DecodeError()
			l.logger.Debug("osc_decode_failed",
				slog.String("from", from.String()),
				slog.Int("bytes", n),
				slog.String("error", err.Error()),
			)
			continue
		}

		for _, msg := range Messages(packet) {
			if l.limiter != nil && !l.limiter.Allow() {
				l.metrics.MessageHandled(metrics.ResultRateLimited)
				l.logger.Debug("osc_message_rate_limited", slog.String("address", msg.Address))
				continue
			}

			args := Arguments(msg)
			address := msg.Address

			l.inflight.Add(1)
			go func() {
				defer l.inflight.Done()
				l.handler.Handle(handlerCtx, address, args)
			}()
		}
	}
}

// Messages flattens a packet into its messages, depth first.
func Messages(packet osc.Packet) []*osc.Message {
	switch p := packet.(type) {
	case *osc.Message:
		return []*osc.Message{p}
	case *osc.Bundle:
		var out []*osc.Message
		out = append(out, p.Messages...)
		for _, b := range p.Bundles {
			out = append(out, Messages(b)...)
		}
		return out
	default:
		return nil
	}
}

// Arguments converts the typed OSC arguments of msg to strings: 5 becomes
// "5", 1.5 becomes "1.5", true becomes "true", nil becomes "".
func Arguments(msg *osc.Message) []string {
	args := make([]string, 0, len(msg.Arguments))
	for _, a := range msg.Arguments {
		s, err := cast.ToStringE(a)
		if err != nil {
			s = fmt.Sprint(a)
		}
		args = append(args, s)
	}
	return args
}
