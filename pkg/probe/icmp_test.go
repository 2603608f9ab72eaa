package probe

import (
	"context"
	"errors"
	"net"
	"sync"
	"syscall"
	"testing"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// fakePacketConn records echo requests and hands them to writeFn
type fakePacketConn struct {
	mu      sync.Mutex
	writes  int
	writeFn func(b []byte, addr net.Addr) error
	closed  bool
}

func (c *fakePacketConn) WriteTo(b []byte, addr net.Addr) (int, error) {
	c.mu.Lock()
	c.writes++
	fn := c.writeFn
	c.mu.Unlock()
	if fn != nil {
		if err := fn(b, addr); err != nil {
			return 0, err
		}
	}
	return len(b), nil
}

func (c *fakePacketConn) ReadFrom([]byte) (int, net.Addr, error) {
	return 0, nil, net.ErrClosed
}

func (c *fakePacketConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakePacketConn) LocalAddr() net.Addr { return &net.IPAddr{IP: net.IPv4zero} }
func (c *fakePacketConn) SetDeadline(time.Time) error { return nil }
func (c *fakePacketConn) SetReadDeadline(time.Time) error { return nil }
func (c *fakePacketConn) SetWriteDeadline(time.Time) error { return nil }

// echoReplier answers every echo request sent through the pinger
func echoReplier(t *testing.T, p *ICMPPinger) func([]byte, net.Addr) error {
	return func(b []byte, addr net.Addr) error {
		req, err := icmp.ParseMessage(ipv4.ICMPTypeEcho.Protocol(), b)
		if err != nil {
			t.Errorf("parse echo request: %v", err)
			return nil
		}
		echo := req.Body.(*icmp.Echo)
		reply, err := (&icmp.Message{Type: ipv4.ICMPTypeEchoReply, Body: echo}).Marshal(nil)
		if err != nil {
			t.Errorf("marshal echo reply: %v", err)
			return nil
		}
		go p.dispatch(reply, addr, false)
		return nil
	}
}

func TestICMPPingerPing(t *testing.T) {
	ip := net.ParseIP("10.0.0.1").To4()

	t.Run("reply", func(t *testing.T) {
		p := newICMPPinger(true)
		conn := &fakePacketConn{}
		conn.writeFn = echoReplier(t, p)
		p.conn4 = conn

		alive, err := p.Ping(context.Background(), ip, time.Second)
		if err != nil || !alive {
			t.Fatalf("Ping() = %v, %v, want true, nil", alive, err)
		}
		if _, ok := p.pending.Get(pendingKey(1, false)); ok {
			t.Error("pending entry left behind")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		p := newICMPPinger(true)
		conn := &fakePacketConn{}
		p.conn4 = conn

		start := time.Now()
		alive, err := p.Ping(context.Background(), ip, 20*time.Millisecond)
		if err != nil || alive {
			t.Fatalf("Ping() = %v, %v, want false, nil", alive, err)
		}
		if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
			t.Errorf("returned after %s, before the timeout", elapsed)
		}
		if conn.writes != 1 {
			t.Errorf("writes = %d, want 1", conn.writes)
		}
		if _, ok := p.pending.Get(pendingKey(1, false)); ok {
			t.Error("pending entry left behind")
		}
	})

	t.Run("closed while waiting", func(t *testing.T) {
		p := newICMPPinger(true)
		conn := &fakePacketConn{}
		p.conn4 = conn

		type outcome struct {
			alive bool
			err   error
		}
		done := make(chan outcome, 1)
		go func() {
			alive, err := p.Ping(context.Background(), ip, time.Minute)
			done <- outcome{alive, err}
		}()

		// let the request go out before closing
		deadline := time.Now().Add(time.Second)
		for {
			conn.mu.Lock()
			writes := conn.writes
			conn.mu.Unlock()
			if writes > 0 || time.Now().After(deadline) {
				break
			}
			time.Sleep(time.Millisecond)
		}
		if err := p.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		select {
		case got := <-done:
			if got.alive || !IsEnvironmentFailure(got.err) || !errors.Is(got.err, net.ErrClosed) {
				t.Errorf("Ping() = %v, %v, want an environment failure", got.alive, got.err)
			}
		case <-time.After(time.Second):
			t.Fatal("Ping() did not return after Close()")
		}
		if !conn.closed {
			t.Error("connection not closed")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		p := newICMPPinger(true)
		p.conn4 = &fakePacketConn{}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		alive, err := p.Ping(ctx, ip, time.Minute)
		if alive || !errors.Is(err, context.DeadlineExceeded) || IsEnvironmentFailure(err) {
			t.Errorf("Ping() = %v, %v, want false with the context error", alive, err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		p := newICMPPinger(true)
		p.conn4 = &fakePacketConn{writeFn: func([]byte, net.Addr) error {
			return &net.OpError{Op: "write", Net: "ip4:icmp", Err: syscall.EHOSTUNREACH}
		}}

		alive, err := p.Ping(context.Background(), ip, time.Second)
		if alive || err != nil {
			t.Errorf("Ping() = %v, %v, want false, nil", alive, err)
		}
	})

	t.Run("no ipv6 connection", func(t *testing.T) {
		p := newICMPPinger(true)
		p.conn4 = &fakePacketConn{}

		_, err := p.Ping(context.Background(), net.ParseIP("fd00::1"), time.Second)
		if !IsEnvironmentFailure(err) {
			t.Errorf("Ping() error = %v, want an environment failure", err)
		}
	})
}
