package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	mapsutil "github.com/projectdiscovery/utils/maps"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// icmpReadInterval bounds each blocking read so the receivers notice Close
const icmpReadInterval = 500 * time.Millisecond

var echoPayload = []byte("HELLO-R-U-THERE")

// ICMPPinger sends echo requests over one shared connection per address family
// and matches replies to waiting probes by sequence number and peer address.
type ICMPPinger struct {
	privileged bool
	id         int
	seq        atomic.Uint32

	conn4 net.PacketConn
	conn6 net.PacketConn

	pending *mapsutil.SyncLockMap[int, *pendingEcho]

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// pendingEcho tracks a sent echo request waiting for its reply
type pendingEcho struct {
	IP    net.IP
	Start time.Time
	reply chan struct{}
}

// NewICMPPinger opens the shared ICMP connections. Privileged mode uses raw
// sockets, otherwise datagram ICMP sockets are used (linux ping_group_range,
// darwin). IPv4 is required, IPv6 is best effort.
func NewICMPPinger(privileged bool) (*ICMPPinger, error) {
	p := newICMPPinger(privileged)

	conn4, err := listenICMP(privileged, false)
	if err != nil {
		return nil, environmentError("icmp listen", err)
	}
	p.conn4 = conn4

	// hosts without IPv6 only lose IPv6 liveness
	if conn6, err := listenICMP(privileged, true); err == nil {
		p.conn6 = conn6
	}

	p.wg.Add(1)
	go p.receive(p.conn4, false)
	if p.conn6 != nil {
		p.wg.Add(1)
		go p.receive(p.conn6, true)
	}

	return p, nil
}

func newICMPPinger(privileged bool) *ICMPPinger {
	return &ICMPPinger{
		privileged: privileged,
		id:         os.Getpid() & 0xffff,
		pending:    mapsutil.NewSyncLockMap[int, *pendingEcho](),
		done:       make(chan struct{}),
	}
}

func listenICMP(privileged, isIPv6 bool) (net.PacketConn, error) {
	switch {
	case privileged && isIPv6:
		return icmp.ListenPacket("ip6:ipv6-icmp", "::")
	case privileged:
		return icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	case isIPv6:
		return icmp.ListenPacket("udp6", "::")
	default:
		return icmp.ListenPacket("udp4", "0.0.0.0")
	}
}

// Ping sends one echo request and waits up to timeout for the reply
func (p *ICMPPinger) Ping(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	isIPv6 := ip.To4() == nil
	conn := p.conn4
	if isIPv6 {
		conn = p.conn6
	}
	if conn == nil {
		return false, environmentError("icmp", fmt.Errorf("no connection for %s", ip))
	}

	seq := int(p.seq.Add(1) & 0xffff)
	key := pendingKey(seq, isIPv6)
	pending := &pendingEcho{
		IP:    ip,
		Start: time.Now(),
		reply: make(chan struct{}, 1),
	}
	_ = p.pending.Set(key, pending)
	defer p.pending.Delete(key)

	if err := p.send(conn, ip, seq, isIPv6); err != nil {
		if isUnreachable(err) {
			return false, nil
		}
		return false, environmentError("icmp send", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-pending.reply:
		return true, nil
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-p.done:
		return false, environmentError("icmp", net.ErrClosed)
	}
}

// send writes an ICMP echo request through the shared connection
func (p *ICMPPinger) send(conn net.PacketConn, ip net.IP, seq int, isIPv6 bool) error {
	var msgType icmp.Type = ipv4.ICMPTypeEcho
	if isIPv6 {
		msgType = ipv6.ICMPTypeEchoRequest
	}

	msg := &icmp.Message{
		Type: msgType,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: echoPayload,
		},
	}

	msgBytes, err := msg.Marshal(nil)
	if err != nil {
		return fmt.Errorf("failed to marshal ICMP message: %w", err)
	}

	var dst net.Addr = &net.IPAddr{IP: ip}
	if !p.privileged {
		dst = &net.UDPAddr{IP: ip}
	}
	_, err = conn.WriteTo(msgBytes, dst)
	return err
}

// receive reads replies from conn until the pinger is closed
func (p *ICMPPinger) receive(conn net.PacketConn, isIPv6 bool) {
	defer p.wg.Done()

	reply := make([]byte, 1500)
	for {
		select {
		case <-p.done:
			return
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(icmpReadInterval)); err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		n, peer, err := conn.ReadFrom(reply)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			// read deadline or transient error
			continue
		}

		p.dispatch(reply[:n], peer, isIPv6)
	}
}

// dispatch wakes the probe waiting for the echo reply in data, if any
func (p *ICMPPinger) dispatch(data []byte, peer net.Addr, isIPv6 bool) bool {
	var echoReplyType icmp.Type = ipv4.ICMPTypeEchoReply
	protocol := ipv4.ICMPTypeEchoReply.Protocol()
	if isIPv6 {
		echoReplyType = ipv6.ICMPTypeEchoReply
		protocol = ipv6.ICMPTypeEchoReply.Protocol()
	}

	rm, err := icmp.ParseMessage(protocol, data)
	if err != nil || rm.Type != echoReplyType {
		return false
	}

	echo, ok := rm.Body.(*icmp.Echo)
	if !ok {
		return false
	}

	// datagram sockets get their id rewritten by the kernel
	if p.privileged && echo.ID != p.id {
		return false
	}

	pending, exists := p.pending.Get(pendingKey(echo.Seq, isIPv6))
	if !exists || !pending.IP.Equal(peerIP(peer)) {
		return false
	}

	select {
	case pending.reply <- struct{}{}:
	default:
		// duplicate reply
	}
	return true
}

// Close stops the receivers and closes the shared connections
func (p *ICMPPinger) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		for _, conn := range []net.PacketConn{p.conn4, p.conn6} {
			if conn == nil {
				continue
			}
			if closeErr := conn.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}
		p.wg.Wait()
	})
	return err
}

func pendingKey(seq int, isIPv6 bool) int {
	if isIPv6 {
		return 1<<16 | seq
	}
	return seq
}

func peerIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.IPAddr:
		return a.IP
	case *net.UDPAddr:
		return a.IP
	default:
		return nil
	}
}
