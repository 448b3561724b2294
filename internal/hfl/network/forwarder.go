package network

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"
)

// DropCounter tracks packets lost in the forwarding path.
type DropCounter interface {
	AddDropped()
}

// PacketForwarder re-emits received payloads to another host, typically a
// workstation running the vendor's monitoring tool. Forwarding is
// non-blocking: the receive path must never stall on a slow downstream.
type PacketForwarder struct {
	conn        *net.UDPConn
	channel     chan []byte
	stats       DropCounter
	logInterval time.Duration
	address     string
}

// NewPacketForwarder creates a forwarder sending packets to addr:port.
func NewPacketForwarder(addr string, port int, stats DropCounter, logInterval time.Duration) (*PacketForwarder, error) {
	forwardAddress := fmt.Sprintf("%s:%d", addr, port)
	udpAddr, err := net.ResolveUDPAddr("udp", forwardAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve forward address: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to create forward connection: %w", err)
	}

	return &PacketForwarder{
		conn:        conn,
		channel:     make(chan []byte, 1000),
		stats:       stats,
		logInterval: logInterval,
		address:     forwardAddress,
	}, nil
}

// Start launches the forwarding goroutine. Write failures are counted and
// summarized on the log interval rather than logged per packet.
func (f *PacketForwarder) Start(ctx context.Context) {
	go func() {
		dropped := 0
		var lastErr error
		ticker := time.NewTicker(f.logInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case packet := <-f.channel:
				if _, err := f.conn.Write(packet); err != nil {
					dropped++
					lastErr = err
				}
			case <-ticker.C:
				if dropped > 0 && lastErr != nil {
					log.Printf("dropped %d forwarded packets (latest error: %v)", dropped, lastErr)
					dropped = 0
					lastErr = nil
				}
			}
		}
	}()

	log.Printf("forwarding packets to %s", f.address)
}

// ForwardAsync queues a packet for forwarding. The payload is copied because
// the listener reuses its receive buffer. A full queue drops the packet.
func (f *PacketForwarder) ForwardAsync(packet []byte) {
	packetCopy := make([]byte, len(packet))
	copy(packetCopy, packet)

	select {
	case f.channel <- packetCopy:
	default:
		if f.stats != nil {
			f.stats.AddDropped()
		}
	}
}

// Close closes the forwarding connection.
func (f *PacketForwarder) Close() error {
	close(f.channel)
	return f.conn.Close()
}
