// Package network receives HFL110DCU fragment streams over UDP and feeds
// them into a device decoder. The sensor emits each stream (frame, object,
// telemetry, slice) on its own port, so one listener is bound per stream
// kind; decoded records are handed to caller-supplied handlers.
package network

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/banshee-data/hfl110.report/internal/hfl"
)

// StreamKind identifies which of the sensor's UDP streams a listener or
// captured packet belongs to.
type StreamKind int

const (
	StreamFrame StreamKind = iota
	StreamObject
	StreamTelemetry
	StreamSlice
)

func (k StreamKind) String() string {
	switch k {
	case StreamFrame:
		return "frame"
	case StreamObject:
		return "object"
	case StreamTelemetry:
		return "telemetry"
	case StreamSlice:
		return "slice"
	default:
		return fmt.Sprintf("stream(%d)", int(k))
	}
}

// StatsInterface provides packet statistics management.
type StatsInterface interface {
	AddPacket(bytes int)
	AddDropped()
	AddGap()
	AddFrame(points int)
	AddObjects(count int)
	AddTelemetry()
	LogStats()
}

// Handlers receive decoded records. Nil handlers are skipped. Handlers run
// on the listener goroutine, so they must not block.
type Handlers struct {
	OnFrame     func(*hfl.Frame)
	OnObjects   func([]hfl.TrackedObject)
	OnTelemetry func(*hfl.TelemetryRecord)
}

// UDPListener receives one fragment stream from the sensor and dispatches
// payloads to the device decoder.
type UDPListener struct {
	kind      StreamKind
	address   string
	rcvBuf    int
	conn      *net.UDPConn
	device    hfl.Device
	stats     StatsInterface
	forwarder *PacketForwarder
	handlers  Handlers

	decodeErrs int64
}

// UDPListenerConfig contains configuration options for one stream listener.
// Stats and Forwarder are typically shared across the stream listeners; the
// caller owns starting the forwarder and logging the stats.
type UDPListenerConfig struct {
	Kind      StreamKind
	Address   string
	RcvBuf    int
	Device    hfl.Device
	Stats     StatsInterface
	Forwarder *PacketForwarder
	Handlers  Handlers
}

// NewUDPListener creates a listener for one stream kind. A no-op stats
// implementation is substituted when none is supplied so the hot path never
// checks for nil.
func NewUDPListener(config UDPListenerConfig) *UDPListener {
	stats := config.Stats
	if stats == nil {
		stats = &noopStats{}
	}

	rcvBuf := config.RcvBuf
	if rcvBuf == 0 {
		rcvBuf = 4 << 20
	}

	return &UDPListener{
		kind:      config.Kind,
		address:   config.Address,
		rcvBuf:    rcvBuf,
		device:    config.Device,
		stats:     stats,
		forwarder: config.Forwarder,
		handlers:  config.Handlers,
	}
}

type noopStats struct{}

func (n *noopStats) AddPacket(bytes int)  {}
func (n *noopStats) AddDropped()          {}
func (n *noopStats) AddGap()              {}
func (n *noopStats) AddFrame(points int)  {}
func (n *noopStats) AddObjects(count int) {}
func (n *noopStats) AddTelemetry()        {}
func (n *noopStats) LogStats()            {}

// Start binds the socket and processes packets until the context is
// cancelled.
func (l *UDPListener) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", l.address)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP address: %w", err)
	}
	l.conn = conn
	defer conn.Close()

	if err := conn.SetReadBuffer(l.rcvBuf); err != nil {
		log.Printf("Warning: failed to set UDP receive buffer size to %d: %v", l.rcvBuf, err)
	}

	log.Printf("%s stream listener started on %s with receive buffer %d bytes", l.kind, l.address, l.rcvBuf)

	// Frame fragments are 1372 bytes; leave margin for protocol growth.
	buffer := make([]byte, 2048)

	for {
		select {
		case <-ctx.Done():
			log.Printf("%s stream listener stopping", l.kind)
			return ctx.Err()
		default:
			// Short read deadline so context cancellation is noticed.
			conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))

			n, _, err := conn.ReadFromUDP(buffer)
			if err != nil {
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					continue
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("%s stream read error: %v", l.kind, err)
				continue
			}

			l.handlePacket(buffer[:n])
		}
	}
}

// handlePacket decodes one payload and fans out any completed record.
// Decode errors are counted and rate-limited in the log: fragment gaps are
// expected under UDP loss and must not flood output.
func (l *UDPListener) handlePacket(payload []byte) {
	l.stats.AddPacket(len(payload))

	if l.forwarder != nil {
		l.forwarder.ForwardAsync(payload)
	}
	if l.device == nil {
		return
	}

	switch l.kind {
	case StreamFrame:
		frame, err := l.device.DecodeFrame(payload)
		if err != nil {
			if errors.Is(err, hfl.ErrFragmentGap) {
				l.stats.AddGap()
			}
			l.logDecodeError(err)
			return
		}
		if frame != nil {
			l.stats.AddFrame(len(frame.Points))
			if l.handlers.OnFrame != nil {
				l.handlers.OnFrame(frame)
			}
		}
	case StreamObject:
		list, err := l.device.DecodeObjects(payload)
		if err != nil {
			l.logDecodeError(err)
			return
		}
		if list != nil {
			l.stats.AddObjects(len(list))
			if l.handlers.OnObjects != nil {
				l.handlers.OnObjects(list)
			}
		}
	case StreamTelemetry:
		rec, err := l.device.DecodeTelemetry(payload)
		if err != nil {
			l.logDecodeError(err)
			return
		}
		l.stats.AddTelemetry()
		if l.handlers.OnTelemetry != nil {
			l.handlers.OnTelemetry(rec)
		}
	case StreamSlice:
		if err := l.device.DecodeSlice(payload); err != nil {
			l.logDecodeError(err)
		}
	}
}

func (l *UDPListener) logDecodeError(err error) {
	l.decodeErrs++
	if l.decodeErrs <= 10 || l.decodeErrs%100 == 0 {
		log.Printf("%s stream decode error (%d so far): %v", l.kind, l.decodeErrs, err)
	}
}
