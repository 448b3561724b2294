package network

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestForwarderInvalidAddress(t *testing.T) {
	if _, err := NewPacketForwarder("this is not a host", 1, nil, time.Minute); err == nil {
		t.Error("expected error for invalid forward address")
	}
}

func TestForwarderDeliversPackets(t *testing.T) {
	sink, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer sink.Close()
	port := sink.LocalAddr().(*net.UDPAddr).Port

	f, err := NewPacketForwarder("127.0.0.1", port, nil, time.Minute)
	if err != nil {
		t.Fatalf("new forwarder: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.Start(ctx)

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	f.ForwardAsync(payload)
	// Mutating the original must not affect the queued copy.
	payload[0] = 0x00

	sink.SetReadDeadline(time.Now().Add(3 * time.Second))
	buf := make([]byte, 64)
	n, _, err := sink.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 4 || buf[0] != 0xDE {
		t.Errorf("forwarded packet corrupted: % X", buf[:n])
	}
}

func TestForwarderDropsWhenFull(t *testing.T) {
	stats := NewPacketStats()
	f, err := NewPacketForwarder("127.0.0.1", 9, stats, time.Minute)
	if err != nil {
		t.Fatalf("new forwarder: %v", err)
	}
	defer f.conn.Close()

	// Never started, so the channel fills up and overflow is counted.
	for i := 0; i < 1001; i++ {
		f.ForwardAsync([]byte{0x01})
	}
	if stats.dropped != 1 {
		t.Errorf("expected 1 dropped packet, got %d", stats.dropped)
	}
}
