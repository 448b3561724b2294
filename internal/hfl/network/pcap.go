//go:build pcap
// +build pcap

package network

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/banshee-data/hfl110.report/internal/hfl"
)

// ReplayPCAP reads a capture of sensor traffic and feeds the payloads into
// the device decoder. The sensor uses one UDP destination port per stream;
// portKinds maps each port of interest to its stream kind, and packets on
// other ports are skipped. Only available when building with the 'pcap'
// build tag.
func ReplayPCAP(ctx context.Context, pcapFile string, portKinds map[int]StreamKind, device hfl.Device, stats StatsInterface, handlers Handlers) error {
	handle, err := pcap.OpenOffline(pcapFile)
	if err != nil {
		return fmt.Errorf("failed to open PCAP file %s: %w", pcapFile, err)
	}
	defer handle.Close()

	if err := handle.SetBPFFilter("udp"); err != nil {
		return fmt.Errorf("failed to set BPF filter: %w", err)
	}

	// One dispatcher per stream so reassembly state and statistics behave
	// exactly as in live operation.
	listeners := make(map[int]*UDPListener, len(portKinds))
	for port, kind := range portKinds {
		listeners[port] = NewUDPListener(UDPListenerConfig{
			Kind:     kind,
			Device:   device,
			Stats:    stats,
			Handlers: handlers,
		})
	}

	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
	packetCount := 0
	startTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			log.Printf("PCAP replay stopping after %d packets", packetCount)
			return ctx.Err()
		case packet := <-packetSource.Packets():
			if packet == nil {
				log.Printf("PCAP replay complete: %d packets in %v", packetCount, time.Since(startTime))
				return nil
			}

			udpLayer := packet.Layer(layers.LayerTypeUDP)
			if udpLayer == nil {
				continue
			}
			udp, ok := udpLayer.(*layers.UDP)
			if !ok || len(udp.Payload) == 0 {
				continue
			}

			l, ok := listeners[int(udp.DstPort)]
			if !ok {
				continue
			}

			packetCount++
			l.handlePacket(udp.Payload)
		}
	}
}
