//go:build !pcap
// +build !pcap

package network

import (
	"context"
	"fmt"

	"github.com/banshee-data/hfl110.report/internal/hfl"
)

// ReplayPCAP is unavailable without the 'pcap' build tag (it links libpcap).
func ReplayPCAP(ctx context.Context, pcapFile string, portKinds map[int]StreamKind, device hfl.Device, stats StatsInterface, handlers Handlers) error {
	return fmt.Errorf("PCAP support not available: rebuild with -tags pcap")
}
