package network

import (
	"log"
	"sync"
	"time"
)

// PacketStats accumulates counters across all stream listeners. Interval
// counters reset on every LogStats call so the log line reads as a rate;
// totals are kept for the lifetime of the process.
type PacketStats struct {
	mu sync.Mutex

	packets   int64
	bytes     int64
	frames    int64
	points    int64
	gaps      int64
	objects   int64
	telemetry int64
	dropped   int64

	totalPackets int64
	totalFrames  int64
	totalGaps    int64
	lastReset    time.Time
}

// NewPacketStats returns a zeroed stats collector.
func NewPacketStats() *PacketStats {
	return &PacketStats{lastReset: time.Now()}
}

func (s *PacketStats) AddPacket(bytes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packets++
	s.totalPackets++
	s.bytes += int64(bytes)
}

func (s *PacketStats) AddDropped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped++
}

func (s *PacketStats) AddGap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gaps++
	s.totalGaps++
}

func (s *PacketStats) AddFrame(points int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	s.totalFrames++
	s.points += int64(points)
}

func (s *PacketStats) AddObjects(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects += int64(count)
}

func (s *PacketStats) AddTelemetry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.telemetry++
}

// Totals returns lifetime packet, frame and gap counts.
func (s *PacketStats) Totals() (packets, frames, gaps int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPackets, s.totalFrames, s.totalGaps
}

// LogStats emits one summary line for the interval since the previous call
// and resets the interval counters.
func (s *PacketStats) LogStats() {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := time.Since(s.lastReset).Seconds()
	if elapsed <= 0 {
		elapsed = 1
	}

	log.Printf("stats: %.0f pkt/s %.0f KB/s frames=%d points=%d gaps=%d objects=%d telemetry=%d fwd_dropped=%d (total: %d pkts, %d frames, %d gaps)",
		float64(s.packets)/elapsed,
		float64(s.bytes)/elapsed/1024,
		s.frames, s.points, s.gaps, s.objects, s.telemetry, s.dropped,
		s.totalPackets, s.totalFrames, s.totalGaps)

	s.packets = 0
	s.bytes = 0
	s.frames = 0
	s.points = 0
	s.gaps = 0
	s.objects = 0
	s.telemetry = 0
	s.dropped = 0
	s.lastReset = time.Now()
}
