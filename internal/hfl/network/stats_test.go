package network

import "testing"

func TestPacketStatsTotals(t *testing.T) {
	s := NewPacketStats()

	s.AddPacket(1372)
	s.AddPacket(1372)
	s.AddFrame(4096)
	s.AddGap()
	s.AddObjects(11)
	s.AddTelemetry()
	s.AddDropped()

	packets, frames, gaps := s.Totals()
	if packets != 2 || frames != 1 || gaps != 1 {
		t.Errorf("totals: packets=%d frames=%d gaps=%d", packets, frames, gaps)
	}

	// LogStats resets interval counters but not lifetime totals.
	s.LogStats()
	packets, frames, gaps = s.Totals()
	if packets != 2 || frames != 1 || gaps != 1 {
		t.Errorf("totals after reset: packets=%d frames=%d gaps=%d", packets, frames, gaps)
	}
	if s.packets != 0 || s.frames != 0 || s.gaps != 0 {
		t.Error("interval counters not reset by LogStats")
	}
}
