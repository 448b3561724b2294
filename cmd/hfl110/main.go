package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/hfl110.report/internal/hfl"
	"github.com/banshee-data/hfl110.report/internal/hfl/hfldb"
	"github.com/banshee-data/hfl110.report/internal/hfl/network"
)

var (
	listen        = flag.String("listen", ":8082", "HTTP listen address for health endpoint")
	udpAddress    = flag.String("udp-addr", "", "UDP bind address (default: listen on all interfaces)")
	framePort     = flag.Int("frame-port", 57410, "UDP port for the depth/intensity frame stream")
	objectPort    = flag.Int("object-port", 57411, "UDP port for the tracked-object stream")
	telemetryPort = flag.Int("telemetry-port", 57412, "UDP port for the telemetry stream")
	slicePort     = flag.Int("slice-port", 57413, "UDP port for the reserved slice stream")

	dbFile = flag.String("db", "hfl_data.db", "Path to the SQLite database file")

	rangeOffset = flag.Float64("range-offset", 0, "Global range offset in meters added to every raw range")

	overrideExtrinsics = flag.Bool("override-extrinsics", false, "Replace device-reported extrinsics with the values below")
	extrinsicRoll      = flag.Float64("extrinsic-roll", 0, "Extrinsic roll override in radians")
	extrinsicPitch     = flag.Float64("extrinsic-pitch", 0, "Extrinsic pitch override in radians")
	extrinsicYaw       = flag.Float64("extrinsic-yaw", 0, "Extrinsic yaw override in radians")
	extrinsicX         = flag.Float64("extrinsic-x", 0, "Extrinsic X translation override in meters")
	extrinsicY         = flag.Float64("extrinsic-y", 0, "Extrinsic Y translation override in meters")
	extrinsicZ         = flag.Float64("extrinsic-z", 0, "Extrinsic Z translation override in meters")

	forwardPackets = flag.Bool("forward", false, "Forward received UDP packets to another host")
	forwardAddr    = flag.String("forward-addr", "localhost", "Address to forward UDP packets to")
	forwardPort    = flag.Int("forward-port", 57400, "Port to forward UDP packets to")

	rcvBuf      = flag.Int("rcvbuf", 4<<20, "UDP receive buffer size in bytes (default 4MB)")
	logInterval = flag.Int("log-interval", 10, "Statistics logging interval in seconds")

	pcapFile = flag.String("pcap-file", "", "Replay a PCAP capture instead of listening (requires -tags pcap build)")
)

func deviceConfig() *hfl.DeviceConfig {
	return &hfl.DeviceConfig{
		GlobalRangeOffset:      *rangeOffset,
		ExtrinsicRoll:          *extrinsicRoll,
		ExtrinsicPitch:         *extrinsicPitch,
		ExtrinsicYaw:           *extrinsicYaw,
		TranslationX:           *extrinsicX,
		TranslationY:           *extrinsicY,
		TranslationZ:           *extrinsicZ,
		ExtrinsicsReconfigured: *overrideExtrinsics,
	}
}

func persistHandlers(db *hfldb.HFLDB) network.Handlers {
	return network.Handlers{
		OnFrame: func(f *hfl.Frame) {
			if _, err := db.InsertFrameSummary(f); err != nil {
				log.Printf("failed to store frame summary: %v", err)
			}
		},
		OnObjects: func(objects []hfl.TrackedObject) {
			if _, err := db.InsertObjectList(objects, time.Now()); err != nil {
				log.Printf("failed to store object list: %v", err)
			}
		},
		OnTelemetry: func(rec *hfl.TelemetryRecord) {
			if _, err := db.InsertTelemetry(rec, time.Now()); err != nil {
				log.Printf("failed to store telemetry: %v", err)
			}
		},
	}
}

func portKinds() map[int]network.StreamKind {
	return map[int]network.StreamKind{
		*framePort:     network.StreamFrame,
		*objectPort:    network.StreamObject,
		*telemetryPort: network.StreamTelemetry,
		*slicePort:     network.StreamSlice,
	}
}

func main() {
	flag.Parse()

	db, err := hfldb.NewHFLDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open hfl database: %v", err)
	}
	defer db.Close()

	device := hfl.NewHFL110DCUv1(deviceConfig())
	log.Printf("decoding %s protocol %s", device.Model(), device.Version())

	stats := network.NewPacketStats()
	handlers := persistHandlers(db)
	interval := time.Duration(*logInterval) * time.Second

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *pcapFile != "" {
		if err := network.ReplayPCAP(ctx, *pcapFile, portKinds(), device, stats, handlers); err != nil && err != context.Canceled {
			log.Fatalf("PCAP replay failed: %v", err)
		}
		stats.LogStats()
		return
	}

	var forwarder *network.PacketForwarder
	if *forwardPackets {
		forwarder, err = network.NewPacketForwarder(*forwardAddr, *forwardPort, stats, interval)
		if err != nil {
			log.Fatalf("Failed to create packet forwarder: %v", err)
		}
		defer forwarder.Close()
		forwarder.Start(ctx)
	}

	// Periodic statistics logging across all four stream listeners.
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats.LogStats()
			}
		}
	}()

	var wg sync.WaitGroup

	// One listener per sensor stream; all share the device, stats and
	// forwarder. The device decoder is single-threaded per stream, which
	// matches the one-goroutine-per-listener model here.
	for port, kind := range portKinds() {
		address := fmt.Sprintf("%s:%d", *udpAddress, port)

		l := network.NewUDPListener(network.UDPListenerConfig{
			Kind:      kind,
			Address:   address,
			RcvBuf:    *rcvBuf,
			Device:    device,
			Stats:     stats,
			Forwarder: forwarder,
			Handlers:  handlers,
		})

		wg.Add(1)
		go func(kind network.StreamKind) {
			defer wg.Done()
			if err := l.Start(ctx); err != nil && err != context.Canceled {
				log.Printf("%s stream listener error: %v", kind, err)
			}
		}(kind)
	}

	// HTTP server goroutine for the health endpoint.
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			packets, frames, gaps := stats.Totals()
			fmt.Fprintf(w, `{"status": "ok", "service": "hfl110", "packets": %d, "frames": %d, "gaps": %d, "timestamp": "%s"}`,
				packets, frames, gaps, time.Now().UTC().Format(time.RFC3339))
		})

		server := &http.Server{Addr: *listen, Handler: mux}

		go func() {
			log.Printf("Starting HTTP server on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
