package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gllwatch/internal/config"
	"gllwatch/internal/web"
)

func TestRun_FileSourceReturnsAtEOF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.nmea")
	if err := os.WriteFile(path, []byte(sampleCapture), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	cfg, err := config.Parse([]byte("gps:\n  enable: true\n  source: file\n  path: " + path + "\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := run(ctx, cfg, web.NewLogBuffer(10)); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatalf("run returned only after timeout")
	}
}

func TestRun_MissingFileFails(t *testing.T) {
	cfg, err := config.Parse([]byte("gps:\n  enable: true\n  source: file\n  path: /nonexistent/capture.nmea\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if err := run(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGPSConfig(t *testing.T) {
	cfg := config.Config{
		GPS: config.GPSConfig{Enable: true, Source: "tcp", Addr: "10.0.0.1:10110"},
		Log: config.LogConfig{InvalidLines: true},
	}
	g := gpsConfig(cfg, nil)
	if !g.Enable || g.Source != "tcp" || g.Addr != "10.0.0.1:10110" || !g.LogMalformed {
		t.Fatalf("gps config=%+v", g)
	}
}
