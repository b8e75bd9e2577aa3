package gps

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"gllwatch/internal/nmea"
)

var sampleLines = []string{
	"garbage before the receiver settles",
	nmea.AppendChecksum("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"),
	"$GPGLL,5107.0013414,N,11402.3279144,W,205412.00,A,A*73",
	nmea.AppendChecksum("GPGLL,5107.00,N,11402.32,W,205413.00,Q,A"),
	"$GNGLL,5107.0014143,N,11402.3278489,W,205122.00,V,E*7D",
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestService_DisabledIsNoop(t *testing.T) {
	s := New(Config{Enable: false})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	snap := s.Snapshot()
	if snap.Enabled || snap.Source != SourceSerial {
		t.Fatalf("snapshot=%+v", snap)
	}
	s.Close()
}

func TestService_UnknownSource(t *testing.T) {
	s := New(Config{Enable: true, Source: "bluetooth"})
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestService_FileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.nmea")
	if err := os.WriteFile(path, []byte(strings.Join(sampleLines, "\r\n")+"\r\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	var mu sync.Mutex
	var fixes []Fix
	s := New(Config{
		Enable:  true,
		Source:  "FILE",
		Path:    path,
		Metrics: m,
		OnFix: func(f Fix) {
			mu.Lock()
			fixes = append(fixes, f)
			mu.Unlock()
		},
	})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Wait()
	defer s.Close()

	snap := s.Snapshot()
	if snap.Lines != 4 || snap.Decoded != 2 || snap.Skipped != 1 || snap.Malformed != 1 {
		t.Fatalf("counts lines=%d decoded=%d skipped=%d malformed=%d", snap.Lines, snap.Decoded, snap.Skipped, snap.Malformed)
	}
	if snap.Valid {
		t.Fatalf("last GLL was V; expected invalid")
	}
	if !strings.Contains(snap.LastError, "status") {
		t.Fatalf("last_error=%q", snap.LastError)
	}
	if len(snap.RecentLines) != 4 {
		t.Fatalf("recent_lines=%d want 4", len(snap.RecentLines))
	}

	mu.Lock()
	defer mu.Unlock()
	if len(fixes) != 2 || fixes[0].Status != "A" || fixes[1].Mode != "E" {
		t.Fatalf("fixes=%+v", fixes)
	}

	if got := testutil.ToFloat64(m.sentences.WithLabelValues(resultDecoded)); got != 2 {
		t.Fatalf("decoded counter=%v want 2", got)
	}
	if got := testutil.ToFloat64(m.sentences.WithLabelValues(resultMalformed)); got != 1 {
		t.Fatalf("malformed counter=%v want 1", got)
	}
	if got := testutil.ToFloat64(m.fixValid); got != 0 {
		t.Fatalf("fix_valid=%v want 0", got)
	}
}

func TestService_FileSourceMissing(t *testing.T) {
	s := New(Config{Enable: true, Source: SourceFile, Path: filepath.Join(t.TempDir(), "nope")})
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if s.Snapshot().LastError == "" {
		t.Fatalf("expected last error")
	}
}

// serveLines accepts one connection, optionally reads a request line, and
// writes lines to it.
func serveLines(t *testing.T, lines []string) (addr string, request <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	req := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		if l, err := bufio.NewReader(conn).ReadString('\n'); err == nil {
			req <- l
		}
		for _, l := range lines {
			if _, err := conn.Write([]byte(l + "\r\n")); err != nil {
				return
			}
		}
		// Hold the connection until the client goes away.
		_ = conn.SetReadDeadline(time.Time{})
		_, _ = conn.Read(make([]byte, 1))
	}()
	return ln.Addr().String(), req
}

func TestService_TCPSource(t *testing.T) {
	addr, _ := serveLines(t, sampleLines)

	s := New(Config{Enable: true, Source: SourceTCP, Addr: addr})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	waitFor(t, "two decoded sentences", func() bool { return s.Snapshot().Decoded == 2 })
	snap := s.Snapshot()
	if snap.Link == nil || snap.Link.State != "connected" || snap.Link.Lines == 0 {
		t.Fatalf("link=%+v", snap.Link)
	}
	if snap.Addr != addr || snap.Source != SourceTCP {
		t.Fatalf("snapshot=%+v", snap)
	}
}

func TestService_GPSDSource(t *testing.T) {
	lines := append([]string{
		`{"class":"VERSION","release":"3.25","rev":"3.25","proto_major":3,"proto_minor":15}`,
		`{"class":"DEVICES","devices":[{"class":"DEVICE","path":"/dev/ttyACM3"}]}`,
	}, sampleLines...)
	addr, req := serveLines(t, lines)

	s := New(Config{Enable: true, Source: SourceGPSD, Addr: addr})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	select {
	case l := <-req:
		if !strings.HasPrefix(l, "?WATCH=") {
			t.Fatalf("request=%q", l)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no WATCH request")
	}
	waitFor(t, "two decoded sentences", func() bool { return s.Snapshot().Decoded == 2 })
	if dev := s.Snapshot().Device; dev != "/dev/ttyACM3" {
		t.Fatalf("device=%q want /dev/ttyACM3", dev)
	}
}
