package gps

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/ratelimit"
)

const (
	SourceSerial = "serial"
	SourceTCP    = "tcp"
	SourceGPSD   = "gpsd"
	SourceFile   = "file"
)

// Config controls the GPS reader.
//
// Device may be empty to auto-detect /dev/ttyACM* and /dev/ttyUSB*.
// Addr is host:port for Source "tcp" and "gpsd". Path is the capture file
// for Source "file".
type Config struct {
	Enable bool

	// Source is one of "serial", "tcp", "gpsd" or "file". Empty means serial.
	Source string

	Device string
	Baud   int

	Addr string
	Path string

	// LogMalformed logs every line that fails to frame or decode. Otherwise
	// only LastError is updated.
	LogMalformed bool

	// OnFix is called on the reader goroutine for every decoded GLL
	// sentence. It should not block.
	OnFix func(Fix)

	Metrics *Metrics
}

type Snapshot struct {
	Enabled bool `json:"enabled"`
	Valid   bool `json:"valid"`

	Source string `json:"source,omitempty"`
	Device string `json:"device,omitempty"`
	Baud   int    `json:"baud,omitempty"`
	Addr   string `json:"addr,omitempty"`

	Fix *Fix `json:"fix,omitempty"`

	Lines     uint64 `json:"lines"`
	Decoded   uint64 `json:"decoded"`
	Skipped   uint64 `json:"skipped"`
	Malformed uint64 `json:"malformed"`

	LastFixUTC  string   `json:"last_fix_utc,omitempty"`
	LastError   string   `json:"last_error,omitempty"`
	RecentLines []string `json:"recent_lines,omitempty"`

	// Link is the TCP connection state for the tcp and gpsd sources.
	Link *LineSnapshot `json:"link,omitempty"`
}

type Service struct {
	cfg Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	last atomic.Value // Snapshot
	tail *tailBuffer

	mu     sync.Mutex
	st     gllState
	closer io.Closer
	client *LineClient
}

func New(cfg Config) *Service {
	cfg.Source = normalizeSource(cfg.Source)
	s := &Service{cfg: cfg, tail: newTailBuffer(20, 256)}
	s.st = gllState{source: cfg.Source, device: cfg.Device, baud: cfg.Baud, addr: cfg.Addr}
	s.last.Store(Snapshot{Enabled: cfg.Enable, Source: cfg.Source, Device: cfg.Device, Baud: cfg.Baud, Addr: cfg.Addr})
	return s
}

func normalizeSource(src string) string {
	src = strings.ToLower(strings.TrimSpace(src))
	if src == "" {
		return SourceSerial
	}
	return src
}

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("gps service is nil")
	}
	if !s.cfg.Enable {
		return nil
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	switch s.cfg.Source {
	case SourceSerial:
		return s.startSerialLocked(ctx)
	case SourceTCP, SourceGPSD:
		return s.startNetworkLocked(ctx)
	case SourceFile:
		return s.startFileLocked(ctx)
	default:
		return fmt.Errorf("unknown gps source %q", s.cfg.Source)
	}
}

func (s *Service) startSerialLocked(ctx context.Context) error {
	device := strings.TrimSpace(s.cfg.Device)
	if device == "" {
		device = autoDetectDevice()
		if device == "" {
			s.setErrorLocked("gps auto-detect failed: no /dev/ttyACM* or /dev/ttyUSB* found")
			return fmt.Errorf("gps auto-detect failed")
		}
	}
	baud := s.cfg.Baud
	if baud == 0 {
		baud = 9600
	}

	port, err := openSerial(device, baud)
	if err != nil {
		s.setErrorLocked(fmt.Sprintf("gps open failed device=%s baud=%d: %v", device, baud, err))
		return err
	}
	s.closer = port
	s.st.device = device
	s.st.baud = baud
	s.last.Store(s.st.snapshot())

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Printf("gps enabled source=serial device=%s baud=%d", device, baud)

		// USB receivers drop off the bus on brownouts; reopen at most
		// once every 2 seconds.
		rl := ratelimit.New(1, ratelimit.Per(2*time.Second))
		rl.Take()
		for {
			err := s.readLines(childCtx, port)
			_ = port.Close()
			if childCtx.Err() != nil {
				return
			}
			s.setError(fmt.Sprintf("gps read stopped: %v", err))

			for {
				rl.Take()
				if childCtx.Err() != nil {
					return
				}
				port, err = openSerial(device, baud)
				if err == nil {
					break
				}
				s.setError(fmt.Sprintf("gps reopen failed device=%s: %v", device, err))
			}
			s.mu.Lock()
			if childCtx.Err() != nil {
				s.mu.Unlock()
				_ = port.Close()
				return
			}
			s.closer = port
			s.mu.Unlock()
			log.Printf("gps reopened device=%s", device)
		}
	}()
	return nil
}

func (s *Service) startNetworkLocked(ctx context.Context) error {
	addr := strings.TrimSpace(s.cfg.Addr)
	lc := LineClientConfig{Name: s.cfg.Source, Addr: addr}
	if s.cfg.Source == SourceGPSD {
		if lc.Addr == "" {
			lc.Addr = gpsdDefaultAddr
		}
		lc.Hello = gpsdWatch
	}
	client, err := NewLineClient(lc)
	if err != nil {
		s.setErrorLocked(err.Error())
		return err
	}
	s.st.addr = lc.Addr

	childCtx, cancel := context.WithCancel(ctx)
	if err := client.Start(childCtx, func(line string) error {
		if s.cfg.Source == SourceGPSD && isGPSDReport(line) {
			dev, err := parseGPSDReport(line)
			if err != nil {
				s.setError(err.Error())
				return err
			}
			if dev != "" {
				s.mu.Lock()
				s.st.device = dev
				s.mu.Unlock()
			}
			return nil
		}
		s.handleLine(line)
		return nil
	}); err != nil {
		cancel()
		return err
	}
	s.cancel = cancel
	s.client = client
	s.last.Store(s.st.snapshot())
	log.Printf("gps enabled source=%s addr=%s", s.cfg.Source, lc.Addr)
	return nil
}

func (s *Service) startFileLocked(ctx context.Context) error {
	path := strings.TrimSpace(s.cfg.Path)
	f, err := os.Open(path)
	if err != nil {
		s.setErrorLocked(fmt.Sprintf("gps open failed path=%s: %v", path, err))
		return err
	}
	s.closer = f
	s.st.device = path

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer f.Close()
		log.Printf("gps enabled source=file path=%s", path)
		if err := s.readLines(childCtx, f); err != nil && err != io.EOF && childCtx.Err() == nil {
			s.setError(fmt.Sprintf("gps read stopped: %v", err))
			return
		}
		snap := s.Snapshot()
		log.Printf("gps file done lines=%d decoded=%d malformed=%d skipped=%d", snap.Lines, snap.Decoded, snap.Malformed, snap.Skipped)
	}()
	return nil
}

// readLines feeds every line of r to handleLine until r fails or ctx is
// done. It returns io.EOF at end of input.
func (s *Service) readLines(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	// NMEA sentences are typically < 82 chars, but allow some headroom.
	scanner.Buffer(make([]byte, 0, 256), 4096)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.handleLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

// handleLine decodes one raw line and publishes the result.
func (s *Service) handleLine(line string) {
	line = strings.TrimSpace(line)
	// Some receivers may include non-NMEA chatter; filter quickly.
	if !strings.HasPrefix(line, "$") {
		return
	}
	s.tail.add(line)

	s.mu.Lock()
	result, err := s.st.apply(time.Now().UTC(), line)
	snap := s.st.snapshot()
	s.last.Store(snap)
	s.mu.Unlock()

	valid := snap.Fix != nil && snap.Fix.Valid()
	s.cfg.Metrics.observe(result, valid)

	if err != nil && s.cfg.LogMalformed {
		log.Printf("gps malformed line=%q err=%v", line, err)
	}
	if result == resultDecoded && s.cfg.OnFix != nil {
		s.cfg.OnFix(*snap.Fix)
	}
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	// Cancel under the lock so the serial reopen loop cannot install a
	// new port after we took the old one.
	if s.cancel != nil {
		s.cancel()
	}
	closer := s.closer
	client := s.client
	s.cancel = nil
	s.closer = nil
	s.client = nil
	s.mu.Unlock()

	if closer != nil {
		_ = closer.Close()
	}
	if client != nil {
		client.Close()
	}
	s.wg.Wait()
}

// Wait blocks until the reader goroutines exit. A file source exits at end
// of input; the others run until Close or ctx cancellation.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	v := s.last.Load()
	if v == nil {
		return Snapshot{}
	}
	out := v.(Snapshot)
	out.RecentLines = s.tail.snapshot()

	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client != nil {
		link := client.Snapshot()
		out.Link = &link
	}
	return out
}

func (s *Service) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErrorLocked(msg)
}

func (s *Service) setErrorLocked(msg string) {
	// Do not force Valid=false here; transient I/O issues shouldn't flip validity.
	s.st.lastErr = msg
	s.last.Store(s.st.snapshot())
}

func autoDetectDevice() string {
	for _, prefix := range []string{"/dev/ttyACM", "/dev/ttyUSB"} {
		for i := 0; i < 10; i++ {
			p := fmt.Sprintf("%s%d", prefix, i)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}
