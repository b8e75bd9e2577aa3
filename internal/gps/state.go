package gps

import (
	"time"

	"gllwatch/internal/nmea"
)

// Line outcomes, also used as the metrics label.
const (
	resultDecoded   = "decoded"
	resultSkipped   = "skipped"
	resultMalformed = "malformed"
)

type gllState struct {
	source string
	device string
	baud   int
	addr   string

	fix     Fix
	fixOK   bool
	lastFix time.Time
	valid   bool

	lines     uint64
	decoded   uint64
	skipped   uint64
	malformed uint64

	lastErr string
}

// apply frames and decodes one '$' line. It returns the outcome and, for
// malformed lines, the framing or decode error.
func (s *gllState) apply(nowUTC time.Time, line string) (string, error) {
	s.lines++

	sent, err := nmea.Parse(line)
	if err != nil {
		s.malformed++
		s.lastErr = err.Error()
		return resultMalformed, err
	}
	if sent.MessageID != nmea.TypeGLL {
		s.skipped++
		return resultSkipped, nil
	}

	g, err := nmea.Decode(sent)
	if err != nil {
		s.malformed++
		s.lastErr = err.Error()
		return resultMalformed, err
	}

	s.decoded++
	s.fix = NewFix(sent.Talker, g)
	s.fixOK = true
	s.lastFix = nowUTC
	// A void GLL keeps the last position but drops validity.
	s.valid = g.Status == nmea.StatusValid
	return resultDecoded, nil
}

func (s *gllState) snapshot() Snapshot {
	out := Snapshot{
		Enabled:   true,
		Valid:     s.valid,
		Source:    s.source,
		Device:    s.device,
		Baud:      s.baud,
		Addr:      s.addr,
		Lines:     s.lines,
		Decoded:   s.decoded,
		Skipped:   s.skipped,
		Malformed: s.malformed,
		LastError: s.lastErr,
	}
	if s.fixOK {
		v := s.fix
		out.Fix = &v
	}
	if !s.lastFix.IsZero() {
		out.LastFixUTC = s.lastFix.UTC().Format(time.RFC3339Nano)
	}
	return out
}
