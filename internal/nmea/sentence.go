package nmea

import (
	"fmt"
	"strconv"
	"strings"
)

// Sentence is one framed NMEA line.
type Sentence struct {
	// Talker is the source prefix ("GP", "GN", ...), or "P" for
	// proprietary sentences.
	Talker string
	// MessageID is the sentence type without the talker ("GLL").
	MessageID string
	// Data is the comma-delimited payload after the header, excluding
	// the checksum.
	Data string
	// Checksum is the value declared after '*'.
	Checksum byte
}

// Parse frames a raw line and verifies its checksum.
func Parse(line string) (Sentence, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return Sentence{}, ErrMissingStart
	}
	star := strings.LastIndexByte(line, '*')
	if star == -1 {
		return Sentence{}, ErrMissingChecksum
	}
	body := line[1:star]
	ck := strings.TrimSpace(line[star+1:])
	if len(ck) != 2 {
		return Sentence{}, fmt.Errorf("%w: checksum %q, want 2 hex digits", ErrBadChecksum, ck)
	}
	want, err := strconv.ParseUint(ck, 16, 8)
	if err != nil {
		return Sentence{}, fmt.Errorf("%w: %q is not hex", ErrBadChecksum, ck)
	}
	if got := Checksum(body); got != byte(want) {
		return Sentence{}, fmt.Errorf("%w: calculated %02X, declared %02X", ErrBadChecksum, got, byte(want))
	}

	header, data, _ := strings.Cut(body, ",")
	talker, id, err := splitHeader(header)
	if err != nil {
		return Sentence{}, err
	}
	return Sentence{Talker: talker, MessageID: id, Data: data, Checksum: byte(want)}, nil
}

func splitHeader(h string) (talker, id string, err error) {
	if len(h) < 3 {
		return "", "", fmt.Errorf("%w: %q", ErrShortHeader, h)
	}
	if h[0] == 'P' {
		return "P", h[1:], nil
	}
	// Accept GNxxx/GPxxx and odd-length vendor talkers; the type is the last 3 chars.
	return h[:len(h)-3], h[len(h)-3:], nil
}

// Checksum is the XOR of every byte in s. s must not include the '$' or
// the '*HH' suffix.
func Checksum(s string) byte {
	ck := byte(0)
	for i := 0; i < len(s); i++ {
		ck ^= s[i]
	}
	return ck
}

// CalcChecksum recomputes the checksum from the framed fields. It assumes
// the header was followed by a comma, which holds for every data sentence.
func (s Sentence) CalcChecksum() byte {
	return Checksum(s.Talker + s.MessageID + "," + s.Data)
}

// AppendChecksum frames a payload such as "GPGLL,..." as "$GPGLL,...*HH".
// A leading '$' is accepted and not included in the checksum.
func AppendChecksum(payload string) string {
	payload = strings.TrimPrefix(payload, "$")
	return fmt.Sprintf("$%s*%02X", payload, Checksum(payload))
}

// String reassembles the sentence as it appeared on the wire.
func (s Sentence) String() string {
	return AppendChecksum(s.Talker + s.MessageID + "," + s.Data)
}
