package nmea

import "strings"

// TypeGLL is the message ID of the Geographic Position sentence.
const TypeGLL = "GLL"

// DataStatus is the GLL data status field.
type DataStatus int

const (
	StatusInvalid DataStatus = iota
	StatusValid
)

// DataStatusFromLetter maps 'A' to StatusValid and every other letter to
// StatusInvalid.
func DataStatusFromLetter(c byte) DataStatus {
	if c == 'A' {
		return StatusValid
	}
	return StatusInvalid
}

func (s DataStatus) Letter() byte {
	if s == StatusValid {
		return 'A'
	}
	return 'V'
}

func (s DataStatus) String() string {
	if s == StatusValid {
		return "valid"
	}
	return "invalid"
}

// PositionMode is the positioning system mode indicator (NMEA 2.3 and
// later).
type PositionMode int

const (
	ModeAutonomous PositionMode = iota
	ModeDifferential
	ModeEstimated
	ModeManualInput
	ModeDataNotValid
)

// PositionModeFromLetter maps A, D, E and M to their modes; 'N' and any
// unknown letter map to ModeDataNotValid.
func PositionModeFromLetter(c byte) PositionMode {
	switch c {
	case 'A':
		return ModeAutonomous
	case 'D':
		return ModeDifferential
	case 'E':
		return ModeEstimated
	case 'M':
		return ModeManualInput
	default:
		return ModeDataNotValid
	}
}

func (m PositionMode) Letter() byte {
	switch m {
	case ModeAutonomous:
		return 'A'
	case ModeDifferential:
		return 'D'
	case ModeEstimated:
		return 'E'
	case ModeManualInput:
		return 'M'
	default:
		return 'N'
	}
}

func (m PositionMode) String() string {
	switch m {
	case ModeAutonomous:
		return "autonomous"
	case ModeDifferential:
		return "differential"
	case ModeEstimated:
		return "estimated"
	case ModeManualInput:
		return "manual"
	default:
		return "not_valid"
	}
}

// GLL is a decoded Geographic Position sentence.
type GLL struct {
	Latitude  float64 // decimal degrees, North positive
	Longitude float64 // decimal degrees, East positive
	FixTime   TimeOfDay
	Status    DataStatus
	// Mode is nil when the sentence predates NMEA 2.3 or carries a
	// letter outside A/D/E/M.
	Mode *PositionMode
}

// Consistent reports whether Status agrees with Mode. The standard requires
// Status 'V' for every mode except Autonomous and Differential. DecodeGLL
// does not enforce this.
func (g GLL) Consistent() bool {
	if g.Mode == nil {
		return true
	}
	switch *g.Mode {
	case ModeAutonomous, ModeDifferential:
		return true
	default:
		return g.Status == StatusInvalid
	}
}

// Decode decodes a framed GLL sentence.
func Decode(s Sentence) (GLL, error) {
	return DecodeGLL(s.MessageID, s.Data)
}

// DecodeGLL decodes the payload of a GLL sentence:
//
//	ddmm.mm,N,dddmm.mm,E,hhmmss.ss,A,A
//
// messageID must be exactly "GLL". The first malformed field aborts the
// decode and is reported as a *FieldError.
func DecodeGLL(messageID, payload string) (GLL, error) {
	if messageID != TypeGLL {
		return GLL{}, &WrongSentenceHeaderError{Expected: TypeGLL, Found: messageID}
	}

	var (
		out  GLL
		err  error
		rest = payload
	)
	fail := func(field, at string, err error) (GLL, error) {
		return GLL{}, &FieldError{Sentence: TypeGLL, Field: field, Remaining: at, Err: err}
	}

	if out.Latitude, out.Longitude, rest, err = ParseLatLon(rest); err != nil {
		return fail("lat/lon", rest, err)
	}
	if rest, err = expectComma(rest); err != nil {
		return fail("lat/lon", rest, err)
	}
	if out.FixTime, rest, err = ParseTimeOfDay(rest); err != nil {
		return fail("fix time", rest, err)
	}

	// Sub-second trailer or spare field; content is ignored.
	_, rest = takeField(rest)
	if rest, err = expectComma(rest); err != nil {
		return fail("fix time", rest, err)
	}
	// Some receivers leave an empty spare field before the status.
	if strings.HasPrefix(rest, ",") {
		rest = rest[1:]
	}

	if rest == "" || (rest[0] != 'A' && rest[0] != 'V') {
		tok, _ := takeField(rest)
		return fail("status", rest, syntaxErrorf("status %q, want A or V", head(tok)))
	}
	out.Status = DataStatusFromLetter(rest[0])
	rest = rest[1:]

	// Mode indicator: absent before NMEA 2.3.
	if rest == "" {
		return out, nil
	}
	if rest, err = expectComma(rest); err != nil {
		return fail("status", rest, err)
	}
	if rest != "" && strings.IndexByte("ADEM", rest[0]) != -1 {
		m := PositionModeFromLetter(rest[0])
		out.Mode = &m
	}
	return out, nil
}
