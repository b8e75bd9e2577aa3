package nmea

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a UTC time without a date, as carried by most sentences.
type TimeOfDay struct {
	Hour        int
	Minute      int
	Second      int
	Millisecond int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d.%03d", t.Hour, t.Minute, t.Second, t.Millisecond)
}

// On places t on the UTC calendar day of date.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}

// ParseLatLon consumes "ddmm.mmmm,N,dddmm.mmmm,E" and returns signed
// decimal degrees (South and West negative) plus the unconsumed input,
// which starts at the separator after the longitude hemisphere.
func ParseLatLon(s string) (lat, lon float64, rest string, err error) {
	lat, rest, err = parseCoordinate(s, 'N', 'S')
	if err != nil {
		return 0, 0, s, fmt.Errorf("latitude: %w", err)
	}
	if rest, err = expectComma(rest); err != nil {
		return 0, 0, s, fmt.Errorf("latitude: %w", err)
	}
	lon, rest, err = parseCoordinate(rest, 'E', 'W')
	if err != nil {
		return 0, 0, s, fmt.Errorf("longitude: %w", err)
	}
	return lat, lon, rest, nil
}

// parseCoordinate parses one "value,hemisphere" pair.
//
// The degree/minute split is taken from the decimal point: the last two
// digits of the integer part are minutes, everything before is degrees.
func parseCoordinate(s string, pos, neg byte) (float64, string, error) {
	v, rest := takeField(s)
	dot := strings.IndexByte(v, '.')
	intPart := v
	if dot != -1 {
		intPart = v[:dot]
	}
	if len(intPart) < 3 || !isDigits(intPart) || (dot != -1 && !isDigits(v[dot+1:])) {
		return 0, s, syntaxErrorf("bad value %q", v)
	}
	deg, err := strconv.Atoi(intPart[:len(intPart)-2])
	if err != nil {
		return 0, s, syntaxErrorf("bad degrees %q", v)
	}
	mins, err := strconv.ParseFloat(v[len(intPart)-2:], 64)
	if err != nil {
		return 0, s, syntaxErrorf("bad minutes %q", v)
	}

	rest, err = expectComma(rest)
	if err != nil {
		return 0, s, err
	}
	hemi, rest := takeField(rest)
	if len(hemi) != 1 || (hemi[0] != pos && hemi[0] != neg) {
		return 0, s, syntaxErrorf("hemisphere %q, want %c or %c", hemi, pos, neg)
	}

	dec := float64(deg) + mins/60.0
	if hemi[0] == neg {
		dec = -dec
	}
	return dec, rest, nil
}

// ParseTimeOfDay consumes "hhmmss" and an optional ".f+" fraction. The
// fraction is truncated to milliseconds. Any other characters before the
// next separator are left in rest.
func ParseTimeOfDay(s string) (TimeOfDay, string, error) {
	if len(s) < 6 || !isDigits(s[:6]) {
		return TimeOfDay{}, s, syntaxErrorf("time %q, want hhmmss", head(s))
	}
	t := TimeOfDay{
		Hour:   int(s[0]-'0')*10 + int(s[1]-'0'),
		Minute: int(s[2]-'0')*10 + int(s[3]-'0'),
		Second: int(s[4]-'0')*10 + int(s[5]-'0'),
	}
	if t.Hour > 23 || t.Minute > 59 || t.Second > 59 {
		return TimeOfDay{}, s, syntaxErrorf("time %q out of range", s[:6])
	}
	rest := s[6:]
	if strings.HasPrefix(rest, ".") {
		n := 1
		for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
		frac := rest[1:n]
		ms := 0
		for i := 0; i < 3; i++ {
			ms *= 10
			if i < len(frac) {
				ms += int(frac[i] - '0')
			}
		}
		t.Millisecond = ms
		rest = rest[n:]
	}
	return t, rest, nil
}

// takeField splits s at the next comma; rest keeps the comma.
func takeField(s string) (field, rest string) {
	if i := strings.IndexByte(s, ','); i != -1 {
		return s[:i], s[i:]
	}
	return s, ""
}

func expectComma(s string) (string, error) {
	if !strings.HasPrefix(s, ",") {
		return s, syntaxErrorf("expected ',' at %q", head(s))
	}
	return s[1:], nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// head shortens s for error messages.
func head(s string) string {
	if len(s) > 16 {
		return s[:16] + "..."
	}
	return s
}
