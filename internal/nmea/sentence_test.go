package nmea

import (
	"errors"
	"testing"
)

func TestParse_ChecksumOK(t *testing.T) {
	line := AppendChecksum("GPGLL,4916.45,N,12311.12,W,225444,A,A")
	s, err := Parse(line + "\r\n")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Talker != "GP" || s.MessageID != "GLL" {
		t.Fatalf("talker=%q id=%q want GP/GLL", s.Talker, s.MessageID)
	}
	if s.Data != "4916.45,N,12311.12,W,225444,A,A" {
		t.Fatalf("data=%q", s.Data)
	}
	if s.CalcChecksum() != s.Checksum {
		t.Fatalf("calc=%02X declared=%02X", s.CalcChecksum(), s.Checksum)
	}
	if s.String() != line {
		t.Fatalf("String()=%q want %q", s.String(), line)
	}
}

func TestParse_LowercaseChecksumHex(t *testing.T) {
	// "$GPGLL,...*73" with lowercase hex digits is still valid.
	s, err := Parse("$GNGLL,5107.0014143,N,11402.3278489,W,205122.00,V,E*7d")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Checksum != 0x7D {
		t.Fatalf("checksum=%02X want 7D", s.Checksum)
	}
}

func TestParse_Errors(t *testing.T) {
	good := AppendChecksum("GPGLL,4916.45,N,12311.12,W,225444,A,A")
	cases := []struct {
		name string
		line string
		want error
	}{
		{name: "MissingStart", line: good[1:], want: ErrMissingStart},
		{name: "MissingChecksum", line: "$GPGLL,4916.45,N", want: ErrMissingChecksum},
		{name: "ShortChecksum", line: "$GPGLL,4916.45,N*7", want: ErrBadChecksum},
		{name: "NotHex", line: "$GPGLL,4916.45,N*ZZ", want: ErrBadChecksum},
		{name: "TrailingAfterChecksum", line: good + "ZZ", want: ErrBadChecksum},
		{name: "LongChecksum", line: good + "0", want: ErrBadChecksum},
		{name: "Mismatch", line: good[:len(good)-2] + "00", want: ErrBadChecksum},
		{name: "ShortHeader", line: AppendChecksum("GP,1,2"), want: ErrShortHeader},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.line)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want %v", err, tc.want)
			}
		})
	}
}

func TestParse_ProprietaryHeader(t *testing.T) {
	s, err := Parse(AppendChecksum("PUBX,00,081350.00"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Talker != "P" || s.MessageID != "UBX" {
		t.Fatalf("talker=%q id=%q want P/UBX", s.Talker, s.MessageID)
	}
	if _, err := Decode(s); err == nil {
		t.Fatalf("expected wrong header error")
	}
}

func TestAppendChecksum_AcceptsDollar(t *testing.T) {
	a := AppendChecksum("$GPGLL,1")
	b := AppendChecksum("GPGLL,1")
	if a != b {
		t.Fatalf("%q != %q", a, b)
	}
}
