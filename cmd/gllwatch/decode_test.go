package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gllwatch/internal/nmea"
)

func TestPrintDecoded(t *testing.T) {
	var buf bytes.Buffer
	if err := printDecoded(&buf, "$GPGLL,5107.0013414,N,11402.3279144,W,205412.00,A,A*73"); err != nil {
		t.Fatalf("printDecoded() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"talker: GP\n",
		"latitude: 51.1166890\n",
		"longitude: -114.0387986\n",
		"fix_time: 20:54:12.000\n",
		"status: A (valid)\n",
		"mode: A (autonomous)\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "warning") {
		t.Fatalf("unexpected warning:\n%s", out)
	}
}

func TestPrintDecoded_ModeAbsentAndInconsistent(t *testing.T) {
	var buf bytes.Buffer
	if err := printDecoded(&buf, "$GPGLL,4916.45,N,12311.12,W,225444,A*31"); err != nil {
		t.Fatalf("printDecoded() error: %v", err)
	}
	if !strings.Contains(buf.String(), "mode: absent\n") {
		t.Fatalf("output:\n%s", buf.String())
	}

	buf.Reset()
	if err := printDecoded(&buf, "$GPGLL,4916.45,N,12311.12,W,225444,A,E*58"); err != nil {
		t.Fatalf("printDecoded() error: %v", err)
	}
	if !strings.Contains(buf.String(), "warning: status A is not allowed with mode E") {
		t.Fatalf("output:\n%s", buf.String())
	}
}

func TestPrintDecoded_Errors(t *testing.T) {
	var buf bytes.Buffer
	if err := printDecoded(&buf, "$GPGLL,4916.45,N,12311.12,W,225444,A*32"); !errors.Is(err, nmea.ErrBadChecksum) {
		t.Fatalf("err=%v want ErrBadChecksum", err)
	}

	err := printDecoded(&buf, "$GPRMC,225446,A,4916.45,N,12311.12,W,000.5,054.7,191194,020.3,E*68")
	var wh *nmea.WrongSentenceHeaderError
	if !errors.As(err, &wh) || wh.Found != "RMC" {
		t.Fatalf("err=%v want WrongSentenceHeaderError", err)
	}

	err = printDecoded(&buf, "$GPGLL,4916.45,N,12311.12,W,225444,X,A*45")
	var fe *nmea.FieldError
	if !errors.As(err, &fe) || fe.Field != "status" {
		t.Fatalf("err=%v want status FieldError", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be printed on error, got:\n%s", buf.String())
	}
}
