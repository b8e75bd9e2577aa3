package main

import (
	"fmt"
	"io"

	"gllwatch/internal/nmea"
)

// printDecoded frames and decodes a single GLL line.
func printDecoded(w io.Writer, line string) error {
	s, err := nmea.Parse(line)
	if err != nil {
		return err
	}
	g, err := nmea.Decode(s)
	if err != nil {
		return err
	}

	mode := "absent"
	if g.Mode != nil {
		mode = fmt.Sprintf("%c (%s)", g.Mode.Letter(), g.Mode)
	}
	fmt.Fprintf(w, "talker: %s\n", s.Talker)
	fmt.Fprintf(w, "latitude: %.7f\n", g.Latitude)
	fmt.Fprintf(w, "longitude: %.7f\n", g.Longitude)
	fmt.Fprintf(w, "fix_time: %s\n", g.FixTime)
	fmt.Fprintf(w, "status: %c (%s)\n", g.Status.Letter(), g.Status)
	fmt.Fprintf(w, "mode: %s\n", mode)
	if !g.Consistent() {
		fmt.Fprintf(w, "warning: status %c is not allowed with mode %c\n", g.Status.Letter(), g.Mode.Letter())
	}
	return nil
}
