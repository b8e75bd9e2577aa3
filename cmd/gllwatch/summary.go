package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gllwatch/internal/nmea"
)

type logSummary struct {
	Lines        int
	Decoded      int
	Valid        int
	Inconsistent int
	Skipped      int
	Malformed    int
	TypeCounts   map[string]int
	ModeCounts   map[string]int
	// ErrorCounts is keyed by failing GLL field, or "framing".
	ErrorCounts map[string]int
}

// summarizeNMEA reads a capture and tallies GLL decode outcomes. Lines not
// starting with '$' are ignored.
func summarizeNMEA(r io.Reader) (logSummary, error) {
	s := logSummary{TypeCounts: map[string]int{}, ModeCounts: map[string]int{}, ErrorCounts: map[string]int{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256), 64*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}
		s.Lines++

		sent, err := nmea.Parse(line)
		if err != nil {
			s.Malformed++
			s.ErrorCounts["framing"]++
			continue
		}
		s.TypeCounts[sent.MessageID]++
		if sent.MessageID != nmea.TypeGLL {
			s.Skipped++
			continue
		}

		g, err := nmea.Decode(sent)
		if err != nil {
			s.Malformed++
			var fe *nmea.FieldError
			if errors.As(err, &fe) {
				s.ErrorCounts[fe.Field]++
			}
			continue
		}
		s.Decoded++
		if g.Status == nmea.StatusValid {
			s.Valid++
		}
		if !g.Consistent() {
			s.Inconsistent++
		}
		if g.Mode == nil {
			s.ModeCounts["absent"]++
		} else {
			s.ModeCounts[g.Mode.String()]++
		}
	}
	return s, scanner.Err()
}

func printLogSummary(w io.Writer, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := summarizeNMEA(f)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "path: %s\n", path)
	fmt.Fprintf(w, "sentences: %d\n", s.Lines)
	fmt.Fprintf(w, "gll_decoded: %d\n", s.Decoded)
	fmt.Fprintf(w, "gll_valid: %d\n", s.Valid)
	fmt.Fprintf(w, "gll_inconsistent: %d\n", s.Inconsistent)
	fmt.Fprintf(w, "malformed: %d\n", s.Malformed)
	fmt.Fprintf(w, "skipped: %d\n", s.Skipped)
	printCounts(w, "type_counts", s.TypeCounts)
	printCounts(w, "mode_counts", s.ModeCounts)
	printCounts(w, "error_counts", s.ErrorCounts)
	return nil
}

func printCounts(w io.Writer, title string, m map[string]int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(w, "%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %d\n", k, m[k])
	}
}
