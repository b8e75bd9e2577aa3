package gps

import (
	"encoding/json"
	"fmt"
	"strings"
)

const gpsdDefaultAddr = "127.0.0.1:2947"

// gpsdWatch asks gpsd to relay raw NMEA from the receiver instead of its
// own JSON fix reports.
var gpsdWatch = []byte("?WATCH={\"enable\":true,\"nmea\":true}\n")

// gpsdReport is the subset of gpsd's control replies we look at. gpsd
// still sends VERSION/DEVICES/WATCH/ERROR objects in NMEA mode.
type gpsdReport struct {
	Class   string       `json:"class"`
	Release string       `json:"release"`
	Message string       `json:"message"`
	Path    string       `json:"path"`
	Devices []gpsdDevice `json:"devices"`
}

type gpsdDevice struct {
	Path string `json:"path"`
}

// parseGPSDReport decodes a JSON line from gpsd. It returns the device
// path when the report names one, and an error for gpsd ERROR replies.
func parseGPSDReport(line string) (device string, err error) {
	var r gpsdReport
	if err := json.Unmarshal([]byte(line), &r); err != nil {
		return "", fmt.Errorf("gpsd json parse failed: %v", err)
	}
	switch strings.ToUpper(strings.TrimSpace(r.Class)) {
	case "ERROR":
		return "", fmt.Errorf("gpsd error: %s", r.Message)
	case "DEVICE":
		return r.Path, nil
	case "DEVICES":
		if len(r.Devices) > 0 {
			return r.Devices[0].Path, nil
		}
	}
	// VERSION, WATCH and anything else carry nothing we track.
	return "", nil
}

func isGPSDReport(line string) bool {
	return strings.HasPrefix(line, "{")
}
