package gps

import "gllwatch/internal/nmea"

// Fix is a decoded GLL position suitable for JSON and MQTT.
type Fix struct {
	Talker string  `json:"talker"`
	LatDeg float64 `json:"lat_deg"`
	LonDeg float64 `json:"lon_deg"`
	Time   string  `json:"time"`   // e.g. "20:54:12.000" UTC, no date
	Status string  `json:"status"` // "A" (valid) / "V" (invalid)
	Mode   string  `json:"mode,omitempty"`
	// Consistent is false when Mode requires Status V but the receiver sent A.
	Consistent bool `json:"consistent"`
}

func NewFix(talker string, g nmea.GLL) Fix {
	f := Fix{
		Talker:     talker,
		LatDeg:     g.Latitude,
		LonDeg:     g.Longitude,
		Time:       g.FixTime.String(),
		Status:     string(g.Status.Letter()),
		Consistent: g.Consistent(),
	}
	if g.Mode != nil {
		f.Mode = string(g.Mode.Letter())
	}
	return f
}

// Valid reports whether the receiver flagged the position as usable.
func (f Fix) Valid() bool {
	return f.Status == "A"
}
