// Package gps reads NMEA lines from a receiver and tracks the latest GLL
// position.
//
// Lines can come from a serial device, a raw NMEA TCP feed, gpsd (with
// NMEA passthrough) or a capture file. Every line is framed and, when it
// is a GLL sentence, decoded by package nmea. Other sentence types are
// counted and ignored.
package gps
