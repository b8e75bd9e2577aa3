// Package nmea frames NMEA 0183 sentences and decodes the GLL
// (Geographic Position) sentence body into a typed record.
//
// The layers are kept separate:
//   - Parse splits a raw "$TTGLL,...*HH" line into talker, message ID and
//     payload, verifying the XOR checksum.
//   - ParseLatLon and ParseTimeOfDay decode the shared coordinate and
//     time-of-day tokens used by several sentence types.
//   - DecodeGLL checks the message ID and decodes the GLL payload.
//
// Nothing here keeps state between calls; every function is safe for
// concurrent use.
package nmea
