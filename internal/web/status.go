package web

import (
	"sync/atomic"
	"time"

	"gllwatch/internal/gps"
)

// GPSSource is implemented by *gps.Service.
type GPSSource interface {
	Snapshot() gps.Snapshot
}

// PublisherStats is implemented by *publish.Publisher.
type PublisherStats interface {
	Stats() (sent, failed uint64)
}

type Status struct {
	startUnixNano int64
	gps           GPSSource
	mqtt          atomic.Value // mqttInfo
}

type mqttInfo struct {
	broker string
	topic  string
	stats  PublisherStats
}

func NewStatus(src GPSSource) *Status {
	s := &Status{gps: src}
	atomic.StoreInt64(&s.startUnixNano, time.Now().UTC().UnixNano())
	s.mqtt.Store(mqttInfo{})
	return s
}

// SetPublisher adds MQTT counters to the status output.
func (s *Status) SetPublisher(broker, topic string, stats PublisherStats) {
	s.mqtt.Store(mqttInfo{broker: broker, topic: topic, stats: stats})
}

type MQTTStatus struct {
	Broker string `json:"broker"`
	Topic  string `json:"topic"`
	Sent   uint64 `json:"sent"`
	Failed uint64 `json:"failed"`
}

type StatusSnapshot struct {
	Service   string       `json:"service"`
	NowUTC    string       `json:"now_utc"`
	UptimeSec int64        `json:"uptime_sec"`
	GPS       gps.Snapshot `json:"gps"`
	MQTT      *MQTTStatus  `json:"mqtt,omitempty"`
}

func (s *Status) Snapshot(nowUTC time.Time) StatusSnapshot {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	start := time.Unix(0, atomic.LoadInt64(&s.startUnixNano)).UTC()

	snap := StatusSnapshot{
		Service:   "gllwatch",
		NowUTC:    nowUTC.UTC().Format(time.RFC3339Nano),
		UptimeSec: int64(nowUTC.Sub(start).Seconds()),
	}
	if s.gps != nil {
		snap.GPS = s.gps.Snapshot()
	}
	if m := s.mqtt.Load().(mqttInfo); m.stats != nil {
		sent, failed := m.stats.Stats()
		snap.MQTT = &MQTTStatus{Broker: m.broker, Topic: m.topic, Sent: sent, Failed: failed}
	}
	return snap
}
