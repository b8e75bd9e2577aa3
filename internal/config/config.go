package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GPS  GPSConfig  `yaml:"gps"`
	MQTT MQTTConfig `yaml:"mqtt"`
	Web  WebConfig  `yaml:"web"`
	Log  LogConfig  `yaml:"log"`
}

type GPSConfig struct {
	Enable bool   `yaml:"enable"`
	Source string `yaml:"source"`
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
	Addr   string `yaml:"addr"`
	Path   string `yaml:"path"`
}

type MQTTConfig struct {
	Enable   bool   `yaml:"enable"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QoS      int    `yaml:"qos"`
	Retain   bool   `yaml:"retain"`
}

type WebConfig struct {
	Enable bool   `yaml:"enable"`
	Listen string `yaml:"listen"`
}

type LogConfig struct {
	// InvalidLines logs every sentence that fails to frame or decode.
	InvalidLines bool `yaml:"invalid_lines"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

// Parse decodes YAML and applies defaults and validation.
func Parse(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	cfg.GPS.Source = strings.ToLower(strings.TrimSpace(cfg.GPS.Source))
	if cfg.GPS.Source == "" {
		cfg.GPS.Source = "serial"
	}
	switch cfg.GPS.Source {
	case "serial":
		if cfg.GPS.Baud == 0 {
			cfg.GPS.Baud = 9600
		}
		if cfg.GPS.Baud < 0 {
			return Config{}, fmt.Errorf("gps.baud must be > 0")
		}
	case "tcp":
		if cfg.GPS.Addr == "" {
			return Config{}, fmt.Errorf("gps.addr is required when gps.source is 'tcp'")
		}
	case "gpsd":
		if cfg.GPS.Addr == "" {
			cfg.GPS.Addr = "127.0.0.1:2947"
		}
	case "file":
		if cfg.GPS.Path == "" {
			return Config{}, fmt.Errorf("gps.path is required when gps.source is 'file'")
		}
	default:
		return Config{}, fmt.Errorf("gps.source must be one of serial, tcp, gpsd, file")
	}

	if cfg.MQTT.Enable {
		if cfg.MQTT.Broker == "" {
			return Config{}, fmt.Errorf("mqtt.broker is required when mqtt.enable is true")
		}
		if cfg.MQTT.QoS < 0 || cfg.MQTT.QoS > 2 {
			return Config{}, fmt.Errorf("mqtt.qos must be 0, 1 or 2")
		}
	}
	// MQTT defaults (safe even if disabled).
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "gllwatch"
	}
	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = "gllwatch/fix"
	}

	if cfg.Web.Listen == "" {
		cfg.Web.Listen = ":8080"
	}

	return cfg, nil
}
