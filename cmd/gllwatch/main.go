package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gllwatch/internal/config"
	"gllwatch/internal/web"
)

func main() {
	var (
		configPath  string
		decodeLine  string
		summaryPath string
	)
	flag.StringVar(&configPath, "config", "./gllwatch.yaml", "Path to YAML config")
	flag.StringVar(&decodeLine, "decode", "", "Decode one GLL sentence (e.g. '$GPGLL,...*73') and exit")
	flag.StringVar(&summaryPath, "summary", "", "Summarize an NMEA capture file and exit")
	flag.Parse()

	if decodeLine != "" {
		if err := printDecoded(os.Stdout, decodeLine); err != nil {
			log.Fatalf("decode failed: %v", err)
		}
		return
	}
	if summaryPath != "" {
		if err := printLogSummary(os.Stdout, summaryPath); err != nil {
			log.Fatalf("summary failed: %v", err)
		}
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logs := web.NewLogBuffer(2000)
	log.SetOutput(io.MultiWriter(os.Stderr, logs))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("gllwatch starting")
	if err := run(ctx, cfg, logs); err != nil {
		log.Fatalf("gllwatch failed: %v", err)
	}
	log.Printf("gllwatch stopping")
}
