package main

import (
	"context"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"gllwatch/internal/config"
	"gllwatch/internal/gps"
	"gllwatch/internal/publish"
	"gllwatch/internal/web"
)

func gpsConfig(cfg config.Config, metrics *gps.Metrics) gps.Config {
	return gps.Config{
		Enable:       cfg.GPS.Enable,
		Source:       cfg.GPS.Source,
		Device:       cfg.GPS.Device,
		Baud:         cfg.GPS.Baud,
		Addr:         cfg.GPS.Addr,
		Path:         cfg.GPS.Path,
		LogMalformed: cfg.Log.InvalidLines,
		Metrics:      metrics,
	}
}

// run wires the GPS reader to MQTT and the status server and blocks until
// ctx is done. With a file source it also returns at end of input.
func run(ctx context.Context, cfg config.Config, logs *web.LogBuffer) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	gcfg := gpsConfig(cfg, gps.NewMetrics(reg))

	var pub *publish.Publisher
	if cfg.MQTT.Enable {
		var err error
		pub, err = publish.Connect(publish.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Topic:    cfg.MQTT.Topic,
			QoS:      byte(cfg.MQTT.QoS),
			Retain:   cfg.MQTT.Retain,
		})
		if err != nil {
			return err
		}
		defer pub.Close()
		gcfg.OnFix = pub.Handle
	}

	svc := gps.New(gcfg)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("gps start: %w", err)
	}
	defer svc.Close()

	status := web.NewStatus(svc)
	if pub != nil {
		status.SetPublisher(cfg.MQTT.Broker, cfg.MQTT.Topic, pub)
	}

	if cfg.Web.Enable {
		log.Printf("web listening addr=%s", cfg.Web.Listen)
		go func() {
			err := web.Serve(ctx, cfg.Web.Listen, web.Handler(status, logs, reg))
			if err != nil && ctx.Err() == nil {
				log.Printf("web server stopped: %v", err)
			}
		}()
	}

	if cfg.GPS.Enable && cfg.GPS.Source == gps.SourceFile {
		done := make(chan struct{})
		go func() {
			svc.Wait()
			close(done)
		}()
		select {
		case <-ctx.Done():
		case <-done:
		}
		return nil
	}

	<-ctx.Done()
	return nil
}
