package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/airsense/pms.go/pkg/config"
	"github.com/airsense/pms.go/pkg/pms"
	"github.com/airsense/pms.go/pkg/report"
	"github.com/airsense/pms.go/pkg/report/mqtt"
	"github.com/airsense/pms.go/pkg/run"
	"github.com/airsense/pms.go/pkg/transport/gpio"
	"github.com/airsense/pms.go/pkg/transport/serialport"
)

var configPath = flag.String("config", "/etc/pmsd.yaml", "Configuration file.")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		glog.Exitf("load config: %v", err)
	}

	port, err := serialport.Open(cfg.Serial.Port, cfg.Serial.Baud)
	if err != nil {
		glog.Exitf("open %s: %v", cfg.Serial.Port, err)
	}
	defer port.Close()

	var pin pms.Pin
	if cfg.SleepPin != "" {
		p, err := gpio.Open(cfg.SleepPin)
		if err != nil {
			glog.Exitf("open sleep pin %s: %v", cfg.SleepPin, err)
		}
		pin = p
	}

	driver := pms.New(pms.Config{
		Transport:   port,
		SleepPin:    pin,
		StartAsleep: cfg.StartAsleep,
	})

	var pub report.Publisher = logPublisher{}
	if cfg.MQTT.Broker != "" {
		queue, err := mqtt.NewQueueFromURL(cfg.MQTT.Broker)
		if err != nil {
			glog.Exitf("mqtt: %v", err)
		}
		if err := queue.Connect(); err != nil {
			glog.Exitf("mqtt connect: %v", err)
		}
		defer queue.Close()
		pub = queue
	}

	reporter := &report.Reporter{
		Source:    driver,
		Publisher: pub,
		Topic:     cfg.MQTT.Topic,
		Interval:  cfg.Interval(),
	}

	err = run.NewGroup().HandleSignals().
		Go(run.Name("reporter", reporter)).
		Wait()
	if err != nil {
		glog.Exit(err)
	}
}

// logPublisher stands in when no broker is configured.
type logPublisher struct{}

func (logPublisher) Pub(topic string, payload []byte) error {
	glog.Infof("%s", payload)
	return nil
}
