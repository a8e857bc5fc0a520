// Package report periodically samples the driver and publishes readings.
package report

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"

	"github.com/airsense/pms.go/pkg/pms"
)

// Source is the slice of the driver the reporter needs.
type Source interface {
	Fetch() pms.Result
	Measurement() pms.Measurement
}

// Publisher delivers one encoded sample.
type Publisher interface {
	Pub(topic string, payload []byte) error
}

// Sample is the published telemetry record.
type Sample struct {
	At time.Time `json:"at"`
	pms.Measurement
}

// Reporter polls a Source on a fixed interval and publishes every
// successful reading as JSON. NoData cycles are logged, never published.
type Reporter struct {
	Source    Source
	Publisher Publisher
	Topic     string
	Interval  time.Duration
}

// DefaultInterval is used when no interval is configured. The sensor
// refreshes roughly once a second in active mode; polling faster only
// re-reads the same frame.
const DefaultInterval = 5 * time.Second

// Run implements run.Task. One cycle per tick, no overlap.
func (r *Reporter) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Cycle(); err != nil {
				return err
			}
		}
	}
}

// Cycle performs one fetch-and-publish round.
func (r *Reporter) Cycle() error {
	res := r.Source.Fetch()
	switch res.Status {
	case pms.Preheating:
		glog.V(1).Infof("preheating, %ds left", res.PreheatLeft)
	case pms.NoData:
		glog.V(1).Info("no data from sensor")
	case pms.DataAvailable:
		m := r.Source.Measurement()
		glog.V(2).Info(m)
		payload, err := json.Marshal(Sample{At: time.Now().UTC(), Measurement: m})
		if err != nil {
			return err
		}
		if err := r.Publisher.Pub(r.Topic, payload); err != nil {
			glog.Warningf("publish failed: %v", err)
		}
	}
	return nil
}
