package driver

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/teslashibe/go-motion/pkg/driver"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	ticks  metric.Int64Counter
	events metric.Int64Counter
	active metric.Int64ObservableGauge
}

// newMetrics builds the driver instruments on the global meter provider,
// a no-op unless the host installs one.
func newMetrics(d *Driver) (*metrics, error) {
	m := meter()
	var (
		mt  metrics
		err error
	)

	mt.ticks, err = m.Int64Counter(
		"driver.ticks",
		metric.WithDescription("Total driver ticks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	mt.events, err = m.Int64Counter(
		"driver.events.fired",
		metric.WithDescription("Total user events fired by motions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}

	mt.active, err = m.Int64ObservableGauge(
		"driver.entries.active",
		metric.WithDescription("Active motion and expression entries"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active entries gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			motions, expressions := d.activeEntries()
			o.ObserveInt64(mt.active, int64(motions),
				metric.WithAttributes(attribute.String("kind", "motion")))
			o.ObserveInt64(mt.active, int64(expressions),
				metric.WithAttributes(attribute.String("kind", "expression")))
			return nil
		},
		mt.active,
	)
	if err != nil {
		return nil, fmt.Errorf("registering active entries callback: %w", err)
	}

	return &mt, nil
}
