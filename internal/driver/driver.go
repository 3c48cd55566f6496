package driver

import (
	"context"
	"time"
)

const (
	DefaultTickLength = time.Second
)

// Manager is anything that advances shared state on the scheduler tick:
// the world store, the session registry.
type Manager interface {
	Tick(context.Context) error
}

// Driver runs every manager once per tick. Managers gate slower cadences
// (economy, sweeps) internally off the now they compute inside Tick.
type Driver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (d *Driver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
