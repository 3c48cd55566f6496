package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval string         `json:"tick_interval"`
	Listener     ListenerConfig `json:"listener"`
	Nats         NatsConfig     `json:"nats"`
	Sessions     SessionsConfig `json:"sessions"`
	World        WorldConfig    `json:"world"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < 100*time.Millisecond {
			el.Add(fmt.Errorf("tick_interval must be at least 100ms"))
		}
	}

	el.Add(c.Listener.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Sessions.validate())
	el.Add(c.World.validate())

	return el.Err()
}

func (c *Config) tickLength() time.Duration {
	if c.TickInterval == "" {
		return time.Second
	}
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return time.Second
	}
	return d
}
