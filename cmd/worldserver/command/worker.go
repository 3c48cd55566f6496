package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-service"

	"github.com/emberwild/worldserver/internal/driver"
	"github.com/emberwild/worldserver/internal/gateway"
	"github.com/emberwild/worldserver/internal/listener"
	"github.com/emberwild/worldserver/internal/messaging"
	"github.com/emberwild/worldserver/internal/session"
	"github.com/emberwild/worldserver/internal/world"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Create the message bus
	bus, err := cfg.Nats.buildBus()
	if err != nil {
		return nil, fmt.Errorf("creating message bus: %w", err)
	}

	// The registry's delete hook and the store's event sink both point at
	// components constructed below them, so wire through late-bound vars.
	var worlds *world.Store
	var gw *gateway.Gateway

	registry := session.NewRegistry(cfg.Sessions.registryOpts(func(sessionID string) {
		if worlds != nil {
			worlds.Delete(sessionID)
		}
	})...)

	items, err := cfg.World.buildItems()
	if err != nil {
		return nil, err
	}

	sink := world.EventSinkFunc(func(sessionID string, events []world.Event) {
		if gw != nil {
			gw.WorldEvents(sessionID, events)
		}
	})
	worlds = world.NewStore(items, cfg.World.storeOpts(sink)...)

	pub := messaging.NewRoomPublisher(bus, registry)
	gw = gateway.NewGateway(registry, worlds, pub, time.Now().UnixNano())

	// The driver ticks the world simulation and the idle sweep
	drv := driver.NewDriver(
		[]driver.Manager{worlds, registry},
		driver.WithTickLength(cfg.tickLength()),
	)

	// Create a worker list
	return service.WorkerList{
		"bus":      bus,
		"driver":   drv,
		"listener": listener.NewWebListener(cfg.Listener.Port, gw, bus),
	}, nil
}
