package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"

	"github.com/emberwild/worldserver/internal/catalog"
	"github.com/emberwild/worldserver/internal/world"
)

type WorldConfig struct {
	ItemAssets   string `json:"item_assets"`
	DayLength    string `json:"day_length"`
	CleanupAfter string `json:"cleanup_after"`
}

func (w *WorldConfig) validate() error {
	el := errors.NewErrorList()

	if w.DayLength != "" {
		if _, err := time.ParseDuration(w.DayLength); err != nil {
			el.Add(fmt.Errorf("parsing day_length: %w", err))
		}
	}
	if w.CleanupAfter != "" {
		if _, err := time.ParseDuration(w.CleanupAfter); err != nil {
			el.Add(fmt.Errorf("parsing cleanup_after: %w", err))
		}
	}

	return el.Err()
}

func (w *WorldConfig) buildItems() (map[string]catalog.Item, error) {
	if w.ItemAssets == "" {
		return catalog.DefaultItems(), nil
	}
	items, err := catalog.LoadItems(w.ItemAssets)
	if err != nil {
		return nil, fmt.Errorf("loading item assets: %w", err)
	}
	return items, nil
}

func (w *WorldConfig) storeOpts(sink world.EventSink) []world.StoreOpt {
	opts := []world.StoreOpt{world.WithEventSink(sink)}
	if w.DayLength != "" {
		if d, err := time.ParseDuration(w.DayLength); err == nil {
			opts = append(opts, world.WithDayLength(d))
		}
	}
	if w.CleanupAfter != "" {
		if d, err := time.ParseDuration(w.CleanupAfter); err == nil {
			opts = append(opts, world.WithCleanupAfter(d))
		}
	}
	return opts
}
