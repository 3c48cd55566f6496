package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pixil98/go-errors"
)

// Item is one tradeable good the economy tracks. BasePrice seeds the
// session economy; BaseDemand is the starting demand signal in [0,1].
type Item struct {
	Name       string  `json:"name"`
	BasePrice  float64 `json:"base_price"`
	BaseDemand float64 `json:"base_demand"`
}

func (i *Item) Validate() error {
	el := errors.NewErrorList()

	if i.Name == "" {
		el.Add(fmt.Errorf("item name is required"))
	}
	if i.BasePrice < 1 {
		el.Add(fmt.Errorf("base_price must be at least 1"))
	}
	if i.BaseDemand < 0 || i.BaseDemand > 1 {
		el.Add(fmt.Errorf("base_demand must be between 0 and 1"))
	}

	return el.Err()
}

// asset is the versioned on-disk wrapper for a catalog record.
type asset struct {
	Version    int    `json:"version"`
	Identifier string `json:"id"`
	Spec       *Item  `json:"spec"`
}

// LoadItems reads every .json file under path into an item catalog keyed by
// identifier. Duplicate identifiers are an error rather than a silent
// overwrite.
func LoadItems(path string) (map[string]Item, error) {
	items := map[string]Item{}

	err := filepath.Walk(path, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() || filepath.Ext(p) != ".json" {
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", filepath.Base(p), err)
		}

		var a asset
		if err := json.Unmarshal(data, &a); err != nil {
			return fmt.Errorf("parsing %s: %w", filepath.Base(p), err)
		}
		if a.Spec == nil {
			return fmt.Errorf("parsing %s: missing spec", filepath.Base(p))
		}
		if err := a.Spec.Validate(); err != nil {
			return fmt.Errorf("validating %s: %w", filepath.Base(p), err)
		}

		if _, ok := items[a.Identifier]; ok {
			return fmt.Errorf("duplicate item id: %s", a.Identifier)
		}
		items[a.Identifier] = *a.Spec

		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// DefaultItems is the built-in base catalog used when no asset directory is
// configured.
func DefaultItems() map[string]Item {
	return map[string]Item{
		"wood":          {Name: "Wood", BasePrice: 2, BaseDemand: 0.6},
		"stone":         {Name: "Stone", BasePrice: 3, BaseDemand: 0.5},
		"iron_ore":      {Name: "Iron Ore", BasePrice: 8, BaseDemand: 0.7},
		"berries":       {Name: "Berries", BasePrice: 1, BaseDemand: 0.4},
		"herbs":         {Name: "Herbs", BasePrice: 5, BaseDemand: 0.5},
		"leather":       {Name: "Leather", BasePrice: 6, BaseDemand: 0.6},
		"wolf_pelt":     {Name: "Wolf Pelt", BasePrice: 12, BaseDemand: 0.3},
		"health_potion": {Name: "Health Potion", BasePrice: 15, BaseDemand: 0.8},
	}
}
