// Package catalog loads the static definition of an event: its milestone
// tables and premium bonus.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/letokens/internal/domain/model"
	"github.com/okian/letokens/internal/domain/projection"
)

//go:embed default_event.yaml
var defaultEvent []byte

// Catalog is a validated event definition.
type Catalog struct {
	Name   string
	Tables projection.Tables
}

// rawCatalog mirrors the YAML schema.
type rawCatalog struct {
	Name            string         `yaml:"name"`
	PremiumBonus    int            `yaml:"premium_bonus"`
	PointMilestones []rawPoint     `yaml:"point_milestones"`
	Chests          []rawChest     `yaml:"chests"`
	Ascension       []rawAscension `yaml:"ascension"`
}

type rawPoint struct {
	Points   int `yaml:"points"`
	Currency int `yaml:"currency"`
}

type rawChest struct {
	EngramCost int `yaml:"engram_cost"`
	Shards     int `yaml:"shards"`
}

type rawAscension struct {
	Goal   string   `yaml:"goal"`
	Rarity string   `yaml:"rarity"`
	Stars  int      `yaml:"stars"`
	Shards *float64 `yaml:"shards"` // nil: requirement unknown
}

// Default returns the embedded event definition.
func Default() (*Catalog, error) {
	return Parse(defaultEvent)
}

// Load reads an event definition from path, or the embedded one when path
// is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrLoadCatalog, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML event definition.
func Parse(b []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}

	c := &Catalog{
		Name: raw.Name,
		Tables: projection.Tables{
			PremiumBonus: raw.PremiumBonus,
			Points:       make([]model.PointMilestone, 0, len(raw.PointMilestones)),
			Chests:       make([]model.ChestMilestone, 0, len(raw.Chests)),
			Ascension:    make([]model.AscensionMilestone, 0, len(raw.Ascension)),
		},
	}
	for _, p := range raw.PointMilestones {
		c.Tables.Points = append(c.Tables.Points, model.PointMilestone{Points: p.Points, Currency: p.Currency})
	}
	for _, ch := range raw.Chests {
		c.Tables.Chests = append(c.Tables.Chests, model.ChestMilestone{EngramCost: ch.EngramCost, Shards: ch.Shards})
	}
	for i, a := range raw.Ascension {
		rarity, ok := model.ParseRarity(a.Rarity)
		if !ok {
			return nil, fmt.Errorf("%w: ascension tier %d has unknown rarity %q", ErrInvalidCatalog, i, a.Rarity)
		}
		shards := math.Inf(1)
		if a.Shards != nil {
			shards = *a.Shards
		}
		c.Tables.Ascension = append(c.Tables.Ascension, model.AscensionMilestone{
			Goal:              a.Goal,
			Rarity:            rarity,
			Stars:             a.Stars,
			IncrementalShards: shards,
		})
	}

	if err := projection.Validate(c.Tables); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return c, nil
}
