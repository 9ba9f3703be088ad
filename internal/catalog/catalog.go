// Package catalog serves the static species, move, item, trainer and route
// tables. The default tables are embedded YAML; a directory with the same
// file names can replace them.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"slices"

	"github.com/monbattle/engine/internal/progress"
	"github.com/monbattle/engine/internal/rng"
	"github.com/monbattle/engine/pkg/core"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

// ErrNotFound is wrapped by every lookup miss.
var ErrNotFound = errors.New("not found")

const (
	speciesFile  = "species.yaml"
	movesFile    = "moves.yaml"
	itemsFile    = "items.yaml"
	trainersFile = "trainers.yaml"
	routesFile   = "routes.yaml"
)

// Catalog is read-only after Load and safe for concurrent use.
type Catalog struct {
	species  map[int]core.Species
	moves    map[int]core.Move
	items    map[int]core.Item
	trainers []core.Trainer
	routes   []core.Route
}

// Default loads the embedded tables.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads the five tables from fsys and validates cross references.
func Load(fsys fs.FS) (*Catalog, error) {
	var (
		species  struct{ Species []core.Species }
		moves    struct{ Moves []core.Move }
		items    struct{ Items []core.Item }
		trainers struct{ Trainers []core.Trainer }
		routes   struct{ Routes []core.Route }
	)
	files := []struct {
		name string
		out  any
	}{
		{speciesFile, &species},
		{movesFile, &moves},
		{itemsFile, &items},
		{trainersFile, &trainers},
		{routesFile, &routes},
	}
	for _, f := range files {
		if err := decode(fsys, f.name, f.out); err != nil {
			return nil, err
		}
	}

	c := &Catalog{
		species:  make(map[int]core.Species, len(species.Species)),
		moves:    make(map[int]core.Move, len(moves.Moves)),
		items:    make(map[int]core.Item, len(items.Items)),
		trainers: trainers.Trainers,
		routes:   routes.Routes,
	}
	for _, s := range species.Species {
		if _, dup := c.species[s.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate species id %d", speciesFile, s.ID)
		}
		slices.SortStableFunc(s.Learnset, func(a, b core.LearnsetEntry) int { return a.Level - b.Level })
		c.species[s.ID] = s
	}
	for _, m := range moves.Moves {
		if _, dup := c.moves[m.ID]; dup || m.ID == core.StruggleID {
			return nil, fmt.Errorf("%s: duplicate move id %d", movesFile, m.ID)
		}
		c.moves[m.ID] = m
	}
	for _, it := range items.Items {
		if _, dup := c.items[it.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate item id %d", itemsFile, it.ID)
		}
		c.items[it.ID] = it
	}
	for i := range c.trainers {
		c.trainers[i].Reward = progress.TrainerReward(c.trainers[i])
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decode(fsys fs.FS, name string, out any) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", name, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("error parsing %s: %w", name, err)
	}
	return nil
}

func (c *Catalog) validate() error {
	var errs []error
	for _, id := range c.SpeciesIDs() {
		s := c.species[id]
		for _, e := range s.Learnset {
			if _, err := c.Move(e.MoveID); err != nil {
				errs = append(errs, fmt.Errorf("species %s learnset: %w", s.Name, err))
			}
		}
		if s.Evolution != nil {
			if _, ok := c.species[s.Evolution.Into]; !ok {
				errs = append(errs, fmt.Errorf("species %s evolves into unknown species %d", s.Name, s.Evolution.Into))
			}
		}
	}
	for _, t := range c.trainers {
		if len(t.Party) == 0 {
			errs = append(errs, fmt.Errorf("trainer %s has an empty party", t.Name))
		}
		for _, p := range t.Party {
			if _, ok := c.species[p.SpeciesID]; !ok {
				errs = append(errs, fmt.Errorf("trainer %s: unknown species %d", t.Name, p.SpeciesID))
			}
		}
	}
	for _, r := range c.routes {
		for _, e := range r.Encounters {
			if _, ok := c.species[e.SpeciesID]; !ok {
				errs = append(errs, fmt.Errorf("route %s: unknown species %d", r.Name, e.SpeciesID))
			}
			if e.MinLevel < 1 || e.MaxLevel < e.MinLevel {
				errs = append(errs, fmt.Errorf("route %s: bad level range %d-%d", r.Name, e.MinLevel, e.MaxLevel))
			}
		}
	}
	return errors.Join(errs...)
}

// Species returns the species with id.
func (c *Catalog) Species(id int) (core.Species, error) {
	s, ok := c.species[id]
	if !ok {
		return core.Species{}, fmt.Errorf("species %d: %w", id, ErrNotFound)
	}
	return s, nil
}

// Move returns the move with id. Struggle is always available.
func (c *Catalog) Move(id int) (core.Move, error) {
	if id == core.StruggleID {
		return core.Struggle, nil
	}
	m, ok := c.moves[id]
	if !ok {
		return core.Move{}, fmt.Errorf("move %d: %w", id, ErrNotFound)
	}
	return m, nil
}

// Item returns the item with id.
func (c *Catalog) Item(id int) (core.Item, error) {
	it, ok := c.items[id]
	if !ok {
		return core.Item{}, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return it, nil
}

// Trainer returns the trainer called name with its reward resolved.
func (c *Catalog) Trainer(name string) (core.Trainer, error) {
	for _, t := range c.trainers {
		if t.Name == name {
			return t, nil
		}
	}
	return core.Trainer{}, fmt.Errorf("trainer %q: %w", name, ErrNotFound)
}

// Trainers returns every trainer in file order.
func (c *Catalog) Trainers() []core.Trainer { return slices.Clone(c.trainers) }

// Route returns the route called name.
func (c *Catalog) Route(name string) (core.Route, error) {
	for _, r := range c.routes {
		if r.Name == name {
			return r, nil
		}
	}
	return core.Route{}, fmt.Errorf("route %q: %w", name, ErrNotFound)
}

// Routes returns every route in file order.
func (c *Catalog) Routes() []core.Route { return slices.Clone(c.routes) }

// SpeciesIDs returns the known species IDs in ascending order.
func (c *Catalog) SpeciesIDs() []int { return slices.Sorted(maps.Keys(c.species)) }

// MoveIDs returns the known move IDs in ascending order.
func (c *Catalog) MoveIDs() []int { return slices.Sorted(maps.Keys(c.moves)) }

// ItemIDs returns the known item IDs in ascending order.
func (c *Catalog) ItemIDs() []int { return slices.Sorted(maps.Keys(c.items)) }

// AmbiguousTargets lists stat-stage effects that rely on target inference.
func (c *Catalog) AmbiguousTargets() []string {
	var out []string
	for _, id := range c.MoveIDs() {
		m := c.moves[id]
		for i, e := range m.Effects {
			if e.Kind == core.EffectStatStage && e.Target == core.TargetUnset {
				out = append(out, fmt.Sprintf("%s (move %d) effect %d has no target", m.Name, m.ID, i))
			}
		}
	}
	return out
}

// NewCombatant builds a combatant of species id at level with random IVs
// and its most recent learnset moves.
func (c *Catalog) NewCombatant(id, level int, r rng.Source) (core.Combatant, error) {
	sp, err := c.Species(id)
	if err != nil {
		return core.Combatant{}, err
	}
	moves, err := progress.StartingMoves(sp, level, c)
	if err != nil {
		return core.Combatant{}, err
	}
	return progress.NewCombatant(sp, level, progress.RandomIVs(r), moves), nil
}

// Party builds a trainer's roster.
func (c *Catalog) Party(t core.Trainer, r rng.Source) ([]core.Combatant, error) {
	party := make([]core.Combatant, 0, len(t.Party))
	for _, p := range t.Party {
		cb, err := c.NewCombatant(p.SpeciesID, p.Level, r)
		if err != nil {
			return nil, fmt.Errorf("trainer %s: %w", t.Name, err)
		}
		party = append(party, cb)
	}
	return party, nil
}

// RollEncounter picks a weighted encounter from route and a level inside
// its range.
func RollEncounter(route core.Route, r rng.Source) (core.PartyMember, bool) {
	total := 0
	for _, e := range route.Encounters {
		total += max(0, e.Weight)
	}
	if total == 0 {
		return core.PartyMember{}, false
	}
	pick := r.Intn(total)
	for _, e := range route.Encounters {
		w := max(0, e.Weight)
		if pick < w {
			return core.PartyMember{SpeciesID: e.SpeciesID, Level: e.MinLevel + r.Intn(e.MaxLevel-e.MinLevel+1)}, true
		}
		pick -= w
	}
	return core.PartyMember{}, false
}
