// Package parser turns player command arguments into engine actions and
// session requests. Indices typed by the player are 1-based; parsed values
// are 0-based.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/monbattle/engine/internal/util"
	"github.com/monbattle/engine/pkg/core"
)

// ErrInvalidArgs is wrapped by every parse failure. The error text is
// meant for the player.
var ErrInvalidArgs = errors.New("invalid arguments")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgs, fmt.Sprintf(format, args...))
}

// Message strips the sentinel prefix from a parse error.
func Message(err error) string {
	return strings.TrimPrefix(err.Error(), ErrInvalidArgs.Error()+": ")
}

// parseIntFromFloat parses a string that may be an integer ("3") or a
// whole float ("3.0").
func parseIntFromFloat(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a whole number", s)
	}
	return int(f), nil
}

// Lookup is the catalog surface the parser resolves names against.
type Lookup interface {
	Species(id int) (core.Species, error)
	Item(id int) (core.Item, error)
	SpeciesIDs() []int
	ItemIDs() []int
}

// Parser resolves names and indices typed by the player.
type Parser struct {
	items   map[string]int
	itemIDs map[int]bool
	species map[string]int
}

// New indexes item and species names from lookup.
func New(lookup Lookup) (*Parser, error) {
	p := &Parser{items: map[string]int{}, itemIDs: map[int]bool{}, species: map[string]int{}}
	for _, id := range lookup.ItemIDs() {
		it, err := lookup.Item(id)
		if err != nil {
			return nil, fmt.Errorf("index items: %w", err)
		}
		p.items[util.NormalizeName(it.Name)] = id
		p.itemIDs[id] = true
	}
	for _, id := range lookup.SpeciesIDs() {
		sp, err := lookup.Species(id)
		if err != nil {
			return nil, fmt.Errorf("index species: %w", err)
		}
		p.species[util.NormalizeName(sp.Name)] = id
	}
	return p, nil
}

func clean(s string) string {
	return util.FixEscapeQuotes(util.TrimQuotes(strings.TrimSpace(s)))
}

// Index parses a 1-based position among n entries.
func Index(s string, n int, what string) (int, error) {
	v, err := parseIntFromFloat(clean(s))
	if err != nil {
		return 0, invalid("%q is not a %s number", s, what)
	}
	if v < 1 || v > n {
		if n == 0 {
			return 0, invalid("there is no %s to choose", what)
		}
		return 0, invalid("choose a %s between 1 and %d", what, n)
	}
	return v - 1, nil
}

// ItemID resolves an item by catalog ID or name.
func (p *Parser) ItemID(s string) (int, error) {
	s = clean(s)
	if id, err := strconv.Atoi(s); err == nil {
		if !p.itemIDs[id] {
			return 0, invalid("unknown item %d", id)
		}
		return id, nil
	}
	if id, ok := p.items[util.NormalizeName(s)]; ok {
		return id, nil
	}
	return 0, invalid("unknown item %q", s)
}

// SpeciesID resolves a species by catalog ID or name.
func (p *Parser) SpeciesID(s string) (int, error) {
	s = clean(s)
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}
	if id, ok := p.species[util.NormalizeName(s)]; ok {
		return id, nil
	}
	return 0, invalid("unknown Pokemon %q", s)
}

// Name joins the remaining arguments into one display name.
func Name(args []string) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if c := clean(a); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}
