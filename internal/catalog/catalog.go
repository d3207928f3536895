// internal/catalog/catalog.go
package catalog

import (
	"fmt"

	"github.com/FairForge/wardkeeper/internal/fault"
	"github.com/FairForge/wardkeeper/internal/ledger"
)

// Strategy describes one recovery option for a fault category.
type Strategy struct {
	Name               string      `json:"name" yaml:"name"`
	SuccessProbability float64     `json:"success_probability" yaml:"success_probability"`
	Cost               ledger.Cost `json:"cost,omitempty" yaml:"cost,omitempty"`
	SideEffects        []string    `json:"side_effects,omitempty" yaml:"side_effects,omitempty"`

	// Fallback names the strategy the author intends as the next escalation
	// step. It must appear later in the same chain; the dispatcher walks the
	// chain in authored order, so the reference is documentation that the
	// catalog validator keeps honest.
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

func (s Strategy) clone() Strategy {
	out := s
	out.Cost = s.Cost.Clone()
	out.SideEffects = append([]string(nil), s.SideEffects...)
	return out
}

// Catalog maps every fault category to its ordered recovery strategy chain.
// It is immutable after construction; order within a chain is exactly as
// authored, cheaper and gentler options first.
type Catalog struct {
	chains map[fault.Category][]Strategy
}

// New builds a catalog from chains and validates it. Every known category
// must carry a non-empty chain.
func New(chains map[fault.Category][]Strategy) (*Catalog, error) {
	c := &Catalog{chains: make(map[fault.Category][]Strategy, len(chains))}
	for category, chain := range chains {
		copied := make([]Strategy, len(chain))
		for i, s := range chain {
			copied[i] = s.clone()
		}
		c.chains[category] = copied
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// StrategiesFor returns the chain for a category in authored order. The
// returned slice is a copy; callers cannot mutate the catalog through it.
func (c *Catalog) StrategiesFor(category fault.Category) ([]Strategy, error) {
	chain, ok := c.chains[category]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown category %q", category)
	}
	out := make([]Strategy, len(chain))
	for i, s := range chain {
		out[i] = s.clone()
	}
	return out, nil
}

func (c *Catalog) validate() error {
	for category := range c.chains {
		if !category.Valid() {
			return fmt.Errorf("catalog: unknown category %q", category)
		}
	}
	for _, category := range fault.Categories() {
		chain, ok := c.chains[category]
		if !ok || len(chain) == 0 {
			return fmt.Errorf("catalog: category %s has no strategies", category)
		}
		names := make(map[string]int, len(chain))
		for i, s := range chain {
			if s.Name == "" {
				return fmt.Errorf("catalog: category %s strategy %d has no name", category, i+1)
			}
			if prev, dup := names[s.Name]; dup {
				return fmt.Errorf("catalog: category %s strategy %q appears at positions %d and %d",
					category, s.Name, prev+1, i+1)
			}
			names[s.Name] = i
			if s.SuccessProbability < 0 || s.SuccessProbability > 1 {
				return fmt.Errorf("catalog: category %s strategy %q probability %v out of [0,1]",
					category, s.Name, s.SuccessProbability)
			}
			for resource, qty := range s.Cost {
				if qty < 0 {
					return fmt.Errorf("catalog: category %s strategy %q cost %s is negative",
						category, s.Name, resource)
				}
			}
		}
		for i, s := range chain {
			if s.Fallback == "" {
				continue
			}
			target, ok := names[s.Fallback]
			if !ok {
				return fmt.Errorf("catalog: category %s strategy %q falls back to unknown %q",
					category, s.Name, s.Fallback)
			}
			if target <= i {
				return fmt.Errorf("catalog: category %s strategy %q falls back to %q, which does not come later in the chain",
					category, s.Name, s.Fallback)
			}
		}
	}
	return nil
}
