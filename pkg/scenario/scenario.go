// Package scenario defines places and quests, and the scenario file a new
// owner's world is seeded from.
//
// Example:
//
//	name: The Drowned Bell
//	opening:
//	  location: harbor
//	start_time: 2024-06-01T08:00:00Z
//	locations:
//	  - id: harbor
//	    name: Harbor
//	    exits: {north: chapel}
//	npcs:
//	  - id: mara
//	    name: Mara
//	    location: harbor
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/trigger"
)

// Opening is where and how a new game starts.
type Opening struct {
	Location string `yaml:"location"`
	Prompt   string `yaml:"prompt,omitempty"` // first narration request
}

// Scenario is the template for a new owner's world.
type Scenario struct {
	Name      string                 `yaml:"name"`
	Story     string                 `yaml:"story,omitempty"` // background for the system prompt
	Rules     []string               `yaml:"rules,omitempty"` // scenario-specific narrator rules
	Narrator  *Narrator              `yaml:"narrator,omitempty"`
	Opening   Opening                `yaml:"opening"`
	StartTime time.Time              `yaml:"start_time,omitempty"`
	Weather   string                 `yaml:"weather,omitempty"`
	Player    actor.Player           `yaml:"player"`
	Locations []Location             `yaml:"locations"`
	NPCs      []actor.NPC            `yaml:"npcs,omitempty"`
	Quests    []Quest                `yaml:"quests,omitempty"`
	Enemies   []actor.EnemyStatBlock `yaml:"enemies,omitempty"`
	Events    []*trigger.GameEvent   `yaml:"events,omitempty"`
}

// Load reads and validates the scenario file at path.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: open %q: %w", path, err)
	}
	defer f.Close()

	s, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("scenario: parse %q: %w", path, err)
	}
	return s, nil
}

// LoadFromReader decodes scenario YAML from r, fills derived fields, and
// validates the result.
func LoadFromReader(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("scenario: decode yaml: %w", err)
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) normalize() {
	if s.Player.ID == "" {
		s.Player.ID = "player"
	}
	if s.Player.Location == "" {
		s.Player.Location = s.Opening.Location
	}
	if s.Player.Health == 0 && s.Player.MaxHealth > 0 {
		s.Player.Health = s.Player.MaxHealth
	}
	for i := range s.Enemies {
		e := &s.Enemies[i]
		if e.Name == "" {
			e.Name = e.ID
		}
		if e.SuccessesRequired == 0 {
			e.SuccessesRequired = actor.SuccessesForLevel(e.Level)
		}
	}
}

// Validate checks that every reference in the scenario resolves. It returns
// all problems joined.
func (s *Scenario) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	}

	locs := make(map[string]bool, len(s.Locations))
	for _, l := range s.Locations {
		switch {
		case l.ID == "":
			errs = append(errs, fmt.Errorf("location %q: id is required", l.Name))
		case locs[l.ID]:
			errs = append(errs, fmt.Errorf("location %s: duplicate id", l.ID))
		}
		locs[l.ID] = true
	}
	for _, l := range s.Locations {
		for dir, to := range l.Exits {
			if !locs[to] {
				errs = append(errs, fmt.Errorf("location %s: exit %s leads to unknown location %q", l.ID, dir, to))
			}
		}
	}
	if !locs[s.Opening.Location] {
		errs = append(errs, fmt.Errorf("opening.location %q is not a declared location", s.Opening.Location))
	}

	npcs := make(map[string]bool, len(s.NPCs))
	for _, n := range s.NPCs {
		switch {
		case n.ID == "":
			errs = append(errs, fmt.Errorf("npc %q: id is required", n.Name))
		case npcs[n.ID]:
			errs = append(errs, fmt.Errorf("npc %s: duplicate id", n.ID))
		case n.Location != "" && !locs[n.Location]:
			errs = append(errs, fmt.Errorf("npc %s: unknown location %q", n.ID, n.Location))
		}
		npcs[n.ID] = true
	}

	for _, q := range s.Quests {
		if q.ID == "" {
			errs = append(errs, fmt.Errorf("quest %q: id is required", q.Name))
		}
		if q.Giver != "" && !npcs[q.Giver] {
			errs = append(errs, fmt.Errorf("quest %s: unknown giver %q", q.ID, q.Giver))
		}
	}

	for _, e := range s.Enemies {
		block, err := actor.NewEnemyStatBlock(e.ID, e.Name, e.Level)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if e.SuccessesRequired != block.SuccessesRequired {
			errs = append(errs, fmt.Errorf("enemy %s: successes_required %d does not match level %d (want %d)",
				e.ID, e.SuccessesRequired, e.Level, block.SuccessesRequired))
		}
	}

	seen := make(map[string]bool, len(s.Events))
	for _, ev := range s.Events {
		if err := ev.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[ev.ID] {
			errs = append(errs, fmt.Errorf("event %s: duplicate id", ev.ID))
		}
		seen[ev.ID] = true
		switch v := ev.TriggerValue.(type) {
		case trigger.LocationValue:
			if !locs[v.LocationID] {
				errs = append(errs, fmt.Errorf("event %s: unknown location %q", ev.ID, v.LocationID))
			}
		case trigger.FirstEntryValue:
			if !locs[v.LocationID] {
				errs = append(errs, fmt.Errorf("event %s: unknown location %q", ev.ID, v.LocationID))
			}
		}
	}

	return errors.Join(errs...)
}

// FindLocation returns the declared location with id, or nil.
func (s *Scenario) FindLocation(id string) *Location {
	for i := range s.Locations {
		if s.Locations[i].ID == id {
			return &s.Locations[i]
		}
	}
	return nil
}

// FindNPC returns the declared NPC with id, or nil.
func (s *Scenario) FindNPC(id string) *actor.NPC {
	for i := range s.NPCs {
		if s.NPCs[i].ID == id {
			return &s.NPCs[i]
		}
	}
	return nil
}
