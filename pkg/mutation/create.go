package mutation

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/directive"
	"github.com/jwebster45206/turn-engine/pkg/scenario"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

// PlayerContext is the creation context that attaches a quest to the player.
const PlayerContext = "player"

func newEntityID() string {
	return uuid.NewString()
}

func (b *batch) create(ctx context.Context, c directive.Creation) (string, error) {
	base := c.Base()
	if strings.TrimSpace(base.Name) == "" {
		return "", turnerr.Validation("name", "%s creation requires a name", c.Kind())
	}
	id := base.ID
	if id == "" {
		id = b.engine.newID()
	}

	switch c := c.(type) {
	case *directive.NPCCreation:
		return b.createNPC(ctx, id, c)
	case *directive.LocationCreation:
		return b.createLocation(ctx, id, c)
	case *directive.QuestCreation:
		return b.createQuest(ctx, id, c)
	default:
		return "", turnerr.Validation("type", "unsupported creation %T", c)
	}
}

// ensureNew rejects a creation whose id is already taken.
func ensureNew[T any](ctx context.Context, sess *state.Session, recordID string) error {
	existing, err := state.Load[T](ctx, sess, recordID)
	if err != nil {
		return err
	}
	if existing != nil {
		return turnerr.Validation("id", "%s already exists", recordID)
	}
	return nil
}

func loadLocation(ctx context.Context, sess *state.Session, id, field string) (*scenario.Location, error) {
	loc, err := state.Load[scenario.Location](ctx, sess, state.LocationID(id))
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, turnerr.Validation(field, "unknown location %q", id)
	}
	return loc, nil
}

func (b *batch) createNPC(ctx context.Context, id string, c *directive.NPCCreation) (string, error) {
	locID := c.Location
	if locID == "" {
		locID = c.Context
	}
	if locID == "" {
		return "", turnerr.Validation("location", "NPC %q requires a location", c.Name)
	}
	recID := state.NPCID(id)
	if err := ensureNew[actor.NPC](ctx, b.sess, recID); err != nil {
		return "", err
	}
	loc, err := loadLocation(ctx, b.sess, locID, "location")
	if err != nil {
		return "", err
	}

	npc := &actor.NPC{
		ID:          id,
		Name:        c.Name,
		Description: c.Description,
		Disposition: c.Disposition,
		Location:    locID,
	}
	loc.AddNPC(id)
	state.Put(b.sess, recID, npc)
	state.Put(b.sess, state.LocationID(locID), loc)
	return recID, nil
}

func (b *batch) createLocation(ctx context.Context, id string, c *directive.LocationCreation) (string, error) {
	recID := state.LocationID(id)
	if err := ensureNew[scenario.Location](ctx, b.sess, recID); err != nil {
		return "", err
	}
	loc := &scenario.Location{
		ID:          id,
		Name:        c.Name,
		Description: c.Description,
	}
	for dir, to := range c.Exits {
		loc.Link(dir, to)
	}

	if c.Context != "" {
		from, err := loadLocation(ctx, b.sess, c.Context, "context")
		if err != nil {
			return "", err
		}
		from.Link(loc.Name, id)
		if !linksTo(loc, from.ID) {
			loc.Link(from.Name, from.ID)
		}
		state.Put(b.sess, state.LocationID(from.ID), from)
	}

	state.Put(b.sess, recID, loc)
	return recID, nil
}

func linksTo(l *scenario.Location, id string) bool {
	for _, to := range l.Exits {
		if to == id {
			return true
		}
	}
	return false
}

func (b *batch) createQuest(ctx context.Context, id string, c *directive.QuestCreation) (string, error) {
	recID := state.QuestID(id)
	if err := ensureNew[scenario.Quest](ctx, b.sess, recID); err != nil {
		return "", err
	}
	q := &scenario.Quest{
		ID:          id,
		Name:        c.Name,
		Description: c.Description,
		Objectives:  c.Objectives,
		Giver:       c.Giver,
		Status:      scenario.QuestActive,
	}
	state.Put(b.sess, recID, q)

	if c.Context == PlayerContext {
		p, err := b.player(ctx)
		if err != nil {
			return "", err
		}
		p.ActiveQuests = ApplyStrings(p.ActiveQuests, []directive.ListItem{{ID: id, Action: directive.ActionAdd}})
		state.Put(b.sess, state.PlayerID, p)
	}
	return recID, nil
}

// player loads the player record, starting a blank one for a new owner.
func (b *batch) player(ctx context.Context) (*actor.Player, error) {
	p, err := state.Load[actor.Player](ctx, b.sess, state.PlayerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &actor.Player{ID: state.PlayerID}
		state.Put(b.sess, state.PlayerID, p)
	}
	return p, nil
}
