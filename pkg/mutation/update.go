package mutation

import (
	"context"
	"slices"

	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/directive"
	"github.com/jwebster45206/turn-engine/pkg/scenario"
	"github.com/jwebster45206/turn-engine/pkg/state"
	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

func (b *batch) update(ctx context.Context, key string, u directive.Update) (string, error) {
	target := u.TargetID()
	if target == "" {
		target = state.EntityKey(key)
	}

	switch u := u.(type) {
	case *directive.PlayerUpdate:
		return state.PlayerID, b.updatePlayer(ctx, u)
	case *directive.WorldUpdate:
		return state.WorldID, b.updateWorld(ctx, u)
	case *directive.NPCUpdate:
		return state.NPCID(target), b.updateNPC(ctx, target, u)
	case *directive.LocationUpdate:
		return state.LocationID(target), b.updateLocation(ctx, target, u)
	default:
		return "", turnerr.Validation("type", "unsupported update %T", u)
	}
}

func (b *batch) updatePlayer(ctx context.Context, u *directive.PlayerUpdate) error {
	p, err := b.player(ctx)
	if err != nil {
		return err
	}

	if u.Location != nil && *u.Location != p.Location {
		prev := p.Location
		p.Location = *u.Location
		if !slices.Contains(p.KnownLocations, p.Location) {
			p.KnownLocations = append(p.KnownLocations, p.Location)
		}
		if b.res.Transition == nil {
			b.res.Transition = &Transition{Previous: prev}
		}
		b.res.Transition.Current = p.Location
	}
	if u.Health != nil {
		p.SetHealth(u.Health.Int())
	}
	p.Inventory = ApplyEntries(p.Inventory, u.Inventory)
	p.Currencies = ApplyEntries(p.Currencies, u.Currencies)
	p.StatusEffects = ApplyEntries(p.StatusEffects, u.StatusEffects)
	p.KnownNPCs = ApplyStrings(p.KnownNPCs, u.KnownNPCs)
	p.KnownLocations = ApplyStrings(p.KnownLocations, u.KnownLocations)
	p.ActiveQuests = ApplyStrings(p.ActiveQuests, u.ActiveQuests)

	state.Put(b.sess, state.PlayerID, p)
	return nil
}

func (b *batch) updateWorld(ctx context.Context, u *directive.WorldUpdate) error {
	w, err := state.Load[state.World](ctx, b.sess, state.WorldID)
	if err != nil {
		return err
	}
	if w == nil {
		w = &state.World{}
	}
	if u.TimeDelta != nil {
		if err := w.AdvanceClock(u.TimeDelta.Amount.Int(), u.TimeDelta.Unit); err != nil {
			return err
		}
	}
	if u.Weather != nil {
		w.Weather = *u.Weather
	}
	w.Tags = ApplyStrings(w.Tags, u.Tags)

	state.Put(b.sess, state.WorldID, w)
	return nil
}

func (b *batch) updateNPC(ctx context.Context, id string, u *directive.NPCUpdate) error {
	npc, err := state.Load[actor.NPC](ctx, b.sess, state.NPCID(id))
	if err != nil {
		return err
	}
	if npc == nil {
		return turnerr.Validation("id", "unknown NPC %q", id)
	}

	if u.Location != nil && *u.Location != npc.Location {
		if err := b.moveNPC(ctx, npc, *u.Location); err != nil {
			return err
		}
	}
	if u.Name != nil {
		npc.Name = *u.Name
	}
	if u.Disposition != nil {
		npc.Disposition = *u.Disposition
	}
	if u.Description != nil {
		npc.Description = *u.Description
	}
	npc.Inventory = ApplyEntries(npc.Inventory, u.Inventory)
	npc.StatusEffects = ApplyEntries(npc.StatusEffects, u.StatusEffects)
	npc.Tags = ApplyStrings(npc.Tags, u.Tags)

	state.Put(b.sess, state.NPCID(id), npc)
	return nil
}

// moveNPC relocates npc, keeping both locations' NPC lists in step.
func (b *batch) moveNPC(ctx context.Context, npc *actor.NPC, to string) error {
	dest, err := loadLocation(ctx, b.sess, to, "location")
	if err != nil {
		return err
	}
	if npc.Location != "" {
		from, err := state.Load[scenario.Location](ctx, b.sess, state.LocationID(npc.Location))
		if err != nil {
			return err
		}
		if from != nil {
			from.RemoveNPC(npc.ID)
			state.Put(b.sess, state.LocationID(from.ID), from)
		}
	}
	dest.AddNPC(npc.ID)
	state.Put(b.sess, state.LocationID(dest.ID), dest)
	npc.Location = to
	return nil
}

func (b *batch) updateLocation(ctx context.Context, id string, u *directive.LocationUpdate) error {
	loc, err := loadLocation(ctx, b.sess, id, "id")
	if err != nil {
		return err
	}
	if u.Name != nil {
		loc.Name = *u.Name
	}
	if u.Description != nil {
		loc.Description = *u.Description
	}
	loc.Items = ApplyEntries(loc.Items, u.Items)
	loc.Tags = ApplyStrings(loc.Tags, u.Tags)
	state.Put(b.sess, state.LocationID(id), loc)

	for _, item := range u.NPCs {
		if err := b.placeNPC(ctx, loc, item); err != nil {
			return err
		}
	}
	return nil
}

// placeNPC applies one entry of a location's npcs list through the NPC
// record, so an NPC is never listed in two places. Add moves the NPC here;
// Remove leaves it nowhere if it was here.
func (b *batch) placeNPC(ctx context.Context, loc *scenario.Location, item directive.ListItem) error {
	npcID := item.Key()
	npc, err := state.Load[actor.NPC](ctx, b.sess, state.NPCID(npcID))
	if err != nil {
		return err
	}
	if npc == nil {
		if item.Action == directive.ActionRemove {
			loc.RemoveNPC(npcID)
			return nil
		}
		return turnerr.Validation("npcs", "unknown NPC %q", npcID)
	}

	switch item.Action {
	case directive.ActionAdd:
		if npc.Location == loc.ID {
			loc.AddNPC(npc.ID)
			return nil
		}
		if err := b.moveNPC(ctx, npc, loc.ID); err != nil {
			return err
		}
	case directive.ActionRemove:
		loc.RemoveNPC(npc.ID)
		if npc.Location != loc.ID {
			return nil
		}
		npc.Location = ""
	}
	state.Put(b.sess, state.NPCID(npc.ID), npc)
	return nil
}
