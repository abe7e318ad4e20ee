package directive

import (
	"bytes"
	"encoding/json"
	"sort"

	"golang.org/x/text/cases"

	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

// discriminator reads only the "type" field; the rest of the object is left
// for the variant decoder.
type discriminator struct {
	Type *string `json:"type"`
}

type creationDecoder func(fragment []byte) (Creation, error)
type updateDecoder func(fragment []byte) (Update, error)

var creationDecoders = map[CreationKind]creationDecoder{
	CreationNPC:      decodeCreationAs[NPCCreation](CreationNPC),
	CreationLocation: decodeCreationAs[LocationCreation](CreationLocation),
	CreationQuest:    decodeCreationAs[QuestCreation](CreationQuest),
}

// updateDecoders is keyed by the case-folded discriminator.
var updateDecoders = map[string]updateDecoder{
	foldTag(string(UpdatePlayer)):   decodeUpdateAs[PlayerUpdate](UpdatePlayer),
	foldTag(string(UpdateWorld)):    decodeUpdateAs[WorldUpdate](UpdateWorld),
	foldTag(string(UpdateNPC)):      decodeUpdateAs[NPCUpdate](UpdateNPC),
	foldTag(string(UpdateLocation)): decodeUpdateAs[LocationUpdate](UpdateLocation),
}

func foldTag(tag string) string {
	return cases.Fold().String(tag)
}

// DecodeCreation decodes one creation directive. The "type" value must match
// a creation kind exactly.
func DecodeCreation(fragment []byte) (Creation, error) {
	tag, err := readTag(fragment)
	if err != nil {
		return nil, err
	}
	decode, ok := creationDecoders[CreationKind(tag)]
	if !ok {
		return nil, &turnerr.DecodingError{Tag: tag, Msg: "unknown creation type"}
	}
	return decode(fragment)
}

// DecodeUpdate decodes one update directive. The "type" value is matched
// case-insensitively.
func DecodeUpdate(fragment []byte) (Update, error) {
	tag, err := readTag(fragment)
	if err != nil {
		return nil, err
	}
	decode, ok := updateDecoders[foldTag(tag)]
	if !ok {
		return nil, &turnerr.DecodingError{Tag: tag, Msg: "unknown update type"}
	}
	return decode(fragment)
}

// DecodeUpdateMap decodes an object whose keys are entity ids and whose
// values are update directives.
func DecodeUpdateMap(fragment []byte) (map[string]Update, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(fragment, &raw); err != nil {
		return nil, &turnerr.DecodingError{Msg: "update map is not a JSON object", Err: err}
	}
	updates := make(map[string]Update, len(raw))
	for id, frag := range raw {
		u, err := DecodeUpdate(frag)
		if err != nil {
			return nil, err
		}
		updates[id] = u
	}
	return updates, nil
}

func readTag(fragment []byte) (string, error) {
	trimmed := bytes.TrimSpace(fragment)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", &turnerr.DecodingError{Msg: "directive is not a JSON object"}
	}
	var d discriminator
	if err := json.Unmarshal(trimmed, &d); err != nil {
		return "", &turnerr.DecodingError{Msg: "malformed directive", Err: err}
	}
	if d.Type == nil || *d.Type == "" {
		return "", &turnerr.DecodingError{Msg: `missing "type" discriminator`}
	}
	return *d.Type, nil
}

type creationVariant interface {
	NPCCreation | LocationCreation | QuestCreation
}

type updateVariant interface {
	PlayerUpdate | WorldUpdate | NPCUpdate | LocationUpdate
}

func decodeCreationAs[T creationVariant](kind CreationKind) creationDecoder {
	return func(fragment []byte) (Creation, error) {
		v := new(T)
		if err := json.Unmarshal(fragment, v); err != nil {
			return nil, &turnerr.DecodingError{Tag: string(kind), Msg: "malformed creation directive", Err: err}
		}
		return any(v).(Creation), nil
	}
}

func decodeUpdateAs[T updateVariant](kind UpdateKind) updateDecoder {
	return func(fragment []byte) (Update, error) {
		v := new(T)
		if err := json.Unmarshal(fragment, v); err != nil {
			return nil, &turnerr.DecodingError{Tag: string(kind), Msg: "malformed update directive", Err: err}
		}
		u := any(v).(Update)
		if err := validateItems(u.lists()...); err != nil {
			return nil, &turnerr.DecodingError{Tag: string(kind), Msg: "invalid list item", Err: err}
		}
		return u, nil
	}
}

// updateOrder applies world changes before the player moves, and entity
// updates after both, so triggers see a consistent clock and location.
var updateOrder = map[UpdateKind]int{
	UpdateWorld:    0,
	UpdatePlayer:   1,
	UpdateLocation: 2,
	UpdateNPC:      3,
}

// SortedKeys returns the keys of updates in application order: by kind
// (world, player, location, npc), then by key.
func SortedKeys(updates map[string]Update) []string {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := updateOrder[updates[keys[i]].Kind()], updateOrder[updates[keys[j]].Kind()]
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}
