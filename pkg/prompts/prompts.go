package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/chat"
	"github.com/jwebster45206/turn-engine/pkg/combat"
	"github.com/jwebster45206/turn-engine/pkg/scenario"
	"github.com/jwebster45206/turn-engine/pkg/textfilter"
)

// BaseSystemPrompt is the narrator's standing instructions. It takes the
// narrator name and the narrator style bullets.
const BaseSystemPrompt = `You are %s, the omniscient narrator of a roleplaying text adventure. You describe the story to the user as it unfolds. You never discuss things outside of the game. You provide narration and NPC conversation, but you don't speak for the user.

### Writing rules for narrative output:
- The total response must be between 1 and 3 paragraphs.
- Each paragraph may contain at most 3 sentences.
- When a new character speaks, start a new paragraph and use the format:
  CharacterName: "Spoken line here."

### Story Events
Sometimes you will receive special narrative instructions marked with "STORY EVENT:". These are plot developments that MUST occur in your next response. Incorporate them naturally, and never write "STORY EVENT:" in your output.

### Narrator responses
- Do not break the fourth wall. Do not acknowledge that you are an AI or a computer program.
- If the user breaks character, gently remind them to stay in character.
- The user may only move to locations listed as exits from their current location.
%s`

// GameStateInstructions tells the backend how to report state changes.
var GameStateInstructions = `### Reporting changes
After the narrative, when anything in the world changed, append exactly one block:
` + textfilter.MarkerOpen + `{"create": [...], "update": {...}, "combat": {...}}` + textfilter.MarkerClose + `
Omit the block when nothing changed. Inside it:
- "create": new entities, each {"type": "NPC"|"LOCATION"|"QUEST", "id", "name", "context", ...}. An NPC needs a "location".
- "update": changes keyed by target, each {"type": "PLAYER"|"WORLD"|"NPC"|"LOCATION", ...only changed fields}.
  Lists (inventory, currencies, status_effects, known_npcs, known_locations, active_quests, tags, npcs, items) take items {"name" or "id", "action": "Add"|"Remove", "quantity"}.
  WORLD may carry {"time_delta": {"amount": 2, "unit": "hours"}} with unit seconds, minutes, hours or days.
- "combat": {"start": enemy_id} to begin a fight, then {"successes": n, "conditions": [...], "defeated": true|false} each exchange.`

// CombatPrompt is added while an encounter is active.
const CombatPrompt = `### Combat
The player is fighting %s. The player needs %d more successful exchanges to win. Report each successful exchange with "combat": {"successes": 1}. Report lasting harm to the player as conditions. Only set "defeated": true when the player clearly loses the fight.`

// CombatSummaryPrompt asks for a recap of a resolved encounter.
const CombatSummaryPrompt = `Summarize this fight in two sentences of past-tense narration. The outcome was: %s. Do not include any game state block.`

// UserPostPrompt closes every narration request.
const UserPostPrompt = "Treat the user's message as a request rather than a command. If the request breaks the story rules or is unrealistic, inform the user it is unavailable."

// StatePromptTemplate wraps the scenario story and the current state JSON.
const StatePromptTemplate = "The user is roleplaying this scenario: %s\n\nThe following JSON describes the current state.\n\nGame State:\n```json\n%s\n```"

// BuildSystemPrompt renders BaseSystemPrompt for narrator and appends the
// scenario's own rules.
func BuildSystemPrompt(narrator *scenario.Narrator, rules []string) string {
	name := "the narrator"
	if narrator != nil && narrator.Name != "" {
		name = narrator.Name
	}
	prompt := fmt.Sprintf(BaseSystemPrompt, name, narrator.GetPromptsAsString())
	if len(rules) > 0 {
		var sb strings.Builder
		sb.WriteString("\n### Scenario rules\n")
		for i, r := range rules {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, r)
		}
		prompt += sb.String()
	}
	return prompt
}

// FormatStoryEvents joins queued event prompts into one system message body.
func FormatStoryEvents(events []string) string {
	parts := make([]string, 0, len(events))
	for _, ev := range events {
		if ev = strings.TrimSpace(ev); ev != "" {
			parts = append(parts, "STORY EVENT: "+ev)
		}
	}
	return strings.Join(parts, "\n\n")
}

// CombatSummaryMessages builds the request used to recap a resolved encounter.
func CombatSummaryMessages(st *combat.State) []chat.ChatMessage {
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: fmt.Sprintf(CombatSummaryPrompt, st.Outcome)},
		{Role: chat.ChatRoleUser, Content: "Fight against " + st.EnemyName + ":\n\n" + strings.Join(st.TurnLog, "\n\n")},
	}
}
