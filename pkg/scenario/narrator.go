package scenario

import "strings"

// Narrator defines the voice and style of the game narrator
type Narrator struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Prompts []string `json:"prompts,omitempty" yaml:"prompts,omitempty"` // style instructions added to the system prompt
}

// GetPromptsAsString returns all narrator prompts as a bulleted list.
func (n *Narrator) GetPromptsAsString() string {
	if n == nil || len(n.Prompts) == 0 {
		return ""
	}
	var b strings.Builder
	for _, prompt := range n.Prompts {
		b.WriteString("- " + prompt + "\n")
	}
	return b.String()
}
