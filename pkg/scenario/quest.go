package scenario

const (
	QuestActive    = "active"
	QuestCompleted = "completed"
)

// Quest is a goal the player can take on.
type Quest struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Objectives  []string `json:"objectives,omitempty" yaml:"objectives,omitempty"`
	Giver       string   `json:"giver,omitempty" yaml:"giver,omitempty"` // npc id
	Status      string   `json:"status,omitempty" yaml:"status,omitempty"`
}
