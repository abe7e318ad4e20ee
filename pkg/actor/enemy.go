package actor

import "fmt"

const (
	MinEnemyLevel = 1
	MaxEnemyLevel = 10
)

// EnemyStatBlock describes an opponent the player can fight. It is read-only
// during combat: SuccessesRequired is fixed when the block is created and an
// encounter snapshots it when it starts.
type EnemyStatBlock struct {
	ID                string   `json:"id" yaml:"id"`
	Name              string   `json:"name" yaml:"name"`
	Description       string   `json:"description,omitempty" yaml:"description,omitempty"`
	Level             int      `json:"level" yaml:"level"`
	SuccessesRequired int      `json:"successes_required" yaml:"successes_required"`
	Vulnerability     string   `json:"vulnerability,omitempty" yaml:"vulnerability,omitempty"` // what the enemy is weak against
	BadStuff          string   `json:"bad_stuff,omitempty" yaml:"bad_stuff,omitempty"`         // what happens to the player on a failed exchange
	Tags              []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// SuccessesForLevel returns ceil(level/2), the number of successes needed to
// defeat an enemy of that level.
func SuccessesForLevel(level int) int {
	return (level + 1) / 2
}

// NewEnemyStatBlock builds a stat block for an enemy of the given level,
// computing SuccessesRequired. Level must be between 1 and 10.
func NewEnemyStatBlock(id, name string, level int) (*EnemyStatBlock, error) {
	if id == "" {
		return nil, fmt.Errorf("enemy id is required")
	}
	if level < MinEnemyLevel || level > MaxEnemyLevel {
		return nil, fmt.Errorf("enemy %s: level %d out of range %d-%d", id, level, MinEnemyLevel, MaxEnemyLevel)
	}
	if name == "" {
		name = id
	}
	return &EnemyStatBlock{
		ID:                id,
		Name:              name,
		Level:             level,
		SuccessesRequired: SuccessesForLevel(level),
	}, nil
}
