package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/turn-engine/pkg/scenario"
	"github.com/jwebster45206/turn-engine/pkg/trigger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <scenario.yaml|dir>...\n", os.Args[0])
		os.Exit(1)
	}

	files, err := expandArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	failed := 0
	for _, filename := range files {
		validator := &ScenarioValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d scenario files failed validation\n", failed, len(files))
		os.Exit(1)
	}

	fmt.Println("Scenario files are valid!")
}

// expandArgs replaces directories with the scenario files inside them.
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(arg, pattern))
			if err != nil {
				return nil, err
			}
			files = append(files, matches...)
		}
	}
	sort.Strings(files)
	return files, nil
}

type ScenarioValidator struct {
	errors []string
}

func (v *ScenarioValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("scenario file must have .yaml extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ext)
	if !isValidScenarioFilename(nameWithoutExt) {
		return fmt.Errorf("scenario filename '%s' must be lowercase snake_case (e.g., my_scenario.yaml, not my-scenario.yaml or MyScenario.yaml)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	var strict scenario.Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&strict); err != nil {
		return fmt.Errorf("file %s failed strict YAML unmarshaling: %w", filename, err)
	}

	s, err := scenario.LoadFromReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}

	v.validateScenario(s)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

// validateScenario checks naming conventions that Scenario.Validate does not.
func (v *ScenarioValidator) validateScenario(s *scenario.Scenario) {
	v.validateIDFormat("opening location", s.Opening.Location)
	if strings.TrimSpace(s.Opening.Prompt) == "" {
		v.addError("opening prompt is empty; new games will start without narration")
	}

	for _, l := range s.Locations {
		v.validateIDFormat("location ID", l.ID)
		for dir := range l.Exits {
			v.validateIDFormat("exit direction", dir)
		}
	}

	for _, n := range s.NPCs {
		v.validateIDFormat("NPC ID", n.ID)
	}

	for _, q := range s.Quests {
		v.validateIDFormat("quest ID", q.ID)
	}

	for _, e := range s.Enemies {
		v.validateIDFormat("enemy ID", e.ID)
	}

	for _, ev := range s.Events {
		v.validateIDFormat("event ID", ev.ID)
		if strings.TrimSpace(ev.Prompt) == "" {
			v.addError(fmt.Sprintf("event %s has an empty prompt", ev.ID))
		}
		if tv, ok := ev.TriggerValue.(trigger.TimeValue); ok && !s.StartTime.IsZero() && !tv.TargetTime.After(s.StartTime) {
			v.addError(fmt.Sprintf("event %s fires at %s, which is not after start_time", ev.ID, tv.TargetTime.Format("2006-01-02 15:04")))
		}
	}
}

func (v *ScenarioValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *ScenarioValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidScenarioFilename(name string) bool {
	// Allow 'x.' prefix for experimental scenarios
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
