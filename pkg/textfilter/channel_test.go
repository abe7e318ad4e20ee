package textfilter

import (
	"errors"
	"testing"

	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantNarrative string
		wantPayload   string
		wantOK        bool
	}{
		{
			name:          "no markers returns input unchanged",
			raw:           "  The tavern is quiet.\n",
			wantNarrative: "  The tavern is quiet.\n",
		},
		{
			name:          "segment at end",
			raw:           "You draw your sword. <game_state>{\"a\":1}</game_state>",
			wantNarrative: "You draw your sword.",
			wantPayload:   `{"a":1}`,
			wantOK:        true,
		},
		{
			name:          "segment in middle joins with single space",
			raw:           "The door creaks.\n\n<game_state>\n {\"b\":2} \n</game_state>\n\n  A cold draft follows.  ",
			wantNarrative: "The door creaks. A cold draft follows.",
			wantPayload:   `{"b":2}`,
			wantOK:        true,
		},
		{
			name:          "segment at start",
			raw:           "<game_state>{}</game_state>Rain falls.",
			wantNarrative: "Rain falls.",
			wantPayload:   "{}",
			wantOK:        true,
		},
		{
			name:          "only a segment",
			raw:           "<game_state>{}</game_state>",
			wantNarrative: "",
			wantPayload:   "{}",
			wantOK:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			narrative, payload, ok, err := Extract(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if narrative != tt.wantNarrative {
				t.Errorf("narrative = %q, want %q", narrative, tt.wantNarrative)
			}
			if payload != tt.wantPayload {
				t.Errorf("payload = %q, want %q", payload, tt.wantPayload)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestExtract_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unterminated", "Text <game_state>{\"a\":1}"},
		{"close without open", "Text {\"a\":1}</game_state>"},
		{"close before open", "</game_state> text <game_state>"},
		{"two segments", "<game_state>{}</game_state> and <game_state>{}</game_state>"},
		{"nested open", "<game_state> <game_state>{}</game_state>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := Extract(tt.raw)
			var fe *turnerr.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FormatError, got %v", err)
			}
		})
	}
}

func TestCleanNarrative(t *testing.T) {
	in := "STORY EVENT: The bell tolls.\nstory event:   Again.\nNothing else.\n\n"
	want := "The bell tolls.\nAgain.\nNothing else."
	if got := CleanNarrative(in); got != want {
		t.Errorf("CleanNarrative() = %q, want %q", got, want)
	}
}
