package chat

import (
	"strings"
	"testing"
)

func TestFormatWithPCName(t *testing.T) {
	atLimit := strings.Repeat("x", maxSpeakerLength) + ": hello"
	pastLimit := strings.Repeat("x", maxSpeakerLength+1) + ": hello"

	tests := map[string]struct {
		message, want string
	}{
		"plain input gets prefix":      {"I ring the bell.", "Wren: I ring the bell."},
		"own prefix kept":              {"Wren: I wade in.", "Wren: I wade in."},
		"other speaker kept":           {"Ferryman: Pay the toll.", "Ferryman: Pay the toll."},
		"leading colon is not speaker": {": shrug", "Wren: : shrug"},
		"empty input":                  {"", "Wren: "},
		"speaker at length limit":      {atLimit, atLimit},
		"speaker past length limit":    {pastLimit, "Wren: " + pastLimit},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := FormatWithPCName(tt.message, "Wren"); got != tt.want {
				t.Errorf("FormatWithPCName(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestValidateMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantErr bool
		errMsg  string
	}{
		{name: "valid short message", message: "I attack the goblin."},
		{name: "valid message at max length", message: strings.Repeat("a", MaxMessageLength)},
		{name: "message too long", message: strings.Repeat("a", MaxMessageLength+1), wantErr: true, errMsg: "exceeds maximum length"},
		{name: "empty message", message: "", wantErr: true, errMsg: "cannot be empty"},
		{name: "whitespace only", message: "  \n", wantErr: true, errMsg: "cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessage(tt.message)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidateMessage() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}
