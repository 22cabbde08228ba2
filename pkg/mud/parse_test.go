package mud

import (
	"reflect"
	"testing"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"look", []string{"look"}},
		{"  go   east  ", []string{"go", "east"}},
		{`say "hello there" friend`, []string{"say", "hello there", "friend"}},
		{`say 'single quoted'`, []string{"say", "single quoted"}},
		{`tell "a 'nested' word"`, []string{"tell", "a 'nested' word"}},
		{`say "unterminated runs on`, []string{"say", "unterminated runs on"}},
		{`""`, []string{""}},
		{"", nil},
		{"   ", nil},
	}
	for _, tt := range tests {
		if got := SplitArgs(tt.line); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitArgs(%q) = %#v, want %#v", tt.line, got, tt.want)
		}
	}
}

func TestQuotedMessage(t *testing.T) {
	line := `"hello everyone"`
	msg, ok := quotedMessage(line, SplitArgs(line))
	if !ok || msg != "hello everyone" {
		t.Errorf("quotedMessage = %q, %v", msg, ok)
	}

	line = `say "hello"`
	if _, ok := quotedMessage(line, SplitArgs(line)); ok {
		t.Error("a quoted argument after a verb is not the say shortcut")
	}

	line = "look"
	if _, ok := quotedMessage(line, SplitArgs(line)); ok {
		t.Error("an unquoted line is not the say shortcut")
	}
}
