package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 0, 10, "░░░░░░░░░░   0%"},
		{1, 2, 10, "█████░░░░░  50%"},
		{3, 3, 4, "█████ 100%"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.done, tt.total, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%d, %d, %d) = %q, want %q", tt.done, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestSetTheme(t *testing.T) {
	defer SetTheme("classic")

	SetTheme("mono")
	if got := Current().BoxChecked; got != "[x]" {
		t.Errorf("mono BoxChecked = %q", got)
	}
	SetTheme("NEON")
	if got := Current().BoxChecked; got != "◼" {
		t.Errorf("neon BoxChecked = %q", got)
	}
	SetTheme("whatever")
	if got := Current().BoxChecked; got != "☑" {
		t.Errorf("fallback BoxChecked = %q", got)
	}
}

func TestPanelFramesEveryLine(t *testing.T) {
	defer SetTheme("classic")
	SetTheme("mono")

	var buf bytes.Buffer
	Panel(&buf, []string{"Todos", "buy milk"})
	out := buf.String()
	for _, want := range []string{"┌", "│ Todos", "│ buy milk", "┘"} {
		if !strings.Contains(out, want) {
			t.Errorf("panel %q missing %q", out, want)
		}
	}
}

func TestOKAndFail(t *testing.T) {
	defer SetTheme("classic")
	SetTheme("mono")

	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "GET /tasks -> 500")
	if got := buf.String(); got != "x added\nx GET /tasks -> 500\n" {
		t.Errorf("output = %q", got)
	}
}
