package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionVariables(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Commit == "" {
		t.Error("Commit should not be empty")
	}
	if BuildDate == "" {
		t.Error("BuildDate should not be empty")
	}
}

func TestVersionCommand(t *testing.T) {
	var stdout bytes.Buffer
	app := NewApp(WithIO(strings.NewReader(""), &stdout, &stdout))
	app.SetArgs([]string{"version"})

	if err := app.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "kafeido") {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestVersionCommandJSON(t *testing.T) {
	var stdout bytes.Buffer
	app := NewApp(WithIO(strings.NewReader(""), &stdout, &stdout))
	app.SetArgs([]string{"version", "--json"})

	if err := app.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout.String(), `"version"`) {
		t.Errorf("output = %q", stdout.String())
	}
}
