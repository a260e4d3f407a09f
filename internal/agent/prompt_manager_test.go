package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePrompt(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGetPersonaPrompt_Order(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "skills.md", "SKILLS")
	writePrompt(t, dir, "user.md", "USER")
	writePrompt(t, dir, "identity.md", "IDENTITY")
	writePrompt(t, dir, "soul.md", "SOUL")
	writePrompt(t, dir, "planner.md", "PLANNER")
	writePrompt(t, dir, "notes.txt", "IGNORED")

	pm := NewPromptManager(dir)
	persona, err := pm.GetPersonaPrompt()
	if err != nil {
		t.Fatalf("GetPersonaPrompt failed: %v", err)
	}

	want := "IDENTITY\n\n---\n\nSOUL\n\n---\n\nUSER\n\n---\n\nSKILLS"
	if persona != want {
		t.Errorf("Wrong assembly order:\ngot  %q\nwant %q", persona, want)
	}
	if strings.Contains(persona, "PLANNER") {
		t.Error("planner.md must not be part of the persona")
	}
	if strings.Contains(persona, "IGNORED") {
		t.Error("Non-markdown files must be skipped")
	}
}

func TestGetPersonaPrompt_EmptyDirectory(t *testing.T) {
	pm := NewPromptManager(t.TempDir())
	if _, err := pm.GetPersonaPrompt(); err == nil {
		t.Error("Expected an error for a directory with no prompt files")
	}
}

func TestGetPlannerPrompt(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "planner.md", "PLANNER DIRECTIVE")
	writePrompt(t, dir, "identity.md", "IDENTITY")

	pm := NewPromptManager(dir)
	prompt, err := pm.GetPlannerPrompt()
	if err != nil {
		t.Fatalf("GetPlannerPrompt failed: %v", err)
	}
	if !strings.HasPrefix(prompt, "PLANNER DIRECTIVE") {
		t.Errorf("Planner directive must come first, got %q", prompt)
	}
	if !strings.Contains(prompt, "IDENTITY") {
		t.Error("Persona fragments must follow the planner directive")
	}
}

func TestGetPlannerPrompt_MissingFile(t *testing.T) {
	pm := NewPromptManager(t.TempDir())
	if _, err := pm.GetPlannerPrompt(); err == nil {
		t.Error("Expected an error when planner.md is absent")
	}
}
