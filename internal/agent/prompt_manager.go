package agent

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PromptManager loads prompt fragments from a directory of .md files.
type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// GetPlannerPrompt returns planner.md followed by any persona
// fragments in the directory, joined with separators.
func (pm *PromptManager) GetPlannerPrompt() (string, error) {
	path := filepath.Join(pm.Directory, "planner.md")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read planner prompt: %v", err)
	}

	parts := []string{string(data)}
	if persona, err := pm.GetPersonaPrompt(); err == nil {
		parts = append(parts, persona)
	}
	return strings.Join(parts, "\n\n---\n\n"), nil
}

// GetPersonaPrompt assembles every .md file except planner.md, in a
// deterministic order: identity, soul, capabilities, user, then
// alphabetical for the rest.
func (pm *PromptManager) GetPersonaPrompt() (string, error) {
	files, err := os.ReadDir(pm.Directory)
	if err != nil {
		return "", fmt.Errorf("failed to read prompts directory: %v", err)
	}

	order := map[string]int{
		"identity.md":     1,
		"soul.md":         2,
		"capabilities.md": 3,
		"user.md":         4,
	}

	sort.Slice(files, func(i, j int) bool {
		oi, okI := order[files[i].Name()]
		oj, okJ := order[files[j].Name()]
		if okI && okJ {
			return oi < oj
		}
		if okI {
			return true
		}
		if okJ {
			return false
		}
		return files[i].Name() < files[j].Name()
	})

	var contents []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".md") || f.Name() == "planner.md" {
			continue
		}
		path := filepath.Join(pm.Directory, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Warning: Failed to read prompt file %s: %v", path, err)
			continue
		}
		contents = append(contents, string(data))
	}

	if len(contents) == 0 {
		return "", fmt.Errorf("no prompt files found in %s", pm.Directory)
	}

	return strings.Join(contents, "\n\n---\n\n"), nil
}
