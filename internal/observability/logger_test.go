package observability

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLogger_LLMEventsAppendToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llm.jsonl")
	l := &Logger{llmLogPath: path, maxSize: 1024 * 1024}

	l.LogLLM("chat-1", "run-1", "what is the price", "plan json")
	l.LogLLM("chat-1", "run-1", "second prompt", "second answer")
	// non-llm events go to stdout only
	l.LogStep("chat-1", "run-1", "s1", "completed")

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("llm log not written: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		var evt Event
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
		if evt.Type != EventTypeLLM {
			t.Errorf("line %d: expected llm event, got %s", lines, evt.Type)
		}
		if evt.Timestamp.IsZero() {
			t.Errorf("line %d: missing timestamp", lines)
		}
	}
	if lines != 2 {
		t.Errorf("Expected 2 llm lines, got %d", lines)
	}
}

func TestLogger_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "llm.jsonl")
	l := &Logger{llmLogPath: path, maxSize: 10}

	l.LogLLM("c", "r", "a prompt long enough to pass the size cap", "x")
	l.LogLLM("c", "r", "second entry triggers rotation", "y")

	if _, err := os.Stat(path + ".old"); err != nil {
		t.Errorf("Expected a rotated .old file: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected a fresh log file after rotation: %v", err)
	}
}
