package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType is the category of a structured log event.
type EventType string

const (
	EventTypePlan        EventType = "plan"
	EventTypeStep        EventType = "step"
	EventTypeToolCall    EventType = "tool_call"
	EventTypeToolResult  EventType = "tool_result"
	EventTypePolicyCheck EventType = "policy_check"
	EventTypeDiagnosis   EventType = "diagnosis"
	EventTypeGridlock    EventType = "gridlock"
	EventTypeHeartbeat   EventType = "heartbeat"
	EventTypeLLM         EventType = "llm"
)

// Event is one structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	ChatID    string    `json:"chat_id,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger emits structured JSON events to stdout; llm events are also
// appended to a size-rotated jsonl file.
type Logger struct {
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return &Logger{
		llmLogPath: filepath.Join("logs", "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Printf("{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Println(string(data))

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPlan(chatID, runID, goal string, stepCount int) {
	l.Log(Event{
		Type:   EventTypePlan,
		ChatID: chatID,
		RunID:  runID,
		Data: map[string]any{
			"goal":  goal,
			"steps": stepCount,
		},
	})
}

func (l *Logger) LogStep(chatID, runID, stepID, status string) {
	l.Log(Event{
		Type:   EventTypeStep,
		ChatID: chatID,
		RunID:  runID,
		Data: map[string]string{
			"step_id": stepID,
			"status":  status,
		},
	})
}

func (l *Logger) LogToolCall(chatID, runID, tool, args string) {
	l.Log(Event{
		Type:   EventTypeToolCall,
		ChatID: chatID,
		RunID:  runID,
		Data: map[string]string{
			"tool": tool,
			"args": args,
		},
	})
}

func (l *Logger) LogDiagnosis(chatID, runID, stepID string, diagnosis any) {
	l.Log(Event{
		Type:   EventTypeDiagnosis,
		ChatID: chatID,
		RunID:  runID,
		Data: map[string]any{
			"step_id":   stepID,
			"diagnosis": diagnosis,
		},
	})
}

func (l *Logger) LogGridlock(chatID, runID string, remaining []string) {
	l.Log(Event{
		Type:   EventTypeGridlock,
		ChatID: chatID,
		RunID:  runID,
		Data:   map[string]any{"remaining": remaining},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

func (l *Logger) LogLLM(chatID, runID string, prompt any, response string) {
	l.Log(Event{
		Type:   EventTypeLLM,
		ChatID: chatID,
		RunID:  runID,
		Data: map[string]any{
			"prompt":   prompt,
			"response": response,
		},
	})
}
