package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserTool drives a headless Chrome session that stays open across
// invocations until a 'close' action.
type BrowserTool struct {
	mu            sync.Mutex
	allocCtx      context.Context
	browserCtx    context.Context
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
}

func NewBrowserTool() *BrowserTool {
	return &BrowserTool{}
}

func (b *BrowserTool) Name() string {
	return "browser"
}

func (b *BrowserTool) Description() string {
	return "Control a browser session. Actions: 'navigate', 'text', 'click', 'type', 'screenshot', 'close'. The session stays open between actions."
}

func (b *BrowserTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []string{"navigate", "text", "click", "type", "screenshot", "close"},
				"description": "The browser action to perform",
			},
			"url": map[string]any{
				"type":        "string",
				"description": "URL to open (required for 'navigate')",
			},
			"selector": map[string]any{
				"type":        "string",
				"description": "CSS selector of the target element (for 'click', 'type')",
			},
			"text": map[string]any{
				"type":        "string",
				"description": "Text to type (required for 'type')",
			},
		},
		"required": []string{"action"},
	}
}

func (b *BrowserTool) ensureSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx != nil {
		select {
		case <-b.browserCtx.Done():
			b.teardown()
		default:
			return nil
		}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)

	return chromedp.Run(b.browserCtx)
}

func (b *BrowserTool) teardown() {
	if b.browserCancel != nil {
		b.browserCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	b.browserCtx = nil
	b.allocCtx = nil
}

func (b *BrowserTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Action   string `json:"action"`
		URL      string `json:"url"`
		Selector string `json:"selector"`
		Text     string `json:"text"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	if args.Action == "close" {
		b.mu.Lock()
		b.teardown()
		b.mu.Unlock()
		return "Browser session closed.", nil
	}

	if err := b.ensureSession(); err != nil {
		return "", fmt.Errorf("failed to start browser: %v", err)
	}

	actionCtx, cancel := context.WithTimeout(b.browserCtx, 60*time.Second)
	defer cancel()

	switch args.Action {
	case "navigate":
		if args.URL == "" {
			return "", fmt.Errorf("invalid input: url is required for 'navigate'")
		}
		if err := chromedp.Run(actionCtx, chromedp.Navigate(args.URL)); err != nil {
			return fmt.Sprintf("Browser action failed: %v", err), nil
		}
		return fmt.Sprintf("Navigated to %s", args.URL), nil

	case "text":
		var content string
		if err := chromedp.Run(actionCtx, chromedp.Text("body", &content, chromedp.ByQuery)); err != nil {
			return fmt.Sprintf("Browser action failed: %v", err), nil
		}
		if len(content) > maxArticleChars {
			content = content[:maxArticleChars] + "\n... (truncated)"
		}
		return content, nil

	case "click":
		if args.Selector == "" {
			return "", fmt.Errorf("invalid input: selector is required for 'click'")
		}
		if err := chromedp.Run(actionCtx, chromedp.Click(args.Selector, chromedp.ByQuery)); err != nil {
			return fmt.Sprintf("Browser action failed: %v", err), nil
		}
		return fmt.Sprintf("Clicked %s", args.Selector), nil

	case "type":
		if args.Selector == "" || args.Text == "" {
			return "", fmt.Errorf("invalid input: selector and text are required for 'type'")
		}
		if err := chromedp.Run(actionCtx, chromedp.SendKeys(args.Selector, args.Text, chromedp.ByQuery)); err != nil {
			return fmt.Sprintf("Browser action failed: %v", err), nil
		}
		return fmt.Sprintf("Typed text into %s", args.Selector), nil

	case "screenshot":
		var buf []byte
		if err := chromedp.Run(actionCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
			return fmt.Sprintf("Browser action failed: %v", err), nil
		}
		if err := os.MkdirAll("screenshots", 0755); err != nil {
			return "", fmt.Errorf("failed to create screenshots dir: %v", err)
		}
		path := filepath.Join("screenshots", fmt.Sprintf("screenshot_%d.png", time.Now().Unix()))
		if err := os.WriteFile(path, buf, 0644); err != nil {
			return "", fmt.Errorf("failed to save screenshot: %v", err)
		}
		absPath, _ := filepath.Abs(path)
		return fmt.Sprintf("Screenshot saved to %s", absPath), nil

	default:
		return "", fmt.Errorf("invalid input: unknown action %q", args.Action)
	}
}
