package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestFilesystem_WriteReadList(t *testing.T) {
	tool := NewFilesystemTool(t.TempDir())
	ctx := context.Background()

	if _, err := tool.Execute(ctx, `{"command":"write","path":"notes.txt","content":"hello"}`); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out, err := tool.Execute(ctx, `{"command":"read","path":"notes.txt"}`)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if out != "hello" {
		t.Errorf("read returned %q, want hello", out)
	}

	out, err = tool.Execute(ctx, `{"command":"list","path":"."}`)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "[file] notes.txt") {
		t.Errorf("list output missing file: %q", out)
	}
}

func TestFilesystem_MkdirAndDelete(t *testing.T) {
	tool := NewFilesystemTool(t.TempDir())
	ctx := context.Background()

	if _, err := tool.Execute(ctx, `{"command":"mkdir","path":"sub/dir"}`); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	if _, err := tool.Execute(ctx, `{"command":"write","path":"sub/dir/x.txt","content":"x"}`); err != nil {
		t.Fatalf("write into new dir failed: %v", err)
	}

	if _, err := tool.Execute(ctx, `{"command":"delete","path":"sub/dir/x.txt"}`); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := tool.Execute(ctx, `{"command":"read","path":"sub/dir/x.txt"}`); err == nil {
		t.Error("Expected read of a deleted file to fail")
	}
}

func TestFilesystem_RejectsTraversal(t *testing.T) {
	tool := NewFilesystemTool(t.TempDir())
	ctx := context.Background()

	for _, path := range []string{"..", "../outside.txt", "a/../../outside.txt"} {
		input := fmt.Sprintf(`{"command":"read","path":%q}`, path)
		if _, err := tool.Execute(ctx, input); err == nil || !strings.Contains(err.Error(), "unsafe path") {
			t.Errorf("path %q: expected an unsafe path error, got %v", path, err)
		}
	}
}

func TestFilesystem_UnknownCommand(t *testing.T) {
	tool := NewFilesystemTool(t.TempDir())
	if _, err := tool.Execute(context.Background(), `{"command":"chmod","path":"x"}`); err == nil {
		t.Error("Expected an error for an unknown command")
	}
}
