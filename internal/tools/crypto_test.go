package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func cryptoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/simple/price":
			switch r.URL.Query().Get("ids") {
			case "bitcoin":
				w.Write([]byte(`{"bitcoin":{"usd":64250.5}}`))
			default:
				w.Write([]byte(`{}`))
			}
		case "/search":
			if strings.Contains(strings.ToLower(r.URL.Query().Get("query")), "btc") {
				w.Write([]byte(`{"coins":[{"id":"bitcoin"}]}`))
			} else {
				w.Write([]byte(`{"coins":[]}`))
			}
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestCryptoTool(baseURL string) *CryptoPriceTool {
	tool := NewCryptoPriceTool()
	tool.BaseURL = baseURL
	return tool
}

func TestCryptoPrice_ExactID(t *testing.T) {
	srv := cryptoServer(t)
	defer srv.Close()

	tool := newTestCryptoTool(srv.URL)
	out, err := tool.Execute(context.Background(), `{"token":"bitcoin"}`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "64250.5") || !strings.Contains(out, "USD") {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestCryptoPrice_SearchFallback(t *testing.T) {
	srv := cryptoServer(t)
	defer srv.Close()

	tool := newTestCryptoTool(srv.URL)
	out, err := tool.Execute(context.Background(), `{"token":"BTC"}`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "found as bitcoin") {
		t.Errorf("Expected the resolved id in the output, got %q", out)
	}
}

func TestCryptoPrice_UnknownToken(t *testing.T) {
	srv := cryptoServer(t)
	defer srv.Close()

	tool := newTestCryptoTool(srv.URL)
	_, err := tool.Execute(context.Background(), `{"token":"definitely-not-a-coin"}`)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected a not found error, got %v", err)
	}
}

func TestCryptoPrice_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tool := newTestCryptoTool(srv.URL)
	_, err := tool.Execute(context.Background(), `{"token":"bitcoin"}`)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("Expected a status code error, got %v", err)
	}
}

func TestCryptoPrice_InvalidInput(t *testing.T) {
	tool := NewCryptoPriceTool()
	if _, err := tool.Execute(context.Background(), `not json`); err == nil {
		t.Error("Expected an error for malformed input")
	}
	if _, err := tool.Execute(context.Background(), `{}`); err == nil {
		t.Error("Expected an error for a missing token")
	}
}
