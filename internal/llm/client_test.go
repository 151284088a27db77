package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bettracker/internal/config"
)

func chatServer(t *testing.T, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if seen != nil {
			_ = json.Unmarshal(body, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		BaseURL:     baseURL + "/v1",
		TextModel:   "text-model",
		VisionModel: "vision-model",
		Timeout:     5 * time.Second,
		Temperature: 0.1,
		MaxTokens:   256,
	}
}

func TestAnalyzeSendsAggregatesAndQuestion(t *testing.T) {
	var seen map[string]any
	srv := chatServer(t, "  ROI is negative.  ", &seen)
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	text, err := c.Analyze(context.Background(), map[string]any{"roi_percent": -16.67}, "Co zlepšit?")
	require.NoError(t, err)
	assert.Equal(t, "ROI is negative.", text)
	assert.Equal(t, "text-model", seen["model"])

	raw, _ := json.Marshal(seen["messages"])
	assert.Contains(t, string(raw), "-16.67")
	assert.Contains(t, string(raw), "Co zlepšit?")
}

func TestReadTicketImage(t *testing.T) {
	var seen map[string]any
	srv := chatServer(t, `[{"home_team":"Sparta","away_team":"Slavia","odds":2.1,"stake":100}]`, &seen)
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	res := c.ReadTicketImage(context.Background(), "iVBORw0KGgo=", "Fortuna")
	require.Len(t, res.Tickets, 1)
	assert.InDelta(t, 0.2, res.Confidence, 1e-9)
	assert.Equal(t, "vision-model", seen["model"])

	raw, _ := json.Marshal(seen["messages"])
	assert.Contains(t, string(raw), "data:image/png;base64,iVBORw0KGgo=")
	assert.Contains(t, string(raw), "Fortuna")
}

func TestReadTicketImageModelDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	res := c.ReadTicketImage(context.Background(), "abc", "")
	assert.Empty(t, res.Tickets)
	assert.Zero(t, res.Confidence)
	assert.Contains(t, res.RawText, "model call failed")
}

func TestSniffImageMIME(t *testing.T) {
	assert.Equal(t, "image/jpeg", sniffImageMIME("/9j/4AAQ"))
	assert.Equal(t, "image/png", sniffImageMIME("iVBORw0KGgo"))
	assert.Equal(t, "image/gif", sniffImageMIME("R0lGODlh"))
}
