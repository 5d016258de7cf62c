package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, line := range lines {
			io.WriteString(w, line+"\n")
			flusher.Flush()
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestEventsLegacyShape(t *testing.T) {
	server := sseServer(t, []string{
		`data: {"role":"assistant","content":"Bonjour"}`,
		``,
		`data: {"role":"assistant","content":", comment puis-je aider ?"}`,
	})
	g := mockGateway(server.URL)

	resp, err := g.PostStream(context.Background(), "/get_answer_stream", appIdentity("app-1"), nil)
	require.NoError(t, err)
	assert.True(t, resp.IsEventStream())

	events, content, err := resp.Events().CollectEvents()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "assistant", events[0].Role)
	assert.True(t, events[0].Structured())
	assert.Equal(t, "Bonjour, comment puis-je aider ?", content)
}

func TestEventsNewShape(t *testing.T) {
	server := sseServer(t, []string{
		`data: {"event_type":"answer_chunk","answer":"Le disjoncteur"}`,
		`data: {"event_type":"answer_chunk","answer":" 30mA"}`,
		`data: {"event_type":"done","answer":""}`,
	})
	g := mockGateway(server.URL)

	resp, err := g.PostStream(context.Background(), "/get_answer_stream", appIdentity("app-1"), nil)
	require.NoError(t, err)

	events, content, err := resp.Events().CollectEvents()
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "answer_chunk", events[0].EventType)
	assert.Equal(t, "Le disjoncteur 30mA", content)
}

func TestEventsRawFallback(t *testing.T) {
	server := sseServer(t, []string{
		`data: plain text chunk`,
		`: comment line ignored`,
		`data: {"role":"assistant","content":"ok"}`,
	})
	g := mockGateway(server.URL)

	resp, err := g.PostStream(context.Background(), "/get_answer_stream", appIdentity("app-1"), nil)
	require.NoError(t, err)

	events, _, err := resp.Events().CollectEvents()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.False(t, events[0].Structured())
	assert.Equal(t, "plain text chunk", events[0].Raw)
	assert.True(t, events[1].Structured())
}

func TestEventsEarlyStop(t *testing.T) {
	server := sseServer(t, []string{
		`data: {"content":"one"}`,
		`data: {"content":"two"}`,
		`data: {"content":"three"}`,
	})
	g := mockGateway(server.URL)

	resp, err := g.PostStream(context.Background(), "/get_answer_stream", appIdentity("app-1"), nil)
	require.NoError(t, err)

	scanner := resp.Events()
	require.True(t, scanner.Next())
	assert.Equal(t, "one", scanner.Event().Text())
	// Stopping early and closing leaves teardown to the transport.
	require.NoError(t, scanner.Close())
}

func TestEventsOnBufferedBody(t *testing.T) {
	resp := &Response{
		StatusCode: 200,
		Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
		body:       []byte("data: {\"content\":\"buffered\"}\n"),
	}

	events, content, err := resp.Events().CollectEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "buffered", content)
}

func TestAPIErrorShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"errors field", `{"errors":"missing required field chat_id"}`, "missing required field chat_id"},
		{"error field", `{"error":"unauthorized"}`, "unauthorized"},
		{"message field", `{"message":"subscription key invalid"}`, "subscription key invalid"},
		{"errors wins over message", `{"errors":"first","message":"second"}`, "first"},
		{"non-JSON body", `internal server error`, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &Response{StatusCode: 500, body: []byte(tt.body)}
			assert.Equal(t, tt.want, resp.APIError())
		})
	}
}

func TestJSONDecode(t *testing.T) {
	resp := &Response{
		StatusCode: 200,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		body:       []byte(`{"results":[{"name":"disjoncteur"}]}`),
	}
	assert.True(t, resp.IsJSON())

	var payload struct {
		Results []struct {
			Name string `json:"name"`
		} `json:"results"`
	}
	require.NoError(t, resp.JSON(&payload))
	require.Len(t, payload.Results, 1)
	assert.Equal(t, "disjoncteur", payload.Results[0].Name)
}

func TestJSONDecodeError(t *testing.T) {
	resp := &Response{StatusCode: 200, body: []byte(`not json`)}

	var v map[string]interface{}
	err := resp.JSON(&v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not json")
}

func TestTextTrims(t *testing.T) {
	resp := &Response{StatusCode: 200, body: []byte("  chat-id-42\n")}
	assert.Equal(t, "chat-id-42", resp.Text())
}
