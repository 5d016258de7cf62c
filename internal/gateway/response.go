package gateway

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Response is the normalized result of one API call.
//
// Non-streaming responses are fully buffered; streaming responses keep the
// underlying body open and expose it through Events. Close is a no-op for
// buffered responses.
type Response struct {
	StatusCode int
	Header     http.Header

	body   []byte
	stream io.ReadCloser
}

func newBufferedResponse(resp *http.Response, body []byte) *Response {
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		body:       body,
	}
}

func newStreamingResponse(resp *http.Response) *Response {
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		stream:     resp.Body,
	}
}

// Body returns the buffered response body. It is empty for streaming
// responses.
func (r *Response) Body() []byte {
	return r.body
}

// Text returns the buffered body as a trimmed string.
func (r *Response) Text() string {
	return strings.TrimSpace(string(r.body))
}

// JSON unmarshals the buffered body into v.
func (r *Response) JSON(v interface{}) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("decoding response body %q: %w", r.Text(), err)
	}
	return nil
}

// Close releases the underlying stream, if any. Stopping iteration early and
// closing leaves connection teardown to the transport.
func (r *Response) Close() error {
	if r.stream != nil {
		return r.stream.Close()
	}
	return nil
}

// IsJSON reports whether the response declares a JSON content type.
func (r *Response) IsJSON() bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// IsEventStream reports whether the response declares an SSE content type.
func (r *Response) IsEventStream() bool {
	return strings.Contains(r.Header.Get("Content-Type"), "text/event-stream")
}

// apiErrorBody is the error payload shape exposed by the target API: at
// least one of error/errors/message is set.
type apiErrorBody struct {
	Error   string `json:"error"`
	Errors  string `json:"errors"`
	Message string `json:"message"`
}

// APIError extracts the error message from a buffered error response. It
// falls back to the raw body when the payload is not the documented error
// shape, so triage always has something to look at.
func (r *Response) APIError() string {
	var payload apiErrorBody
	if err := json.Unmarshal(r.body, &payload); err == nil {
		for _, msg := range []string{payload.Errors, payload.Error, payload.Message} {
			if msg != "" {
				return msg
			}
		}
	}
	return r.Text()
}

// Event is one SSE event from a streamed response. The target API emits two
// payload shapes: the legacy {role, content} and the newer
// {event_type, answer}. Lines that are not JSON are kept verbatim in Raw.
type Event struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	EventType string `json:"event_type"`
	Answer    string `json:"answer"`
	Raw       string `json:"-"`
}

// Text returns the event's textual payload regardless of shape.
func (e Event) Text() string {
	if e.Content != "" {
		return e.Content
	}
	return e.Answer
}

// Structured reports whether the event carried one of the documented JSON
// shapes rather than a raw line.
func (e Event) Structured() bool {
	return e.Raw == ""
}

// EventScanner lazily iterates the data: lines of an SSE stream. The
// sequence is finite: it ends when the server closes the stream. It is not
// restartable.
//
//	scanner := resp.Events()
//	defer scanner.Close()
//	for scanner.Next() {
//		event := scanner.Event()
//		...
//	}
//	if err := scanner.Err(); err != nil { ... }
type EventScanner struct {
	scanner *bufio.Scanner
	closer  io.Closer
	current Event
}

// Events returns a scanner over the response's SSE events. For buffered
// responses it scans the buffered body, which keeps non-streamed SSE
// payloads inspectable too.
func (r *Response) Events() *EventScanner {
	if r.stream != nil {
		return &EventScanner{
			scanner: bufio.NewScanner(r.stream),
			closer:  r.stream,
		}
	}
	return &EventScanner{
		scanner: bufio.NewScanner(strings.NewReader(string(r.body))),
	}
}

// Next advances to the next data: line. It returns false when the stream
// ends or fails.
func (s *EventScanner) Next() bool {
	for s.scanner.Scan() {
		line := strings.TrimRight(s.scanner.Text(), "\r")
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var event Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			event = Event{Raw: payload}
		}
		s.current = event
		return true
	}
	return false
}

// Event returns the current event. Valid only after a true Next.
func (s *EventScanner) Event() Event {
	return s.current
}

// Err returns the first error encountered while scanning the stream.
func (s *EventScanner) Err() error {
	return s.scanner.Err()
}

// Close releases the underlying stream for streaming responses.
func (s *EventScanner) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// CollectEvents drains the scanner and returns all events plus the
// concatenated textual content, closing the stream afterwards.
func (s *EventScanner) CollectEvents() ([]Event, string, error) {
	defer s.Close()

	var events []Event
	var content strings.Builder
	for s.Next() {
		event := s.Event()
		events = append(events, event)
		content.WriteString(event.Text())
	}
	return events, content.String(), s.Err()
}
