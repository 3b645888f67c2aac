package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dhamidi/markup/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(config.Default(), "test")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func TestIndex(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<title>markup playground</title>") {
		t.Error("expected playground page")
	}
	if !strings.Contains(body, `<option value="tree" selected>`) {
		t.Errorf("expected default format selected, got:\n%s", body)
	}
}

func TestStatic(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("GET", "/static/app.js", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		body        string
		status      int
		contentType string
		contains    string
	}{
		{"json", "?format=json", `<p id="x">hi</p>`, 200, "application/json", `"tag": "p"`},
		{"yaml", "?format=yaml", `<p>hi</p>`, 200, "application/yaml", "kind: element"},
		{"tree default", "", `<p>hi</p>`, 200, "text/plain; charset=utf-8", `"hi"`},
		{"markup", "?format=markup", `<br />`, 200, "text/plain; charset=utf-8", "<br/>"},
		{"positions", "?format=json&positions=true", `<p></p>`, 200, "application/json", `"span"`},
		{"unknown format", "?format=xml", `<p></p>`, 400, "", "unknown format"},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest("POST", "/api/parse"+tt.query, strings.NewReader(tt.body)))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.contentType != "" && rec.Header().Get("Content-Type") != tt.contentType {
				t.Errorf("expected content type %s, got %s", tt.contentType, rec.Header().Get("Content-Type"))
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("expected body to contain %q, got:\n%s", tt.contains, rec.Body.String())
			}
		})
	}
}

func TestParseError(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("POST", "/api/parse", strings.NewReader("<a><b></a>")))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var got ParseError
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	want := ParseError{
		Kind:    "MismatchedClosingTag",
		Message: "mismatched closing tag (expected: </b>) (got: </a>)",
		Line:    1,
		Column:  7,
		Offset:  6,
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestLSPWebSocket(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/lsp"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	type message struct {
		ID     *int            `json:"id"`
		Method string          `json:"method"`
		Result json.RawMessage `json:"result"`
		Params json.RawMessage `json:"params"`
	}
	readUntil := func(match func(message) bool) message {
		t.Helper()
		for {
			var msg message
			if err := conn.ReadJSON(&msg); err != nil {
				t.Fatalf("read: %v", err)
			}
			if match(msg) {
				return msg
			}
		}
	}

	if err := conn.WriteJSON(map[string]any{
		"jsonrpc": "2.0", "id": 1, "method": "initialize",
		"params": map[string]any{"capabilities": map[string]any{}},
	}); err != nil {
		t.Fatal(err)
	}
	resp := readUntil(func(m message) bool { return m.ID != nil && *m.ID == 1 })
	if !strings.Contains(string(resp.Result), `"name":"markup"`) {
		t.Errorf("expected server info, got %s", resp.Result)
	}

	if err := conn.WriteJSON(map[string]any{
		"jsonrpc": "2.0", "method": "textDocument/didOpen",
		"params": map[string]any{"textDocument": map[string]any{
			"uri": "inmemory://test.html", "languageId": "html", "version": 1, "text": "<a>",
		}},
	}); err != nil {
		t.Fatal(err)
	}
	note := readUntil(func(m message) bool { return m.Method == "textDocument/publishDiagnostics" })

	var params struct {
		Diagnostics []struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal(note.Params, &params); err != nil {
		t.Fatal(err)
	}
	if len(params.Diagnostics) != 1 || params.Diagnostics[0].Code != "UnexpectedEOF" {
		t.Errorf("expected one UnexpectedEOF diagnostic, got %+v", params.Diagnostics)
	}
}
