// Package ui serves the browser playground: a page that parses markup as
// you type and a WebSocket endpoint speaking the language server protocol.
package ui

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/markup/codebase"
	"github.com/dhamidi/markup/config"
	"github.com/dhamidi/markup/format"
	"github.com/dhamidi/markup/lsp"
	"github.com/dhamidi/markup/parser"
)

//go:embed static templates
var embeddedFS embed.FS

const maxBodySize = 4 << 20

var log = commonlog.GetLogger("markup.ui")

type Server struct {
	cfg        *config.Config
	version    string
	staticFS   fs.FS
	templateFS fs.FS
	mux        *http.ServeMux
	upgrader   websocket.Upgrader
}

func NewServer(cfg *config.Config, version string) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		cfg:        cfg,
		version:    version,
		staticFS:   overlayFS("ui/static", mustSub(embeddedFS, "static")),
		templateFS: overlayFS("ui/templates", mustSub(embeddedFS, "templates")),
		mux:        http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	if _, err := s.parseTemplates(); err != nil {
		return nil, err
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(s.staticFS))))
	s.mux.HandleFunc("POST /api/parse", s.handleParse)
	s.mux.HandleFunc("GET /lsp", s.handleLSP)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").ParseFS(s.templateFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := s.parseTemplates()
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Errorf("render %s: %s", name, err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Version       string
		Formats       []string
		DefaultFormat string
	}{
		Version:       s.version,
		Formats:       format.Names(),
		DefaultFormat: s.cfg.Output.Format,
	}
	s.render(w, "index.html", data)
}

// ParseError is the body of a 422 response from /api/parse.
type ParseError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Offset  int    `json:"offset"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	name := r.URL.Query().Get("format")
	if name == "" {
		name = s.cfg.Output.Format
	}
	var out bytes.Buffer
	enc, err := format.NewEncoder(name, &out, format.Options{Indent: s.cfg.Output.Indent})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := s.cfg.ParserOptions()
	if r.URL.Query().Get("positions") == "true" {
		opts = append(opts, parser.WithPositions())
	}

	nodes, err := parser.ParseAll(string(body), opts...)
	if err != nil {
		var perr *parser.Error
		if !errors.As(err, &perr) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Debugf("parse: %s", perr)
		writeJSON(w, http.StatusUnprocessableEntity, ParseError{
			Kind:    perr.Kind.String(),
			Message: perr.Detail(),
			Line:    perr.Pos.Line,
			Column:  perr.Pos.Column,
			Offset:  perr.Pos.Offset,
		})
		return
	}

	if err := enc.Encode(nodes...); err != nil {
		http.Error(w, "encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType(name))
	w.Write(out.Bytes())
}

func (s *Server) handleLSP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warningf("websocket upgrade: %s", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	log.Infof("lsp connection %s from %s", id, conn.RemoteAddr())

	ls := lsp.NewServer(s.version, lsp.WithCodebaseOptions(
		codebase.WithParserOptions(s.cfg.ParserOptions()...),
	))
	ls.ServeWebSocket(conn)

	log.Infof("lsp connection %s closed", id)
}

func contentType(name string) string {
	switch name {
	case "json":
		return "application/json"
	case "yaml":
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// overlayFS serves files from primaryPath on disk when present, so assets
// can be edited without rebuilding, and falls back to the embedded copy.
type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}
