// Package lsp serves markup diagnostics, outlines and hovers over the
// Language Server Protocol.
package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/markup/codebase"
)

const lsName = "markup"

var log = commonlog.GetLogger("markup.lsp")

type Server struct {
	handler  protocol.Handler
	server   *server.Server
	version  string
	cbOpts   []codebase.Option
	scanRoot bool

	mu       sync.RWMutex
	codebase *codebase.Codebase
}

type Option func(*Server)

// WithCodebaseOptions configures the codebase created on initialize.
func WithCodebaseOptions(opts ...codebase.Option) Option {
	return func(ls *Server) {
		ls.cbOpts = append(ls.cbOpts, opts...)
	}
}

// WithWorkspaceScan parses every markup file under the client's root once
// the client is initialized.
func WithWorkspaceScan() Option {
	return func(ls *Server) {
		ls.scanRoot = true
	}
}

func NewServer(version string, opts ...Option) *Server {
	ls := &Server{version: version}
	for _, opt := range opts {
		opt(ls)
	}
	ls.codebase = codebase.New(".", ls.cbOpts...)

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
		TextDocumentHover:          ls.textDocumentHover,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)
	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

// ServeWebSocket serves one client over socket and returns when it
// disconnects.
func (ls *Server) ServeWebSocket(socket *websocket.Conn) {
	ls.server.ServeWebSocket(socket)
}

func (ls *Server) Codebase() *codebase.Codebase {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.codebase
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.mu.Lock()
	ls.codebase = codebase.New(rootDir, ls.cbOpts...)
	ls.mu.Unlock()
	log.Infof("initialized with root %s", rootDir)

	capabilities := ls.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if !ls.scanRoot {
		return nil
	}
	cb := ls.Codebase()
	if err := cb.ScanAll(); err != nil {
		log.Warningf("scanning %s: %s", cb.RootDir(), err)
		return nil
	}
	log.Infof("scanned %d files, %d with errors", len(cb.Files()), len(cb.Broken()))
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx, params.TextDocument.URI, []byte(params.TextDocument.Text))
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		ls.update(ctx, params.TextDocument.URI, []byte(textChange.Text))
	}
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.update(ctx, params.TextDocument.URI, []byte(*params.Text))
		return nil
	}
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	cb := ls.Codebase()
	if err := cb.ScanFile(path); err != nil {
		log.Warningf("rereading %s: %s", path, err)
		return nil
	}
	f := cb.GetFile(path)
	ls.publish(ctx, params.TextDocument.URI, diagnosticsFor(f.Content, f.ParseErr))
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.publish(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

func (ls *Server) update(ctx *glsp.Context, uri protocol.DocumentUri, content []byte) {
	path, err := uriToPath(uri)
	if err != nil {
		log.Warningf("bad document uri %s: %s", uri, err)
		return
	}
	f := ls.Codebase().UpdateFile(path, content)
	ls.publish(ctx, uri, diagnosticsFor(content, f.ParseErr))
}

func (ls *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func (ls *Server) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	f := ls.file(params.TextDocument.URI)
	if f == nil || f.ParseErr != nil {
		return []protocol.DocumentSymbol{}, nil
	}
	return documentSymbols(f.Content, f.Nodes), nil
}

func (ls *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	f := ls.file(params.TextDocument.URI)
	if f == nil || f.ParseErr != nil {
		return nil, nil
	}

	pos := fromProtocolPosition(f.Content, params.Position)
	chain := codebase.ElementsAt(f.Nodes, pos)
	if len(chain) == 0 {
		return nil, nil
	}

	rng := toProtocolRange(f.Content, chain[len(chain)-1].Span)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: "`" + codebase.Path(chain) + "`",
		},
		Range: &rng,
	}, nil
}

func (ls *Server) file(uri protocol.DocumentUri) *codebase.FileInfo {
	path, err := uriToPath(uri)
	if err != nil {
		return nil
	}
	return ls.Codebase().GetFile(path)
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
