// Package codebase keeps a parsed copy of every markup file under a root
// directory.
package codebase

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/markup/dom"
	"github.com/dhamidi/markup/parser"
)

var log = commonlog.GetLogger("markup.codebase")

var DefaultExtensions = []string{".html", ".xml", ".markup"}

type Codebase struct {
	mu         sync.RWMutex
	rootDir    string
	extensions []string
	parserOpts []parser.Option
	only       map[string]bool
	files      map[string]*FileInfo
}

type FileInfo struct {
	Path     string
	Content  []byte
	Nodes    []dom.Node
	ParseErr error
}

type Option func(*Codebase)

// WithExtensions sets the file extensions (with leading dot) treated as markup.
func WithExtensions(exts ...string) Option {
	return func(c *Codebase) {
		if len(exts) > 0 {
			c.extensions = exts
		}
	}
}

// WithParserOptions adds parser options used for every file. Positions
// and the file name are always recorded.
func WithParserOptions(opts ...parser.Option) Option {
	return func(c *Codebase) {
		c.parserOpts = append(c.parserOpts, opts...)
	}
}

// WithFiles restricts the codebase to the listed files below the root.
// ScanAll and the FileWatcher ignore every other path.
func WithFiles(paths ...string) Option {
	return func(c *Codebase) {
		c.only = make(map[string]bool, len(paths))
		for _, p := range paths {
			c.only[filepath.Clean(p)] = true
		}
	}
}

func New(rootDir string, opts ...Option) *Codebase {
	c := &Codebase{
		rootDir:    rootDir,
		extensions: DefaultExtensions,
		files:      make(map[string]*FileInfo),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

// IsMarkup reports whether path has one of the configured extensions.
func (c *Codebase) IsMarkup(path string) bool {
	return slices.Contains(c.extensions, strings.ToLower(filepath.Ext(path)))
}

// Includes reports whether path belongs to the codebase: one of the files
// given to WithFiles, or any markup file when no list was given.
func (c *Codebase) Includes(path string) bool {
	if c.only != nil {
		return c.only[filepath.Clean(path)]
	}
	return c.IsMarkup(path)
}

// ScanAll parses every markup file below the root, skipping hidden
// directories. Unreadable entries are logged and skipped.
func (c *Codebase) ScanAll() error {
	if _, err := os.Stat(c.rootDir); err != nil {
		return err
	}
	return filepath.WalkDir(c.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warningf("skipping %s: %s", path, err)
			return nil
		}
		if d.IsDir() {
			if path != c.rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if c.Includes(path) {
			if err := c.ScanFile(path); err != nil {
				log.Warningf("skipping %s: %s", path, err)
			}
		}
		return nil
	})
}

// ScanFile reads path from disk and parses it.
func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c.UpdateFile(path, content)
	return nil
}

// UpdateFile parses content as the current state of path. A parse error
// is stored on the FileInfo, not returned.
func (c *Codebase) UpdateFile(path string, content []byte) *FileInfo {
	opts := append([]parser.Option{parser.WithFile(c.displayName(path)), parser.WithPositions()}, c.parserOpts...)
	nodes, err := parser.ParseAll(string(content), opts...)

	info := &FileInfo{
		Path:     path,
		Content:  content,
		Nodes:    nodes,
		ParseErr: err,
	}
	if err != nil {
		log.Debugf("%s", err)
	}

	c.mu.Lock()
	c.files[path] = info
	c.mu.Unlock()
	return info
}

func (c *Codebase) displayName(path string) string {
	if rel, err := filepath.Rel(c.rootDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Files returns the tracked paths in sorted order.
func (c *Codebase) Files() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.files))
	for path := range c.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Broken returns the files that failed to parse, sorted by path.
func (c *Codebase) Broken() []*FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var broken []*FileInfo
	for _, f := range c.files {
		if f.ParseErr != nil {
			broken = append(broken, f)
		}
	}
	sort.Slice(broken, func(i, j int) bool { return broken[i].Path < broken[j].Path })
	return broken
}

// ElementAtPoint returns the elements enclosing line:column in path, from
// the outermost to the innermost. It returns nil if the file is unknown,
// failed to parse, or no element covers the position.
func (c *Codebase) ElementAtPoint(path string, line, column int) []dom.Element {
	f := c.GetFile(path)
	if f == nil || f.ParseErr != nil {
		return nil
	}
	return ElementsAt(f.Nodes, dom.Position{Line: line, Column: column})
}

// ElementsAt returns the chain of elements in nodes whose spans contain pos.
func ElementsAt(nodes []dom.Node, pos dom.Position) []dom.Element {
	var chain []dom.Element
	for {
		var next *dom.Element
		for _, n := range nodes {
			if el, ok := n.(dom.Element); ok && el.Span.Contains(pos) {
				next = &el
				break
			}
		}
		if next == nil {
			return chain
		}
		chain = append(chain, *next)
		nodes = next.Children
	}
}

// Path renders an element chain as "html > body > div".
func Path(chain []dom.Element) string {
	names := make([]string, len(chain))
	for i, el := range chain {
		names[i] = el.TagName
	}
	return strings.Join(names, " > ")
}
