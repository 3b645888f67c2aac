package format

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dhamidi/markup/dom"
	"github.com/dhamidi/markup/parser"
)

var testcasesDir string
var testFilter string

func init() {
	flag.StringVar(&testcasesDir, "testcases", "", "directory containing markup test files")
	flag.StringVar(&testFilter, "filter", "", "filter test files by substring match on filename")
}

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(m.Run())
}

// TestRoundTrip_Testcases re-parses the markup written for every file in the
// testcases directory (testdata/ by default) and compares tree shapes.
// Use -filter to pick files: go test ./format -filter=nested
func TestRoundTrip_Testcases(t *testing.T) {
	dir := testcasesDir
	if dir == "" {
		dir = "testdata"
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".html") {
			if testFilter != "" && !strings.Contains(path, testFilter) {
				return nil
			}
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk testcases directory: %v", err)
	}
	if len(files) == 0 {
		t.Skipf("no .html files found in %s", dir)
	}

	for _, file := range files {
		relPath, err := filepath.Rel(dir, file)
		if err != nil {
			relPath = filepath.Base(file)
		}
		testName := strings.TrimSuffix(strings.ReplaceAll(relPath, string(filepath.Separator), "_"), ".html")

		t.Run(testName, func(t *testing.T) {
			source, err := os.ReadFile(file)
			if err != nil {
				t.Fatalf("failed to read file: %v", err)
			}
			runRoundTripTest(t, string(source))
		})
	}
}

func TestRoundTrip_Inline(t *testing.T) {
	tests := []string{
		`<div class="box"><p>Hello, <b>world</b>!</p></div>`,
		`<tag attr="v" />`,
		`<a title='say "hi"'>x</a>`,
		`<!-- lead --><root><!--inner--><x/></root>`,
		"<pre>  keep\n  spacing </pre>",
		`<a href="/one" href="/two"></a>`,
		"plain text only",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			runRoundTripTest(t, input)
		})
	}
}

func runRoundTripTest(t *testing.T, source string) {
	t.Helper()

	orig, err := parser.ParseAll(source)
	if err != nil {
		t.Skipf("source does not parse: %v", err)
	}

	var buf bytes.Buffer
	if err := NewMarkupEncoder(&buf).Encode(orig...); err != nil {
		t.Fatalf("encode: %v", err)
	}

	again, err := parser.ParseAll(buf.String())
	if err != nil {
		t.Fatalf("written markup does not parse: %v\n=== output ===\n%s", err, buf.String())
	}
	if !reflect.DeepEqual(orig, again) {
		t.Errorf("tree changed after round trip\n=== output ===\n%s\norig:  %#v\nagain: %#v", buf.String(), orig, again)
	}
}

func TestMarkupEncoderUnrepresentable(t *testing.T) {
	tests := []struct {
		name string
		node dom.Node
	}{
		{"both quotes", dom.WithAttributes("a", []dom.Attribute{{Name: "v", Value: `it's "x"`}})},
		{"text with lt", dom.Text{Data: "a < b"}},
		{"comment with close", dom.Comment{Data: "x --> y"}},
		{"self-closing with children", dom.Element{TagName: "br", SelfClosing: true, Children: []dom.Node{dom.Text{Data: "x"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := NewMarkupEncoder(&buf).Encode(tt.node)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrUnrepresentable) {
				t.Errorf("expected ErrUnrepresentable, got %v", err)
			}
		})
	}
}
