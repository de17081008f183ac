// Package spec loads published OpenAPI contracts and projects their
// response schemas into the serialized form the diff engine consumes.
package spec

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/getkin/kin-openapi/openapi3"
)

// defaultPatterns matches the contract file layouts seen in the wild.
var defaultPatterns = []string{"**/*.json", "**/*.yaml", "**/*.yml"}

// Document pairs a parsed OpenAPI document with where it came from.
type Document struct {
	Doc    *openapi3.T
	Source string
}

// Title returns the contract's info title, or "" when absent.
func (d *Document) Title() string {
	if d == nil || d.Doc == nil || d.Doc.Info == nil {
		return ""
	}
	return d.Doc.Info.Title
}

// Version returns the contract's info version, or "" when absent.
func (d *Document) Version() string {
	if d == nil || d.Doc == nil || d.Doc.Info == nil {
		return ""
	}
	return d.Doc.Info.Version
}

// LoadFile loads and validates an OpenAPI contract from a file path.
func LoadFile(path string) (*Document, error) {
	loader := newLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load spec from file %s: %w", path, err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec %s: %w", path, err)
	}
	return &Document{Doc: doc, Source: path}, nil
}

// LoadData loads a contract from raw YAML or JSON bytes. The source
// label is carried through to the extracted endpoints.
func LoadData(data []byte, source string) (*Document, error) {
	loader := newLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("load spec from %s: %w", source, err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec %s: %w", source, err)
	}
	return &Document{Doc: doc, Source: source}, nil
}

// LoadURL fetches and validates a contract from an HTTP(S) URL.
func LoadURL(ctx context.Context, rawURL string) (*Document, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid spec URL: %w", err)
	}

	loader := newLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromURI(parsed)
	if err != nil {
		return nil, fmt.Errorf("load spec from URL %s: %w", rawURL, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec %s: %w", rawURL, err)
	}
	return &Document{Doc: doc, Source: rawURL}, nil
}

// LoadDir loads every contract under dir matching the glob patterns
// (defaultPatterns when none given). Files that fail to load do not stop
// the rest; their errors are joined and returned alongside the documents
// that did load.
func LoadDir(dir string, patterns []string) ([]*Document, error) {
	if len(patterns) == 0 {
		patterns = defaultPatterns
	}

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := expandGlob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("expand spec pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)

	var docs []*Document
	var errs []error
	for _, file := range files {
		doc, err := LoadFile(file)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, errors.Join(errs...)
}

func newLoader() *openapi3.Loader {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	return loader
}

// expandGlob expands a glob pattern to matching file paths. Patterns
// containing ** go through doublestar, the rest through filepath.Glob.
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return doublestar.FilepathGlob(pattern)
	}
	return filepath.Glob(pattern)
}
