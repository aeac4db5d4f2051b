package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"blogger-lister/internal/listing"
)

// Document is everything needed to render a saved list.
type Document struct {
	BlogRef     string
	GeneratedAt time.Time
	Theme       string // device, light or dark
	Collection  listing.Collection
}

//go:embed posts.html.tmpl
var postsTpl string

var compiled = template.Must(template.New("posts").Parse(postsTpl))

type templateData struct {
	BlogRef     string
	Generated   string
	Date        string
	Total       string
	Theme       string
	Groups      []listing.Group
	HasSafeLink bool
}

// Render writes a standalone HTML document for d.
func Render(w io.Writer, d Document) error {
	theme := d.Theme
	if theme != "light" && theme != "dark" {
		theme = "device"
	}
	return compiled.Execute(w, templateData{
		BlogRef:     d.BlogRef,
		Generated:   d.GeneratedAt.Format("January 2, 2006, 03:04:05 PM"),
		Date:        d.GeneratedAt.Format("2006-01-02"),
		Total:       d.Collection.TotalLabel(),
		Theme:       theme,
		Groups:      d.Collection.Groups,
		HasSafeLink: strings.HasPrefix(d.BlogRef, "http://") || strings.HasPrefix(d.BlogRef, "https://"),
	})
}

// Bytes renders d into memory.
func Bytes(d Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders d into dir under Filename and returns the written path.
func WriteFile(dir string, d Document) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	b, err := Bytes(d)
	if err != nil {
		return "", fmt.Errorf("render export: %w", err)
	}
	path := filepath.Join(dir, Filename(d.BlogRef, d.GeneratedAt))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

const (
	maxIdentifierLen  = 50
	unknownIdentifier = "unknown-blog"
)

var (
	schemeRe    = regexp.MustCompile(`^https?://`)
	dotsRe      = regexp.MustCompile(`\.+`)
	disallowRe  = regexp.MustCompile(`[^a-zA-Z0-9-]`)
	edgeHyphens = regexp.MustCompile(`^-+|-+$`)
)

// SanitizeBlogRef turns a blog URL or ID into a filename-safe identifier:
// scheme stripped, slashes and runs of dots turned into hyphens, anything
// else outside [a-zA-Z0-9-] dropped, edge hyphens trimmed, at most 50 chars.
func SanitizeBlogRef(ref string) string {
	s := strings.TrimSpace(ref)
	s = schemeRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "/", "-")
	s = dotsRe.ReplaceAllString(s, "-")
	s = disallowRe.ReplaceAllString(s, "")
	s = edgeHyphens.ReplaceAllString(s, "")
	if len(s) > maxIdentifierLen {
		s = s[:maxIdentifierLen]
	}
	if s == "" {
		return unknownIdentifier
	}
	return s
}

// Filename is "<identifier>-Posts-List-<YYYY-MM-DD>.html".
func Filename(ref string, now time.Time) string {
	return fmt.Sprintf("%s-Posts-List-%s.html", SanitizeBlogRef(ref), now.Format("2006-01-02"))
}
