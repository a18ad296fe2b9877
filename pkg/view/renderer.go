// Package view renders the ranked feed into html markup, either at once or chunk by chunk.
package view

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"

	"github.com/umputun/feedrank/pkg/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	defaultLoadingText   = "Loading feed..."
	defaultCommentsLabel = "Check out the comments"
)

// Renderer renders feed view with embedded templates
type Renderer struct {
	tmpl          *template.Template
	loadingText   string
	commentsLabel string
}

// Opts customizes the text labels of the view
type Opts struct {
	LoadingText   string // loading placeholder text
	CommentsLabel string // call to action for the discussion link
}

// unsafeURL replaces links with a disallowed scheme, same marker html/template uses
const unsafeURL = "#ZgotmplZ"

// card is the data for a single item card
type card struct {
	domain.RankedItem
	CommentsLabel string
}

// New makes renderer with parsed templates. Empty opts fields are set to defaults.
func New(opts Opts) (*Renderer, error) {
	tmpl, err := template.New("view").Funcs(template.FuncMap{"hrefAttr": hrefAttr}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	res := &Renderer{tmpl: tmpl, loadingText: opts.LoadingText, commentsLabel: opts.CommentsLabel}
	if res.loadingText == "" {
		res.loadingText = defaultLoadingText
	}
	if res.commentsLabel == "" {
		res.commentsLabel = defaultCommentsLabel
	}
	return res, nil
}

// Stream renders the heading, each item card and the closing markup as separate chunks, passing them to emit.
// Stops on the first emit error or when ctx is done.
func (r *Renderer) Stream(ctx context.Context, title string, items []domain.RankedItem, emit func(chunk string) error) error {
	chunk, err := r.execute("header", title)
	if err != nil {
		return err
	}
	if err = emit(chunk); err != nil {
		return err
	}

	for _, item := range items {
		if err = ctx.Err(); err != nil {
			return err
		}
		if chunk, err = r.execute("card", card{RankedItem: item, CommentsLabel: r.commentsLabel}); err != nil {
			return err
		}
		if err = emit(chunk); err != nil {
			return err
		}
	}

	if chunk, err = r.execute("footer", nil); err != nil {
		return err
	}
	return emit(chunk)
}

// Render writes the complete view to w. The output is the concatenation of chunks made by Stream.
func (r *Renderer) Render(w io.Writer, title string, items []domain.RankedItem) error {
	return r.Stream(context.Background(), title, items, func(chunk string) error {
		_, err := io.WriteString(w, chunk)
		return err
	})
}

// Loading returns the loading placeholder shown while the feed is in flight
func (r *Renderer) Loading() (string, error) {
	return r.execute("loading", r.loadingText)
}

// Failure returns an error block replacing the loading placeholder
func (r *Renderer) Failure(msg string) (string, error) {
	return r.execute("failure", msg)
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// hrefAttr makes href attribute with the link bytes kept as is, html-escaped only, so the parsed href
// equals the extracted link. Links with a scheme other than http(s) are replaced with unsafeURL.
func hrefAttr(link string) template.HTMLAttr {
	if !allowedScheme(link) {
		link = unsafeURL
	}
	return template.HTMLAttr(`href="` + html.EscapeString(link) + `"`) //nolint:gosec // value is escaped and scheme checked
}

// allowedScheme reports whether link is relative or uses http(s) scheme
func allowedScheme(link string) bool {
	link = strings.TrimLeftFunc(link, func(r rune) bool { return r <= ' ' })
	i := strings.IndexAny(link, ":/?#")
	if i < 0 || link[i] != ':' {
		return true // no scheme
	}
	scheme := strings.ToLower(link[:i])
	return scheme == "http" || scheme == "https"
}
