// Package page loads the static html shell the streamed view is injected into.
package page

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// TemplateFile is the name of the shell file in the assets directory
	TemplateFile = "index.html"

	bodyMarker = "<body>"
	headMarker = "</head>"
)

// ErrNoBodyMarker returned when the shell has no <body> injection point
var ErrNoBodyMarker = errors.New("no <body> marker in template")

// Shell is the page template split at the <body> injection point
type Shell struct {
	Prefix string // everything up to and including <body>, with style script injected
	Suffix string // everything after <body>
}

// Load reads index.html from dir and splits it into prefix and suffix.
// styleScript is inserted before </head>, or appended to the pre-body part if </head> is missing.
func Load(dir, styleScript string) (*Shell, error) {
	path := filepath.Join(dir, TemplateFile)
	data, err := os.ReadFile(path) //nolint:gosec // path comes from CLI option
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	res, err := Split(string(data), styleScript)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return res, nil
}

// Split makes shell from template text, see Load
func Split(tmpl, styleScript string) (*Shell, error) {
	before, after, found := strings.Cut(tmpl, bodyMarker)
	if !found {
		return nil, ErrNoBodyMarker
	}

	if idx := strings.Index(before, headMarker); idx >= 0 {
		before = before[:idx] + styleScript + before[idx:]
	} else {
		before += styleScript
	}

	return &Shell{Prefix: before + bodyMarker, Suffix: after}, nil
}
