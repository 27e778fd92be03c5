// Package fs reads sketches from disk and writes generated candidates back
// as a static site.
package fs

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/sketchui"
)

// Output file names of a written candidate.
const (
	MarkupFile = "index.html"
	StyleFile  = "style.css"
	ScriptFile = "script.js"
)

// LoadSketch reads an image file. The MIME type is sniffed from content;
// anything that is not an image is rejected.
func LoadSketch(path string) (sketchui.Sketch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sketchui.Sketch{}, fmt.Errorf("fs: read sketch: %w", err)
	}
	if len(data) == 0 {
		return sketchui.Sketch{}, fmt.Errorf("fs: sketch %s is empty: %w", path, sketchui.ErrValidation)
	}
	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if !strings.HasPrefix(mime, "image/") {
		return sketchui.Sketch{}, fmt.Errorf("fs: sketch %s is %s, not an image: %w", path, mime, sketchui.ErrValidation)
	}
	return sketchui.Sketch{Ref: path, Data: data, MimeType: mime}, nil
}

// Sink writes the candidate of each result into Dir as index.html,
// style.css and script.js. Missing segments produce empty files.
type Sink struct {
	Dir string
}

var _ sketchui.ResultSink = (*Sink)(nil)

// Save implements sketchui.ResultSink.
func (s *Sink) Save(_ context.Context, r sketchui.Result) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("fs: create output directory: %w", err)
	}
	files := []struct {
		name    string
		content string
	}{
		{MarkupFile, r.Candidate.Markup},
		{StyleFile, r.Candidate.Style},
		{ScriptFile, r.Candidate.Script},
	}
	for _, f := range files {
		if err := writeFileAtomic(filepath.Join(s.Dir, f.name), []byte(f.content)); err != nil {
			return fmt.Errorf("fs: write %s: %w", f.name, err)
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
