// Package media resolves image metadata rows to inline base64 data
// URLs for API responses. A missing or unreadable file is an integrity
// warning: it is logged and the caller gets an empty string, never an
// error. Reads must survive partial media loss.
package media

import (
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Resolver reads image files relative to the configured blob store root.
type Resolver struct {
	baseDir string
}

// NewResolver creates a resolver rooted at baseDir.
func NewResolver(baseDir string) *Resolver {
	return &Resolver{baseDir: baseDir}
}

// DataURL loads the file at relPath and returns it as a
// data:<mime>;base64,... URL. Returns "" when relPath is empty or the
// file cannot be read.
func (r *Resolver) DataURL(relPath, name string) string {
	if relPath == "" {
		return ""
	}

	full := filepath.Join(r.baseDir, filepath.FromSlash(strings.TrimPrefix(relPath, "/")))
	data, err := os.ReadFile(full)
	if err != nil {
		log.Printf("Warning: could not read image %s: %v", full, err)
		return ""
	}

	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
