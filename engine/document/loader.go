package document

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"

	"github.com/amlstack/advisor/engine/core"
	"github.com/amlstack/advisor/pkg/logger"
)

// supported extensions for advisory source documents.
var patterns = []string{"**/*.txt", "**/*.json", "**/*.md"}

// Load reads every .txt, .json, and .md file found recursively under dir.
// Unreadable files are logged and skipped; a missing directory yields an
// empty set with a warning. Loading never fails the run.
func Load(ctx context.Context, dir string) []core.Document {
	log := logger.FromContext(ctx)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Warn("Documents directory not found", "dir", dir)
		return nil
	}
	fsys := os.DirFS(dir)
	var documents []core.Document
	for _, pattern := range patterns {
		paths, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			log.Warn("Document glob failed", "pattern", pattern, "error", err)
			continue
		}
		sort.Strings(paths)
		for _, path := range paths {
			doc, ok := loadFile(ctx, dir, path)
			if ok {
				documents = append(documents, doc)
			}
		}
	}
	log.Info("Documents loaded", "dir", dir, "count", len(documents))
	return documents
}

func loadFile(ctx context.Context, dir, relPath string) (core.Document, bool) {
	log := logger.FromContext(ctx)
	fullPath := filepath.Join(dir, relPath)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		log.Warn("Skipping unreadable document", "path", fullPath, "error", err)
		return core.Document{}, false
	}
	if detected := mimetype.Detect(content); !isTextual(detected) {
		log.Warn("Skipping non-text document", "path", fullPath, "mime", detected.String())
		return core.Document{}, false
	}
	return core.Document{
		Filename:     filepath.Base(relPath),
		Content:      string(content),
		DocumentType: documentType(relPath),
		Metadata:     map[string]any{"path": fullPath},
	}, true
}

func isTextual(m *mimetype.MIME) bool {
	for cur := m; cur != nil; cur = cur.Parent() {
		if cur.Is("text/plain") || cur.Is("application/json") {
			return true
		}
	}
	return false
}

// documentType derives a tag the same way the report consumers expect it:
// the filename prefix before the first underscore for plain text files,
// the extension for json and markdown.
func documentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".md":
		return strings.TrimPrefix(ext, ".")
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if prefix, _, found := strings.Cut(stem, "_"); found {
		return prefix
	}
	return ""
}
