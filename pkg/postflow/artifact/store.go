// Package artifact persists generated images to the local filesystem
// and hands out stable references for presentation layers.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyArtifact indicates Save was called with no data.
var ErrEmptyArtifact = errors.New("artifact data is empty")

// Ref points at one persisted artifact.
type Ref struct {
	// Path is the reference handed to presentation layers, e.g.
	// "static/images/20250101_120000_solar_power_twitter_1a2b3c4d.png".
	// Stable for the lifetime of one pipeline result.
	Path string
	// File is the absolute location on disk.
	File string
	// Size in bytes.
	Size int64
}

// Store writes image artifacts under <dir>/images and references them
// as static/images/<name>. It is safe for concurrent use.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, creating the images
// subdirectory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("artifact directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve artifact directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(abs, "images"), 0o755); err != nil {
		return nil, fmt.Errorf("create images directory: %w", err)
	}
	return &Store{dir: abs}, nil
}

// ImagesDir returns the directory artifacts are written to, for static
// file serving.
func (s *Store) ImagesDir() string {
	return filepath.Join(s.dir, "images")
}

// Save persists one PNG artifact named after the topic, platform, and
// save time. A short random suffix keeps concurrent executions within
// the same second from colliding.
func (s *Store) Save(topic, platform string, data []byte) (Ref, error) {
	if len(data) == 0 {
		return Ref{}, ErrEmptyArtifact
	}
	name := fileName(time.Now(), topic, platform)
	full := filepath.Join(s.dir, "images", name)
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return Ref{}, fmt.Errorf("write artifact: %w", err)
	}
	return Ref{
		Path: "static/images/" + name,
		File: full,
		Size: int64(len(data)),
	}, nil
}

var (
	nonSlugChars     = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
	nonPlatformChars = regexp.MustCompile(`[^\w]`)
)

// fileName builds "<timestamp>_<topic-slug>_<platform>_<suffix>.png".
func fileName(ts time.Time, topic, platform string) string {
	stamp := ts.Format("20060102_150405")
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%s_%s_%s.png", stamp, slug(topic), sanitizePlatform(platform), suffix)
}

// slug lowercases the topic, strips special characters, and collapses
// whitespace to underscores. Capped at 30 characters.
func slug(topic string) string {
	s := nonSlugChars.ReplaceAllString(topic, "")
	s = whitespaceRuns.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.ToLower(s)
	if len(s) > 30 {
		s = s[:30]
	}
	if s == "" {
		s = "untitled"
	}
	return s
}

func sanitizePlatform(platform string) string {
	p := strings.ToLower(nonPlatformChars.ReplaceAllString(platform, ""))
	if p == "" {
		p = "general"
	}
	return p
}
