// Package corpus discovers and reads typed declarative assets from a
// directory tree. The filesystem is injected (afero.Fs) so tests run
// against an in-memory corpus.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/dbsmedya/blastradius/internal/asset"
	"github.com/dbsmedya/blastradius/internal/config"
	"github.com/dbsmedya/blastradius/internal/logger"
)

// ErrCorpusUnavailable is returned when the corpus root itself cannot be
// read. It is the only fatal scan condition; missing type directories and
// unreadable individual assets are skipped.
var ErrCorpusUnavailable = errors.New("corpus root is not accessible")

// RawAsset is one discovered asset before reference extraction.
type RawAsset struct {
	ID      string
	Type    asset.Type
	Content []byte
}

// Scanner reads all assets under the configured type directories.
type Scanner struct {
	fs  afero.Fs
	cfg config.CorpusConfig
	log *logger.Logger
}

// NewScanner creates a Scanner over the given filesystem.
func NewScanner(fs afero.Fs, cfg config.CorpusConfig, log *logger.Logger) *Scanner {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Scanner{fs: fs, cfg: cfg, log: log}
}

// Scan walks every configured type directory and returns the discovered
// assets sorted by id. A missing type directory contributes nothing; an
// unreadable file is logged and skipped. Only an inaccessible corpus root
// is fatal.
func (s *Scanner) Scan() ([]RawAsset, error) {
	if _, err := s.fs.Stat(s.cfg.Root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}

	// Deterministic type order regardless of map iteration.
	types := make([]string, 0, len(s.cfg.Types))
	for t := range s.cfg.Types {
		types = append(types, t)
	}
	sort.Strings(types)

	var assets []RawAsset
	for _, t := range types {
		dir := filepath.Join(s.cfg.Root, s.cfg.Types[t])
		found, err := s.scanDir(dir, asset.Type(t))
		if err != nil {
			if os.IsNotExist(err) {
				s.log.Debugw("type directory missing, skipping", "type", t, "dir", dir)
				continue
			}
			s.log.Warnw("type directory unreadable, skipping", "type", t, "dir", dir, "error", err)
			continue
		}
		assets = append(assets, found...)
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	s.log.Debugw("corpus scanned", "assets", len(assets))
	return assets, nil
}

// Load reads a single asset by corpus-relative id, classifying its type
// from the directory it lives in.
func (s *Scanner) Load(id string) (RawAsset, error) {
	id = asset.NormalizeID(id)
	content, err := afero.ReadFile(s.fs, filepath.Join(s.cfg.Root, filepath.FromSlash(id)))
	if err != nil {
		return RawAsset{}, fmt.Errorf("failed to read asset %q: %w", id, err)
	}
	return RawAsset{ID: id, Type: s.TypeOf(id), Content: content}, nil
}

// TypeOf derives the asset type from the leading path segment of id.
func (s *Scanner) TypeOf(id string) asset.Type {
	segment := id
	if idx := strings.IndexByte(id, '/'); idx >= 0 {
		segment = id[:idx]
	}
	for t, dir := range s.cfg.Types {
		if path.Clean(dir) == segment {
			return asset.Type(t)
		}
	}
	return asset.TypeUnknown
}

// scanDir reads all matching files under one type directory.
func (s *Scanner) scanDir(dir string, t asset.Type) ([]RawAsset, error) {
	if _, err := s.fs.Stat(dir); err != nil {
		return nil, err
	}

	var assets []RawAsset
	err := afero.Walk(s.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			s.log.Warnw("skipping unreadable path", "path", p, "error", err)
			return nil
		}
		if info.IsDir() || !s.matchesExtension(p) {
			return nil
		}
		content, readErr := afero.ReadFile(s.fs, p)
		if readErr != nil {
			// Per-asset failures are non-fatal: the rest of the corpus
			// stays usable.
			s.log.Warnw("skipping unreadable asset", "path", p, "error", readErr)
			return nil
		}
		rel, relErr := filepath.Rel(s.cfg.Root, p)
		if relErr != nil {
			rel = p
		}
		assets = append(assets, RawAsset{
			ID:      asset.NormalizeID(filepath.ToSlash(rel)),
			Type:    t,
			Content: content,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// matchesExtension reports whether the file carries a scanned extension.
// An empty extension list scans everything.
func (s *Scanner) matchesExtension(p string) bool {
	if len(s.cfg.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(p))
	for _, allowed := range s.cfg.Extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
