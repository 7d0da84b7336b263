// Package asset defines the core corpus types shared by the scanner,
// graph builder, and impact engine.
package asset

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
)

// RefKind classifies how a reference was detected. The kind implies
// confidence: internal references come from explicit relative paths,
// framework references from known directory names, soft-text references
// from bare-name mentions, and external covers everything unresolved.
type RefKind string

const (
	RefInternal  RefKind = "internal"
	RefFramework RefKind = "framework-named"
	RefSoftText  RefKind = "soft-text"
	RefExternal  RefKind = "external"
)

// Type tags an asset with its corpus category. Types map to directories
// via the corpus configuration.
type Type string

const (
	TypeAgent    Type = "agent"
	TypeWorkflow Type = "workflow"
	TypeCommand  Type = "command"
	TypeTemplate Type = "template"
	TypeConfig   Type = "config"
	TypeUnknown  Type = "unknown"
)

// Reference is a directed edge from a source asset to a target identifier.
// TargetID is a normalized corpus path for resolved references, or the raw
// matched identifier for external ones.
type Reference struct {
	TargetID string  `json:"targetId"`
	Kind     RefKind `json:"kind"`
}

// Node is one scanned corpus asset. ID is the path relative to the corpus
// root with forward slashes. Nodes are created on scan and owned by the
// graph builder; callers treat them as read-only.
type Node struct {
	ID          string      `json:"id"`
	Type        Type        `json:"type"`
	Fingerprint string      `json:"fingerprint"`
	References  []Reference `json:"references"`
}

// Fingerprint returns the content fingerprint used to detect asset changes
// between scans.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// BareName strips the directory and extension from an asset identifier:
// "agents/core-util.md" -> "core-util". Soft-text references are recorded
// and looked up under this form.
func BareName(id string) string {
	base := path.Base(id)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// NormalizeID canonicalizes a reference target or asset path: forward
// slashes, no leading "./", cleaned of ".." segments where possible.
func NormalizeID(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	return path.Clean(p)
}

// IsTestAsset reports whether an asset id looks like a test fixture or
// test definition. Used when analyses exclude test assets.
func IsTestAsset(id string) bool {
	lower := strings.ToLower(id)
	if strings.Contains(lower, "/test/") || strings.Contains(lower, "/tests/") {
		return true
	}
	base := path.Base(lower)
	return strings.HasPrefix(base, "test_") ||
		strings.Contains(base, "_test.") ||
		strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.")
}
