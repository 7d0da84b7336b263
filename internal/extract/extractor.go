// Package extract parses raw asset text into typed references.
//
// Patterns are applied in priority order: relative paths resolve to
// internal references, known-directory names to framework references,
// quoted bare names of known assets to soft-text references, and
// everything else that looks like an identifier but cannot be resolved is
// recorded as external. Extraction never fails: malformed content simply
// yields an empty list.
package extract

import (
	"path"
	"strings"

	"github.com/dbsmedya/blastradius/internal/asset"
)

// Corpus is the asset lookup the extractor classifies against.
type Corpus interface {
	// Has reports whether a normalized asset id exists in the corpus.
	Has(id string) bool
	// ResolveBare resolves a bare asset name to a unique asset id.
	ResolveBare(name string) (string, bool)
}

// Extractor turns one asset's raw text into a deduplicated reference
// list, first-seen order preserved. Safe for concurrent use once built.
type Extractor struct {
	registry map[asset.Type]patternSet
	stoplist map[string]bool
	corpus   Corpus
}

// New builds an Extractor for the given corpus. typeDirs are the known
// asset-type directory names; stoplist words are never soft-text matches.
func New(corpus Corpus, typeDirs, stoplist []string) *Extractor {
	stop := make(map[string]bool, len(stoplist))
	for _, w := range stoplist {
		stop[strings.ToLower(w)] = true
	}
	return &Extractor{
		registry: buildRegistry(typeDirs),
		stoplist: stop,
		corpus:   corpus,
	}
}

// Extract returns the references found in content. sourceID is the
// corpus-relative id of the asset being parsed; relative paths resolve
// against its directory.
func (e *Extractor) Extract(sourceID string, assetType asset.Type, content []byte) []asset.Reference {
	if len(content) == 0 {
		return nil
	}

	set, ok := e.registry[assetType]
	if !ok {
		set = e.registry[asset.TypeUnknown]
	}

	text := string(content)
	d := newDeduper()

	// Priority 1: relative paths -> internal.
	for _, p := range set.relative {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			target := m[p.group]
			if target == "" {
				continue
			}
			id := resolveRelative(sourceID, target)
			d.add(asset.Reference{TargetID: id, Kind: asset.RefInternal})
		}
	}

	// Priority 2: known-directory names -> framework-named. Matches
	// without a slash (wiki links to plain names) fall through to
	// soft-text resolution instead.
	for _, p := range set.framework {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			target := m[p.group]
			if target == "" {
				continue
			}
			if strings.Contains(target, "/") {
				d.add(asset.Reference{TargetID: asset.NormalizeID(target), Kind: asset.RefFramework})
				continue
			}
			if ref, ok := e.softText(target); ok {
				d.add(ref)
			}
		}
	}

	// Priority 3: quoted bare names of known assets -> soft-text.
	for _, p := range set.quoted {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			if ref, ok := e.softText(m[p.group]); ok {
				d.add(ref)
			}
		}
	}

	// Priority 4: unresolved identifiers -> external.
	for _, p := range set.external {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			target := m[p.group]
			if target == "" {
				continue
			}
			d.add(asset.Reference{TargetID: target, Kind: asset.RefExternal})
		}
	}

	return d.refs
}

// softText classifies a candidate bare name. The stoplist filters out
// reserved words that would otherwise flood the graph with false edges.
func (e *Extractor) softText(name string) (asset.Reference, bool) {
	if name == "" || e.stoplist[strings.ToLower(name)] {
		return asset.Reference{}, false
	}
	if _, ok := e.corpus.ResolveBare(name); !ok {
		return asset.Reference{}, false
	}
	// Soft-text edges are keyed on the bare name itself so the
	// propagator can union them with path-keyed lookups.
	return asset.Reference{TargetID: name, Kind: asset.RefSoftText}, true
}

// resolveRelative turns a ./ or ../ path into a corpus-root-relative id.
func resolveRelative(sourceID, target string) string {
	target = strings.ReplaceAll(target, "\\", "/")
	if strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../") {
		return asset.NormalizeID(path.Join(path.Dir(sourceID), target))
	}
	return asset.NormalizeID(target)
}

// deduper keeps first-seen order while dropping duplicate references.
type deduper struct {
	seen map[asset.Reference]bool
	refs []asset.Reference
}

func newDeduper() *deduper {
	return &deduper{seen: make(map[asset.Reference]bool)}
}

func (d *deduper) add(ref asset.Reference) {
	if ref.TargetID == "" || d.seen[ref] {
		return
	}
	d.seen[ref] = true
	d.refs = append(d.refs, ref)
}
