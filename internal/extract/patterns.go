package extract

import (
	"regexp"

	"github.com/dbsmedya/blastradius/internal/asset"
)

// pattern is one compiled reference pattern. Group selects the capture
// group carrying the candidate target.
type pattern struct {
	name  string
	re    *regexp.Regexp
	group int
}

// patternSet is the ordered pattern list applied to one asset type.
// Order is priority: earlier patterns claim their matches first.
type patternSet struct {
	relative  []pattern
	framework []pattern
	quoted    []pattern
	external  []pattern
}

var (
	relPathRe   = regexp.MustCompile(`\.{1,2}/[A-Za-z0-9_][A-Za-z0-9_./-]*`)
	mdLinkRe    = regexp.MustCompile(`\]\((\.{0,2}/?[A-Za-z0-9_][A-Za-z0-9_./-]*)\)`)
	wikiLinkRe  = regexp.MustCompile(`\[\[([A-Za-z0-9_./-]+)\]\]`)
	yamlRefRe   = regexp.MustCompile(`(?m)(?:\$ref|!include|extends|import):?\s+['"]?(\.{0,2}/?[A-Za-z0-9_][A-Za-z0-9_./-]*)['"]?`)
	quotedRe    = regexp.MustCompile("[\"'`]([A-Za-z0-9][A-Za-z0-9_-]{1,63})[\"'`]")
	urlRe       = regexp.MustCompile(`https?://[^\s"'<>)\]]+`)
	scopedPkgRe = regexp.MustCompile(`@[a-z0-9-]+/[a-z0-9._-]+`)
)

// basePatterns applies to every asset type. Type-specific sets extend it.
func basePatterns() patternSet {
	return patternSet{
		relative: []pattern{
			{name: "relative-path", re: relPathRe, group: 0},
		},
		quoted: []pattern{
			{name: "quoted-literal", re: quotedRe, group: 1},
		},
		external: []pattern{
			{name: "url", re: urlRe, group: 0},
			{name: "scoped-package", re: scopedPkgRe, group: 0},
		},
	}
}

// buildRegistry assembles the per-type pattern registry once at
// construction. The framework pattern is synthesized from the configured
// type directories so custom corpus layouts are matched too.
func buildRegistry(typeDirs []string) map[asset.Type]patternSet {
	frameworkRe := frameworkPattern(typeDirs)

	markdown := basePatterns()
	markdown.relative = append(markdown.relative, pattern{name: "markdown-link", re: mdLinkRe, group: 1})
	markdown.framework = []pattern{
		{name: "framework-dir", re: frameworkRe, group: 0},
		{name: "wiki-link", re: wikiLinkRe, group: 1},
	}

	structured := basePatterns()
	structured.relative = append(structured.relative, pattern{name: "yaml-ref", re: yamlRefRe, group: 1})
	structured.framework = []pattern{
		{name: "framework-dir", re: frameworkRe, group: 0},
	}

	plain := basePatterns()
	plain.framework = []pattern{
		{name: "framework-dir", re: frameworkRe, group: 0},
	}

	return map[asset.Type]patternSet{
		asset.TypeAgent:    markdown,
		asset.TypeWorkflow: structured,
		asset.TypeCommand:  markdown,
		asset.TypeTemplate: plain,
		asset.TypeConfig:   structured,
		asset.TypeUnknown:  plain,
	}
}

// frameworkPattern matches "dir/name" for the known asset-type directories.
func frameworkPattern(typeDirs []string) *regexp.Regexp {
	if len(typeDirs) == 0 {
		typeDirs = []string{"agents", "workflows", "commands", "templates", "configs"}
	}
	alternation := ""
	for i, dir := range typeDirs {
		if i > 0 {
			alternation += "|"
		}
		alternation += regexp.QuoteMeta(dir)
	}
	return regexp.MustCompile(`\b(?:` + alternation + `)/[A-Za-z0-9_][A-Za-z0-9_.-]*`)
}
