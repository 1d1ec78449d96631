package aggregation

import (
	"path"
	"sort"

	"github.com/src-d/enry/v2"

	"github.com/masmgr/repometrics-go/internal/git"
)

// otherLanguage labels files enry cannot classify by name.
const otherLanguage = "Other"

// languageCounter classifies every distinct path touched in history into a
// language. Each path counts once no matter how many commits touch it.
type languageCounter struct {
	skipVendored bool
	seen         map[string]struct{}
	counts       map[string]int
}

func newLanguageCounter(skipVendored bool) *languageCounter {
	return &languageCounter{
		skipVendored: skipVendored,
		seen:         make(map[string]struct{}),
		counts:       make(map[string]int),
	}
}

func (lc *languageCounter) add(p string) {
	if p == "" {
		return
	}
	if _, ok := lc.seen[p]; ok {
		return
	}
	lc.seen[p] = struct{}{}
	if lc.skipVendored && enry.IsVendor(p) {
		return
	}
	lang := enry.GetLanguage(path.Base(p), nil)
	if lang == "" {
		lang = otherLanguage
	}
	lc.counts[lang]++
}

func (lc *languageCounter) finish() []LanguageStats {
	out := make([]LanguageStats, 0, len(lc.counts))
	for lang, n := range lc.counts {
		out = append(out, LanguageStats{Language: lang, Files: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Files != out[j].Files {
			return out[i].Files > out[j].Files
		}
		return out[i].Language < out[j].Language
	})
	return out
}

// CountExtensions tallies a tree listing by file extension. Files without an
// extension count under "(none)".
func CountExtensions(entries []git.TreeEntry) []ExtensionCount {
	counts := make(map[string]int)
	for _, e := range entries {
		ext := path.Ext(e.Path)
		if ext == "" {
			ext = "(none)"
		}
		counts[ext]++
	}
	out := make([]ExtensionCount, 0, len(counts))
	for ext, n := range counts {
		out = append(out, ExtensionCount{Extension: ext, Files: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Files != out[j].Files {
			return out[i].Files > out[j].Files
		}
		return out[i].Extension < out[j].Extension
	})
	return out
}
