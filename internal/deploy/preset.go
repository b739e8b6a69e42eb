package deploy

import (
	"slices"

	"git.home.luguber.info/inful/sitebase/internal/foundation/normalization"
)

// Preset identifies a static hosting target.
type Preset string

const (
	PresetStatic        Preset = "static"
	PresetGitHubPages   Preset = "github-pages"
	PresetNetlifyStatic Preset = "netlify-static"
	PresetVercelStatic  Preset = "vercel-static"
)

// DefaultPreset is used when neither config nor environment selects one.
const DefaultPreset = PresetStatic

// PresetInfo describes what a preset implies for the generated tree.
type PresetInfo struct {
	Preset      Preset `json:"preset" yaml:"preset"`
	Description string `json:"description" yaml:"description"`
	// Crawl marks presets that prerender by crawling links from the entry page.
	Crawl bool `json:"crawl" yaml:"crawl"`
	// NoJekyll writes a .nojekyll marker so GitHub Pages serves _-prefixed dirs.
	NoJekyll bool `json:"nojekyll" yaml:"nojekyll"`
	// NotFoundFallback copies the SPA entry page to 404.html.
	NotFoundFallback bool   `json:"not_found_fallback" yaml:"not_found_fallback"`
	OutputDir        string `json:"output_dir" yaml:"output_dir"`
}

var presetTable = []PresetInfo{
	{
		Preset:      PresetStatic,
		Description: "Generic static export for any file host",
		OutputDir:   ".output/public",
	},
	{
		Preset:           PresetGitHubPages,
		Description:      "Crawler-based static export for GitHub Pages project sites",
		Crawl:            true,
		NoJekyll:         true,
		NotFoundFallback: true,
		OutputDir:        ".output/public",
	},
	{
		Preset:           PresetNetlifyStatic,
		Description:      "Crawler-based static export for Netlify",
		Crawl:            true,
		NotFoundFallback: true,
		OutputDir:        "dist",
	},
	{
		Preset:      PresetVercelStatic,
		Description: "Crawler-based static export for Vercel",
		Crawl:       true,
		OutputDir:   ".vercel/output/static",
	},
}

var presetNormalizer = normalization.NewEnumNormalizer("nitro.preset", map[string]Preset{
	"static":         PresetStatic,
	"github-pages":   PresetGitHubPages,
	"githubpages":    PresetGitHubPages,
	"gh-pages":       PresetGitHubPages,
	"netlify-static": PresetNetlifyStatic,
	"vercel-static":  PresetVercelStatic,
}, DefaultPreset)

// ParsePreset maps a loosely written preset name onto the enumeration.
func ParsePreset(raw string) (Preset, error) {
	return presetNormalizer.NormalizeWithValidation(raw)
}

// LookupPreset is ParsePreset without the error detail.
func LookupPreset(raw string) (Preset, bool) {
	return presetNormalizer.Lookup(raw)
}

// SuggestPreset returns the closest known preset name for a typo, or "".
func SuggestPreset(raw string) string {
	return presetNormalizer.Suggest(raw)
}

// Valid reports whether p is one of the enumerated presets.
func (p Preset) Valid() bool {
	_, ok := p.Info()
	return ok
}

// Info returns the descriptor for p.
func (p Preset) Info() (PresetInfo, bool) {
	i := slices.IndexFunc(presetTable, func(pi PresetInfo) bool { return pi.Preset == p })
	if i < 0 {
		return PresetInfo{}, false
	}
	return presetTable[i], true
}

func (p Preset) String() string { return string(p) }

// Presets lists every preset in declaration order.
func Presets() []PresetInfo {
	return slices.Clone(presetTable)
}
