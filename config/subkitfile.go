// .subkit.yaml configuration file support.
//
// When a .subkit.yaml file exists in the project root, subkit uses it
// as the sole source of truth for translation targets. No auto-detection
// is performed, every target must be explicitly declared.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/subkit/langmeta"
	"github.com/minios-linux/subkit/subtitle"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// SubkitFile is the top-level .subkit.yaml structure.
type SubkitFile struct {
	// SourceLang is the source language code (default "en").
	SourceLang string `yaml:"source_lang,omitempty"`
	// Languages is the default target language list for all targets
	// (can be overridden per target).
	Languages []string `yaml:"languages,omitempty"`
	// Provider is the translation provider ID (default "deepl").
	Provider string `yaml:"provider,omitempty"`
	// Workers is the number of parallel translation workers.
	// Zero means the command-line default applies.
	Workers int `yaml:"workers,omitempty"`
	// Targets is the list of translation targets.
	Targets []Target `yaml:"targets"`
}

// Target describes a single subtitle file to translate.
type Target struct {
	// Name is a human-readable label shown in status/logs.
	Name string `yaml:"name"`
	// Path is the subtitle file path relative to .subkit.yaml.
	Path string `yaml:"path"`
	// Output is the output directory relative to .subkit.yaml
	// (default: alongside the source file).
	Output string `yaml:"output,omitempty"`

	// --- overrides ---

	// SourceLang overrides the global source language for this target.
	SourceLang string `yaml:"source_lang,omitempty"`
	// Languages overrides the global language list for this target.
	Languages []string `yaml:"languages,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// SubkitFileName is the default config file name.
const SubkitFileName = ".subkit.yaml"

// LoadSubkitFile loads and validates .subkit.yaml from the given directory.
// Returns nil if no .subkit.yaml exists.
func LoadSubkitFile(rootDir string) (*SubkitFile, error) {
	path := filepath.Join(rootDir, SubkitFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var sf SubkitFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Defaults
	if sf.SourceLang == "" {
		sf.SourceLang = "en"
	}
	if sf.Provider == "" {
		sf.Provider = "deepl"
	}
	if sf.Workers < 0 {
		return nil, fmt.Errorf("%s: workers must not be negative", path)
	}

	if sf.Languages, err = normalizeLangs(path, "languages", sf.Languages); err != nil {
		return nil, err
	}

	// Validate & resolve targets
	for i := range sf.Targets {
		t := &sf.Targets[i]

		if t.Name == "" {
			return nil, fmt.Errorf("%s: target #%d has no name", path, i+1)
		}
		if t.Path == "" {
			return nil, fmt.Errorf("%s: target %q has no path", path, t.Name)
		}
		if _, err := subtitle.ForPath(t.Path); err != nil {
			return nil, fmt.Errorf("%s: target %q: %w", path, t.Name, err)
		}

		// Inherit global languages if not overridden
		if len(t.Languages) == 0 {
			t.Languages = sf.Languages
		} else if t.Languages, err = normalizeLangs(path, fmt.Sprintf("target %q languages", t.Name), t.Languages); err != nil {
			return nil, err
		}

		// Inherit source lang
		if t.SourceLang == "" {
			t.SourceLang = sf.SourceLang
		}
	}

	return &sf, nil
}

// normalizeLangs canonicalizes a language list and rejects unknown codes.
func normalizeLangs(path, what string, langs []string) ([]string, error) {
	out := make([]string, 0, len(langs))
	for _, lang := range langs {
		code := langmeta.Normalize(lang)
		if !langmeta.IsSupported(code) {
			return nil, fmt.Errorf("%s: %s: unknown language %q", path, what, lang)
		}
		out = append(out, code)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Resolving targets
// ---------------------------------------------------------------------------

// ResolvedTarget holds a fully resolved target with absolute paths.
type ResolvedTarget struct {
	Target    Target
	AbsPath   string
	OutputDir string // "" means alongside the source file
	Languages []string
}

// Resolve converts a SubkitFile into a list of ResolvedTargets with
// absolute paths. Targets without an explicit language list fall back to
// languages detected from sibling translation files.
func (sf *SubkitFile) Resolve(projectRoot string) ([]ResolvedTarget, error) {
	absProjectRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, err
	}

	var resolved []ResolvedTarget
	for _, t := range sf.Targets {
		absPath := filepath.Join(absProjectRoot, t.Path)

		outDir := ""
		if t.Output != "" {
			outDir = filepath.Join(absProjectRoot, t.Output)
		}

		// Auto-detect languages from existing sibling translations
		langs := t.Languages
		if len(langs) == 0 {
			langs = detectSiblingLanguages(absPath, t.SourceLang)
		}

		resolved = append(resolved, ResolvedTarget{
			Target:    t,
			AbsPath:   absPath,
			OutputDir: outDir,
			Languages: langs,
		})
	}

	return resolved, nil
}

// detectSiblingLanguages finds languages from existing translation files
// next to a source subtitle: movie.srt -> movie.ru.srt, movie.de.srt.
func detectSiblingLanguages(absPath, sourceLang string) []string {
	dir := filepath.Dir(absPath)
	base, _ := SplitLangTag(filepath.Base(absPath))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var langs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := subtitle.ForPath(entry.Name()); err != nil {
			continue
		}
		b, lang := SplitLangTag(entry.Name())
		if b != base || lang == "" || lang == sourceLang {
			continue
		}
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// OutputPath returns the translated file path for a target language.
func (rt *ResolvedTarget) OutputPath(lang string) string {
	base, _ := SplitLangTag(filepath.Base(rt.AbsPath))
	src := SubtitleFile{Path: rt.AbsPath, Base: base}
	return OutputPath(src, lang, rt.OutputDir)
}

// AllLanguages returns the deduplicated union of all target languages.
func (sf *SubkitFile) AllLanguages(projectRoot string) []string {
	seen := make(map[string]bool)
	var all []string

	resolved, err := sf.Resolve(projectRoot)
	if err != nil {
		return sf.Languages
	}

	for _, rt := range resolved {
		for _, lang := range rt.Languages {
			if !seen[lang] {
				seen[lang] = true
				all = append(all, lang)
			}
		}
	}

	sort.Strings(all)
	return all
}
