// Package config implements auto-detection of subtitle files in a
// project directory and the .subkit.yaml configuration file.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/subkit/langmeta"
	"github.com/minios-linux/subkit/subtitle"
)

// SubtitlesDirName is the conventional subdirectory scanned in addition
// to the project root.
const SubtitlesDirName = "subtitles"

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// SubtitleFile describes a single detected subtitle file.
type SubtitleFile struct {
	// Path is the absolute file path.
	Path string
	// Format is the codec name ("srt", "vtt").
	Format string
	// Base is the file stem without language tag and extension.
	// "movie.ru.srt" -> "movie", "movie.srt" -> "movie".
	Base string
	// Lang is the canonical language code inferred from the file name,
	// or "" if the name carries no language tag.
	Lang string
}

// Project holds auto-detected project settings.
type Project struct {
	// Name is the project name (directory base name).
	Name string
	// Root is the absolute project root.
	Root string
	// SourceLang is the source language code (default "en").
	SourceLang string
	// Files are all detected subtitle files.
	Files []SubtitleFile
	// Languages are the language codes seen in tagged file names, sorted.
	Languages []string
}

// ---------------------------------------------------------------------------
// Detection
// ---------------------------------------------------------------------------

// Detect scans a directory for subtitle files and infers project settings.
// The root itself and a subtitles/ subdirectory are scanned one level deep.
func Detect(rootDir string) *Project {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		absRoot = rootDir
	}

	p := &Project{
		Name:       filepath.Base(absRoot),
		Root:       absRoot,
		SourceLang: "en",
	}

	p.Files = append(p.Files, scanDir(absRoot)...)
	subDir := filepath.Join(absRoot, SubtitlesDirName)
	if info, err := os.Stat(subDir); err == nil && info.IsDir() {
		p.Files = append(p.Files, scanDir(subDir)...)
	}

	seen := make(map[string]bool)
	for _, f := range p.Files {
		if f.Lang != "" && !seen[f.Lang] {
			seen[f.Lang] = true
			p.Languages = append(p.Languages, f.Lang)
		}
	}
	sort.Strings(p.Languages)

	return p
}

// scanDir collects subtitle files from a single directory (non-recursive).
func scanDir(dir string) []SubtitleFile {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []SubtitleFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		codec, err := subtitle.ForPath(name)
		if err != nil {
			continue
		}
		base, lang := SplitLangTag(name)
		files = append(files, SubtitleFile{
			Path:   filepath.Join(dir, name),
			Format: codec.Name(),
			Base:   base,
			Lang:   lang,
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

// SplitLangTag splits a subtitle file name into its base stem and an
// optional language tag. The tag is the last dot-separated segment of
// the stem when it resolves to a known language code:
//
//	"movie.ru.srt"    -> "movie", "ru"
//	"movie.pt_BR.srt" -> "movie", "pt-BR"
//	"movie.2024.srt"  -> "movie.2024", ""
func SplitLangTag(name string) (base, lang string) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	i := strings.LastIndex(stem, ".")
	if i < 0 {
		return stem, ""
	}
	tag := langmeta.Normalize(stem[i+1:])
	if !langmeta.IsSupported(tag) {
		return stem, ""
	}
	return stem[:i], tag
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Sources returns the files to translate from: untagged files plus files
// explicitly tagged with the source language.
func (p *Project) Sources() []SubtitleFile {
	var out []SubtitleFile
	for _, f := range p.Files {
		if f.Lang == "" || f.Lang == p.SourceLang {
			out = append(out, f)
		}
	}
	return out
}

// Translations returns the files tagged with a non-source language for
// the given base stem.
func (p *Project) Translations(base string) []SubtitleFile {
	var out []SubtitleFile
	for _, f := range p.Files {
		if f.Base == base && f.Lang != "" && f.Lang != p.SourceLang {
			out = append(out, f)
		}
	}
	return out
}

// HasTranslation reports whether a translation for base into lang exists.
func (p *Project) HasTranslation(base, lang string) bool {
	for _, f := range p.Files {
		if f.Base == base && f.Lang == lang {
			return true
		}
	}
	return false
}

// Missing returns the subset of langs that have no translation file for
// the given base stem.
func (p *Project) Missing(base string, langs []string) []string {
	var out []string
	for _, lang := range langs {
		if lang == p.SourceLang {
			continue
		}
		if !p.HasTranslation(base, lang) {
			out = append(out, lang)
		}
	}
	return out
}

// OutputPath returns the translated file path for a source file and a
// target language: movie.srt -> movie.ru.srt, alongside the source.
// A non-empty outDir places the file there instead.
func OutputPath(src SubtitleFile, lang, outDir string) string {
	dir := filepath.Dir(src.Path)
	if outDir != "" {
		dir = outDir
	}
	ext := filepath.Ext(src.Path)
	return filepath.Join(dir, src.Base+"."+lang+ext)
}
