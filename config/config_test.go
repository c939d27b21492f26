package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(""), 0644); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
	}
}

func TestSplitLangTag(t *testing.T) {
	cases := []struct {
		name     string
		wantBase string
		wantLang string
	}{
		{"movie.srt", "movie", ""},
		{"movie.ru.srt", "movie", "ru"},
		{"movie.pt_BR.srt", "movie", "pt-BR"},
		{"movie.rus.srt", "movie", "ru"},
		{"movie.2024.srt", "movie.2024", ""},
		{"show.s01e02.en.vtt", "show.s01e02", "en"},
		{"movie.xx.srt", "movie.xx", ""},
	}
	for _, c := range cases {
		base, lang := SplitLangTag(c.name)
		if base != c.wantBase || lang != c.wantLang {
			t.Errorf("SplitLangTag(%q) = %q, %q, want %q, %q",
				c.name, base, lang, c.wantBase, c.wantLang)
		}
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"movie.srt",
		"movie.ru.srt",
		"movie.de.srt",
		"clip.vtt",
		"notes.txt",
		filepath.Join("subtitles", "show.en.srt"),
		filepath.Join("subtitles", "show.fr.vtt"),
	)

	p := Detect(dir)
	if p.Name != filepath.Base(dir) {
		t.Fatalf("Name = %q, want %q", p.Name, filepath.Base(dir))
	}
	if p.SourceLang != "en" {
		t.Fatalf("SourceLang = %q, want en", p.SourceLang)
	}
	if len(p.Files) != 6 {
		t.Fatalf("expected 6 subtitle files, got %d: %#v", len(p.Files), p.Files)
	}
	if !reflect.DeepEqual(p.Languages, []string{"de", "en", "fr", "ru"}) {
		t.Fatalf("Languages = %v, want [de en fr ru]", p.Languages)
	}

	sources := p.Sources()
	var names []string
	for _, f := range sources {
		names = append(names, filepath.Base(f.Path))
	}
	want := []string{"clip.vtt", "movie.srt", "show.en.srt"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("Sources() = %v, want %v", names, want)
	}

	if !p.HasTranslation("movie", "ru") {
		t.Fatal("HasTranslation(movie, ru) = false, want true")
	}
	if p.HasTranslation("movie", "fr") {
		t.Fatal("HasTranslation(movie, fr) = true, want false")
	}
	if got := len(p.Translations("movie")); got != 2 {
		t.Fatalf("Translations(movie) = %d files, want 2", got)
	}
	if missing := p.Missing("movie", []string{"ru", "it", "en"}); !reflect.DeepEqual(missing, []string{"it"}) {
		t.Fatalf("Missing(movie) = %v, want [it]", missing)
	}
}

func TestOutputPath(t *testing.T) {
	src := SubtitleFile{Path: filepath.Join("/project", "movie.srt"), Base: "movie"}

	got := OutputPath(src, "ru", "")
	want := filepath.Join("/project", "movie.ru.srt")
	if got != want {
		t.Fatalf("OutputPath = %q, want %q", got, want)
	}

	got = OutputPath(src, "ru", "/out")
	want = filepath.Join("/out", "movie.ru.srt")
	if got != want {
		t.Fatalf("OutputPath with dir = %q, want %q", got, want)
	}
}

func TestLoadSubkitFileDefaultsAndValidation(t *testing.T) {
	t.Run("missing file returns nil", func(t *testing.T) {
		dir := t.TempDir()
		sf, err := LoadSubkitFile(dir)
		if err != nil {
			t.Fatalf("LoadSubkitFile error: %v", err)
		}
		if sf != nil {
			t.Fatalf("LoadSubkitFile expected nil, got %#v", sf)
		}
	})

	t.Run("applies defaults and inheritance", func(t *testing.T) {
		dir := t.TempDir()
		yaml := "languages: [ru, de]\n" +
			"targets:\n" +
			"  - name: movie\n" +
			"    path: movie.srt\n" +
			"  - name: show\n" +
			"    path: subtitles/show.vtt\n" +
			"    languages: [fr]\n"
		if err := os.WriteFile(filepath.Join(dir, SubkitFileName), []byte(yaml), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		sf, err := LoadSubkitFile(dir)
		if err != nil {
			t.Fatalf("LoadSubkitFile error: %v", err)
		}
		if sf.SourceLang != "en" {
			t.Fatalf("SourceLang = %q, want en", sf.SourceLang)
		}
		if sf.Provider != "deepl" {
			t.Fatalf("Provider = %q, want deepl", sf.Provider)
		}
		if len(sf.Targets) != 2 {
			t.Fatalf("expected 2 targets, got %d", len(sf.Targets))
		}
		if !reflect.DeepEqual(sf.Targets[0].Languages, []string{"ru", "de"}) {
			t.Fatalf("target[0].Languages = %v, want [ru de]", sf.Targets[0].Languages)
		}
		if sf.Targets[0].SourceLang != "en" {
			t.Fatalf("target[0].SourceLang = %q, want en", sf.Targets[0].SourceLang)
		}
		if !reflect.DeepEqual(sf.Targets[1].Languages, []string{"fr"}) {
			t.Fatalf("target[1].Languages = %v, want [fr]", sf.Targets[1].Languages)
		}
	})

	t.Run("canonicalizes language codes", func(t *testing.T) {
		dir := t.TempDir()
		yaml := "languages: [PT_BR, rus]\n" +
			"targets:\n" +
			"  - name: movie\n" +
			"    path: movie.srt\n"
		if err := os.WriteFile(filepath.Join(dir, SubkitFileName), []byte(yaml), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		sf, err := LoadSubkitFile(dir)
		if err != nil {
			t.Fatalf("LoadSubkitFile error: %v", err)
		}
		if !reflect.DeepEqual(sf.Languages, []string{"pt-BR", "ru"}) {
			t.Fatalf("Languages = %v, want [pt-BR ru]", sf.Languages)
		}
	})

	t.Run("validates required name and path", func(t *testing.T) {
		dir := t.TempDir()
		yaml := "targets:\n  - path: movie.srt\n"
		if err := os.WriteFile(filepath.Join(dir, SubkitFileName), []byte(yaml), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := LoadSubkitFile(dir); err == nil || !strings.Contains(err.Error(), "has no name") {
			t.Fatalf("expected name validation error, got: %v", err)
		}

		yaml = "targets:\n  - name: movie\n"
		if err := os.WriteFile(filepath.Join(dir, SubkitFileName), []byte(yaml), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := LoadSubkitFile(dir); err == nil || !strings.Contains(err.Error(), "has no path") {
			t.Fatalf("expected path validation error, got: %v", err)
		}
	})

	t.Run("rejects unknown language", func(t *testing.T) {
		dir := t.TempDir()
		yaml := "languages: [xx]\ntargets:\n  - name: movie\n    path: movie.srt\n"
		if err := os.WriteFile(filepath.Join(dir, SubkitFileName), []byte(yaml), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := LoadSubkitFile(dir); err == nil || !strings.Contains(err.Error(), "unknown language") {
			t.Fatalf("expected unknown language error, got: %v", err)
		}
	})

	t.Run("rejects non-subtitle target path", func(t *testing.T) {
		dir := t.TempDir()
		yaml := "targets:\n  - name: movie\n    path: movie.mp4\n"
		if err := os.WriteFile(filepath.Join(dir, SubkitFileName), []byte(yaml), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := LoadSubkitFile(dir); err == nil || !strings.Contains(err.Error(), "unsupported subtitle file") {
			t.Fatalf("expected subtitle path error, got: %v", err)
		}
	})
}

func TestSubkitFileResolveAutoDetectAndAllLanguages(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "movie.srt", "movie.de.srt", "movie.ru.srt")

	sf := &SubkitFile{
		SourceLang: "en",
		Targets: []Target{{
			Name:       "movie",
			Path:       "movie.srt",
			SourceLang: "en",
		}},
	}

	resolved, err := sf.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("expected 1 resolved target, got %d", len(resolved))
	}
	rt := resolved[0]
	if !filepath.IsAbs(rt.AbsPath) {
		t.Fatalf("AbsPath is not absolute: %q", rt.AbsPath)
	}
	if !reflect.DeepEqual(rt.Languages, []string{"de", "ru"}) {
		t.Fatalf("resolved languages = %v, want [de ru]", rt.Languages)
	}

	wantOut := filepath.Join(dir, "movie.fr.srt")
	if got := rt.OutputPath("fr"); got != wantOut {
		t.Fatalf("OutputPath(fr) = %q, want %q", got, wantOut)
	}

	all := sf.AllLanguages(dir)
	if !reflect.DeepEqual(all, []string{"de", "ru"}) {
		t.Fatalf("AllLanguages = %v, want [de ru]", all)
	}
}
