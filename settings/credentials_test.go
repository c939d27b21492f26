package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDataDirAndFilePathUseXDGDataHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	wantDir := filepath.Join(tmp, "subkit")
	if dir != wantDir {
		t.Fatalf("DataDir() = %q, want %q", dir, wantDir)
	}

	wantPath := filepath.Join(tmp, "subkit", "auth.json")
	if got := FilePath(); got != wantPath {
		t.Fatalf("FilePath() = %q, want %q", got, wantPath)
	}
}

func TestSaveLoadRemoveLifecycle(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	store := Store{
		"deepl":  {Type: "api", Key: "apikey123456:fx"},
		"openai": {Type: "api", Key: "sk-test", BaseURL: "http://localhost:11434/v1"},
	}

	if err := Save(store); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	path := filepath.Join(tmp, "subkit", "auth.json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat auth.json: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("auth.json mode = %o, want 600", info.Mode().Perm())
	}

	loaded := Load()
	if loaded["deepl"] == nil || loaded["deepl"].Key != "apikey123456:fx" {
		t.Fatalf("Load() missing deepl key: %#v", loaded["deepl"])
	}
	if loaded["openai"] == nil || loaded["openai"].BaseURL != "http://localhost:11434/v1" {
		t.Fatalf("Load() missing openai base URL: %#v", loaded["openai"])
	}

	if err := Remove("deepl"); err != nil {
		t.Fatalf("Remove(deepl) error: %v", err)
	}
	if key, found := GetAPIKey("deepl"); found {
		t.Fatalf("GetAPIKey after remove = %q, want not found", key)
	}
	if got := GetBaseURL("openai"); got != "http://localhost:11434/v1" {
		t.Fatalf("openai entry should remain after removing deepl, got base URL %q", got)
	}

	if err := Remove("missing-provider"); err != nil {
		t.Fatalf("Remove(missing) should be no-op, got: %v", err)
	}

	if err := RemoveAll(); err != nil {
		t.Fatalf("RemoveAll() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("auth.json should be removed, stat err=%v", err)
	}
	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() after RemoveAll should be empty, got=%#v", got)
	}
}

func TestLoadIgnoresCorruptFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir := filepath.Join(tmp, "subkit")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "auth.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() on corrupt file should be empty, got=%#v", got)
	}
}

func TestSetAPIKeyAndClear(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if err := SetAPIKey("deepl", "stored-key"); err != nil {
		t.Fatalf("SetAPIKey() error: %v", err)
	}
	key, found := GetAPIKey("deepl")
	if !found || key != "stored-key" {
		t.Fatalf("GetAPIKey() = %q, %v, want stored-key, true", key, found)
	}

	if err := ClearAPIKey("deepl"); err != nil {
		t.Fatalf("ClearAPIKey() error: %v", err)
	}
	if _, found := GetAPIKey("deepl"); found {
		t.Fatal("key should be gone after ClearAPIKey")
	}
}

func TestResolveAPIKeyPriority(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)
	t.Setenv("SUBKIT_API_KEY", "")
	t.Setenv("DEEPL_API_KEY", "")

	if err := SetAPIKey("deepl", "stored-key"); err != nil {
		t.Fatalf("SetAPIKey() error: %v", err)
	}

	t.Setenv("DEEPL_API_KEY", "env-key")

	if got := ResolveAPIKey("deepl", "flag-key"); got != "flag-key" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := ResolveAPIKey("deepl", ""); got != "env-key" {
		t.Fatalf("provider env should win over store, got %q", got)
	}

	t.Setenv("SUBKIT_API_KEY", "generic-env-key")
	if got := ResolveAPIKey("deepl", ""); got != "generic-env-key" {
		t.Fatalf("SUBKIT_API_KEY should win over provider env, got %q", got)
	}

	t.Setenv("SUBKIT_API_KEY", "")
	t.Setenv("DEEPL_API_KEY", "")
	if got := ResolveAPIKey("deepl", ""); got != "stored-key" {
		t.Fatalf("stored key expected, got %q", got)
	}
}

func TestEnvVarForProviderAndMaskKey(t *testing.T) {
	cases := map[string]string{
		"deepl":   "DEEPL_API_KEY",
		"openai":  "OPENAI_API_KEY",
		"unknown": "",
	}
	for provider, want := range cases {
		if got := EnvVarForProvider(provider); got != want {
			t.Fatalf("EnvVarForProvider(%q) = %q, want %q", provider, got, want)
		}
	}

	if got := MaskKey("short"); got != "****" {
		t.Fatalf("MaskKey(short) = %q, want ****", got)
	}
	if got := MaskKey("12345678"); got != "****" {
		t.Fatalf("MaskKey(8 chars) = %q, want ****", got)
	}
	if got := MaskKey("123456789"); got != "1234...6789" {
		t.Fatalf("MaskKey(9 chars) = %q, want 1234...6789", got)
	}
}
