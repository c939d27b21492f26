package langmeta

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "ru", want: "ru"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		got := Resolve("en-GB")
		if got.Name != "English (UK)" || got.Flag == "" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("normalized match", func(t *testing.T) {
		got := Resolve("pt_br")
		if got.Name != "Português (Brasil)" || got.Flag == "" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("base fallback", func(t *testing.T) {
		got := Resolve("fr-LU")
		if got.Name != "Français" || got.Flag != "🇫🇷" {
			t.Fatalf("unexpected fallback result: %#v", got)
		}
	})

	t.Run("unknown passthrough", func(t *testing.T) {
		got := Resolve("zz-ZZ")
		if got.Name != "zz-ZZ" || got.Flag != "" {
			t.Fatalf("unexpected unknown result: %#v", got)
		}
	})
}

func TestAPICode(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "de", want: "DE", ok: true},
		{in: "pt_br", want: "PT-BR", ok: true},
		{in: " RU ", want: "RU", ok: true},
		{in: "fr-LU", want: "FR-LU", ok: true},
		{in: "tlh", want: "", ok: false},
		{in: "", want: "", ok: false},
	}

	for _, tc := range cases {
		got, ok := APICode(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("APICode(%q) = %q, %v, want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFromISO3(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "eng", want: "en", ok: true},
		{in: "DEU", want: "de", ok: true},
		{in: "dut", want: "nl", ok: true},
		{in: "chi", want: "zh", ok: true},
		{in: "xyz", want: "", ok: false},
	}

	for _, tc := range cases {
		got, ok := FromISO3(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("FromISO3(%q) = %q, %v, want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "eng", want: "en"},
		{in: "pt_br", want: "pt-BR"},
		{in: "RU", want: "ru"},
		{in: "zzz", want: "zzz"},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSupported(t *testing.T) {
	langs := Supported()
	if len(langs) != len(Registry) {
		t.Fatalf("Supported() returned %d codes, registry has %d", len(langs), len(Registry))
	}
	for i := 1; i < len(langs); i++ {
		if langs[i-1] >= langs[i] {
			t.Fatalf("Supported() not sorted: %q before %q", langs[i-1], langs[i])
		}
	}
	if !IsSupported("ja") {
		t.Error("IsSupported(ja) = false")
	}
	if IsSupported("tlh") {
		t.Error("IsSupported(tlh) = true")
	}
}
