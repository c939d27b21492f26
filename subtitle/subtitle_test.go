package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// SRT decoding
// ---------------------------------------------------------------------------

func TestSRTDecode_Basic(t *testing.T) {
	data := []byte("1\n00:00:01,000 --> 00:00:04,000\nHello\n\n2\n00:00:05,000 --> 00:00:07,500\nWorld\n")
	cues, err := srtCodec{}.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}
	if cues[0].Index != 0 || cues[1].Index != 1 {
		t.Errorf("indices = %d, %d, want 0, 1", cues[0].Index, cues[1].Index)
	}
	if cues[0].Start != "00:00:01,000" || cues[0].End != "00:00:04,000" {
		t.Errorf("timing = %q --> %q", cues[0].Start, cues[0].End)
	}
	if cues[1].Text != "World" {
		t.Errorf("text = %q, want World", cues[1].Text)
	}
}

func TestSRTDecode_MultilineText(t *testing.T) {
	data := []byte("1\n00:00:01,000 --> 00:00:04,000\nFirst line\nSecond line\n")
	cues, err := srtCodec{}.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if cues[0].Text != "First line\nSecond line" {
		t.Errorf("text = %q", cues[0].Text)
	}
}

func TestSRTDecode_CRLFAndBOM(t *testing.T) {
	data := []byte("\uFEFF1\r\n00:00:01,000 --> 00:00:04,000\r\nHello\r\n\r\n")
	cues, err := srtCodec{}.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 1 {
		t.Fatalf("got %d cues, want 1", len(cues))
	}
	if cues[0].Text != "Hello" {
		t.Errorf("text = %q, want Hello", cues[0].Text)
	}
}

func TestSRTDecode_MissingCounters(t *testing.T) {
	data := []byte("00:00:01,000 --> 00:00:04,000\nOne\n\n00:00:05,000 --> 00:00:07,000\nTwo\n")
	cues, err := srtCodec{}.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}
	if cues[0].Index != 0 || cues[1].Index != 1 {
		t.Errorf("indices = %d, %d", cues[0].Index, cues[1].Index)
	}
}

func TestSRTDecode_BrokenNumberingIsIgnored(t *testing.T) {
	// Counters 7 and 3 out of order — ordinal indices still 0, 1.
	data := []byte("7\n00:00:01,000 --> 00:00:04,000\nOne\n\n3\n00:00:05,000 --> 00:00:07,000\nTwo\n")
	cues, err := srtCodec{}.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if cues[0].Index != 0 || cues[1].Index != 1 {
		t.Errorf("indices = %d, %d, want 0, 1", cues[0].Index, cues[1].Index)
	}
}

func TestSRTDecode_NumericText(t *testing.T) {
	// A cue whose text is itself a number must not be eaten as a counter.
	data := []byte("1\n00:00:01,000 --> 00:00:04,000\n42\n")
	cues, err := srtCodec{}.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if cues[0].Text != "42" {
		t.Errorf("text = %q, want 42", cues[0].Text)
	}
}

func TestSRTDecode_Empty(t *testing.T) {
	if _, err := (srtCodec{}).Decode([]byte("")); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := (srtCodec{}).Decode([]byte("no timing lines here\n")); err == nil {
		t.Error("expected error for input without cues")
	}
}

// ---------------------------------------------------------------------------
// SRT encoding
// ---------------------------------------------------------------------------

func TestSRTEncode_RoundTripPreservesTimings(t *testing.T) {
	src := "1\n00:00:01,000 --> 00:00:04,000\nHello\n\n2\n00:00:05,250 --> 00:00:07,500\nWorld\n"
	cues, err := srtCodec{}.Decode([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	out, err := srtCodec{}.Encode(cues)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != src {
		t.Errorf("round-trip failed:\ngot:  %q\nwant: %q", string(out), src)
	}
}

func TestSRTEncode_Renumbers(t *testing.T) {
	cues := []Cue{
		{Index: 0, Start: "00:00:01,000", End: "00:00:02,000", Text: "A"},
		{Index: 1, Start: "00:00:03,000", End: "00:00:04,000", Text: "B"},
	}
	out, err := srtCodec{}.Encode(cues)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(out), "1\n") || !strings.Contains(string(out), "\n2\n") {
		t.Errorf("encode did not renumber:\n%s", out)
	}
}

// ---------------------------------------------------------------------------
// VTT
// ---------------------------------------------------------------------------

func TestVTTDecode_Basic(t *testing.T) {
	data := []byte("WEBVTT\n\n1\n00:00:01.000 --> 00:00:04.000\nHello\n\n00:00:05.000 --> 00:00:07.000\nWorld\n")
	cues, err := vttCodec{}.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}
	if cues[0].Start != "00:00:01.000" {
		t.Errorf("start = %q", cues[0].Start)
	}
	if cues[1].Text != "World" {
		t.Errorf("text = %q, want World", cues[1].Text)
	}
}

func TestVTTDecode_MissingHeader(t *testing.T) {
	data := []byte("00:00:01.000 --> 00:00:04.000\nHello\n")
	if _, err := (vttCodec{}).Decode(data); err == nil {
		t.Error("expected error for missing WEBVTT header")
	}
}

func TestVTTDecode_KeepsCueSettings(t *testing.T) {
	data := []byte("WEBVTT\n\n00:00:01.000 --> 00:00:04.000 align:start line:0\nHello\n")
	cues, err := vttCodec{}.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if cues[0].End != "00:00:04.000 align:start line:0" {
		t.Errorf("end = %q, settings lost", cues[0].End)
	}
}

func TestVTTDecode_SkipsNoteAndStyle(t *testing.T) {
	data := []byte("WEBVTT\n\nNOTE a comment\nspanning lines\n\nSTYLE\n::cue { color: red }\n\n00:00:01.000 --> 00:00:02.000\nHello\n")
	cues, err := vttCodec{}.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 1 {
		t.Fatalf("got %d cues, want 1", len(cues))
	}
	if cues[0].Text != "Hello" {
		t.Errorf("text = %q", cues[0].Text)
	}
}

func TestVTTEncode_Header(t *testing.T) {
	cues := []Cue{{Index: 0, Start: "00:00:01.000", End: "00:00:02.000", Text: "A"}}
	out, err := vttCodec{}.Encode(cues)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(out), "WEBVTT\n\n") {
		t.Errorf("missing header:\n%s", out)
	}
}

func TestVTTRoundTrip(t *testing.T) {
	src := "WEBVTT\n\n1\n00:00:01.000 --> 00:00:04.000\nHello\n\n2\n00:00:05.000 --> 00:00:07.000\nWorld\n"
	cues, err := vttCodec{}.Decode([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	out, err := vttCodec{}.Encode(cues)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != src {
		t.Errorf("round-trip failed:\ngot:  %q\nwant: %q", string(out), src)
	}
}

// ---------------------------------------------------------------------------
// Registry and helpers
// ---------------------------------------------------------------------------

func TestForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"movie.srt", "srt", false},
		{"movie.ru.SRT", "srt", false},
		{"movie.vtt", "vtt", false},
		{"movie.webvtt", "vtt", false},
		{"movie.ass", "", true},
		{"movie", "", true},
	}
	for _, tc := range tests {
		c, err := ForPath(tc.path)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ForPath(%q): expected error", tc.path)
			}
			continue
		}
		if err != nil {
			t.Errorf("ForPath(%q): %v", tc.path, err)
			continue
		}
		if c.Name() != tc.want {
			t.Errorf("ForPath(%q) = %s, want %s", tc.path, c.Name(), tc.want)
		}
	}
}

func TestForName(t *testing.T) {
	if _, err := ForName("srt"); err != nil {
		t.Errorf("ForName(srt): %v", err)
	}
	if _, err := ForName("nope"); err == nil {
		t.Error("ForName(nope): expected error")
	}
}

func TestSourceChars(t *testing.T) {
	cues := []Cue{
		{Text: "Hello"},
		{Text: "Привет"},
	}
	if got := SourceChars(cues); got != 11 {
		t.Errorf("SourceChars = %d, want 11", got)
	}
}

func TestDecodeFileAndWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movie.srt")
	src := "1\n00:00:01,000 --> 00:00:04,000\nHello\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	cues, codec, err := DecodeFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if codec.Name() != "srt" {
		t.Errorf("codec = %s, want srt", codec.Name())
	}
	if len(cues) != 1 {
		t.Fatalf("got %d cues, want 1", len(cues))
	}

	out := filepath.Join(dir, "sub", "movie.ru.srt")
	if err := WriteFile(out, cues, codec); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != src {
		t.Errorf("written file = %q, want %q", string(data), src)
	}
}
