// Package subtitle implements reading and writing of subtitle files
// (SRT and WebVTT) as ordered sequences of timed text cues.
//
// A Cue's ordinal index is its position in decode order and defines the
// output order. Numbering found in the file itself is cosmetic: SRT files
// in the wild carry broken or missing counters, so codecs renumber on
// encode. Timecodes are opaque strings — codecs split the timing line and
// join it back, but never parse or reformat the timestamps themselves, so
// a decode/encode round trip preserves them byte for byte.
package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Cue model
// ---------------------------------------------------------------------------

// Cue is one timed subtitle entry. Index is the ordinal position in the
// original file (0-based, gapless). Start and End are opaque timecode
// strings taken verbatim from the timing line; End also carries any cue
// settings that follow the end timestamp. Cues are treated as immutable
// once decoded — translation produces new Cues.
type Cue struct {
	Index int
	Start string
	End   string
	Text  string
}

// SourceChars returns the total number of characters (code points) of
// source text across cues. This is what character-metered providers bill.
func SourceChars(cues []Cue) int {
	n := 0
	for _, c := range cues {
		n += utf8.RuneCountInString(c.Text)
	}
	return n
}

// ---------------------------------------------------------------------------
// Codec interface and registry
// ---------------------------------------------------------------------------

// Codec converts between raw file bytes and cue sequences.
type Codec interface {
	// Name is the format identifier ("srt", "vtt").
	Name() string
	// Extensions lists file extensions handled by this codec, with dot.
	Extensions() []string
	// Decode parses file content into an ordered cue sequence.
	Decode(data []byte) ([]Cue, error)
	// Encode serialises cues back to file content.
	Encode(cues []Cue) ([]byte, error)
}

var codecs = []Codec{srtCodec{}, vttCodec{}}

// Formats returns the names of all registered codecs.
func Formats() []string {
	names := make([]string, len(codecs))
	for i, c := range codecs {
		names[i] = c.Name()
	}
	return names
}

// ForName returns the codec with the given format name.
func ForName(name string) (Codec, error) {
	for _, c := range codecs {
		if c.Name() == strings.ToLower(name) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown subtitle format %q (supported: %s)",
		name, strings.Join(Formats(), ", "))
}

// ForPath returns the codec matching the file extension of path.
func ForPath(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, c := range codecs {
		for _, e := range c.Extensions() {
			if e == ext {
				return c, nil
			}
		}
	}
	return nil, fmt.Errorf("unsupported subtitle file %q (supported: %s)",
		filepath.Base(path), strings.Join(Formats(), ", "))
}

// ---------------------------------------------------------------------------
// File helpers
// ---------------------------------------------------------------------------

// DecodeFile reads path and decodes it with the codec matching its
// extension. Returns the cues and the codec used.
func DecodeFile(path string) ([]Cue, Codec, error) {
	codec, err := ForPath(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cues, err := codec.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cues, codec, nil
}

// WriteFile encodes cues with codec and writes them to path, creating
// parent directories with 0755 permissions.
func WriteFile(path string, cues []Cue, codec Codec) error {
	data, err := codec.Encode(cues)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// normalizeLines strips a UTF-8 BOM, converts CRLF line endings, and
// splits into lines. Shared by both codecs.
func normalizeLines(data []byte) []string {
	text := strings.TrimPrefix(string(data), "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// splitTiming splits "00:00:01,000 --> 00:00:04,000 X1:40" into the start
// timecode and everything after the arrow (end timecode plus settings).
func splitTiming(line string) (start, end string, ok bool) {
	i := strings.Index(line, "-->")
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+3:]), true
}
