package subtitle

import (
	"bytes"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// WebVTT (.vtt)
//
//	WEBVTT
//
//	1
//	00:00:01.000 --> 00:00:04.000 align:start
//	First line of text
//
// Cue identifiers are optional. Settings after the end timestamp are kept
// on the End string and written back verbatim. NOTE, STYLE and REGION
// blocks are skipped.
// ---------------------------------------------------------------------------

type vttCodec struct{}

func (vttCodec) Name() string         { return "vtt" }
func (vttCodec) Extensions() []string { return []string{".vtt", ".webvtt"} }

func (vttCodec) Decode(data []byte) ([]Cue, error) {
	lines := normalizeLines(data)

	// The header line may carry trailing text ("WEBVTT - description").
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) || !strings.HasPrefix(strings.TrimSpace(lines[i]), "WEBVTT") {
		return nil, fmt.Errorf("missing WEBVTT header")
	}
	i++

	var cues []Cue
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}

		start := i
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			i++
		}
		block := lines[start:i]

		first := strings.TrimSpace(block[0])
		if strings.HasPrefix(first, "NOTE") || first == "STYLE" || first == "REGION" {
			continue
		}

		// Optional cue identifier before the timing line.
		if !strings.Contains(block[0], "-->") {
			if len(block) < 2 || !strings.Contains(block[1], "-->") {
				continue
			}
			block = block[1:]
		}

		startTC, endTC, ok := splitTiming(block[0])
		if !ok {
			continue
		}
		cues = append(cues, Cue{
			Index: len(cues),
			Start: startTC,
			End:   endTC,
			Text:  strings.Join(block[1:], "\n"),
		})
	}

	if len(cues) == 0 {
		return nil, fmt.Errorf("no subtitle cues found")
	}
	return cues, nil
}

func (vttCodec) Encode(cues []Cue) ([]byte, error) {
	if len(cues) == 0 {
		return nil, fmt.Errorf("no cues to encode")
	}

	var buf bytes.Buffer
	buf.WriteString("WEBVTT\n")
	for i, c := range cues {
		buf.WriteByte('\n')
		fmt.Fprintf(&buf, "%d\n", i+1)
		buf.WriteString(c.Start)
		buf.WriteString(" --> ")
		buf.WriteString(c.End)
		buf.WriteByte('\n')
		buf.WriteString(c.Text)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
