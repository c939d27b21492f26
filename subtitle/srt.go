package subtitle

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// SubRip (.srt)
//
// Blocks separated by blank lines:
//
//	1
//	00:00:01,000 --> 00:00:04,000
//	First line of text
//	Second line of text
//
// The leading counter is optional on decode (files with missing or broken
// numbering are common) and always regenerated on encode.
// ---------------------------------------------------------------------------

type srtCodec struct{}

func (srtCodec) Name() string         { return "srt" }
func (srtCodec) Extensions() []string { return []string{".srt"} }

func (srtCodec) Decode(data []byte) ([]Cue, error) {
	lines := normalizeLines(data)

	var cues []Cue
	i := 0
	for i < len(lines) {
		// Skip blank lines between blocks.
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}

		// Collect one block.
		start := i
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			i++
		}
		block := lines[start:i]

		cue, ok := parseSRTBlock(block, len(cues))
		if !ok {
			// Stray counter or junk between blocks — ignore it.
			continue
		}
		cues = append(cues, cue)
	}

	if len(cues) == 0 {
		return nil, fmt.Errorf("no subtitle cues found")
	}
	return cues, nil
}

// parseSRTBlock parses one blank-line-delimited block. index is the
// ordinal position assigned to the cue; the file's own counter is ignored.
func parseSRTBlock(block []string, index int) (Cue, bool) {
	// Optional counter line before the timing line.
	if len(block) > 1 && isCounter(block[0]) && strings.Contains(block[1], "-->") {
		block = block[1:]
	}

	start, end, ok := splitTiming(block[0])
	if !ok {
		return Cue{}, false
	}

	return Cue{
		Index: index,
		Start: start,
		End:   end,
		Text:  strings.Join(block[1:], "\n"),
	}, true
}

func isCounter(line string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(line))
	return err == nil
}

func (srtCodec) Encode(cues []Cue) ([]byte, error) {
	if len(cues) == 0 {
		return nil, fmt.Errorf("no cues to encode")
	}

	var buf bytes.Buffer
	for i, c := range cues {
		if i > 0 {
			buf.WriteByte('\n')
		}
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
