package srt

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// timestampPattern matches the normalized SRT timestamp HH:MM:SS,mmm. The
// zero-padded layout makes lexical ordering match temporal ordering.
var timestampPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2},\d{3}$`)

// Entry is one timed caption cue. Field tags match the persisted record
// layout.
type Entry struct {
	Index int    `json:"index"`
	Start string `json:"start_time"`
	End   string `json:"end_time"`
	Text  string `json:"text"`
}

// Parse reads SRT content from r and returns the well-formed cues in source
// order. The only possible error is a read failure; malformed cues are
// dropped silently.
func Parse(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read subtitles: %w", err)
	}
	return ParseBytes(data), nil
}

// ParseFile parses the SRT file at path.
func ParseFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	return ParseBytes(data), nil
}

// ParseBytes parses raw SRT content. Cues are blocks of the form
//
//	<index>
//	<start> --> <end>
//	<text lines>
//
// separated by blank lines; the last block needs no trailing separator.
// A block that fails the grammar, or whose end timestamp does not follow its
// start, drops that cue only. Multi-line text is preserved verbatim apart
// from surrounding whitespace.
func ParseBytes(data []byte) []Entry {
	normalized := strings.ReplaceAll(string(data), "\r\n", "\n")
	blocks := splitBlocks(normalized)
	entries := make([]Entry, 0, len(blocks))
	for _, block := range blocks {
		entry, ok := parseBlock(block)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func splitBlocks(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n\n")
}

func parseBlock(block string) (Entry, bool) {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	if len(lines) < 2 {
		return Entry{}, false
	}
	index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || index < 1 {
		return Entry{}, false
	}
	start, end, ok := parseTimingLine(lines[1])
	if !ok {
		return Entry{}, false
	}
	if end <= start {
		return Entry{}, false
	}
	text := strings.TrimSpace(strings.Join(lines[2:], "\n"))
	return Entry{Index: index, Start: start, End: end, Text: text}, true
}

func parseTimingLine(line string) (start, end string, ok bool) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return "", "", false
	}
	start = strings.TrimSpace(parts[0])
	end = strings.TrimSpace(parts[1])
	if !timestampPattern.MatchString(start) || !timestampPattern.MatchString(end) {
		return "", "", false
	}
	return start, end, true
}

// Seconds converts an SRT timestamp to seconds. Both the standard comma and
// the period millisecond separator are accepted.
func Seconds(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// JoinText concatenates cue text in order, one cue per line.
func JoinText(entries []Entry) string {
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts = append(parts, entry.Text)
	}
	return strings.Join(parts, "\n")
}

// FormatBlocks renders cues in the bracketed timed-text layout used by the
// plain-text artifacts:
//
//	[<start> --> <end>]
//	<text>
func FormatBlocks(entries []Entry) string {
	var sb strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&sb, "[%s --> %s]\n", entry.Start, entry.End)
		sb.WriteString(entry.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
