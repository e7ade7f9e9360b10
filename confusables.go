package glyphsim

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ReadPairs parses a candidate pair list: one pair per line, source and
// target separated by a tab, '#' starting a comment at the beginning of
// a line or after a space. The list order is preserved; the core treats
// its contents as opaque input. The target must be a single character;
// the source may be a short sequence.
func ReadPairs(r io.Reader) ([]ConfusablePair, error) {
	var pairs []ConfusablePair
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected source<TAB>target, got %q", lineNo, line)
		}
		source := strings.TrimSpace(fields[0])
		target := strings.TrimSpace(fields[1])
		if source == "" || target == "" {
			return nil, fmt.Errorf("line %d: empty source or target", lineNo)
		}
		if utf8.RuneCountInString(target) != 1 {
			return nil, fmt.Errorf("line %d: target %q must be a single character", lineNo, target)
		}

		pairs = append(pairs, ConfusablePair{Source: source, Target: target})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pair list: %w", err)
	}
	return pairs, nil
}

// stripComment cuts a '#' comment off a line. '#' only opens a comment
// at the start of the line or after a space, so NUMBER SIGN itself
// remains expressible as a tab-separated source or target.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == '#' && (i == 0 || line[i-1] == ' ') {
			return line[:i]
		}
	}
	return line
}
