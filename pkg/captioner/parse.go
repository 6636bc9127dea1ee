package captioner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var strictOptionPattern = regexp.MustCompile(`(?m)^Option\s+(\d{1,2})\s*:\s*(.+?)\s*$`)
var looseOptionPattern = regexp.MustCompile(`Option\s+\d{1,2}\s*:\s*(.+)`)

// ParseOptions extracts exactly count captions from a model response in
// "Option N: ..." format. Lines may arrive out of order; the option number
// decides the slot. When fewer than half of the slots fill, a looser match
// is tried. Remaining gaps are padded with placeholder text that the
// selection layer recognizes and deprioritizes.
func ParseOptions(text string, count int) []string {
	byNumber := make(map[int]string)
	for _, m := range strictOptionPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		body := trimQuotes(m[2])
		if body != "" {
			byNumber[n] = body
		}
	}

	ordered := make([]string, count)
	filled := 0
	for i := 0; i < count; i++ {
		if body, ok := byNumber[i+1]; ok {
			ordered[i] = body
			filled++
		}
	}

	if filled < max(1, count/2) {
		var loose []string
		for _, m := range looseOptionPattern.FindAllStringSubmatch(text, -1) {
			if body := trimQuotes(m[1]); body != "" {
				loose = append(loose, body)
			}
		}
		if len(loose) > count {
			loose = loose[:count]
		}
		ordered = make([]string, count)
		copy(ordered, loose)
	}

	for i, body := range ordered {
		if body == "" {
			ordered[i] = fmt.Sprintf("Funny meme placeholder #%d", i+1)
		}
	}
	return ordered
}

func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}
