package interaction

import (
	"strings"
)

const fence = "```"

// Extract returns the JSON payload of a model reply: the body of the first
// fenced block tagged json or untagged, or the whole text when it is bare JSON.
// Blocks tagged with another language are skipped.
func Extract(text string) (string, bool) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	inBlock, capture := false, false
	var body []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, fence) {
			if capture {
				body = append(body, line)
			}
			continue
		}
		if inBlock {
			if capture {
				payload := strings.TrimSpace(strings.Join(body, "\n"))
				return payload, payload != ""
			}
			inBlock = false
			continue
		}
		inBlock = true
		info := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, fence)))
		capture = info == "" || info == "json"
	}

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		return trimmed, true
	}
	return "", false
}
