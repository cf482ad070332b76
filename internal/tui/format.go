package tui

import (
	"fmt"
	"regexp"
	"strings"

	"docchat/internal/app"
)

var brTag = regexp.MustCompile(`(?i)<br\s*/?>`)

// normalizeContent turns backend line-break markup into real newlines and
// trims trailing whitespace per line.
func normalizeContent(s string) string {
	s = brTag.ReplaceAllString(s, "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// conversationLabel names a conversation on screen. The backend defaults
// omitted names to "New Chat"; unnamed rows get the same label here.
func conversationLabel(c app.Conversation) string {
	if strings.TrimSpace(c.Name) == "" {
		return "New Chat"
	}
	return c.Name
}

// statusLabel maps a document status to its on-screen wording.
func statusLabel(status app.DocumentStatus) string {
	switch status {
	case app.StatusNoDocuments:
		return "no documents"
	case app.StatusWaiting:
		return "ready to process"
	case app.StatusProcessing:
		return "processing…"
	case app.StatusProcessed:
		return "processed"
	case app.StatusError:
		return "processing failed"
	default:
		return string(status)
	}
}

// formatSize renders a byte count the way file browsers do.
func formatSize(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(n)/float64(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// truncate shortens s to max runes, appending an ellipsis when it cuts.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
