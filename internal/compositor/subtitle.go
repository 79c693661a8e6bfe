package compositor

import "strings"

// subtitleChunkSize is the number of words shown at once. Short groups keep
// the burned-in captions readable at vertical-video sizes.
const subtitleChunkSize = 6

// SplitSubtitle breaks narration text into fixed-size word groups.
func SplitSubtitle(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var chunks []string
	for i := 0; i < len(words); i += subtitleChunkSize {
		end := i + subtitleChunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// SubtitleChunk picks the group shown at the given local progress (0..1):
// index floor(progress * groups), clamped to the final group.
func SubtitleChunk(text string, progress float64) string {
	chunks := SplitSubtitle(text)
	if len(chunks) == 0 {
		return ""
	}
	idx := int(progress * float64(len(chunks)))
	if idx >= len(chunks) {
		idx = len(chunks) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return chunks[idx]
}
