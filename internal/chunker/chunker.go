// Package chunker splits parsed document text into overlapping passages
// sized for embedding and retrieval.
package chunker

import "strings"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Splitter produces bounded, overlapping chunks from document text.
// Splitting is deterministic: the same text always yields the same chunks.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a splitter. Non-positive size or negative overlap fall back to
// the defaults, and overlap is clamped below the chunk size.
func New(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split cuts text into chunks of at most chunkSize characters, each
// overlapping the previous one by the configured overlap. Within a window it
// prefers to break after a paragraph, then a sentence, then a word; it cuts
// mid-word only when the window holds no usable boundary. Empty or
// whitespace-only input yields no chunks.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)

	chunks := make([]string, 0, total/(s.chunkSize-s.overlap)+1)
	start := 0
	for start < total {
		end := start + s.chunkSize
		if end >= total {
			chunks = append(chunks, string(runes[start:total]))
			break
		}

		// A boundary is only usable if it keeps the window advancing past
		// the overlap region; otherwise the loop would stall.
		if b := breakPoint(runes, start+s.overlap+1, end); b > 0 {
			end = b
		}
		chunks = append(chunks, string(runes[start:end]))
		start = end - s.overlap
	}
	return chunks
}

// breakPoint returns the best cut position in runes[lo:hi], scanning for the
// largest semantic boundary: paragraph break, sentence end, then whitespace.
// The cut lands just after the boundary. Returns 0 when none exists.
func breakPoint(runes []rune, lo, hi int) int {
	if lo < 1 {
		lo = 1
	}
	word := 0
	sentence := 0
	for i := hi - 1; i >= lo; i-- {
		r := runes[i]
		if r == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
		if sentence == 0 && isSpace(r) && isSentenceEnd(runes[i-1]) {
			sentence = i + 1
		}
		if word == 0 && isSpace(r) {
			word = i + 1
		}
	}
	if sentence > 0 {
		return sentence
	}
	return word
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
