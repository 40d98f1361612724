// Package splitter implements deterministic sentence-based text
// segmentation. Chunk boundaries only ever fall between sentences, the
// chunk size is a soft cap, and content with no sentence delimiter
// yields exactly one chunk regardless of chunk size.
package splitter

import "strings"

// delimiter separates sentences. Splitting is on the literal string,
// not a sentence heuristic; compatibility with existing indexes depends
// on this staying fixed.
const delimiter = ". "

// Split breaks content into chunks of roughly chunkSize characters.
//
// Content is split on ". " into sentence fragments and the trailing
// period is restored on every fragment except the last, which keeps
// whatever terminal punctuation the content had. Fragments are then
// greedily accumulated: a chunk is closed when adding the next fragment
// would push the accumulated fragment length past chunkSize and the
// buffer is non-empty. A single fragment longer than chunkSize is never
// split further; it becomes an oversized chunk on its own.
//
// Length accounting sums fragment lengths only; the single spaces that
// join fragments in the emitted chunk text are not counted.
func Split(content string, chunkSize int) []string {
	fragments := strings.Split(content, delimiter)

	var chunks []string
	var current []string
	currentLen := 0

	for i, fragment := range fragments {
		if i != len(fragments)-1 {
			fragment += "."
		}

		if currentLen+len(fragment) > chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = []string{fragment}
			currentLen = len(fragment)
			continue
		}
		current = append(current, fragment)
		currentLen += len(fragment)
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}
