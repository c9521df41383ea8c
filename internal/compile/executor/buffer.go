package executor

import (
	"fmt"
	"sync"
	"unicode/utf8"
)

const undecodableStderr = "Failed to decode stderr output"

// cappedBuffer keeps the first max bytes written to it and counts the rest.
type cappedBuffer struct {
	mu      sync.Mutex
	limit   int
	buf     []byte
	omitted int64
}

func newCappedBuffer(limit int) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	room := min(b.limit-len(b.buf), len(p))
	b.buf = append(b.buf, p[:room]...)
	b.omitted += int64(len(p) - room)
	return len(p), nil
}

// Text returns the captured bytes as text. Truncation may split a multi-byte
// rune, so only the kept prefix up to the last full rune is checked.
func (b *cappedBuffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.buf
	if b.omitted > 0 {
		for len(kept) > 0 && !utf8.FullRune(kept[lastRuneStart(kept):]) {
			kept = kept[:lastRuneStart(kept)]
		}
	}
	text := string(kept)
	if !utf8.Valid(kept) {
		text = undecodableStderr
	}
	if b.omitted > 0 {
		return fmt.Sprintf("%s\n... (%d bytes omitted)", text, b.omitted+int64(len(b.buf)-len(kept)))
	}
	return text
}

func lastRuneStart(p []byte) int {
	for i := len(p) - 1; i >= 0 && i >= len(p)-utf8.UTFMax; i-- {
		if utf8.RuneStart(p[i]) {
			return i
		}
	}
	return len(p) - 1
}
