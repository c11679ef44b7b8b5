package runtime

import "sync"

// RollingLog keeps the most recent broadcast texts, oldest first.
// It only feeds summarization and is never persisted.
type RollingLog struct {
	mu       sync.Mutex
	capacity int
	texts    []string
}

func NewRollingLog(capacity int) *RollingLog {
	if capacity < 1 {
		capacity = 1
	}
	return &RollingLog{capacity: capacity, texts: make([]string, 0, capacity)}
}

// Append adds text and evicts the oldest entry once the bound is exceeded.
func (l *RollingLog) Append(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.texts) == l.capacity {
		copy(l.texts, l.texts[1:])
		l.texts = l.texts[:len(l.texts)-1]
	}
	l.texts = append(l.texts, text)
}

// Last returns a copy of at most n most recent texts, oldest first.
func (l *RollingLog) Last(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.texts) {
		n = len(l.texts)
	}
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, l.texts[len(l.texts)-n:])
	return out
}

func (l *RollingLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.texts)
}

func (l *RollingLog) Capacity() int { return l.capacity }
