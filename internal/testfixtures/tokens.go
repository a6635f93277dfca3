package testfixtures

import (
	"fmt"
	"sync"
)

// TokenSequence produces predictable session tokens for tests.
type TokenSequence struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
	issued  []string
}

// NewTokenSequence yields tokens with the given prefix, "token" when empty.
func NewTokenSequence(prefix string) *TokenSequence {
	if prefix == "" {
		prefix = "token"
	}
	return &TokenSequence{prefix: prefix}
}

// Next returns the next token in the sequence.
func (g *TokenSequence) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	token := fmt.Sprintf("%s-%d", g.prefix, g.counter)
	g.issued = append(g.issued, token)
	return token
}

// NextFunc exposes Next as a function suitable for dependency injection.
func (g *TokenSequence) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Issued lists every token handed out so far.
func (g *TokenSequence) Issued() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.issued...)
}

// Last returns the most recent token, or "" before the first call to Next.
func (g *TokenSequence) Last() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.issued) == 0 {
		return ""
	}
	return g.issued[len(g.issued)-1]
}
