package editor

import (
	"sort"

	"github.com/bitbriks/bitbrik/document"
)

// ChangeEvent reports a committed state the model has not rendered before.
type ChangeEvent struct {
	State     *document.State
	PrevState *document.State

	// Text is the plain text content of the new state.
	Text string
}

func buildChangeEvent(prev, next *document.State) ChangeEvent {
	return ChangeEvent{State: next, PrevState: prev, Text: next.TextContent(document.RootKey)}
}

// changeMsg wakes the model after a commit it did not dispatch itself.
type changeMsg struct{}

func sortedKeys(m map[document.NodeKey]*mounted) []document.NodeKey {
	keys := make([]document.NodeKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
