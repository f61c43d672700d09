// Package document implements the editor's document model: a tree of typed
// nodes held in immutable snapshots, mutated only inside transactions.
//
// Node types are registered per type tag in a Registry. Each type supplies
// its own persisted form (JSON), its HTML form (export plus import matchers)
// and, for decorator nodes, a decoration rendered by the presentation layer.
//
// Text offsets are 0-based and counted in runes.
package document
