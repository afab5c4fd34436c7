// Package chain composes calcium transformers into an ordered pipeline.
//
// Steps are built by type name through a Registry, either directly or from
// a YAML Config. Each active step receives the table produced by the
// previous one; bypassed steps are skipped. A Chain is itself a
// calcium.Transformer, so chains nest.
package chain
