// Package llm is the model gateway for interviewd.
//
// It issues bounded, budgeted completion calls to an external
// text-generation provider and robustly extracts structured results
// from free-form text. Every failure mode (transport errors, provider
// errors, malformed output, exhausted budget) degrades to a negative
// ok result; nothing propagates as an error past the gateway boundary.
// Callers shed load onto their deterministic heuristic paths.
//
// Call budgets are scoped to the caller (one Budget per interview
// session) and passed into every call, so concurrent sessions sharing
// one gateway never bleed quota into each other.
package llm
