// Package script turns selected stories into a narrated briefing draft.
// The analyzer derives per-story impact metadata, the composer renders a
// three-part structure from a registered template, and the enhancer
// passes (tone, transitions, call to action) refine the rendered text.
// Enhancers are idempotent so the regeneration loop can re-apply them
// to a corrected draft without drift.
package script
