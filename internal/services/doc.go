// Package services defines the shared error taxonomy and context annotation
// helpers used across pipeline nodes. Stage code tags failures with one of the
// exported sentinel markers so the graph engine and CLI can classify outcomes
// without string matching.
package services
