// Package rank scores normalized stories with a weighted sum of independent
// factors and selects the bounded top-K. Scoring keeps a per-factor breakdown
// so selections stay explainable and testable.
package rank
