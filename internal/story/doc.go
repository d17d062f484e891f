// Package story defines the normalized story records flowing through the
// pipeline and the canonicalization rules behind their content fingerprints.
package story
