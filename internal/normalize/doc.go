// Package normalize canonicalizes raw fetched items into story records and
// removes cross-source duplicates by content fingerprint.
package normalize
