// Package ingest implements the source adapters that fetch raw candidate
// stories and the bounded concurrent fan-out that runs them. Adapter failures
// are local: the fan-out always returns a result slot per configured source so
// the normalizer can proceed with partial results.
package ingest
