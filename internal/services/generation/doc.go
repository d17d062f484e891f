// Package generation wraps the optional external text-generation
// collaborator behind a narrow Generator interface. Composition and
// tone passes work from templates alone when generation is disabled,
// so every caller must tolerate the noop implementation.
package generation
