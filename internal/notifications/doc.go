// Package notifications delivers run milestones via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic from the
// run configuration and degrades to a no-op when no topic is set.
// Per-event switches let operators mute completion chatter while
// keeping escalation alerts. Pipeline code depends only on the simple
// Service interface.
package notifications
