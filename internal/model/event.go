package model

// EventKind discriminates the inbound events the worker consumes. Triggers
// come from the cron scheduler (or the manual trigger surface); qualifying
// messages come from the chat transport.
type EventKind string

const (
	KindOpeningTrigger    EventKind = "opening-trigger"
	KindFollowUpTrigger   EventKind = "followup-trigger"
	KindQualifyingMessage EventKind = "qualifying-message"
)

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	switch k {
	case KindOpeningTrigger, KindFollowUpTrigger, KindQualifyingMessage:
		return true
	}
	return false
}
