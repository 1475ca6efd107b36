package example

type EventKind string

const (
	KindOpeningTrigger    EventKind = "opening-trigger"
	KindFollowUpTrigger   EventKind = "followup-trigger"
	KindQualifyingMessage EventKind = "qualifying-message"
)

type ParseMode string

const (
	ParseModeMarkdown ParseMode = "Markdown"
)

type EventMessage struct {
	Kind EventKind
}

type SendRequest struct {
	ParseMode ParseMode
}

func bad() {
	m := &EventMessage{}
	m.Kind = "midday-trigger" // want "enum field Kind assigned string literal"

	r := &SendRequest{}
	r.ParseMode = "HTML" // want "enum field ParseMode assigned string literal"
}

func good() {
	m := &EventMessage{}
	m.Kind = KindOpeningTrigger // OK: using constant

	r := &SendRequest{}
	r.ParseMode = ParseModeMarkdown // OK: using constant
}

func alsoGood() {
	// OK: Variable, not literal
	kind := KindFollowUpTrigger
	m := &EventMessage{Kind: kind}
	_ = m
}
