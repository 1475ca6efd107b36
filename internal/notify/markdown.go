package notify

import (
	"fmt"
	"strings"
)

// EscapeMarkdown escapes underscores in user-supplied handles so Telegram's
// Markdown parser does not treat them as italics markers.
func EscapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "_", "\\_")
}

// Mention renders a Markdown mention for a participant. Participants with a
// handle get a plain @-mention; the rest get a text-mention deep link, which
// notifies the user even without a username.
func Mention(userID int64, handle string) string {
	if handle != "" {
		return "@" + EscapeMarkdown(handle)
	}
	return fmt.Sprintf("[User %d](tg://user?id=%d)", userID, userID)
}
