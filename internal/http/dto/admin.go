package dto

// TriggerResponse acknowledges a manually fired trigger.
type TriggerResponse struct {
	Kind     string `json:"kind"`
	Enqueued bool   `json:"enqueued"`
}

// ChatStatusResponse reports the check-in state of one chat for a day.
type ChatStatusResponse struct {
	ChatID        int64   `json:"chat_id"`
	Date          string  `json:"date"`
	ReminderCount int     `json:"reminder_count"`
	LastReminder  *string `json:"last_reminder_at,omitempty"`
	Responded     []int64 `json:"responded_user_ids"`
	Unresponded   []int64 `json:"unresponded_user_ids"`
}
