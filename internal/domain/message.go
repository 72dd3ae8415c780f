package domain

import "time"

type MessageStatus string

const (
	StatusSent   MessageStatus = "sent"
	StatusFailed MessageStatus = "failed"
)

// DispatchMessage is one send attempt made by a job, as stored in the audit table.
type DispatchMessage struct {
	ID          int64         `db:"id" json:"id"`
	JobID       string        `db:"job_id" json:"jobId"`
	RuleIndex   int           `db:"rule_index" json:"ruleIndex"`
	RowIndex    int           `db:"row_index" json:"rowIndex"`
	ContactName string        `db:"contact_name" json:"contactName"`
	PhoneNumber string        `db:"phone_number" json:"phoneNumber"`
	Content     string        `db:"content" json:"content"`
	Status      MessageStatus `db:"status" json:"status"`
	MessageID   *string       `db:"message_id" json:"messageId,omitempty"`
	Error       *string       `db:"error" json:"error,omitempty"`
	AttemptedAt time.Time     `db:"attempted_at" json:"attemptedAt"`
}

type WebhookRequest struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

type WebhookResponse struct {
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}
