package domain

import "time"

type JobStatus string

const (
	JobQueued   JobStatus = "queued"
	JobRunning  JobStatus = "running"
	JobFinished JobStatus = "finished"
	JobFailed   JobStatus = "failed"
)

func (s JobStatus) Terminal() bool {
	return s == JobFinished || s == JobFailed
}

type Counters struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// RuleSummary is the per-rule breakdown of a job. Rule is 1-based.
type RuleSummary struct {
	Rule    int       `json:"rule"`
	Filters string    `json:"filters"`
	SendAt  time.Time `json:"sendAt"`
	Sent    int       `json:"sent"`
	Skipped int       `json:"skipped"`
	Errors  int       `json:"errors"`
}

// JobSnapshot is a point-in-time copy of a job record, safe to hand to readers.
type JobSnapshot struct {
	ID         string        `json:"id"`
	Status     JobStatus     `json:"status"`
	Logs       []string      `json:"logs"`
	Counters   Counters      `json:"counters"`
	Rules      []RuleSummary `json:"rules"`
	Contacts   int           `json:"contacts"`
	CreatedAt  time.Time     `json:"createdAt"`
	StartedAt  *time.Time    `json:"startedAt,omitempty"`
	FinishedAt *time.Time    `json:"finishedAt,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// PreviewMessage is a message a rule would send, computed without sending.
type PreviewMessage struct {
	Row       int    `json:"row"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
}

type RulePreview struct {
	Rule     int              `json:"rule"`
	Filters  string           `json:"filters"`
	SendAt   time.Time        `json:"sendAt,omitempty"`
	Messages []PreviewMessage `json:"messages"`
	Skipped  []string         `json:"skipped"`
}

type DispatchPreview struct {
	Columns ColumnRoles   `json:"columns"`
	Rules   []RulePreview `json:"rules"`
}

// JobLogs is a window of a job's log starting at From. Next is the offset
// to poll from to receive only newer lines.
type JobLogs struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
	From   int       `json:"from"`
	Next   int       `json:"next"`
	Lines  []string  `json:"lines"`
}
