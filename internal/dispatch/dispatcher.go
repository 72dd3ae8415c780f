// Package dispatch runs one job: it waits for each rule's send time, matches
// every contact against the rule and hands matched messages to the transport.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/onurcolak/contact-dispatch-service/internal/contacts"
	"github.com/onurcolak/contact-dispatch-service/internal/domain"
	"github.com/onurcolak/contact-dispatch-service/internal/jobs"
	"github.com/onurcolak/contact-dispatch-service/pkg/logger"
)

var (
	ErrNoRules    = errors.New("no filter rules configured")
	ErrNoContacts = errors.New("contact table has no rows")
	ErrCancelled  = errors.New("job cancelled")
)

// PreconditionError is returned before any message is sent when the request
// cannot be dispatched at all.
type PreconditionError struct {
	Err error
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Err.Error()
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

type transport interface {
	SendMessage(ctx context.Context, phoneNumber, content string) (*domain.WebhookResponse, error)
}

type messageRecorder interface {
	Create(ctx context.Context, msg *domain.DispatchMessage) error
}

type metricsSink interface {
	MessageSent(d time.Duration)
	MessageFailed(d time.Duration)
	MessageSkipped()
	RuleWaited(d time.Duration)
}

type Config struct {
	// WaitTime is slept after every successful send, including the last one
	// of a rule.
	WaitTime         time.Duration
	PhonePolicy      contacts.PhonePolicy
	MaxContentLength int
}

type Dispatcher struct {
	transport transport
	recorder  messageRecorder
	metrics   metricsSink
	cfg       Config

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewDispatcher builds a Dispatcher. recorder and metrics are optional.
func NewDispatcher(t transport, recorder messageRecorder, metrics metricsSink, cfg Config) *Dispatcher {
	return &Dispatcher{
		transport: t,
		recorder:  recorder,
		metrics:   metrics,
		cfg:       cfg,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// sleepContext blocks for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Validate checks the request and resolves its column roles.
func Validate(req domain.DispatchRequest) (domain.ColumnRoles, error) {
	if len(req.Rules) == 0 {
		return domain.ColumnRoles{}, &PreconditionError{Err: ErrNoRules}
	}
	if len(req.Table.Rows) == 0 {
		return domain.ColumnRoles{}, &PreconditionError{Err: ErrNoContacts}
	}

	roles, err := contacts.ResolveColumns(req.Table.Headers)
	if err != nil {
		return domain.ColumnRoles{}, &PreconditionError{Err: err}
	}
	return roles, nil
}

// Run processes every rule of req in order and writes progress and a final
// summary into job. The caller owns the job status transitions. A non-nil
// error means the job did not complete; counters and logs written so far
// stay in place.
func (d *Dispatcher) Run(ctx context.Context, job *jobs.Record, req domain.DispatchRequest) error {
	job.Log("Starting send job...")

	roles, err := Validate(req)
	if err != nil {
		return err
	}

	headers := req.Table.Headers
	rows := req.Table.Rows

	job.Logf("Headers: %s", strings.Join(headers, ", "))
	job.Logf("Name column detected at index %d: '%s'", roles.NameIndex, headers[roles.NameIndex])
	job.Logf("Phone column detected at index %d: '%s'", roles.PhoneIndex, headers[roles.PhoneIndex])
	job.Logf("Phone policy: %s", d.cfg.PhonePolicy)
	job.Logf("Total contacts: %d", len(rows))
	job.Logf("Total filter rules: %d", len(req.Rules))

	for i, rule := range req.Rules {
		if ctx.Err() != nil {
			return fmt.Errorf("%w before rule #%d", ErrCancelled, i+1)
		}

		if err := d.waitForRule(ctx, job, i, rule); err != nil {
			return err
		}

		job.Logf("Rule #%d (%s): checking %d contacts", i+1, describe(rule.Filters), len(rows))

		for r, row := range rows {
			if ctx.Err() != nil {
				return fmt.Errorf("%w during rule #%d at row %d", ErrCancelled, i+1, r+1)
			}

			if !d.processContact(ctx, job, i, rule, r+1, row, headers, roles) {
				continue
			}

			if err := d.sleep(ctx, d.cfg.WaitTime); err != nil {
				return fmt.Errorf("%w during rule #%d at row %d", ErrCancelled, i+1, r+1)
			}
		}

		rs := job.RuleSummaries()[i]
		job.Logf("Rule #%d done: %d sent, %d skipped, %d errors", i+1, rs.Sent, rs.Skipped, rs.Errors)
	}

	d.writeSummary(job, len(rows))
	return nil
}

func (d *Dispatcher) waitForRule(ctx context.Context, job *jobs.Record, idx int, rule domain.FilterRule) error {
	if rule.SendAt.IsZero() {
		job.Logf("Rule #%d has no send time, sending now", idx+1)
		return nil
	}

	delay := rule.SendAt.Sub(d.now())
	if delay <= 0 {
		job.Logf("Rule #%d send time %s has passed, sending now", idx+1, rule.SendAt.Format(time.RFC3339))
		return nil
	}

	job.Logf("Rule #%d scheduled for %s, waiting %s", idx+1, rule.SendAt.Format(time.RFC3339), delay.Round(time.Second))

	start := d.now()
	if err := d.sleep(ctx, delay); err != nil {
		return fmt.Errorf("%w while waiting for rule #%d", ErrCancelled, idx+1)
	}
	if d.metrics != nil {
		d.metrics.RuleWaited(d.now().Sub(start))
	}

	return nil
}

// processContact handles one row under one rule and reports whether a
// message was sent.
func (d *Dispatcher) processContact(
	ctx context.Context,
	job *jobs.Record,
	ruleIdx int,
	rule domain.FilterRule,
	rowNum int,
	row, headers []string,
	roles domain.ColumnRoles,
) bool {
	c, skipLine := d.evaluate(ruleIdx, rule, rowNum, row, headers, roles)
	if skipLine != "" {
		d.skip(job, ruleIdx, "%s", skipLine)
		return false
	}
	name, phone, message := c.name, c.phone, c.message

	if c.truncated {
		job.Logf("Row %d (%s): message exceeds %d bytes, truncated", rowNum, name, d.cfg.MaxContentLength)
	}

	job.Logf("Row %d (%s): rule #%d matched, sending to %s", rowNum, name, ruleIdx+1, phone)

	start := d.now()
	resp, err := d.send(ctx, phone, message)
	elapsed := d.now().Sub(start)

	audit := &domain.DispatchMessage{
		JobID:       job.ID(),
		RuleIndex:   ruleIdx + 1,
		RowIndex:    rowNum,
		ContactName: name,
		PhoneNumber: phone,
		Content:     message,
		AttemptedAt: start,
	}

	if err != nil {
		job.Count(ruleIdx, jobs.OutcomeError)
		job.Logf("Row %d (%s): error sending rule #%d message: %v", rowNum, name, ruleIdx+1, err)
		if d.metrics != nil {
			d.metrics.MessageFailed(elapsed)
		}

		errText := err.Error()
		audit.Status = domain.StatusFailed
		audit.Error = &errText
		d.record(ctx, audit)
		return false
	}

	job.Count(ruleIdx, jobs.OutcomeSent)
	job.Logf("Row %d (%s): rule #%d message sent", rowNum, name, ruleIdx+1)
	if d.metrics != nil {
		d.metrics.MessageSent(elapsed)
	}

	audit.Status = domain.StatusSent
	if resp != nil && resp.MessageID != "" {
		id := resp.MessageID
		audit.MessageID = &id
	}
	d.record(ctx, audit)

	return true
}

type candidate struct {
	name      string
	phone     string
	message   string
	truncated bool
}

// evaluate runs the row checks and the rule match for one contact. When the
// contact is skipped the returned string is the log line explaining why.
func (d *Dispatcher) evaluate(
	ruleIdx int,
	rule domain.FilterRule,
	rowNum int,
	row, headers []string,
	roles domain.ColumnRoles,
) (candidate, string) {
	nameCell, okName := domain.Cell(row, roles.NameIndex)
	phoneCell, okPhone := domain.Cell(row, roles.PhoneIndex)
	if !okName || !okPhone {
		return candidate{}, fmt.Sprintf("Row %d: invalid row format, skipping", rowNum)
	}

	name := strings.TrimSpace(nameCell)
	phone := strings.TrimSpace(phoneCell)
	if name == "" || phone == "" {
		return candidate{}, fmt.Sprintf("Row %d: missing name or phone, skipping", rowNum)
	}

	normalized, err := d.cfg.PhonePolicy.Normalize(phone)
	if err != nil {
		return candidate{}, fmt.Sprintf("Row %d: phone %s %v, skipping", rowNum, phone, err)
	}

	outcome := contacts.Match(row, headers, rule)
	if !outcome.Matched {
		return candidate{}, fmt.Sprintf("Row %d (%s): rule #%d not matched - %s: %s",
			rowNum, name, ruleIdx+1, outcome.FailedCategory, outcome.Reason)
	}

	message := contacts.RenderMessage(rule.Template, name)
	truncated, cut := contacts.Truncate(message, d.cfg.MaxContentLength)

	return candidate{name: name, phone: normalized, message: truncated, truncated: cut}, ""
}

// send calls the transport, turning a panic into an ordinary error so one
// bad send never takes the job down.
func (d *Dispatcher) send(ctx context.Context, phone, message string) (resp *domain.WebhookResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport panic: %v", r)
		}
	}()

	return d.transport.SendMessage(ctx, phone, message)
}

func (d *Dispatcher) skip(job *jobs.Record, ruleIdx int, format string, v ...any) {
	job.Count(ruleIdx, jobs.OutcomeSkipped)
	job.Logf(format, v...)
	if d.metrics != nil {
		d.metrics.MessageSkipped()
	}
}

func (d *Dispatcher) record(ctx context.Context, msg *domain.DispatchMessage) {
	if d.recorder == nil {
		return
	}
	// A message that went out is recorded even if the job was cancelled meanwhile.
	if err := d.recorder.Create(context.WithoutCancel(ctx), msg); err != nil {
		logger.Warnf("Job %s: failed to store dispatch record for row %d: %v", msg.JobID, msg.RowIndex, err)
	}
}

const summaryRule = "============================================================"

// SummaryLines is the number of lines writeSummary appends for n rules.
func SummaryLines(n int) int {
	return 8 + n
}

func (d *Dispatcher) writeSummary(job *jobs.Record, total int) {
	c := job.Counters()

	job.Log(summaryRule)
	job.Log("SUMMARY REPORT")
	job.Logf("Total contacts processed: %d", total)
	job.Logf("Messages sent: %d", c.Sent)
	job.Logf("Skipped: %d", c.Skipped)
	job.Logf("Errors: %d", c.Errors)
	job.Log("RULE BREAKDOWN:")
	for _, rs := range job.RuleSummaries() {
		job.Logf("  Rule #%d (%s): %d sent, %d skipped, %d errors",
			rs.Rule, describeString(rs.Filters), rs.Sent, rs.Skipped, rs.Errors)
	}
	job.Log(summaryRule)
}

func describe(f domain.Filters) string {
	return describeString(f.String())
}

func describeString(s string) string {
	if s == "" {
		return "all contacts"
	}
	return s
}
