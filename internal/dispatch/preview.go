package dispatch

import (
	"github.com/onurcolak/contact-dispatch-service/internal/domain"
)

// Preview evaluates req the way Run would, rule by rule and row by row, but
// only reports the messages instead of sending them. Send times are ignored.
func (d *Dispatcher) Preview(req domain.DispatchRequest) (*domain.DispatchPreview, error) {
	roles, err := Validate(req)
	if err != nil {
		return nil, err
	}

	out := &domain.DispatchPreview{
		Columns: roles,
		Rules:   make([]domain.RulePreview, 0, len(req.Rules)),
	}

	for i, rule := range req.Rules {
		rp := domain.RulePreview{
			Rule:     i + 1,
			Filters:  rule.Filters.String(),
			SendAt:   rule.SendAt,
			Messages: []domain.PreviewMessage{},
			Skipped:  []string{},
		}

		for r, row := range req.Table.Rows {
			c, skipLine := d.evaluate(i, rule, r+1, row, req.Table.Headers, roles)
			if skipLine != "" {
				rp.Skipped = append(rp.Skipped, skipLine)
				continue
			}

			rp.Messages = append(rp.Messages, domain.PreviewMessage{
				Row:       r + 1,
				Name:      c.name,
				Phone:     c.phone,
				Content:   c.message,
				Truncated: c.truncated,
			})
		}

		out.Rules = append(out.Rules, rp)
	}

	return out, nil
}
