package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurcolak/contact-dispatch-service/internal/contacts"
	"github.com/onurcolak/contact-dispatch-service/internal/domain"
)

func TestPreview_ReportsMessagesWithoutSending(t *testing.T) {
	tr := &fakeTransport{}
	d := newTestDispatcher(tr, nil)

	rows := append(weddingRows(), []string{"Dee", "5550004", "Yes", "Yes", "Yes"})
	req := domain.DispatchRequest{
		Table: domain.ContactTable{Headers: weddingHeaders, Rows: rows},
		Rules: []domain.FilterRule{
			{Filters: filters("Mehendi", "yes"), Template: "Hi {name}"},
			{Template: "Hello {Name}"},
		},
	}

	preview, err := d.Preview(req)
	require.NoError(t, err)
	assert.Empty(t, tr.sent())

	assert.Equal(t, 0, preview.Columns.NameIndex)
	assert.Equal(t, 1, preview.Columns.PhoneIndex)
	require.Len(t, preview.Rules, 2)

	first := preview.Rules[0]
	assert.Equal(t, "Mehendi=yes", first.Filters)
	require.Len(t, first.Messages, 2)
	assert.Equal(t, domain.PreviewMessage{Row: 1, Name: "Ann", Phone: "+15550001", Content: "Hi Ann"}, first.Messages[0])
	assert.Equal(t, "Cid", first.Messages[1].Name)
	assert.Equal(t, []string{
		"Row 2 (Bob): rule #1 not matched - Mehendi: expected 'yes', got 'No'",
		"Row 4: phone 5550004 " + contacts.ErrMissingCountryCode.Error() + ", skipping",
	}, first.Skipped)

	assert.Len(t, preview.Rules[1].Messages, 3)
	assert.Len(t, preview.Rules[1].Skipped, 1)
}

func TestPreview_Preconditions(t *testing.T) {
	d := newTestDispatcher(&fakeTransport{}, nil)

	_, err := d.Preview(domain.DispatchRequest{
		Table: domain.ContactTable{Headers: []string{"Phone", "City"}, Rows: [][]string{{"+1", "x"}}},
		Rules: []domain.FilterRule{{Template: "hi"}},
	})

	var pre *PreconditionError
	require.True(t, errors.As(err, &pre))
	assert.ErrorIs(t, err, contacts.ErrNameColumnNotFound)
}
