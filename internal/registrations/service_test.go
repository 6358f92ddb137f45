package registrations

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dexabrain/event-backend/config"
	"github.com/dexabrain/event-backend/internal/emails"
	"github.com/dexabrain/event-backend/internal/mailer"
	"github.com/dexabrain/event-backend/internal/models"
	"github.com/dexabrain/event-backend/internal/newsletter"
	"github.com/dexabrain/event-backend/internal/store"
)

// fakeDispatcher records every message and fails sends to the addresses
// listed in failFor.
type fakeDispatcher struct {
	messages []mailer.Message
	failFor  map[string]bool
}

func (d *fakeDispatcher) Send(_ context.Context, msg mailer.Message) error {
	d.messages = append(d.messages, msg)
	if d.failFor[msg.To] {
		return &mailer.DeliveryError{To: msg.To, Err: errors.New("smtp refused")}
	}
	return nil
}

func (d *fakeDispatcher) sentTo() []string {
	var to []string
	for _, m := range d.messages {
		to = append(to, m.To)
	}
	return to
}

// failingAppendStore fails every AppendAttendees call.
type failingAppendStore struct {
	*store.Memory
}

func (f *failingAppendStore) AppendAttendees(context.Context, []models.AttendeeRow) error {
	return errors.New("sheet unavailable")
}

var testEmailCfg = config.EmailConfig{
	FromAddress:       "dexabrain@gmail.com",
	FromName:          "Dexabrain Team",
	ReplyTo:           "info@dexabrain.com",
	NotificationEmail: "admin@dexabrain.com",
	SystemName:        "Dexabrain Registration System",
}

func testRenderer() *emails.Renderer {
	return emails.NewRenderer(
		config.EventConfig{
			Name:     "Neuro Reset Awareness Seminar",
			Date:     "September 7, 2025",
			Time:     "3:00 PM - 4:30 PM (SGT)",
			Location: "West Forum, Trehaus @ Funan #07-21",
			Address:  "109 North Bridge Road, Singapore 179097",
			StartUTC: time.Date(2025, 9, 7, 7, 0, 0, 0, time.UTC),
			EndUTC:   time.Date(2025, 9, 7, 8, 30, 0, 0, time.UTC),
		},
		config.AssetConfig{},
		testEmailCfg,
	)
}

func newTestService(st store.RegistrationStore, mem *store.Memory, disp *fakeDispatcher) *Service {
	nl := newsletter.NewService(mem, nil, time.Second, zap.NewNop())
	svc := NewService(st, nl, disp, testRenderer(), testEmailCfg, time.Second, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		PrimaryAttendee:     models.Attendee{Name: "Test User", Email: "test@example.com", Phone: "+65 1111 1111"},
		AdditionalAttendees: []models.Attendee{{Name: "Test User 2", Email: "test2@example.com", Phone: "+65 2222 2222"}},
		ReferralCode:        "TEST123",
		ConsentGiven:        true,
	}
}

func TestSubmitPersistsOneRowPerAttendee(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	disp := &fakeDispatcher{}
	svc := newTestService(mem, mem, disp)

	result, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.RegistrationID, "REG"))
	assert.Equal(t, 2, result.TotalAttendees)

	rows, err := mem.ScanAttendees(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, result.RegistrationID, rows[0].RegistrationID)
	assert.Equal(t, result.RegistrationID, rows[1].RegistrationID)

	assert.Equal(t, models.KindPrimary, rows[0].Kind)
	assert.Equal(t, "Test User", rows[0].Name)
	assert.Equal(t, "TEST123", rows[0].ReferralCode)
	assert.True(t, rows[0].ConsentGiven)
	assert.Equal(t, 2, rows[0].TotalInGroup)
	assert.Equal(t, models.StatusConfirmed, rows[0].Status)

	assert.Equal(t, models.KindAdditional, rows[1].Kind)
	assert.Equal(t, "Test User 2", rows[1].Name)
	assert.Empty(t, rows[1].ReferralCode)
	assert.Equal(t, 2, rows[1].TotalInGroup)
}

func TestSubmitSendsConfirmationsInOrderThenAdmin(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	disp := &fakeDispatcher{}
	svc := newTestService(mem, mem, disp)

	_, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	require.Equal(t, []string{"test@example.com", "test2@example.com", "admin@dexabrain.com"}, disp.sentTo())

	// primary email names the co-attendee, the additional one only the size
	assert.Contains(t, disp.messages[0].HTMLBody, "Group Registration (2 attendees)")
	assert.Contains(t, disp.messages[0].HTMLBody, "Test User 2")
	assert.NotContains(t, disp.messages[1].HTMLBody, "Group Registration (2 attendees)")
	assert.Contains(t, disp.messages[1].HTMLBody, "Part of group registration with 2 attendees")
	assert.Contains(t, disp.messages[2].Subject, "New Registration")
}

func TestSubmitRecordsEmailTimestamps(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	disp := &fakeDispatcher{}
	svc := newTestService(mem, mem, disp)

	_, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	rows, err := mem.ScanAttendees(ctx)
	require.NoError(t, err)
	for _, row := range rows {
		assert.Equal(t, "2025-09-01T12:00:00Z", row.EmailSentStatus)
	}
}

func TestSubmitPartialSendFailure(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	disp := &fakeDispatcher{failFor: map[string]bool{"b@example.com": true}}
	svc := newTestService(mem, mem, disp)

	req := SubmitRequest{
		PrimaryAttendee: models.Attendee{Name: "A", Email: "a@example.com", Phone: "1"},
		AdditionalAttendees: []models.Attendee{
			{Name: "B", Email: "b@example.com", Phone: "2"},
			{Name: "C", Email: "c@example.com", Phone: "3"},
		},
		ConsentGiven: true,
	}

	result, err := svc.Submit(ctx, req)
	require.NoError(t, err, "a failed confirmation must not fail the registration")
	assert.Equal(t, 3, result.TotalAttendees)

	require.Len(t, result.SendResults, 3)
	assert.True(t, result.SendResults[0].Sent)
	assert.False(t, result.SendResults[1].Sent)
	assert.True(t, result.SendResults[2].Sent)

	rows, err := mem.ScanAttendees(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-09-01T12:00:00Z", rows[0].EmailSentStatus)
	assert.Equal(t, models.EmailStatusFailed, rows[1].EmailSentStatus)
	assert.Equal(t, "2025-09-01T12:00:00Z", rows[2].EmailSentStatus)
}

func TestSubmitDuplicateEmailsMatchRowsInOrder(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	disp := &fakeDispatcher{}
	svc := newTestService(mem, mem, disp)

	req := SubmitRequest{
		PrimaryAttendee: models.Attendee{Name: "A", Email: "shared@example.com", Phone: "1"},
		AdditionalAttendees: []models.Attendee{
			{Name: "B", Email: "shared@example.com", Phone: "2"},
		},
		ConsentGiven: true,
	}

	_, err := svc.Submit(ctx, req)
	require.NoError(t, err)

	rows, err := mem.ScanAttendees(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-09-01T12:00:00Z", rows[0].EmailSentStatus)
	assert.Equal(t, "2025-09-01T12:00:00Z", rows[1].EmailSentStatus)
}

func TestSubmitAutoSubscribesPrimaryOnce(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	disp := &fakeDispatcher{}
	svc := newTestService(mem, mem, disp)

	_, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	subs, err := mem.ScanSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "test@example.com", subs[0].Email)
	assert.Equal(t, models.SourceRegistration, subs[0].Source)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitRequest)
		field  string
	}{
		{"missing primary name", func(r *SubmitRequest) { r.PrimaryAttendee.Name = "" }, "primaryAttendee.name"},
		{"missing primary email", func(r *SubmitRequest) { r.PrimaryAttendee.Email = "" }, "primaryAttendee.email"},
		{"missing primary phone", func(r *SubmitRequest) { r.PrimaryAttendee.Phone = "" }, "primaryAttendee.phone"},
		{"no consent", func(r *SubmitRequest) { r.ConsentGiven = false }, "consentGiven"},
		{"missing additional email", func(r *SubmitRequest) { r.AdditionalAttendees[0].Email = "" }, "additionalAttendees[0].email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mem := store.NewMemory()
			disp := &fakeDispatcher{}
			svc := newTestService(mem, mem, disp)

			req := validRequest()
			tt.mutate(&req)

			_, err := svc.Submit(ctx, req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)

			rows, err := mem.ScanAttendees(ctx)
			require.NoError(t, err)
			assert.Empty(t, rows, "nothing may be persisted on validation failure")
			assert.Empty(t, disp.messages, "nothing may be sent on validation failure")
		})
	}
}

func TestSubmitAppendFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	disp := &fakeDispatcher{}
	svc := newTestService(&failingAppendStore{mem}, mem, disp)

	_, err := svc.Submit(ctx, validRequest())
	require.Error(t, err)
	assert.Empty(t, disp.messages, "no emails when the append fails")

	subs, err := mem.ScanSubscriptions(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestSubmitWithoutNewsletterService(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	disp := &fakeDispatcher{}
	svc := NewService(mem, nil, disp, testRenderer(), testEmailCfg, time.Second, zap.NewNop())

	_, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)
}

func TestSubmitSkipsAdminNotificationWhenUnconfigured(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	disp := &fakeDispatcher{}

	cfg := testEmailCfg
	cfg.NotificationEmail = ""
	svc := NewService(mem, nil, disp, testRenderer(), cfg, time.Second, zap.NewNop())

	_, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"test@example.com", "test2@example.com"}, disp.sentTo())
}

func TestRegistrationIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	disp := &fakeDispatcher{}
	svc := newTestService(mem, mem, disp)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		result, err := svc.Submit(ctx, validRequest())
		require.NoError(t, err)
		assert.False(t, seen[result.RegistrationID])
		seen[result.RegistrationID] = true
	}
}

func TestRows(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	disp := &fakeDispatcher{}
	svc := newTestService(mem, mem, disp)

	first, err := svc.Submit(ctx, validRequest())
	require.NoError(t, err)

	other := validRequest()
	other.PrimaryAttendee.Email = "other@example.com"
	_, err = svc.Submit(ctx, other)
	require.NoError(t, err)

	rows, err := svc.Rows(ctx, first.RegistrationID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.KindPrimary, rows[0].Kind)

	rows, err = svc.Rows(ctx, "REG-missing")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
