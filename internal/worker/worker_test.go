package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dexabrain/event-backend/config"
	"github.com/dexabrain/event-backend/internal/emails"
	"github.com/dexabrain/event-backend/internal/mailer"
	"github.com/dexabrain/event-backend/internal/models"
	"github.com/dexabrain/event-backend/internal/store"
	"github.com/dexabrain/event-backend/pkg/queue"
)

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

func seedRegistration(t *testing.T, st *store.Memory) string {
	t.Helper()
	regID := "REG1756000000000-abcd1234"
	rows := []models.AttendeeRow{
		{
			Timestamp: time.Now(), RegistrationID: regID, Kind: models.KindPrimary,
			Name: "Test User", Email: "test@example.com", Phone: "1",
			TotalInGroup: 2, ConsentGiven: true, Status: models.StatusConfirmed,
			EmailSentStatus: models.EmailStatusFailed,
		},
		{
			Timestamp: time.Now(), RegistrationID: regID, Kind: models.KindAdditional,
			Name: "Test User 2", Email: "test2@example.com", Phone: "2",
			TotalInGroup: 2, Status: models.StatusConfirmed,
			EmailSentStatus: models.EmailStatusFailed,
		},
	}
	require.NoError(t, st.AppendAttendees(context.Background(), rows))
	return regID
}

func newProcessor(st *store.Memory, disp *fakeDispatcher) *EmailProcessor {
	renderer := emails.NewRenderer(
		config.EventConfig{
			Name:     "Neuro Reset Awareness Seminar",
			Date:     "September 7, 2025",
			StartUTC: time.Date(2025, 9, 7, 7, 0, 0, 0, time.UTC),
			EndUTC:   time.Date(2025, 9, 7, 8, 30, 0, 0, time.UTC),
		},
		config.AssetConfig{},
		config.EmailConfig{FromName: "Dexabrain Team", ReplyTo: "info@dexabrain.com"},
	)
	return NewEmailProcessor(st, disp, renderer, config.EmailConfig{FromName: "Dexabrain Team"}, nil, zap.NewNop())
}

func resendJob(t *testing.T, payload queue.EmailResendPayload) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &queue.Job{ID: "job-1", Type: queue.JobTypeEmailResend, Payload: raw}
}

func TestProcessResendsWholeRegistration(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	disp := &fakeDispatcher{}
	regID := seedRegistration(t, st)

	err := newProcessor(st, disp).Process(ctx, resendJob(t, queue.EmailResendPayload{RegistrationID: regID}))
	require.NoError(t, err)

	require.Len(t, disp.messages, 2)
	assert.Equal(t, "test@example.com", disp.messages[0].To)
	assert.Equal(t, "test2@example.com", disp.messages[1].To)

	rows, err := st.ScanAttendees(ctx)
	require.NoError(t, err)
	for _, row := range rows {
		assert.NotEqual(t, models.EmailStatusFailed, row.EmailSentStatus)
		_, perr := time.Parse(time.RFC3339, row.EmailSentStatus)
		assert.NoError(t, perr)
	}
}

func TestProcessResendsSingleRecipient(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	disp := &fakeDispatcher{}
	regID := seedRegistration(t, st)

	err := newProcessor(st, disp).Process(ctx, resendJob(t, queue.EmailResendPayload{
		RegistrationID: regID,
		RecipientEmail: "test2@example.com",
	}))
	require.NoError(t, err)

	require.Len(t, disp.messages, 1)
	assert.Equal(t, "test2@example.com", disp.messages[0].To)

	rows, err := st.ScanAttendees(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.EmailStatusFailed, rows[0].EmailSentStatus, "untargeted row is untouched")
	assert.NotEqual(t, models.EmailStatusFailed, rows[1].EmailSentStatus)
}

func TestProcessSendFailureReturnsErrorAndRecordsStatus(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	disp := &fakeDispatcher{failFor: map[string]bool{"test2@example.com": true}}
	regID := seedRegistration(t, st)

	err := newProcessor(st, disp).Process(ctx, resendJob(t, queue.EmailResendPayload{RegistrationID: regID}))
	require.Error(t, err)

	rows, scanErr := st.ScanAttendees(ctx)
	require.NoError(t, scanErr)
	assert.NotEqual(t, models.EmailStatusFailed, rows[0].EmailSentStatus)
	assert.Equal(t, models.EmailStatusFailed, rows[1].EmailSentStatus)
}

func TestProcessUnknownRegistration(t *testing.T) {
	st := store.NewMemory()
	disp := &fakeDispatcher{}

	err := newProcessor(st, disp).Process(context.Background(), resendJob(t, queue.EmailResendPayload{RegistrationID: "REG-missing"}))
	require.Error(t, err)
	assert.Empty(t, disp.messages)
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	st := store.NewMemory()
	disp := &fakeDispatcher{}

	err := newProcessor(st, disp).Process(context.Background(), &queue.Job{ID: "job-2", Type: "unknown"})
	require.Error(t, err)
	assert.Empty(t, disp.messages)
}
