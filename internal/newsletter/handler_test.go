package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dexabrain/event-backend/internal/models"
	"github.com/dexabrain/event-backend/internal/store"
	"github.com/dexabrain/event-backend/pkg/response"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemory()
	h := NewHandler(NewService(st, nil, time.Second, zap.NewNop()), zap.NewNop())

	r := gin.New()
	r.POST("/api/newsletter", h.Subscribe)
	return r, st
}

func post(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, response.Body) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/newsletter", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

func TestSubscribeEndpoint(t *testing.T) {
	r, st := newTestRouter(t)

	w, envelope := post(t, r, `{"email":"a@b.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)
	assert.Equal(t, "Successfully subscribed to newsletter", envelope.Message)

	subs, err := st.ScanSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, models.SourceNewsletterForm, subs[0].Source)
}

func TestSubscribeEndpointDuplicateStillSucceeds(t *testing.T) {
	r, st := newTestRouter(t)

	for i := 0; i < 2; i++ {
		w, envelope := post(t, r, `{"email":"a@b.com"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, envelope.Success)
	}

	subs, err := st.ScanSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestSubscribeEndpointMissingEmail(t *testing.T) {
	r, _ := newTestRouter(t)

	w, envelope := post(t, r, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, envelope.Success)
	assert.Equal(t, "Email is required", envelope.Message)
}

func TestSubscribeEndpointInvalidEmail(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, email := range []string{"not-an-email", "a@b", "a b@c.com", "@b.com"} {
		w, envelope := post(t, r, `{"email":"`+email+`"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, email)
		assert.Equal(t, "Invalid email address", envelope.Message, email)
	}
}
