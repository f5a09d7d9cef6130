package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y2k2/globa/internal/logging"
	"github.com/y2k2/globa/internal/server/auth"
	"github.com/y2k2/globa/internal/server/models"
)

const secret = "test-secret"

type fakeLister struct {
	userID      int64
	count, page int
	out         []models.Notification
	err         error
}

func (f *fakeLister) List(_ context.Context, userID int64, count, page int) ([]models.Notification, error) {
	f.userID, f.count, f.page = userID, count, page
	return f.out, f.err
}

func newTestServer(l NotificationLister) http.Handler {
	return NewServer(":0", logging.Nop{}, l, secret).Handler()
}

func bearer(t *testing.T, userID int64) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(secret), time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(&fakeLister{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListNotifications(t *testing.T) {
	folderID, recordID := int64(7), int64(42)
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	l := &fakeLister{out: []models.Notification{{
		ID: 5, Type: models.NotificationUploadSucceeded, FromUserID: 1, ToUserID: 1,
		FolderID: &folderID, RecordID: &recordID, CreatedAt: created,
	}}}

	req := httptest.NewRequest(http.MethodGet, "/notification?count=20&page=2", nil)
	req.Header.Set("Authorization", bearer(t, 1))
	rec := httptest.NewRecorder()
	newTestServer(l).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), l.userID)
	assert.Equal(t, 20, l.count)
	assert.Equal(t, 2, l.page)

	var resp notificationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Notifications, 1)
	got := resp.Notifications[0]
	assert.Equal(t, int64(5), got.NotificationID)
	assert.Equal(t, "6", got.Type)
	assert.Equal(t, int64(42), *got.RecordID)
	assert.True(t, created.Equal(got.CreatedTime))
}

func TestListNotifications_Defaults(t *testing.T) {
	l := &fakeLister{}
	req := httptest.NewRequest(http.MethodGet, "/notification", nil)
	req.Header.Set("Authorization", bearer(t, 3))
	rec := httptest.NewRecorder()
	newTestServer(l).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, l.count)
	assert.Equal(t, 1, l.page)
	assert.JSONEq(t, `{"notifications":[]}`, rec.Body.String())
}

func TestListNotifications_BareToken(t *testing.T) {
	l := &fakeLister{}
	tok, err := auth.GenerateToken(4, []byte(secret), time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/notification", nil)
	req.Header.Set("Authorization", tok)
	rec := httptest.NewRecorder()
	newTestServer(l).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), l.userID)
}

func TestListNotifications_AuthErrors(t *testing.T) {
	expired, err := auth.GenerateToken(1, []byte(secret), -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusBadRequest},
		{"garbage", "Bearer garbage", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &fakeLister{}
			req := httptest.NewRequest(http.MethodGet, "/notification", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			newTestServer(l).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Zero(t, l.userID)
		})
	}
}

func TestListNotifications_BadParams(t *testing.T) {
	for _, q := range []string{"count=ten", "page=x"} {
		req := httptest.NewRequest(http.MethodGet, "/notification?"+q, nil)
		req.Header.Set("Authorization", bearer(t, 1))
		rec := httptest.NewRecorder()
		newTestServer(&fakeLister{}).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestListNotifications_ServiceError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/notification", nil)
	req.Header.Set("Authorization", bearer(t, 1))
	rec := httptest.NewRecorder()
	newTestServer(&fakeLister{err: errors.New("db down")}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}
