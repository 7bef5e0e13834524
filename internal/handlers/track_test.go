package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sentinel-backend/internal/geo"
	"sentinel-backend/internal/models"
	"sentinel-backend/internal/services"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResumeStore struct {
	exists bool
}

func (f *fakeResumeStore) Exists(ctx context.Context, id string) (bool, error) {
	return f.exists, nil
}

func (f *fakeResumeStore) GetNotifyInfo(ctx context.Context, id string) (*services.ResumeNotifyInfo, error) {
	return nil, nil
}

type fakeEventStore struct {
	inserted []*models.AnalyticsEvent
	updates  map[string]int
}

func (f *fakeEventStore) Insert(ctx context.Context, event *models.AnalyticsEvent) error {
	event.ID = "new-event-id"
	f.inserted = append(f.inserted, event)
	return nil
}

func (f *fakeEventStore) UpdateDuration(ctx context.Context, id string, seconds int) error {
	if f.updates == nil {
		f.updates = make(map[string]int)
	}
	f.updates[id] = seconds
	return nil
}

type fakeLimiter struct {
	allow bool
	keys  []string
}

func (f *fakeLimiter) Hit(key string) bool {
	f.keys = append(f.keys, key)
	return f.allow
}

type fakeGeo struct{}

func (f *fakeGeo) Resolve(ctx context.Context, ip string) geo.Location {
	return geo.Location{}
}

func newTrackRouter(store *fakeResumeStore, events *fakeEventStore, limiter *fakeLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)

	var l services.Limiter
	if limiter != nil {
		l = limiter
	}
	service := services.NewTrackService(store, events, nil, nil, l, &fakeGeo{})
	handler := NewTrackHandler(service)

	router := gin.New()
	router.POST("/api/track", handler.Track)
	return router
}

func postTrack(router *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/track", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTrackHandler_InvalidBody(t *testing.T) {
	router := newTrackRouter(&fakeResumeStore{exists: true}, &fakeEventStore{}, nil)

	w := postTrack(router, "{not json", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestTrackHandler_MissingRequiredFields(t *testing.T) {
	events := &fakeEventStore{}
	router := newTrackRouter(&fakeResumeStore{exists: true}, events, nil)

	for _, body := range []string{
		`{"event_type":"view"}`,
		`{"resume_id":"r1"}`,
		`{}`,
	} {
		w := postTrack(router, body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}

	assert.Empty(t, events.inserted, "validation failures must not write")
}

func TestTrackHandler_CreateReturnsID(t *testing.T) {
	events := &fakeEventStore{}
	router := newTrackRouter(&fakeResumeStore{exists: true}, events, nil)

	w := postTrack(router, `{"resume_id":"r1","event_type":"view","device_type":"mobile"}`, map[string]string{
		"User-Agent": "Mozilla/5.0 (Linux; Android 14) Chrome/125.0 Mobile Safari/537.36",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "new-event-id", resp["id"])

	require.Len(t, events.inserted, 1)
	assert.Equal(t, "mobile", events.inserted[0].DeviceType)
}

func TestTrackHandler_NotFound(t *testing.T) {
	router := newTrackRouter(&fakeResumeStore{exists: false}, &fakeEventStore{}, nil)

	w := postTrack(router, `{"resume_id":"missing","event_type":"view"}`, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrackHandler_ThrottledIsDistinguishable(t *testing.T) {
	router := newTrackRouter(&fakeResumeStore{exists: true}, &fakeEventStore{}, &fakeLimiter{allow: false})

	w := postTrack(router, `{"resume_id":"r1","event_type":"view"}`, nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestTrackHandler_HeartbeatBypassesRateLimit(t *testing.T) {
	events := &fakeEventStore{}
	limiter := &fakeLimiter{allow: false}
	router := newTrackRouter(&fakeResumeStore{exists: true}, events, limiter)

	w := postTrack(router, `{"resume_id":"r1","event_type":"view","event_id":"e1","duration_seconds":25}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 25, events.updates["e1"])
	assert.Empty(t, limiter.keys, "heartbeats must never hit the limiter")
}

func TestTrackHandler_RequesterIPFromForwardedHeader(t *testing.T) {
	limiter := &fakeLimiter{allow: true}
	router := newTrackRouter(&fakeResumeStore{exists: true}, &fakeEventStore{}, limiter)

	postTrack(router, `{"resume_id":"r1","event_type":"view"}`, map[string]string{
		"X-Forwarded-For": "203.0.113.7, 70.41.3.18, 150.172.238.178",
	})

	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "203.0.113.7", limiter.keys[0])
}

func TestTrackHandler_MissingForwardedHeaderDefaultsToLoopback(t *testing.T) {
	limiter := &fakeLimiter{allow: true}
	router := newTrackRouter(&fakeResumeStore{exists: true}, &fakeEventStore{}, limiter)

	postTrack(router, `{"resume_id":"r1","event_type":"view"}`, nil)

	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "127.0.0.1", limiter.keys[0])
}
