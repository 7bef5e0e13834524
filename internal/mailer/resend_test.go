package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer re_test_key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload sendPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Sentinel <onboarding@resend.dev>", payload.From)
		assert.Equal(t, []string{"owner@example.com"}, payload.To)
		assert.Equal(t, "subject", payload.Subject)
		assert.Contains(t, payload.HTML, "<h2>")

		w.Write([]byte(`{"id":"abc"}`))
	}))
	defer server.Close()

	client := NewClient("re_test_key", "Sentinel <onboarding@resend.dev>")
	client.endpoint = server.URL

	err := client.Send(context.Background(), "owner@example.com", "subject", "<h2>hi</h2>")
	assert.NoError(t, err)
}

func TestSend_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer server.Close()

	client := NewClient("bad_key", "Sentinel <onboarding@resend.dev>")
	client.endpoint = server.URL

	err := client.Send(context.Background(), "owner@example.com", "subject", "<p>hi</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
