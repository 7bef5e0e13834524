package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_LocalAddressesSkipNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	resolver := NewResolver(server.URL, 3*time.Second)

	for _, ip := range []string{"127.0.0.1", "::1", "192.168.1.50", "10.0.0.8"} {
		loc := resolver.Resolve(context.Background(), ip)
		require.NotNil(t, loc.City, "ip %s", ip)
		require.NotNil(t, loc.Country, "ip %s", ip)
		assert.Equal(t, "Localhost", *loc.City)
		assert.Equal(t, "Local", *loc.Country)
	}

	assert.Equal(t, int32(0), calls.Load(), "local addresses must not trigger a lookup")
}

func TestResolve_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/8.8.8.8", r.URL.Path)
		assert.Equal(t, "status,city,country", r.URL.Query().Get("fields"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","city":"Mountain View","country":"United States"}`))
	}))
	defer server.Close()

	resolver := NewResolver(server.URL, 3*time.Second)
	loc := resolver.Resolve(context.Background(), "8.8.8.8")

	require.NotNil(t, loc.City)
	require.NotNil(t, loc.Country)
	assert.Equal(t, "Mountain View", *loc.City)
	assert.Equal(t, "United States", *loc.Country)
}

func TestResolve_FailureStatusInBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail"}`))
	}))
	defer server.Close()

	resolver := NewResolver(server.URL, 3*time.Second)
	loc := resolver.Resolve(context.Background(), "203.0.113.9")

	assert.Nil(t, loc.City)
	assert.Nil(t, loc.Country)
}

func TestResolve_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	resolver := NewResolver(server.URL, 3*time.Second)
	loc := resolver.Resolve(context.Background(), "203.0.113.9")

	assert.Nil(t, loc.City)
	assert.Nil(t, loc.Country)
}

func TestResolve_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	resolver := NewResolver(server.URL, 3*time.Second)
	loc := resolver.Resolve(context.Background(), "203.0.113.9")

	assert.Nil(t, loc.City)
	assert.Nil(t, loc.Country)
}

func TestResolve_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"status":"success","city":"Nowhere","country":"Nope"}`))
	}))
	defer server.Close()

	resolver := NewResolver(server.URL, 50*time.Millisecond)
	loc := resolver.Resolve(context.Background(), "203.0.113.9")

	assert.Nil(t, loc.City)
	assert.Nil(t, loc.Country)
}

func TestResolve_UnreachableEndpoint(t *testing.T) {
	resolver := NewResolver("http://127.0.0.1:1", 200*time.Millisecond)
	loc := resolver.Resolve(context.Background(), "203.0.113.9")

	assert.Nil(t, loc.City)
	assert.Nil(t, loc.Country)
}
