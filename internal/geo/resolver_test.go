package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mediabench/mediabench/pkg/types"
)

func TestResolveSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"country_name":"Portugal","continent_code":"EU"}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, 5*time.Second)
	got := r.Resolve(context.Background())
	assert.Equal(t, types.GeoLocation{Country: "Portugal", Continent: "Europe"}, got)
}

func TestResolveCachesFirstResult(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"country_name":"Japan","continent_code":"AS"}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, 5*time.Second)
	first := r.Resolve(context.Background())
	second := r.Resolve(context.Background())

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestResolveDegradesToUnknown(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server_error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed_body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "missing_country",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"continent_code":"EU"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			r := NewResolver(srv.URL, 2*time.Second)
			assert.Equal(t, types.UnknownLocation, r.Resolve(context.Background()))
		})
	}
}

func TestResolveUnreachableEndpoint(t *testing.T) {
	r := NewResolver("http://127.0.0.1:1/json", 500*time.Millisecond)
	assert.Equal(t, types.UnknownLocation, r.Resolve(context.Background()))
}

func TestResolveUnknownContinentCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"country_name":"Atlantis","continent_code":"XX"}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, 2*time.Second)
	got := r.Resolve(context.Background())
	assert.Equal(t, "Atlantis", got.Country)
	assert.Equal(t, "Unknown", got.Continent)
}
