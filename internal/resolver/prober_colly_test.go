package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/md-check-link/internal/link"
)

func TestCollyProberReportsStatusCodes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/head-not-allowed":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			_, _ = w.Write([]byte("body"))
		case "/headers":
			if r.Header.Get("X-Token") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	p := NewCollyProber(CollyConfig{Timeout: 2 * time.Second})
	ctx := context.Background()

	code, err := p.Probe(ctx, http.MethodHead, srv.URL+"/ok", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)

	code, err = p.Probe(ctx, http.MethodHead, srv.URL+"/missing", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, code)

	code, err = p.Probe(ctx, http.MethodHead, srv.URL+"/head-not-allowed", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, code)

	code, err = p.Probe(ctx, http.MethodGet, srv.URL+"/head-not-allowed", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)

	code, err = p.Probe(ctx, http.MethodHead, srv.URL+"/headers", http.Header{"X-Token": {"secret"}})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)
}

func TestCollyProberTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := NewCollyProber(CollyConfig{Timeout: time.Second}).Probe(context.Background(), http.MethodHead, addr, nil)
	require.Error(t, err)
}

func TestCollyProberAbortsOnCancel(t *testing.T) {
	t.Parallel()

	aborted := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			close(aborted)
		case <-time.After(5 * time.Second):
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewCollyProber(CollyConfig{Timeout: 10 * time.Second}).Probe(ctx, http.MethodHead, srv.URL, nil)
	require.Error(t, err)

	select {
	case <-aborted:
	case <-time.After(2 * time.Second):
		t.Fatal("request kept running after the context ended")
	}
}

func TestResolverWithCollyEndToEnd(t *testing.T) {
	t.Parallel()

	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets.Add(1)
		}
		switch r.URL.Path {
		case "/alive":
			w.WriteHeader(http.StatusOK)
		case "/get-only":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
		case "/slow":
			time.Sleep(300 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	r := New(NewCollyProber(CollyConfig{Timeout: 5 * time.Second}), nil, Config{Timeout: 100 * time.Millisecond}, zap.NewNop())
	ctx := context.Background()

	require.Equal(t, link.StatusAlive, r.Resolve(ctx, srv.URL+"/alive").Status)
	require.Equal(t, int32(0), gets.Load())
	require.Equal(t, link.StatusAlive, r.Resolve(ctx, srv.URL+"/get-only").Status)
	require.Equal(t, link.StatusDead, r.Resolve(ctx, srv.URL+"/gone").Status)
	require.Equal(t, link.StatusError, r.Resolve(ctx, srv.URL+"/slow").Status)
}
