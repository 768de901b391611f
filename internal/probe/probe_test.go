package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCheckReachableOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	status, err := CheckReachable(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
}

func TestCheckReachableAccepts404(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	status, err := CheckReachable(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, status)
}

func TestCheckReachableServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := CheckReachable(context.Background(), srv.URL, time.Second)
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestCheckReachableClosedPort(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := CheckReachable(context.Background(), url, 500*time.Millisecond)
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestCheckReachableMissingURL(t *testing.T) {
	_, err := CheckReachable(context.Background(), " ", time.Second)
	require.Error(t, err)
}
