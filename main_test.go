package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/lunchorder/client"
)

func TestAdminAvailabilityToggleNeedsRestaurant(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	a := &app{api: client.New(server.URL), out: io.Discard}
	err := a.adminAvailability(context.Background(), []string{"-toggle", "mon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-restaurant")
	assert.Zero(t, calls)
}

func TestAdminMenuRejectsBadDates(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	a := &app{api: client.New(server.URL), out: io.Discard}
	assert.Error(t, a.adminMenu(context.Background(), []string{"-id", "3", "-until", "31/12/2025"}))
	assert.Error(t, a.adminMenu(context.Background(), []string{"-id", "3", "-from", "tomorrow"}))
	assert.Zero(t, calls)
}
