// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package api_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhbui/taskrow/internal/api"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type readyBody struct {
	Data struct {
		Status string `json:"status"`
		Checks []struct {
			Name  string `json:"name"`
			IsOK  bool   `json:"ok"`
			Error string `json:"error,omitempty"`
		} `json:"checks"`
	} `json:"data"`
}

/*
TestReadiness_AllHealthy verifies the happy path: both dependency checks
pass and the probe reports ready with 200.
*/
func TestReadiness_AllHealthy(t *testing.T) {
	deps := api.HealthDependencies{
		CheckDatabase: func() error { return nil },
		CheckCache:    func() error { return nil },
	}
	_, readiness := api.NewHealthHandlers(deps, discardLogger())

	recorder := httptest.NewRecorder()
	readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body readyBody
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	assert.Equal(t, "ready", body.Data.Status)
	assert.Len(t, body.Data.Checks, 2)
}

/*
TestReadiness_Degraded verifies that a failing dependency turns the probe
into a single 503 response carrying the failed check.
*/
func TestReadiness_Degraded(t *testing.T) {
	deps := api.HealthDependencies{
		CheckDatabase: func() error { return nil },
		CheckCache:    func() error { return errors.New("dial tcp: connection refused") },
	}
	_, readiness := api.NewHealthHandlers(deps, discardLogger())

	recorder := httptest.NewRecorder()
	readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)

	var body readyBody
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	assert.Equal(t, "degraded", body.Data.Status)

	failed := 0
	for _, check := range body.Data.Checks {
		if !check.IsOK {
			failed++
			assert.Equal(t, "redis", check.Name)
			assert.NotEmpty(t, check.Error)
		}
	}
	assert.Equal(t, 1, failed)
}
