package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"StandupBot/api"
	"StandupBot/logger"

	"github.com/stretchr/testify/assert"
)

func TestSetupRouter(t *testing.T) {
	withoutSlack := SetupRouter(nil)

	rec := httptest.NewRecorder()
	withoutSlack.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	withoutSlack.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/slack/interactions", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	withSlack := SetupRouter(api.NewInteractionServer(nil, "secret", logger.Discard()))
	rec = httptest.NewRecorder()
	withSlack.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/slack/interactions", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
