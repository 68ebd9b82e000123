package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mc-bridge-api/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingRouter(repo *fakeSettingRepo) http.Handler {
	h := NewSettingHandler(repo)
	r := chi.NewRouter()
	r.Get("/settings", h.GetSettings)
	r.Get("/settings/{key}", h.GetSetting)
	r.Put("/settings/{key}", h.PutSetting)
	r.Post("/server/status", h.PostServerStatus)
	return r
}

func TestGetSettingsEmptyIsArray(t *testing.T) {
	router := newSettingRouter(newFakeSettingRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
}

func TestGetSetting(t *testing.T) {
	repo := newFakeSettingRepo()
	require.NoError(t, repo.UpsertSetting(context.Background(), "motd", "welcome"))
	router := newSettingRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings/motd", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"key":"motd"`)
	assert.Contains(t, rec.Body.String(), `"value":"welcome"`)
}

func TestGetSettingNotFound(t *testing.T) {
	router := newSettingRouter(newFakeSettingRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings/absent", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Setting not found"}`, rec.Body.String())
}

func TestPutSettingIdempotent(t *testing.T) {
	repo := newFakeSettingRepo()
	router := newSettingRouter(repo)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings/motd",
			strings.NewReader(`{"value":"hello"}`)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	}

	assert.Equal(t, "hello", repo.settings["motd"].Value)
	assert.Len(t, repo.settings, 1)
}

func TestPutSettingValueKinds(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string loses quotes", `{"value":"20.0"}`, "20.0"},
		{"number keeps literal", `{"value":19.5}`, "19.5"},
		{"bool keeps literal", `{"value":true}`, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeSettingRepo()
			router := newSettingRouter(repo)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings/k", strings.NewReader(tt.body)))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, repo.settings["k"].Value)
		})
	}
}

func TestPutSettingMissingValue(t *testing.T) {
	router := newSettingRouter(newFakeSettingRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings/motd", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Missing value"}`, rec.Body.String())
}

func TestPostServerStatus(t *testing.T) {
	repo := newFakeSettingRepo()
	router := newSettingRouter(repo)

	body := `{"status":"online","tps":19.8,"players_online":12,"players_max":100,"version":"1.20.4","unknown_field":"ignored"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/server/status", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	assert.Equal(t, "online", repo.settings[model.SettingServerStatus].Value)
	assert.Equal(t, "19.8", repo.settings[model.SettingServerTPS].Value)
	assert.Equal(t, "12", repo.settings[model.SettingPlayersOnline].Value)
	assert.Equal(t, "100", repo.settings[model.SettingPlayersMax].Value)
	assert.Equal(t, "1.20.4", repo.settings[model.SettingServerVersion].Value)
	assert.Len(t, repo.settings, 5)
}

func TestPostServerStatusPartial(t *testing.T) {
	repo := newFakeSettingRepo()
	router := newSettingRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/server/status",
		strings.NewReader(`{"tps":20}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "20", repo.settings[model.SettingServerTPS].Value)
	assert.Len(t, repo.settings, 1)
}
