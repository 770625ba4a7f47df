package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritech/backend/internal/reference"
	"github.com/agritech/backend/internal/repository/postgres"
	"github.com/agritech/backend/internal/service"
)

func newTestApp(t *testing.T) (*fiber.App, *service.AgriService, *postgres.MockRepository) {
	t.Helper()
	store := reference.MustLoad()
	repo := postgres.NewMockRepository()
	agriSvc := service.NewAgriService(store, service.NewWeatherService("", "", nil, store), repo)
	t.Cleanup(agriSvc.WaitBackground)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, agriSvc, service.NewTranslator(store))
	return app, agriSvc, repo
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestIndexAndHealth(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, body := doJSON(t, app, fiber.MethodGet, "/", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, body, "endpoints")

	code, body = doJSON(t, app, fiber.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestForecastPrice(t *testing.T) {
	app, agriSvc, repo := newTestApp(t)

	code, body := doJSON(t, app, fiber.MethodPost, "/forecast-price", `{"crop":"Rice","days":7}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Rice", body["crop"])
	assert.Equal(t, 7.0, body["forecast_days"])
	assert.Len(t, body["predictions"], 7)
	assert.Contains(t, body, "summary")

	agriSvc.WaitBackground()
	assert.Len(t, repo.ForecastLogs(), 1)
}

func TestForecastPrice_Translated(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, body := doJSON(t, app, fiber.MethodPost, "/forecast-price", `{"crop":"Rice","days":2,"lang":"hi"}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "चावल", body["crop"])
}

func TestForecastPrice_BadInput(t *testing.T) {
	app, _, _ := newTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing crop", `{"days":5}`},
		{"days too large", `{"crop":"Rice","days":31}`},
		{"days zero", `{"crop":"Rice","days":0}`},
		{"malformed", `{"crop":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := doJSON(t, app, fiber.MethodPost, "/forecast-price", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, code)
			assert.Equal(t, true, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestRecommendCrop_LocationBased(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, body := doJSON(t, app, fiber.MethodPost, "/recommend-crop", `{"state":"Punjab","month":11}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, service.ModeLocationBased, body["mode"])
	assert.Equal(t, "November", body["month_name"])
	assert.Equal(t, "rabi", body["cropping_season"])
	assert.Len(t, body["recommendations"], service.TopK)
}

func TestRecommendCrop_Analysis(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, body := doJSON(t, app, fiber.MethodPost, "/recommend-crop", `{"crop":"Quinoa"}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, service.ModeCropAnalysis, body["mode"])
	analysis := body["analysis"].(map[string]interface{})
	assert.Equal(t, 60.0, analysis["suitability_score"])
	assert.Contains(t, body, "market_outlook")
}

func TestRecommendCrop_BadInput(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, _ := doJSON(t, app, fiber.MethodPost, "/recommend-crop", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = doJSON(t, app, fiber.MethodPost, "/recommend-crop", `{"state":"Punjab","month":13}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestGetWeather(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, body := doJSON(t, app, fiber.MethodGet, "/get-weather?district=Pune", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Pune", body["district"])
	assert.Equal(t, service.SourceFallback, body["source"])

	code, body = doJSON(t, app, fiber.MethodGet, "/get-weather?lat=12.30&lon=76.64", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Mysore", body["district"])

	code, _ = doJSON(t, app, fiber.MethodGet, "/get-weather", "")
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = doJSON(t, app, fiber.MethodGet, "/get-weather?lat=north&lon=1", "")
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestMarketAnalysis(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, body := doJSON(t, app, fiber.MethodGet, "/market-analysis?crop=Onion&state=Maharashtra", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Onion", body["crop"])
	outlook := body["market_outlook"].(map[string]interface{})
	assert.Contains(t, outlook, "demand")
	assert.Contains(t, outlook, "confidence_score")

	code, body = doJSON(t, app, fiber.MethodGet, "/market-analysis?crop=Onion", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, service.General, body["state"])

	code, _ = doJSON(t, app, fiber.MethodGet, "/market-analysis", "")
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestForecastChart(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/forecast-chart?crop=Tomato&days=5", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	html, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Tomato price forecast")

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/forecast-chart?crop=Tomato&days=40", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
