package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agritech/backend/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, agriSvc *service.AgriService, translator *service.Translator) {
	handler := NewHandler(agriSvc, translator)

	app.Get("/", handler.Index)
	app.Get("/health", handler.HealthCheck)

	// Advisory endpoints
	app.Post("/forecast-price", handler.ForecastPrice)
	app.Post("/recommend-crop", handler.RecommendCrop)
	app.Get("/get-weather", handler.GetWeather)
	app.Get("/market-analysis", handler.MarketAnalysis)

	// Dashboard
	app.Get("/forecast-chart", handler.ForecastChart)
}
