package http

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/agritech/backend/internal/domain"
	"github.com/agritech/backend/internal/service"
)

// Version is reported by the index and health endpoints
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	agriSvc    *service.AgriService
	translator *service.Translator
}

// NewHandler creates a new handler
func NewHandler(agriSvc *service.AgriService, translator *service.Translator) *Handler {
	return &Handler{
		agriSvc:    agriSvc,
		translator: translator,
	}
}

// Index lists the available endpoints
func (h *Handler) Index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Agricultural Advisory API",
		"version": Version,
		"endpoints": fiber.Map{
			"forecast_price": "POST /forecast-price",
			"recommend_crop": "POST /recommend-crop",
			"get_weather":    "GET /get-weather?district=",
			"market":         "GET /market-analysis?crop=&state=",
			"chart":          "GET /forecast-chart?crop=&days=&district=",
			"health":         "GET /health",
		},
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	database := "connected"
	if err := h.agriSvc.Health(c.Context()); err != nil {
		log.Printf("Health check: %v", err)
		database = "disconnected"
	}

	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"database":  database,
		"version":   Version,
	})
}

// ForecastPrice returns a daily price forecast for a crop
func (h *Handler) ForecastPrice(c *fiber.Ctx) error {
	var req domain.ForecastRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.agriSvc.ForecastPrice(c.Context(), req)
	if err != nil {
		return toHTTPError(err)
	}

	return h.respond(c, resp, req.Lang)
}

// RecommendCrop ranks crops for a location, or analyzes one crop when the
// body names it
func (h *Handler) RecommendCrop(c *fiber.Ctx) error {
	var req domain.RecommendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.Crop != "" {
		resp, err := h.agriSvc.AnalyzeCrop(c.Context(), req.Crop, req.State)
		if err != nil {
			return toHTTPError(err)
		}
		return h.respond(c, resp, req.Lang)
	}

	resp, err := h.agriSvc.RecommendCrops(c.Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return h.respond(c, resp, req.Lang)
}

// GetWeather returns current weather for a district, or for lat/lon when
// no district is given
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	district := c.Query("district")
	if district == "" && c.Query("lat") != "" && c.Query("lon") != "" {
		lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
		lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
		if latErr != nil || lonErr != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lon must be numbers")
		}
		return h.respond(c, h.agriSvc.WeatherAt(c.Context(), lat, lon), c.Query("lang"))
	}

	report, err := h.agriSvc.Weather(c.Context(), district)
	if err != nil {
		return toHTTPError(err)
	}
	return h.respond(c, report, c.Query("lang"))
}

// MarketAnalysis returns the market outlook for a crop
func (h *Handler) MarketAnalysis(c *fiber.Ctx) error {
	crop := c.Query("crop")
	state := c.Query("state")

	outlook, err := h.agriSvc.MarketAnalysis(c.Context(), crop, state)
	if err != nil {
		return toHTTPError(err)
	}

	if state == "" {
		state = service.General
	}
	return h.respond(c, fiber.Map{
		"crop":           crop,
		"state":          state,
		"market_outlook": outlook,
	}, c.Query("lang"))
}

// respond writes v as JSON, translated when lang is supported. Translation
// failures fall back to the English response.
func (h *Handler) respond(c *fiber.Ctx, v interface{}, lang string) error {
	if lang == "" || h.translator == nil || !h.translator.Supported(lang) {
		return c.JSON(v)
	}
	out, err := h.translator.Localize(v, lang)
	if err != nil {
		log.Printf("Translation to %s failed: %v", lang, err)
		return c.JSON(v)
	}
	return c.JSON(out)
}

// toHTTPError maps service errors onto HTTP status codes
func toHTTPError(err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return fiber.NewError(fiber.StatusBadRequest, verr.Error())
	}
	log.Printf("Request failed: %v", err)
	return fiber.NewError(fiber.StatusInternalServerError, "Internal server error")
}

// ErrorHandler renders every error as {"error": true, "message": ...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
