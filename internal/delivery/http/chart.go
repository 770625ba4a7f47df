package http

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/gofiber/fiber/v2"

	"github.com/agritech/backend/internal/domain"
	"github.com/agritech/backend/internal/service"
)

// ForecastChart renders the price forecast as an HTML line chart
func (h *Handler) ForecastChart(c *fiber.Ctx) error {
	req := domain.ForecastRequest{
		Crop:     c.Query("crop"),
		District: c.Query("district"),
	}
	if c.Query("days") != "" {
		days := c.QueryInt("days", service.DefaultForecastDays)
		req.Days = &days
	}

	resp, err := h.agriSvc.ForecastPrice(c.Context(), req)
	if err != nil {
		return toHTTPError(err)
	}

	var buf bytes.Buffer
	if err := renderForecastChart(&buf, resp); err != nil {
		return fmt.Errorf("http: failed to render chart: %w", err)
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func renderForecastChart(w io.Writer, resp domain.ForecastResponse) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: resp.Crop + " price forecast",
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s price forecast (%d days)", resp.Crop, resp.ForecastDays),
			Subtitle: fmt.Sprintf("%s | avg ₹%.2f/quintal | %s", resp.District, resp.Summary.AveragePrice, resp.Summary.PriceTrend),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "₹/quintal"}),
	)

	dates := make([]string, 0, len(resp.Predictions))
	prices := make([]opts.LineData, 0, len(resp.Predictions))
	var lower, upper []opts.LineData
	for _, p := range resp.Predictions {
		dates = append(dates, p.Date)
		prices = append(prices, opts.LineData{Value: p.Price})
		if p.ConfidenceLower != nil && p.ConfidenceUpper != nil {
			lower = append(lower, opts.LineData{Value: *p.ConfidenceLower})
			upper = append(upper, opts.LineData{Value: *p.ConfidenceUpper})
		}
	}

	line.SetXAxis(dates).
		AddSeries("Price", prices, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	// Bands are drawn only when every point carries them
	if len(lower) == len(prices) && len(lower) > 0 {
		line.AddSeries("Lower bound", lower).AddSeries("Upper bound", upper)
	}

	return line.Render(w)
}
