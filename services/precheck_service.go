package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	errs "github.com/techagentng/thermotrack/errors"
)

// PrecheckResult is the submission-time judgment shown to the reporter.
// The client gates its submit button on Success; the server itself does
// not reject submissions on a failed precheck.
type PrecheckResult struct {
	TemperatureType          string  `json:"temperatureType"`
	ExpectedTemperatureRange string  `json:"expectedTemperatureRange"`
	Confidence               float64 `json:"confidence"`
	IsWithinRange            bool    `json:"isWithinRange"`
	ObjectTypeMatch          bool    `json:"objectTypeMatch"`
	Success                  bool    `json:"success"`
}

type PrecheckService interface {
	PrecheckReport(ctx context.Context, image []byte, mimeType string, location string, declaredType string, temperature float64) (*PrecheckResult, error)
}

type precheckService struct {
	weather WeatherService
	gateway VisionGateway
}

func NewPrecheckService(weather WeatherService, gateway VisionGateway) PrecheckService {
	return &precheckService{weather: weather, gateway: gateway}
}

func (p *precheckService) PrecheckReport(ctx context.Context, image []byte, mimeType string, location string, declaredType string, temperature float64) (*PrecheckResult, error) {
	if len(image) == 0 {
		return nil, errs.New("image is required", 400)
	}
	if location == "" {
		return nil, errs.New("location is required", 400)
	}

	weather, err := p.weather.CurrentTemperature(ctx, location)
	if err != nil {
		return nil, err
	}

	analysis, err := p.gateway.AnalyzeObject(ctx, image, mimeType, weather)
	if err != nil {
		return nil, err
	}

	// The declared reading is judged against the AI's expected range; the
	// ambient weather only feeds the gateway prompt.
	low, high, rangeErr := parseTemperatureRange(analysis.ExpectedTemperatureRange)
	isWithinRange := rangeErr == nil && temperature >= low && temperature <= high

	mapped := MapObjectType(analysis.TemperatureType)
	confidence := analysis.Confidence
	if mapped == "" {
		// Detections outside the known taxonomy are half-trusted.
		confidence = confidence * 0.5
	}

	result := &PrecheckResult{
		TemperatureType:          analysis.TemperatureType,
		ExpectedTemperatureRange: analysis.ExpectedTemperatureRange,
		Confidence:               confidence,
		IsWithinRange:            isWithinRange,
		ObjectTypeMatch:          mapped != "" && mapped == declaredType,
	}
	result.Success = result.IsWithinRange && confidence >= 0.8 && result.ObjectTypeMatch
	return result, nil
}

// parseTemperatureRange parses strings like "18 - 28°C" into bounds.
func parseTemperatureRange(s string) (float64, float64, error) {
	cleaned := strings.ReplaceAll(s, "°C", "")
	cleaned = strings.TrimSpace(cleaned)
	parts := strings.Split(cleaned, " - ")
	if len(parts) != 2 {
		parts = strings.Split(cleaned, "-")
	}
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unparseable temperature range %q", s)
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("unparseable lower bound %q", parts[0])
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("unparseable upper bound %q", parts[1])
	}
	return low, high, nil
}
