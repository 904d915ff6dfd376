package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "github.com/techagentng/thermotrack/errors"
)

type stubWeather struct {
	temp float64
	err  error
}

func (s stubWeather) CurrentTemperature(ctx context.Context, location string) (float64, error) {
	return s.temp, s.err
}

type stubGateway struct {
	analysis *ObjectAnalysis
	judgment *MaterialJudgment
	err      error
}

func (s stubGateway) AnalyzeObject(ctx context.Context, image []byte, mimeType string, weather float64) (*ObjectAnalysis, error) {
	return s.analysis, s.err
}

func (s stubGateway) VerifyMaterial(ctx context.Context, image []byte, mimeType string, materialType string, weather float64) (*MaterialJudgment, error) {
	return s.judgment, s.err
}

func TestParseTemperatureRange(t *testing.T) {
	cases := []struct {
		input     string
		low, high float64
		wantErr   bool
	}{
		{"18 - 28°C", 18, 28, false},
		{"-5 - 10°C", -5, 10, false},
		{"20-30°C", 20, 30, false},
		{"18 - 28", 18, 28, false},
		{"warm", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tc := range cases {
		low, high, err := parseTemperatureRange(tc.input)
		if tc.wantErr {
			assert.Error(t, err, tc.input)
			continue
		}
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.low, low, tc.input)
		assert.Equal(t, tc.high, high, tc.input)
	}
}

func TestPrecheckReport(t *testing.T) {
	image := []byte("jpeg-bytes")

	t.Run("requires image and location", func(t *testing.T) {
		svc := NewPrecheckService(stubWeather{}, stubGateway{})
		_, err := svc.PrecheckReport(context.Background(), nil, "image/jpeg", "Kampala", "Leaves", 22)
		assert.Error(t, err)
		_, err = svc.PrecheckReport(context.Background(), image, "image/jpeg", "", "Leaves", 22)
		assert.Error(t, err)
	})

	t.Run("matching in-range detection succeeds", func(t *testing.T) {
		svc := NewPrecheckService(stubWeather{temp: 22}, stubGateway{analysis: &ObjectAnalysis{
			TemperatureType:          "Leaves",
			ExpectedTemperatureRange: "18 - 28°C",
			Confidence:               0.9,
		}})
		result, err := svc.PrecheckReport(context.Background(), image, "image/jpeg", "Kampala", "Leaves", 22)
		require.NoError(t, err)
		assert.True(t, result.IsWithinRange)
		assert.True(t, result.ObjectTypeMatch)
		assert.True(t, result.Success)
		assert.InDelta(t, 0.9, result.Confidence, 1e-9)
	})

	t.Run("range is judged on the declared reading, not the weather", func(t *testing.T) {
		// Hot ambient weather must not sink a reading that sits inside
		// the expected range.
		svc := NewPrecheckService(stubWeather{temp: 35}, stubGateway{analysis: &ObjectAnalysis{
			TemperatureType:          "Leaves",
			ExpectedTemperatureRange: "18 - 28°C",
			Confidence:               0.9,
		}})
		result, err := svc.PrecheckReport(context.Background(), image, "image/jpeg", "Kampala", "Leaves", 22)
		require.NoError(t, err)
		assert.True(t, result.IsWithinRange)
		assert.True(t, result.Success)
	})

	t.Run("declared reading outside the expected range fails", func(t *testing.T) {
		svc := NewPrecheckService(stubWeather{temp: 22}, stubGateway{analysis: &ObjectAnalysis{
			TemperatureType:          "Leaves",
			ExpectedTemperatureRange: "18 - 28°C",
			Confidence:               0.95,
		}})
		result, err := svc.PrecheckReport(context.Background(), image, "image/jpeg", "Kampala", "Leaves", 35)
		require.NoError(t, err)
		assert.False(t, result.IsWithinRange)
		assert.False(t, result.Success)
	})

	t.Run("detection outside the taxonomy halves confidence", func(t *testing.T) {
		svc := NewPrecheckService(stubWeather{temp: 22}, stubGateway{analysis: &ObjectAnalysis{
			TemperatureType:          "Lava",
			ExpectedTemperatureRange: "18 - 28°C",
			Confidence:               0.9,
		}})
		result, err := svc.PrecheckReport(context.Background(), image, "image/jpeg", "Kampala", "Leaves", 22)
		require.NoError(t, err)
		assert.InDelta(t, 0.45, result.Confidence, 1e-9)
		assert.False(t, result.ObjectTypeMatch)
		assert.False(t, result.Success)
	})

	t.Run("low confidence fails even when matched", func(t *testing.T) {
		svc := NewPrecheckService(stubWeather{temp: 22}, stubGateway{analysis: &ObjectAnalysis{
			TemperatureType:          "Leaves",
			ExpectedTemperatureRange: "18 - 28°C",
			Confidence:               0.7,
		}})
		result, err := svc.PrecheckReport(context.Background(), image, "image/jpeg", "Kampala", "Leaves", 22)
		require.NoError(t, err)
		assert.False(t, result.Success)
	})

	t.Run("declared type mismatch fails", func(t *testing.T) {
		svc := NewPrecheckService(stubWeather{temp: 22}, stubGateway{analysis: &ObjectAnalysis{
			TemperatureType:          "Soil",
			ExpectedTemperatureRange: "18 - 28°C",
			Confidence:               0.9,
		}})
		result, err := svc.PrecheckReport(context.Background(), image, "image/jpeg", "Kampala", "Leaves", 22)
		require.NoError(t, err)
		assert.False(t, result.ObjectTypeMatch)
		assert.False(t, result.Success)
	})

	t.Run("unparseable range is not fatal", func(t *testing.T) {
		svc := NewPrecheckService(stubWeather{temp: 22}, stubGateway{analysis: &ObjectAnalysis{
			TemperatureType:          "Leaves",
			ExpectedTemperatureRange: "unknown",
			Confidence:               0.9,
		}})
		result, err := svc.PrecheckReport(context.Background(), image, "image/jpeg", "Kampala", "Leaves", 22)
		require.NoError(t, err)
		assert.False(t, result.IsWithinRange)
		assert.False(t, result.Success)
	})

	t.Run("weather failure propagates", func(t *testing.T) {
		svc := NewPrecheckService(stubWeather{err: errs.ErrGatewayUnavailable}, stubGateway{})
		_, err := svc.PrecheckReport(context.Background(), image, "image/jpeg", "Kampala", "Leaves", 22)
		assert.ErrorIs(t, err, errs.ErrGatewayUnavailable)
	})
}
