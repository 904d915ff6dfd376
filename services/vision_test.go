package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techagentng/thermotrack/config"
	errs "github.com/techagentng/thermotrack/errors"
)

func gatewayResponding(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "contents")

		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": text}},
				}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func gatewayForTest(baseUrl string) VisionGateway {
	return NewVisionGateway(&config.Config{
		GeminiApiKey:  "test-key",
		GeminiBaseUrl: baseUrl,
		GeminiModel:   "test-model",
	})
}

func TestAnalyzeObject(t *testing.T) {
	image := []byte("jpeg-bytes")

	t.Run("parses a plain JSON body", func(t *testing.T) {
		srv := gatewayResponding(t, `{"temperatureType":"Leaves","expectedTemperatureRange":"18 - 28°C","confidence":0.9}`)
		defer srv.Close()

		analysis, err := gatewayForTest(srv.URL).AnalyzeObject(context.Background(), image, "image/jpeg", 22)
		require.NoError(t, err)
		assert.Equal(t, "Leaves", analysis.TemperatureType)
		assert.Equal(t, "18 - 28°C", analysis.ExpectedTemperatureRange)
		assert.InDelta(t, 0.9, analysis.Confidence, 1e-9)
	})

	t.Run("strips markdown fences", func(t *testing.T) {
		srv := gatewayResponding(t, "```json\n{\"temperatureType\":\"Soil\",\"expectedTemperatureRange\":\"15 - 25°C\",\"confidence\":\"0.85\"}\n```")
		defer srv.Close()

		analysis, err := gatewayForTest(srv.URL).AnalyzeObject(context.Background(), image, "image/jpeg", 20)
		require.NoError(t, err)
		assert.Equal(t, "Soil", analysis.TemperatureType)
		assert.InDelta(t, 0.85, analysis.Confidence, 1e-9)
	})

	t.Run("malformed JSON is a gateway failure", func(t *testing.T) {
		srv := gatewayResponding(t, "I could not analyze this image")
		defer srv.Close()

		_, err := gatewayForTest(srv.URL).AnalyzeObject(context.Background(), image, "image/jpeg", 22)
		assert.ErrorIs(t, err, errs.ErrGatewayUnavailable)
	})

	t.Run("missing keys are a gateway failure", func(t *testing.T) {
		srv := gatewayResponding(t, `{"confidence":0.9}`)
		defer srv.Close()

		_, err := gatewayForTest(srv.URL).AnalyzeObject(context.Background(), image, "image/jpeg", 22)
		assert.ErrorIs(t, err, errs.ErrGatewayUnavailable)
	})

	t.Run("non-200 status is a gateway failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := gatewayForTest(srv.URL).AnalyzeObject(context.Background(), image, "image/jpeg", 22)
		assert.ErrorIs(t, err, errs.ErrGatewayUnavailable)
	})
}

func TestVerifyMaterial(t *testing.T) {
	image := []byte("jpeg-bytes")

	t.Run("parses booleans and numeric confidence", func(t *testing.T) {
		srv := gatewayResponding(t, `{"materialTypeMatch":true,"temperatureWithinRange":false,"confidence":0.8}`)
		defer srv.Close()

		judgment, err := gatewayForTest(srv.URL).VerifyMaterial(context.Background(), image, "image/jpeg", "Leaves", 22)
		require.NoError(t, err)
		assert.True(t, judgment.MaterialTypeMatch)
		assert.False(t, judgment.TemperatureWithinRange)
		assert.InDelta(t, 0.8, judgment.Confidence, 1e-9)
	})

	t.Run("string booleans are tolerated", func(t *testing.T) {
		srv := gatewayResponding(t, `{"materialTypeMatch":"true","temperatureWithinRange":"true","confidence":"0.95"}`)
		defer srv.Close()

		judgment, err := gatewayForTest(srv.URL).VerifyMaterial(context.Background(), image, "image/jpeg", "Leaves", 22)
		require.NoError(t, err)
		assert.True(t, judgment.MaterialTypeMatch)
		assert.True(t, judgment.TemperatureWithinRange)
	})

	t.Run("missing fields are a gateway failure", func(t *testing.T) {
		srv := gatewayResponding(t, `{"confidence":0.9}`)
		defer srv.Close()

		_, err := gatewayForTest(srv.URL).VerifyMaterial(context.Background(), image, "image/jpeg", "Leaves", 22)
		assert.ErrorIs(t, err, errs.ErrGatewayUnavailable)
	})
}

func TestStripModelFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripModelFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripModelFences(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, stripModelFences("```\n{\"a\":1}\n```"))
}
