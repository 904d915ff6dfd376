package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/techagentng/thermotrack/config"
	errs "github.com/techagentng/thermotrack/errors"
)

const (
	defaultGeminiBaseUrl = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-1.5-flash"
	gatewayTimeout       = 30 * time.Second
)

// ObjectAnalysis is the gateway's judgment on a submitter's own image.
type ObjectAnalysis struct {
	TemperatureType          string  `json:"temperatureType"`
	ExpectedTemperatureRange string  `json:"expectedTemperatureRange"`
	Confidence               float64 `json:"confidence"`
}

// MaterialJudgment is the gateway's judgment on a collector's
// verification image.
type MaterialJudgment struct {
	MaterialTypeMatch      bool    `json:"materialTypeMatch"`
	TemperatureWithinRange bool    `json:"temperatureWithinRange"`
	Confidence             float64 `json:"confidence"`
}

// VisionGateway is the external AI verifier. It is treated as a black
// box returning structured judgments; malformed output is a verification
// failure, never fatal.
type VisionGateway interface {
	AnalyzeObject(ctx context.Context, image []byte, mimeType string, weather float64) (*ObjectAnalysis, error)
	VerifyMaterial(ctx context.Context, image []byte, mimeType string, materialType string, weather float64) (*MaterialJudgment, error)
}

type geminiClient struct {
	apiKey  string
	baseUrl string
	model   string
	client  *http.Client
}

// NewVisionGateway builds the gateway client from injected config; the
// API key is never read from the environment mid-flow.
func NewVisionGateway(conf *config.Config) VisionGateway {
	baseUrl := conf.GeminiBaseUrl
	if baseUrl == "" {
		baseUrl = defaultGeminiBaseUrl
	}
	model := conf.GeminiModel
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiClient{
		apiKey:  conf.GeminiApiKey,
		baseUrl: baseUrl,
		model:   model,
		client:  &http.Client{Timeout: gatewayTimeout},
	}
}

func (g *geminiClient) AnalyzeObject(ctx context.Context, image []byte, mimeType string, weather float64) (*ObjectAnalysis, error) {
	prompt := fmt.Sprintf(`You are an expert in temperature and object type analysis. Analyze the given object and provide a detailed report:

1. Identify the type of object in the image based on the following categories:
%s

2. Based on the current weather temperature (%.1f°C), estimate the expected temperature range for this object.
3. Provide your confidence level in this analysis.

Respond in JSON format like this:
{
  "temperatureType": "detected type of object",
  "expectedTemperatureRange": "range of expected temperature in °C",
  "confidence": "confidence level as a decimal between 0 and 1"
}`, TaxonomyPrompt(), weather)

	raw, err := g.generateContent(ctx, image, mimeType, prompt)
	if err != nil {
		return nil, err
	}

	temperatureType, ok := raw["temperatureType"].(string)
	if !ok || temperatureType == "" {
		return nil, fmt.Errorf("%w: missing temperatureType", errs.ErrGatewayUnavailable)
	}
	expectedRange, ok := raw["expectedTemperatureRange"].(string)
	if !ok || expectedRange == "" {
		return nil, fmt.Errorf("%w: missing expectedTemperatureRange", errs.ErrGatewayUnavailable)
	}
	confidence, err := coerceFloat(raw["confidence"])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrGatewayUnavailable, err)
	}

	return &ObjectAnalysis{
		TemperatureType:          temperatureType,
		ExpectedTemperatureRange: expectedRange,
		Confidence:               confidence,
	}, nil
}

func (g *geminiClient) VerifyMaterial(ctx context.Context, image []byte, mimeType string, materialType string, weather float64) (*MaterialJudgment, error) {
	prompt := fmt.Sprintf(`You are an expert in material verification and temperature analysis. Please analyze the image and respond:

1. Does the material in the image match the task's material type: "%s"?
2. Based on the current weather temperature (%.1f°C), is the temperature within the expected range for this material?
3. Provide your confidence level in this assessment as a number between 0 and 1.

Respond in JSON format like this:
{
  "materialTypeMatch": true/false,
  "temperatureWithinRange": true/false,
  "confidence": number
}`, materialType, weather)

	raw, err := g.generateContent(ctx, image, mimeType, prompt)
	if err != nil {
		return nil, err
	}

	materialTypeMatch, err := coerceBool(raw["materialTypeMatch"])
	if err != nil {
		return nil, fmt.Errorf("%w: materialTypeMatch: %v", errs.ErrGatewayUnavailable, err)
	}
	withinRange, err := coerceBool(raw["temperatureWithinRange"])
	if err != nil {
		return nil, fmt.Errorf("%w: temperatureWithinRange: %v", errs.ErrGatewayUnavailable, err)
	}
	confidence, err := coerceFloat(raw["confidence"])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrGatewayUnavailable, err)
	}

	return &MaterialJudgment{
		MaterialTypeMatch:      materialTypeMatch,
		TemperatureWithinRange: withinRange,
		Confidence:             confidence,
	}, nil
}

// generateContent posts the image plus prompt to the model endpoint and
// returns the model's JSON body as a generic map.
func (g *geminiClient) generateContent(ctx context.Context, image []byte, mimeType string, prompt string) (map[string]interface{}, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	body := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{
						"inline_data": map[string]string{
							"mime_type": mimeType,
							"data":      base64.StdEncoding.EncodeToString(image),
						},
					},
					{"text": prompt},
				},
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseUrl, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gateway returned %d", errs.ErrGatewayUnavailable, resp.StatusCode)
	}

	var rsp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rsp); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrGatewayUnavailable, err)
	}
	if len(rsp.Candidates) == 0 || len(rsp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty gateway response", errs.ErrGatewayUnavailable)
	}

	cleaned := stripModelFences(rsp.Candidates[0].Content.Parts[0].Text)
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed gateway JSON: %v", errs.ErrGatewayUnavailable, err)
	}
	return raw, nil
}

// stripModelFences removes the markdown code fences the model wraps its
// JSON in.
func stripModelFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func coerceFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid confidence %q", val)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("missing confidence")
	default:
		return 0, fmt.Errorf("invalid confidence type %T", v)
	}
}

func coerceBool(v interface{}) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return false, fmt.Errorf("invalid boolean %q", val)
		}
		return b, nil
	case nil:
		return false, fmt.Errorf("missing value")
	default:
		return false, fmt.Errorf("invalid boolean type %T", v)
	}
}
