package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ltxvideo/api/internal/config"
)

// HTTPPipeline calls an inference microservice that hosts the model.
type HTTPPipeline struct {
	httpClient *http.Client
	baseURL    string
	sampleRate int
}

type generateImage struct {
	Data       string  `json:"data"`
	FrameIndex int     `json:"frame_index"`
	Strength   float64 `json:"strength"`
}

type generateRequest struct {
	Prompt            string          `json:"prompt"`
	NegativePrompt    string          `json:"negative_prompt"`
	Seed              int64           `json:"seed"`
	Height            int             `json:"height"`
	Width             int             `json:"width"`
	NumFrames         int             `json:"num_frames"`
	FrameRate         float64         `json:"frame_rate"`
	NumInferenceSteps int             `json:"num_inference_steps"`
	CFGGuidanceScale  float64         `json:"cfg_guidance_scale"`
	Images            []generateImage `json:"images"`
	Tiling            TilingConfig    `json:"tiling_config"`
}

type generateResponse struct {
	Video      string `json:"video"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	NumFrames  int    `json:"num_frames"`
	Audio      string `json:"audio"`
	SampleRate int    `json:"sample_rate"`
	Error      string `json:"error"`
}

// NewHTTPPipeline creates a client for the inference service.
func NewHTTPPipeline(cfg *config.PipelineConfig) *HTTPPipeline {
	return &HTTPPipeline{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		baseURL:    cfg.ServiceURL,
		sampleRate: cfg.AudioSampleRate,
	}
}

// Generate runs one generation on the remote service.
func (p *HTTPPipeline) Generate(ctx context.Context, params *Params) Result {
	body := generateRequest{
		Prompt:            params.Prompt,
		NegativePrompt:    params.NegativePrompt,
		Seed:              params.Seed,
		Height:            params.Height,
		Width:             params.Width,
		NumFrames:         params.NumFrames,
		FrameRate:         params.FrameRate,
		NumInferenceSteps: params.NumInferenceSteps,
		CFGGuidanceScale:  params.CFGGuidanceScale,
		Images:            make([]generateImage, 0, len(params.Images)),
		Tiling:            params.Tiling,
	}
	for _, img := range params.Images {
		data, err := os.ReadFile(img.Path)
		if err != nil {
			return Failure(fmt.Sprintf("failed to read reference image: %v", err))
		}
		body.Images = append(body.Images, generateImage{
			Data:       base64.StdEncoding.EncodeToString(data),
			FrameIndex: img.FrameIndex,
			Strength:   img.Strength,
		})
	}

	var resp generateResponse
	if err := p.post(ctx, "/generate", body, &resp); err != nil {
		return Failure(err.Error())
	}
	if resp.Error != "" {
		return Failure(resp.Error)
	}

	video, err := base64.StdEncoding.DecodeString(resp.Video)
	if err != nil {
		return Failure(fmt.Sprintf("failed to decode video: %v", err))
	}
	audio, err := base64.StdEncoding.DecodeString(resp.Audio)
	if err != nil {
		return Failure(fmt.Sprintf("failed to decode audio: %v", err))
	}

	out := &Output{
		Video:      video,
		Width:      resp.Width,
		Height:     resp.Height,
		NumFrames:  resp.NumFrames,
		Audio:      audio,
		SampleRate: resp.SampleRate,
	}
	if out.SampleRate == 0 {
		out.SampleRate = p.sampleRate
	}
	if err := out.Check(); err != nil {
		return Failure(err.Error())
	}
	return Succeeded(out)
}

// Ready reports whether the inference service answers its health check.
func (p *HTTPPipeline) Ready(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (p *HTTPPipeline) post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("inference service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
