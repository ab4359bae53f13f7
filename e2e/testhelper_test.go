package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/ltxvideo/api/internal/auth"
	"github.com/ltxvideo/api/internal/config"
	"github.com/ltxvideo/api/internal/pipeline"
	"github.com/ltxvideo/api/internal/server"
)

const testJWTSecret = "test-secret-for-e2e"

// Small enough that the mock pipeline allocates almost nothing
const smallVideoBody = `{"prompt": "a red fox in the snow", "height": 32, "width": 32, "num_frames": 9}`

// fakeMP4 is what stubEncoder writes in place of a real video
var fakeMP4 = []byte("\x00\x00\x00\x18ftypmp42")

// stubEncoder writes a placeholder file instead of running ffmpeg
type stubEncoder struct{}

func (stubEncoder) Encode(ctx context.Context, req *pipeline.EncodeRequest) error {
	return os.WriteFile(req.OutputPath, fakeMP4, 0o644)
}

// gatedPipeline holds every generation until the gate is closed
type gatedPipeline struct {
	*pipeline.MockPipeline
	gate chan struct{}
}

func (p *gatedPipeline) Generate(ctx context.Context, params *pipeline.Params) pipeline.Result {
	select {
	case <-p.gate:
	case <-ctx.Done():
		return pipeline.Failure(ctx.Err().Error())
	}
	return p.MockPipeline.Generate(ctx, params)
}

// testApp holds all components needed for testing
type testApp struct {
	app  *fiber.App
	srv  *server.Server
	gate chan struct{}
}

// release lets held generations proceed
func (ta *testApp) release() {
	close(ta.gate)
}

type appOption func(*config.Config)

func withAuth(cfg *config.Config) {
	cfg.Auth.Enabled = true
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Port:        "0",
			LogLevel:    "error",
			LogFormat:   "text",
			BodyLimitMB: 50,
		},
		Storage:  config.StorageConfig{OutputDir: t.TempDir()},
		Upload:   config.UploadConfig{MaxImageMB: 1},
		Pipeline: config.PipelineConfig{Mode: "mock", ModelName: "ltx-2-test", AudioSampleRate: 16000},
		Engine:   config.EngineConfig{Backend: "local", Queue: "generation"},
		Auth:     config.AuthConfig{JWTSecret: testJWTSecret},
		Capabilities: config.CapabilitiesConfig{
			MaxFrames:     241,
			MaxResolution: "768x512",
			DefaultFPS:    25,
			Quantization:  "FP8",
		},
	}
}

// setupApp builds the real server around a mock pipeline and a stub encoder.
// Generations run immediately unless held is true, in which case they wait
// for ta.release.
func setupApp(t *testing.T, held bool, opts ...appOption) *testApp {
	t.Helper()

	cfg := testConfig(t)
	for _, opt := range opts {
		opt(cfg)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gate := make(chan struct{})
	if !held {
		close(gate)
	}

	srv, err := server.New(cfg, logger, server.Options{
		Pipeline: &gatedPipeline{MockPipeline: pipeline.NewMockPipeline(0, cfg.Pipeline.AudioSampleRate), gate: gate},
		Encoder:  stubEncoder{},
	})
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	ta := &testApp{app: srv.App, srv: srv, gate: gate}
	t.Cleanup(func() {
		if held {
			select {
			case <-gate:
			default:
				close(gate)
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Engine.Shutdown(ctx)
	})
	return ta
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token, err := auth.GenerateToken(testJWTSecret, "test-user-123", "test@example.com", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// doMultipart posts form fields plus an optional image file.
func doMultipart(app *fiber.App, path string, fields map[string]string, image []byte) (*http.Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "input.png")
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(image); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return app.Test(req, -1)
}

// submitJob queues a small text-to-video job and returns its id.
func submitJob(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := doRequest(app, http.MethodPost, "/api/v1/text-to-video", smallVideoBody, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusAccepted)
	body := parseJSON(t, resp)
	id, _ := body["job_id"].(string)
	if id == "" {
		t.Fatalf("expected job_id in response, got %v", body)
	}
	return id
}

// waitForStatus polls the status endpoint until the job reaches want.
func waitForStatus(t *testing.T, app *fiber.App, jobID, want string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := doRequest(app, http.MethodGet, "/api/v1/status/"+jobID, "", nil)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		body := parseJSON(t, resp)
		if body["status"] == want {
			return body
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s never reached %s, last status %v", jobID, want, body["status"])
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// errorCode extracts error.code from an error envelope.
func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	body := parseJSON(t, resp)
	detail, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got %v", body)
	}
	code, _ := detail["code"].(string)
	return code
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
