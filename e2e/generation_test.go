package e2e

import (
	"net/http"
	"testing"
)

var pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func TestTextToVideo_Accepted(t *testing.T) {
	ta := setupApp(t, true)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/v1/text-to-video", smallVideoBody, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusAccepted)

	result := parseJSON(t, resp)
	id, _ := result["job_id"].(string)
	if len(id) != 8 {
		t.Errorf("expected 8 character job_id, got %q", id)
	}
	if result["status"] != "pending" {
		t.Errorf("expected status 'pending', got %v", result["status"])
	}
}

func TestTextToVideo_MissingPrompt(t *testing.T) {
	ta := setupApp(t, false)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/v1/text-to-video", `{"num_frames": 9}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
	if code := errorCode(t, resp); code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", code)
	}
}

func TestTextToVideo_BlankPrompt(t *testing.T) {
	ta := setupApp(t, false)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/v1/text-to-video", `{"prompt": "   "}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestTextToVideo_InvalidBody(t *testing.T) {
	ta := setupApp(t, false)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/v1/text-to-video", `{invalid json}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestTextToVideo_Completes(t *testing.T) {
	ta := setupApp(t, false)

	jobID := submitJob(t, ta.app)
	body := waitForStatus(t, ta.app, jobID, "completed")

	if body["output_url"] != "/api/v1/download/"+jobID {
		t.Errorf("unexpected output_url: %v", body["output_url"])
	}
	if body["started_at"] == nil || body["completed_at"] == nil {
		t.Error("expected started_at and completed_at to be set")
	}
	if _, ok := body["error"]; ok {
		t.Errorf("expected no error, got %v", body["error"])
	}
}

func TestImageToVideo_Accepted(t *testing.T) {
	ta := setupApp(t, false)

	resp, err := doMultipart(ta.app, "/api/v1/image-to-video", map[string]string{
		"prompt":     "the cat starts to dance",
		"height":     "32",
		"width":      "32",
		"num_frames": "9",
		"frame_rate": "24",
	}, pngImage)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusAccepted)

	result := parseJSON(t, resp)
	jobID, _ := result["job_id"].(string)
	if jobID == "" {
		t.Fatal("expected job_id in response")
	}
	waitForStatus(t, ta.app, jobID, "completed")
}

func TestImageToVideo_MissingImage(t *testing.T) {
	ta := setupApp(t, false)

	resp, err := doMultipart(ta.app, "/api/v1/image-to-video", map[string]string{
		"prompt": "the cat starts to dance",
	}, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestImageToVideo_NotAnImage(t *testing.T) {
	ta := setupApp(t, false)

	resp, err := doMultipart(ta.app, "/api/v1/image-to-video", map[string]string{
		"prompt": "the cat starts to dance",
	}, []byte("plain text, not an image"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestImageToVideo_InvalidNumber(t *testing.T) {
	ta := setupApp(t, false)

	resp, err := doMultipart(ta.app, "/api/v1/image-to-video", map[string]string{
		"prompt":     "the cat starts to dance",
		"num_frames": "many",
	}, pngImage)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)

	body := parseJSON(t, resp)
	detail, _ := body["error"].(map[string]interface{})
	fields, _ := detail["details"].(map[string]interface{})
	if fields["num_frames"] != "int" {
		t.Errorf("expected num_frames to be reported, got %v", detail["details"])
	}
}

func TestImageToVideo_TooLarge(t *testing.T) {
	ta := setupApp(t, false)

	big := make([]byte, 2*1024*1024)
	copy(big, pngImage)
	resp, err := doMultipart(ta.app, "/api/v1/image-to-video", map[string]string{
		"prompt": "the cat starts to dance",
	}, big)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}
