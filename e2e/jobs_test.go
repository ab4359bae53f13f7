package e2e

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestStatus_NotFound(t *testing.T) {
	ta := setupApp(t, false)

	resp, err := doRequest(ta.app, http.MethodGet, "/api/v1/status/deadbeef", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
	if code := errorCode(t, resp); code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %s", code)
	}
}

func TestStatus_Processing(t *testing.T) {
	ta := setupApp(t, true)

	jobID := submitJob(t, ta.app)
	body := waitForStatus(t, ta.app, jobID, "processing")

	if _, ok := body["output_url"]; ok {
		t.Errorf("expected no output_url before completion, got %v", body["output_url"])
	}
	if body["started_at"] == nil {
		t.Error("expected started_at once processing")
	}
}

func TestDownload_NotReady(t *testing.T) {
	ta := setupApp(t, true)

	jobID := submitJob(t, ta.app)
	waitForStatus(t, ta.app, jobID, "processing")

	resp, err := doRequest(ta.app, http.MethodGet, "/api/v1/download/"+jobID, "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
	if code := errorCode(t, resp); code != "JOB_NOT_READY" {
		t.Errorf("expected JOB_NOT_READY, got %s", code)
	}
}

func TestDownload_Completed(t *testing.T) {
	ta := setupApp(t, false)

	jobID := submitJob(t, ta.app)
	waitForStatus(t, ta.app, jobID, "completed")

	resp, err := doRequest(ta.app, http.MethodGet, "/api/v1/download/"+jobID, "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	if ct := resp.Header.Get("Content-Type"); ct != "video/mp4" {
		t.Errorf("expected video/mp4, got %q", ct)
	}
	want := fmt.Sprintf("ltx2_%s.mp4", jobID)
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, want) {
		t.Errorf("expected attachment %s, got %q", want, cd)
	}
	if body := readBody(t, resp); !bytes.Equal([]byte(body), fakeMP4) {
		t.Errorf("unexpected download body %q", body)
	}
}

func TestDownload_NotFound(t *testing.T) {
	ta := setupApp(t, false)

	resp, err := doRequest(ta.app, http.MethodGet, "/api/v1/download/deadbeef", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
}

func TestListJobs_LimitKeepsMostRecent(t *testing.T) {
	ta := setupApp(t, true)

	ids := []string{submitJob(t, ta.app), submitJob(t, ta.app), submitJob(t, ta.app)}

	resp, err := doRequest(ta.app, http.MethodGet, "/api/v1/jobs?limit=2", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	if body["count"] != float64(2) {
		t.Fatalf("expected count 2, got %v", body["count"])
	}
	jobs, _ := body["jobs"].([]interface{})
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	for i, want := range ids[1:] {
		job, _ := jobs[i].(map[string]interface{})
		if job["job_id"] != want {
			t.Errorf("jobs[%d]: expected %s, got %v", i, want, job["job_id"])
		}
	}
}

func TestListJobs_DefaultLimit(t *testing.T) {
	ta := setupApp(t, false)

	resp, err := doRequest(ta.app, http.MethodGet, "/api/v1/jobs", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	if body["count"] != float64(0) {
		t.Errorf("expected empty list, got %v", body["count"])
	}
}

func TestListJobs_InvalidLimit(t *testing.T) {
	ta := setupApp(t, false)

	for _, limit := range []string{"0", "-3", "ten"} {
		resp, err := doRequest(ta.app, http.MethodGet, "/api/v1/jobs?limit="+limit, "", nil)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("limit=%s: expected 400, got %d", limit, resp.StatusCode)
		}
	}
}

func TestDeleteJob_Completed(t *testing.T) {
	ta := setupApp(t, false)

	jobID := submitJob(t, ta.app)
	waitForStatus(t, ta.app, jobID, "completed")

	resp, err := doRequest(ta.app, http.MethodDelete, "/api/v1/jobs/"+jobID, "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	if body["status"] != "deleted" || body["job_id"] != jobID {
		t.Errorf("unexpected delete response: %v", body)
	}

	resp, err = doRequest(ta.app, http.MethodGet, "/api/v1/status/"+jobID, "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)

	resp, err = doRequest(ta.app, http.MethodGet, "/api/v1/download/"+jobID, "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
}

func TestDeleteJob_Processing(t *testing.T) {
	ta := setupApp(t, true)

	jobID := submitJob(t, ta.app)
	waitForStatus(t, ta.app, jobID, "processing")

	resp, err := doRequest(ta.app, http.MethodDelete, "/api/v1/jobs/"+jobID, "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusConflict)
	if code := errorCode(t, resp); code != "JOB_BUSY" {
		t.Errorf("expected JOB_BUSY, got %s", code)
	}

	ta.release()
	waitForStatus(t, ta.app, jobID, "completed")
}

func TestDeleteJob_PendingIsSkipped(t *testing.T) {
	ta := setupApp(t, true)

	first := submitJob(t, ta.app)
	waitForStatus(t, ta.app, first, "processing")
	second := submitJob(t, ta.app)

	resp, err := doRequest(ta.app, http.MethodDelete, "/api/v1/jobs/"+second, "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	ta.release()
	waitForStatus(t, ta.app, first, "completed")

	resp, err = doRequest(ta.app, http.MethodGet, "/api/v1/status/"+second, "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
}

func TestDeleteJob_NotFound(t *testing.T) {
	ta := setupApp(t, false)

	resp, err := doRequest(ta.app, http.MethodDelete, "/api/v1/jobs/deadbeef", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
}

func TestJobsRunOneAtATime(t *testing.T) {
	ta := setupApp(t, true)

	first := submitJob(t, ta.app)
	second := submitJob(t, ta.app)
	waitForStatus(t, ta.app, first, "processing")

	resp, err := doRequest(ta.app, http.MethodGet, "/api/v1/status/"+second, "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if body := parseJSON(t, resp); body["status"] != "pending" {
		t.Errorf("expected second job to wait, got %v", body["status"])
	}

	ta.release()
	waitForStatus(t, ta.app, first, "completed")
	waitForStatus(t, ta.app, second, "completed")
}
