package webhook

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testToken = "gradingbot123securetokenverysecure"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New("127.0.0.1:0", testToken).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestDeletionEndpoint_GetAnswersOK(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + deletionPath)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestDeletionEndpoint_ValidToken(t *testing.T) {
	ts := newTestServer(t)

	body := strings.NewReader(`{"verification_token":"` + testToken + `"}`)
	resp, err := http.Post(ts.URL+deletionPath, "application/json", body)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 for matching token", resp.StatusCode)
	}
}

func TestDeletionEndpoint_InvalidToken(t *testing.T) {
	ts := newTestServer(t)

	body := strings.NewReader(`{"verification_token":"wrong"}`)
	resp, err := http.Post(ts.URL+deletionPath, "application/json", body)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for wrong token", resp.StatusCode)
	}
}

func TestDeletionEndpoint_MalformedBody(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+deletionPath, "application/json", strings.NewReader("not json"))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed body", resp.StatusCode)
	}
}
