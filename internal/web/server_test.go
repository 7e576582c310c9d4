package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/evaluator"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/session"
)

type stubAnalyzer struct {
	mu     sync.Mutex
	result *model.AnalysisResult
	err    error
	gate   chan struct{}
	calls  []model.EvaluationMode
}

func (a *stubAnalyzer) Analyze(_ context.Context, _ model.Image, mode model.EvaluationMode) (*model.AnalysisResult, error) {
	a.mu.Lock()
	a.calls = append(a.calls, mode)
	a.mu.Unlock()
	if a.gate != nil {
		<-a.gate
	}
	return a.result, a.err
}

func (a *stubAnalyzer) modes() []model.EvaluationMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.EvaluationMode(nil), a.calls...)
}

func sampleResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		Score:           85,
		Title:           "朝の光",
		Summary:         "柔らかな光",
		Composition:     model.CategoryEvaluation{Score: 80, Advice: "三分割"},
		Lighting:        model.CategoryEvaluation{Score: 90, Advice: "逆光"},
		Color:           model.CategoryEvaluation{Score: 88, Advice: "暖色"},
		Pose:            model.CategoryEvaluation{Score: 82, Advice: "視線"},
		Costume:         model.CategoryEvaluation{Score: 84, Advice: "調和"},
		Strengths:       []string{"a", "b", "c"},
		Improvements:    []string{"x", "y", "z"},
		TechnicalAdvice: "f/2.8",
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 6))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestServer(a session.Analyzer) *Server {
	return New(a, Options{
		MaxUploadBytes: 1 << 20,
		RequestTimeout: 5 * time.Second,
		SessionTTL:     time.Hour,
		DefaultMode:    model.ModeMedium,
		Version:        "test",
	})
}

// client replays the session cookie across requests.
type client struct {
	t      *testing.T
	srv    *Server
	cookie *http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.srv.Handler().ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) upload(path string, fields map[string]string, data []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	req := multipartRequest(c.t, path, fields, data)
	return c.do(req)
}

func multipartRequest(t *testing.T, path string, fields map[string]string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if data != nil {
		part, err := w.CreateFormFile("photo", "photo.png")
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	}
	w.Close()
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (c *client) waitForPhase(want session.Phase) session.State {
	c.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		m, ok := c.srv.sessions.Get(c.cookie.Value, time.Now())
		if !ok {
			c.t.Fatal("session not found")
		}
		s := m.State()
		if s.Phase == want {
			return s
		}
		if time.Now().After(deadline) {
			c.t.Fatalf("phase = %v, want %v", s.Phase, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHealthCheck(t *testing.T) {
	c := &client{t: t, srv: newTestServer(&stubAnalyzer{})}
	rec := c.get("/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "available" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
}

func TestIndexStartsIdle(t *testing.T) {
	c := &client{t: t, srv: newTestServer(&stubAnalyzer{})}
	rec := c.get("/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if c.cookie == nil {
		t.Fatal("no session cookie issued")
	}
	body := rec.Body.String()
	for _, want := range []string{"写真をアップロード", "甘口 (Sweet)", "中辛 (Medium)", "辛口 (Spicy)", `value="MEDIUM" class="selected"`} {
		if !strings.Contains(body, want) {
			t.Errorf("idle page missing %q", want)
		}
	}
}

func TestModeSelectionPersists(t *testing.T) {
	c := &client{t: t, srv: newTestServer(&stubAnalyzer{})}
	c.get("/")

	rec := c.postForm("/mode", "mode=spicy")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if body := c.get("/").Body.String(); !strings.Contains(body, `value="SPICY" class="selected"`) {
		t.Error("SPICY not shown as selected")
	}

	c.postForm("/mode", "mode=EXTRA_HOT")
	if body := c.get("/").Body.String(); !strings.Contains(body, `value="SPICY" class="selected"`) {
		t.Error("unknown mode should leave the selection alone")
	}
}

func TestAnalyzeFlow(t *testing.T) {
	a := &stubAnalyzer{result: sampleResult(), gate: make(chan struct{})}
	c := &client{t: t, srv: newTestServer(a)}
	c.get("/")
	c.postForm("/mode", "mode=SWEET")

	data := pngBytes(t)
	rec := c.upload("/analyze", nil, data)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}

	page := c.get("/").Body.String()
	if !strings.Contains(page, "AIが写真を分析中") || !strings.Contains(page, "良いところを一生懸命探しています") {
		t.Error("analyzing page missing progress text for SWEET")
	}
	if !strings.Contains(page, `http-equiv="refresh"`) {
		t.Error("analyzing page should refresh itself")
	}

	// A second upload while analyzing is ignored.
	c.upload("/analyze", nil, data)

	close(a.gate)
	c.waitForPhase(session.PhaseSuccess)

	page = c.get("/").Body.String()
	for _, want := range []string{"朝の光", "評価ランキング", "照明・光", "Pro Tip: テクニカルアドバイス", "tier-great"} {
		if !strings.Contains(page, want) {
			t.Errorf("result page missing %q", want)
		}
	}
	if strings.Index(page, "照明・光") > strings.Index(page, "構図・構成") {
		t.Error("ranking should list lighting (90) before composition (80)")
	}

	prev := c.get("/preview")
	if prev.Code != http.StatusOK || prev.Header().Get("Content-Type") != "image/png" || !bytes.Equal(prev.Body.Bytes(), data) {
		t.Errorf("preview: status %d type %q", prev.Code, prev.Header().Get("Content-Type"))
	}

	if got := a.modes(); len(got) != 1 || got[0] != model.ModeSweet {
		t.Errorf("analyzer calls = %v, want one SWEET call", got)
	}

	c.postForm("/reset", "")
	s := c.waitForPhase(session.PhaseIdle)
	if s.Mode != model.ModeSweet || s.Result != nil || s.Preview != nil {
		t.Errorf("after reset got %+v", s)
	}
	if c.get("/preview").Code != http.StatusNotFound {
		t.Error("preview should be gone after reset")
	}
}

func TestAnalyzeFailureShowsGenericMessage(t *testing.T) {
	a := &stubAnalyzer{err: errors.New("googleapi: Error 403: API key not valid")}
	c := &client{t: t, srv: newTestServer(a)}
	c.get("/")

	c.upload("/analyze", nil, pngBytes(t))
	c.waitForPhase(session.PhaseError)

	page := c.get("/").Body.String()
	if !strings.Contains(page, session.GenericErrorMessage) {
		t.Error("error page missing generic message")
	}
	if strings.Contains(page, "API key") {
		t.Error("error page leaks provider detail")
	}
	if !strings.Contains(page, "やり直す") {
		t.Error("error page missing reset action")
	}
}

func TestAnalyzeOversizedUploadFails(t *testing.T) {
	a := &stubAnalyzer{result: sampleResult()}
	srv := New(a, Options{MaxUploadBytes: 16, DefaultMode: model.ModeMedium})
	c := &client{t: t, srv: srv}
	c.get("/")

	c.upload("/analyze", nil, pngBytes(t))
	c.waitForPhase(session.PhaseError)
	if len(a.modes()) != 0 {
		t.Error("oversized upload must not reach the analyzer")
	}
}

func TestAnalyzeWithoutFileStaysIdle(t *testing.T) {
	c := &client{t: t, srv: newTestServer(&stubAnalyzer{})}
	c.get("/")
	c.upload("/analyze", nil, nil)
	c.waitForPhase(session.PhaseIdle)
}

// fakeBackend lets the API tests run through the real analysis client.
type fakeBackend struct {
	text string
	err  error
}

func (f fakeBackend) Generate(context.Context, evaluator.Request) (*evaluator.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &evaluator.Response{Text: f.text}, nil
}
func (fakeBackend) Provider() string { return "fake" }
func (fakeBackend) Model() string    { return "fake-vision-1" }

func TestAPIAnalyze(t *testing.T) {
	valid, _ := json.Marshal(sampleResult())

	tests := []struct {
		name       string
		backend    fakeBackend
		fields     map[string]string
		data       []byte
		wantStatus int
	}{
		{"success", fakeBackend{text: string(valid)}, map[string]string{"mode": "spicy"}, pngBytes(t), http.StatusOK},
		{"unsupported type", fakeBackend{text: string(valid)}, nil, []byte("GIF89a\x01\x00\x01\x00"), http.StatusBadRequest},
		{"provider failure", fakeBackend{err: errors.New("timeout")}, nil, pngBytes(t), http.StatusBadGateway},
		{"schema failure", fakeBackend{text: `{"score": 85}`}, nil, pngBytes(t), http.StatusBadGateway},
		{"invalid mode", fakeBackend{text: string(valid)}, map[string]string{"mode": "mild"}, pngBytes(t), http.StatusBadRequest},
		{"missing photo", fakeBackend{text: string(valid)}, nil, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(evaluator.NewClient(tt.backend))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, multipartRequest(t, "/api/analyze", tt.fields, tt.data))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				var got model.AnalysisResult
				if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
					t.Fatal(err)
				}
				if got.Score != 85 || got.TechnicalAdvice != "f/2.8" {
					t.Errorf("unexpected result %+v", got)
				}
				return
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if strings.Contains(body.Message, "timeout") || strings.Contains(body.Message, "technical_advice") {
				t.Errorf("error message leaks detail: %q", body.Message)
			}
		})
	}
}

func TestAPIAnalyzeTooLarge(t *testing.T) {
	srv := New(&stubAnalyzer{}, Options{MaxUploadBytes: 16})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, multipartRequest(t, "/api/analyze", nil, pngBytes(t)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}
