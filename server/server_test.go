package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/maastricht-university/lipsync-pipeline/audio"
	"github.com/maastricht-university/lipsync-pipeline/config"
	"github.com/maastricht-university/lipsync-pipeline/export"
	"github.com/maastricht-university/lipsync-pipeline/logging"
	"github.com/maastricht-university/lipsync-pipeline/phoneme"
	"github.com/maastricht-university/lipsync-pipeline/speech"
)

func init() { gin.SetMode(gin.TestMode) }

type echoModel struct{ name string }

func (m echoModel) Transcribe(_ context.Context, _ string) (string, error) {
	if m.name == "broken" {
		return "", errors.New("backend down")
	}
	return "hello from " + m.name, nil
}

func testConfig() *config.Root {
	c := &config.Root{}
	c.Audio.SampleRate = 16000
	c.Audio.FrameSize = 160
	c.Speech.DefaultModel = "tiny"
	c.Services.TTS.Timeout = 5
	return c
}

func newTestServer(t *testing.T, c *config.Root) *Server {
	t.Helper()
	factory := func(name string, _ config.Model) (speech.Transcriber, error) {
		return echoModel{name: name}, nil
	}
	models := map[string]config.Model{"tiny": {}, "large": {}, "broken": {}}
	return New(Deps{
		Config:  c,
		Log:     logging.Discard(),
		Session: speech.NewSession(models, factory, logging.Discard()),
	})
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(headerRequestID) == "" {
		t.Error("missing request id header")
	}
}

func TestTranscribe(t *testing.T) {
	s := newTestServer(t, testConfig())
	audioB64 := base64.StdEncoding.EncodeToString([]byte("ID3 fake mp3"))

	tests := []struct {
		name   string
		form   url.Values
		status int
		text   string
	}{
		{"default model", url.Values{"file": {audioB64}}, http.StatusOK, "hello from tiny"},
		{"named model", url.Values{"model_name": {"large"}, "file": {audioB64}}, http.StatusOK, "hello from large"},
		{"unknown model", url.Values{"model_name": {"huge"}, "file": {audioB64}}, http.StatusBadRequest, ""},
		{"bad base64", url.Values{"file": {"%%%"}}, http.StatusBadRequest, ""},
		{"no audio", url.Values{"model_name": {"tiny"}}, http.StatusBadRequest, ""},
		{"backend failure", url.Values{"model_name": {"broken"}, "file": {audioB64}}, http.StatusBadGateway, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(t, s.Router(), "/transcribe", tt.form)
			if rec.Code != tt.status {
				t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
			}
			if tt.text == "" {
				return
			}
			var out struct{ Text string }
			if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
				t.Fatal(err)
			}
			if out.Text != tt.text {
				t.Errorf("text = %q want %q", out.Text, tt.text)
			}
		})
	}
	if got := s.session.Active(); got != "broken" {
		t.Errorf("active model = %q", got)
	}
}

func TestTranscribeWithoutSession(t *testing.T) {
	s := New(Deps{Config: testConfig(), Log: logging.Discard()})
	rec := postForm(t, s.Router(), "/transcribe", url.Values{"file": {"AAAA"}})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSpeechRelay(t *testing.T) {
	wav := []byte("RIFF....WAVEfmt fake audio payload")
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/text-to-speech" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("text") == "fail" {
			http.Error(w, "synth crashed", http.StatusInternalServerError)
			return
		}
		if r.URL.Query().Get("voice") != "en_US-lessac" {
			t.Errorf("voice = %q", r.URL.Query().Get("voice"))
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(wav)
	}))
	defer upstream.Close()

	c := testConfig()
	c.Services.TTS.URL = upstream.URL + "/"
	c.Services.TTS.Voice = "en_US-lessac"
	s := newTestServer(t, c)

	rec := postForm(t, s.Router(), "/speech", url.Values{"text": {"hello there"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), wav) {
		t.Errorf("body = %q", rec.Body.Bytes())
	}

	if rec := postForm(t, s.Router(), "/speech", url.Values{"text": {"   "}}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty text status = %d", rec.Code)
	}
	if rec := postForm(t, s.Router(), "/speech", url.Values{"text": {"fail"}}); rec.Code != http.StatusBadGateway {
		t.Errorf("upstream failure status = %d", rec.Code)
	}
}

func uploadWav(t *testing.T, h http.Handler, body []byte, frameSize string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if frameSize != "" {
		mw.WriteField("frame_size", frameSize)
	}
	fw, err := mw.CreateFormFile("file", "clip.wav")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(body)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/visemes", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func silentWav(t *testing.T, rate, n int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := audio.Encode(&buf, rate, 1, 2, make([]int32, n)); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestVisemesUpload(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := uploadWav(t, s.Router(), silentWav(t, 16000, 16000), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if mode := rec.Header().Get(headerMode); mode != "fallback" {
		t.Errorf("mode = %q", mode)
	}
	var doc export.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Format != export.FormatTag || doc.FrameCount != 100 || len(doc.Frames) != 100 {
		t.Fatalf("format=%q frames=%d/%d", doc.Format, doc.FrameCount, len(doc.Frames))
	}
	if doc.Duration != 1 {
		t.Errorf("duration = %v", doc.Duration)
	}
	for i, f := range doc.Frames {
		if f.Dominant != "sil" || f.Laugh != 0 {
			t.Fatalf("frame %d = %+v", i, f)
		}
	}

	rec = uploadWav(t, s.Router(), silentWav(t, 16000, 1000), "512")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.FrameCount != 2 {
		t.Errorf("frame_size 512 frames = %d", doc.FrameCount)
	}
}

func TestVisemesRejects(t *testing.T) {
	s := newTestServer(t, testConfig())
	tests := []struct {
		name      string
		body      []byte
		frameSize string
		status    int
	}{
		{"not a wav", []byte("definitely not audio"), "", http.StatusUnsupportedMediaType},
		{"zero frame size", silentWav(t, 16000, 100), "0", http.StatusBadRequest},
		{"bad frame size", silentWav(t, 16000, 100), "big", http.StatusBadRequest},
		{"frame size above max", silentWav(t, 16000, 100), "65537", http.StatusBadRequest},
		{"huge frame size", silentWav(t, 16000, 10), "2000000000", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := uploadWav(t, s.Router(), tt.body, tt.frameSize); rec.Code != tt.status {
				t.Errorf("status = %d want %d", rec.Code, tt.status)
			}
		})
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/visemes", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing file status = %d", rec.Code)
	}
}

func TestPhonemes(t *testing.T) {
	s := newTestServer(t, testConfig())
	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/phonemes", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		return rec
	}

	rec := post(`{"phonemes":"HH AH0 L OW1","duration":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	var out struct {
		Timings []phoneme.Timing `json:"timings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Timings) != 4 || out.Timings[3].End != 2 || out.Timings[1].Start != 0.5 {
		t.Fatalf("timings = %+v", out.Timings)
	}
	if out.Timings[3].Viseme != "O" {
		t.Errorf("OW viseme = %q", out.Timings[3].Viseme)
	}

	if rec := post(`{"text":"hello world","duration":1}`); rec.Code != http.StatusOK {
		t.Errorf("text status = %d", rec.Code)
	}
	for _, body := range []string{`{"duration":1}`, `{"text":"hi"}`, `{"text":"hi","duration":-1}`, `nope`} {
		if rec := post(body); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", body, rec.Code)
		}
	}
}

func TestVisemesRequireNative(t *testing.T) {
	c := testConfig()
	c.LipSync.RequireNative = true
	s := newTestServer(t, c)
	rec := uploadWav(t, s.Router(), silentWav(t, 16000, 320), "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "error") {
		t.Errorf("body = %s", body)
	}
}
