package clients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestASR(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/asr" || r.URL.Query().Get("output") != "json" || r.URL.Query().Get("language") != "en" {
			t.Errorf("unexpected request %s", r.URL)
		}
		f, hdr, err := r.FormFile("audio_file")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		if hdr.Filename != "clip.mp3" || string(body) != "audio-bytes" {
			t.Errorf("got %s %q", hdr.Filename, body)
		}
		_ = json.NewEncoder(w).Encode(ASRResp{Text: "hello there", Language: "en"})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, []byte("audio-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := NewHTTP().ASR(context.Background(), srv.URL, path, "en")
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "hello there" {
		t.Errorf("text = %q", out.Text)
	}
}

func TestASRErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model missing", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	path := filepath.Join(t.TempDir(), "clip.wav")
	_ = os.WriteFile(path, []byte("x"), 0o644)
	if _, err := NewHTTP().ASR(context.Background(), srv.URL, path, ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestTTS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/text-to-speech" || r.URL.Query().Get("text") != "hi there" || r.URL.Query().Get("voice") != "amy" {
			t.Errorf("unexpected request %s", r.URL)
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF...."))
	}))
	defer srv.Close()

	body, ct, err := NewHTTP().TTS(context.Background(), srv.URL, "hi there", "amy")
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()
	data, _ := io.ReadAll(body)
	if ct != "audio/wav" || string(data) != "RIFF...." {
		t.Errorf("got %s %q", ct, data)
	}

	if _, _, err := NewHTTP().TTS(context.Background(), srv.URL, "", ""); !errors.Is(err, ErrEmptyText) {
		t.Errorf("empty text: %v", err)
	}
}
