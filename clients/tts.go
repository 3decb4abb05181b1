package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

var ErrEmptyText = errors.New("empty text")

// TTS requests speech from a piper style service
// (GET <url>/api/text-to-speech?text=&voice=). On success the caller owns
// and must close the returned body.
func (h *HTTP) TTS(ctx context.Context, baseURL, text, voice string) (io.ReadCloser, string, error) {
	if text == "" {
		return nil, "", ErrEmptyText
	}
	u, err := url.Parse(baseURL + "/api/text-to-speech")
	if err != nil {
		return nil, "", err
	}
	q := u.Query()
	q.Set("text", text)
	if voice != "" {
		q.Set("voice", voice)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "audio/wav")

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("tts request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, "", fmt.Errorf("tts %s: %s", resp.Status, string(body))
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "audio/wav"
	}
	return resp.Body, ct, nil
}
