package speech

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/maastricht-university/lipsync-pipeline/clients"
	"github.com/maastricht-university/lipsync-pipeline/config"
)

const (
	BackendOpenAI = "openai"
	BackendRemote = "remote"
)

// NewFactory builds transcribers for the openai and remote backends.
func NewFactory(h *clients.HTTP) Factory {
	return func(name string, m config.Model) (Transcriber, error) {
		switch m.Backend {
		case BackendOpenAI, "":
			return newOpenAI(name, m), nil
		case BackendRemote:
			if m.URL == "" {
				return nil, fmt.Errorf("model %s: remote backend needs a url", name)
			}
			return &remote{http: h, url: strings.TrimRight(m.URL, "/"), language: m.Language}, nil
		default:
			return nil, fmt.Errorf("model %s: unknown backend %q", name, m.Backend)
		}
	}
}

// openAITranscriber talks to any OpenAI-compatible audio transcription API.
type openAITranscriber struct {
	client   openai.Client
	model    string
	language string
}

func newOpenAI(name string, m config.Model) *openAITranscriber {
	var opts []option.RequestOption
	if m.APIKey != "" {
		opts = append(opts, option.WithAPIKey(m.APIKey))
	}
	if m.URL != "" {
		opts = append(opts, option.WithBaseURL(m.URL))
	}
	model := m.Model
	if model == "" {
		model = name
	}
	return &openAITranscriber{client: openai.NewClient(opts...), model: model, language: m.Language}
}

func (o *openAITranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		File:  f,
		Model: openai.AudioModel(o.model),
	}
	if o.language != "" {
		params.Language = openai.String(o.language)
	}
	resp, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

type remote struct {
	http     *clients.HTTP
	url      string
	language string
}

func (r *remote) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := r.http.ASR(ctx, r.url, audioPath, r.language)
	if err != nil {
		return "", err
	}
	if resp.Text != "" {
		return strings.TrimSpace(resp.Text), nil
	}
	parts := make([]string, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		parts = append(parts, strings.TrimSpace(s.Text))
	}
	return strings.Join(parts, " "), nil
}
