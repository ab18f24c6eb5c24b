package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"

	"fria/internal/logging"
)

type Config struct {
	APIKey   string
	Model    string
	Language string
	Timeout  time.Duration
}

// recognizeFunc sends one buffered recording and returns the best transcript.
type recognizeFunc func(ctx context.Context, audio io.Reader) (string, error)

// DeepgramTranscriber uses Deepgram's prerecorded endpoint.
type DeepgramTranscriber struct {
	cfg       Config
	recognize recognizeFunc
	logger    *slog.Logger
}

func NewDeepgramTranscriber(cfg Config, log *slog.Logger) *DeepgramTranscriber {
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	t := &DeepgramTranscriber{
		cfg:    cfg,
		logger: logging.Component(log, "deepgram_stt"),
	}
	dg := api.New(client.NewREST(cfg.APIKey, &interfaces.ClientOptions{}))
	opts := &interfaces.PreRecordedTranscriptionOptions{
		Model:       cfg.Model,
		Language:    cfg.Language,
		SmartFormat: true,
		Punctuate:   true,
	}
	t.recognize = func(ctx context.Context, audio io.Reader) (string, error) {
		res, err := dg.FromStream(ctx, audio, opts)
		if err != nil {
			return "", err
		}
		if res == nil || res.Results == nil || len(res.Results.Channels) == 0 ||
			len(res.Results.Channels[0].Alternatives) == 0 {
			return "", nil
		}
		return res.Results.Channels[0].Alternatives[0].Transcript, nil
	}
	return t
}

// Transcribe buffers up to MaxAudioBytes and returns the trimmed transcript.
func (t *DeepgramTranscriber) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	buf, err := io.ReadAll(io.LimitReader(audio, MaxAudioBytes+1))
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}
	switch {
	case len(buf) == 0:
		return "", ErrEmptyAudio
	case len(buf) > MaxAudioBytes:
		return "", ErrAudioTooLarge
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()
	start := time.Now()
	text, err := t.recognize(ctx, bytes.NewReader(buf))
	if err != nil {
		t.logger.Warn("deepgram_transcribe_failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("deepgram transcribe: %w", err)
	}
	text = strings.TrimSpace(text)
	t.logger.Debug("deepgram_transcribed",
		slog.Int("bytes", len(buf)),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("empty", text == ""))
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}
