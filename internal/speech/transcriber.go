// README: Speech-to-text for recorded audio turns.
package speech

import (
	"context"
	"errors"
	"io"
)

var (
	ErrEmptyAudio    = errors.New("empty audio")
	ErrAudioTooLarge = errors.New("audio exceeds size limit")
	ErrNoSpeech      = errors.New("no speech recognized")
	ErrNotConfigured = errors.New("speech transcription not configured")
)

// MaxAudioBytes bounds a single recorded turn.
const MaxAudioBytes = 10 << 20

type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

// Disabled is used when no speech provider key is configured.
type Disabled struct{}

func (Disabled) Transcribe(context.Context, io.Reader) (string, error) {
	return "", ErrNotConfigured
}
