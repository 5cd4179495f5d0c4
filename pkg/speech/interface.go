// Package speech defines text-to-speech and live speech-to-text contracts
// used to voice the radio hosts and to hear the infiltrator.
package speech

import "context"

// AudioFunc receives audio chunks in arrival order. Returning an error stops
// the stream.
type AudioFunc func(chunk []byte) error

// Synthesizer turns text into audio.
//
//go:generate mockgen -package mockspeech -source=interface.go -destination=mock/mockspeech.go *
type Synthesizer interface {
	// Speak synthesizes text with voice and streams the raw audio to fn.
	// It returns the number of audio bytes delivered.
	Speak(ctx context.Context, voice, text string, fn AudioFunc) (int64, error)
}

// Transcriber opens live transcription streams.
type Transcriber interface {
	Transcribe(ctx context.Context) (Transcription, error)
}

// Transcription is a single live transcription stream.
type Transcription interface {
	// Send forwards a chunk of microphone audio.
	Send(ctx context.Context, audio []byte) error
	// Finish flushes the stream and returns the accumulated transcript.
	Finish(ctx context.Context) (string, error)
	// Close aborts the stream without waiting for pending results.
	Close() error
}
