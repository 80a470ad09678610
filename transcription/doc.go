// Package transcription orchestrates the transcription pipeline: normalize
// the upload to canonical PCM, fingerprint it, consult the result cache, and
// on a miss invoke the configured speech-to-text backend with a bounded
// timeout.
//
// Backends implement Provider and are wired through a pluggable registry:
//
//   - transcription/whisper: local faster-whisper HTTP sidecar
//   - transcription/openai: OpenAI Whisper cloud API
//
// Backend failures are mapped to a small typed taxonomy (UNINTELLIGIBLE,
// BACKEND_UNAVAILABLE, UNKNOWN); a transcript is never conflated with an
// error message.
package transcription
