// Package audio normalizes uploaded audio of unreliable container type into
// canonical PCM: mono, fixed sample rate, 16-bit linear, carried in a WAV
// container for backend hand-off.
//
// Upload MIME types lie, so the normalizer probes: the declared container is
// tried first, then the sniffed container, then the remaining supported
// containers in a fixed, configurable priority order. The first successful
// decode wins. Decode and resample are delegated to ffmpeg; the produced WAV
// is re-parsed and validated before it is accepted.
//
// Failures are typed (UNSUPPORTED_CONTAINER, EMPTY_OR_CORRUPT,
// ENCODING_FAILED) and scratch files are removed on every exit path.
package audio
