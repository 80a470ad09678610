// Package provider defines the base provider abstraction and a generic
// registry used to wire pluggable backends (speech-to-text engines) at
// runtime from configuration.
package provider
