// Package logger provides structured logging for callscribe, backed by
// zerolog. It exposes a small wrapper with component tagging, a global
// logger for package-level use, and helpers for building field maps.
package logger
