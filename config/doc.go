// Package config provides configuration loading and validation for the
// service.
//
// It uses Viper to load configuration from a YAML file and environment
// variables, with .env file discovery via godotenv. Environment variables
// override file values using underscore-separated paths (e.g.
// TRANSCRIPTION_PROVIDER, SERVER_PORT).
package config
