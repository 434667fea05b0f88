// Package config provides environment-based configuration.
//
// Loads from the process environment (optionally pre-populated from a .env
// file via godotenv in main), validates required fields, and applies
// defaults for everything tunable.
package config
