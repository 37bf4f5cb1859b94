// Package config loads the application configuration from the environment (optionally
// seeded from a .env file) and builds PostgreSQL connections for the three supported client libraries.
package config
