// Package config loads the harness-wide settings from the environment.
//
// Settings cover the target API (base URL, per-call timeout), the OAuth
// authority tenant, the retry budget for token acquisition, and the mock-mode
// switch that lets the suite run against deterministic test environments
// without live credentials. Per-identity secrets are NOT part of this
// package; they are resolved through the named environment references carried
// by each identity record.
package config
