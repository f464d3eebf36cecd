// Package analysis provides Sentinel's threat-assessment workflow: the
// Client that turns one alert into a natural-language assessment via an
// AI provider (absorbing every failure into sentinel text), and the
// Service that orchestrates per-alert analysis runs against the store
// with a single in-flight gate per alert id.
package analysis
