// Package admin is the REST gateway to the analytics platform's admin API.
// It wraps a rate-limited HTTP client with a bounded, fixed-delay retry
// policy and exposes the typed endpoints the scan pipeline needs:
// workspace listing, scan submit/status/result, and dataset refresh history.
package admin
