// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

// Package api exposes the HTTP surface: the recommendation endpoints, the
// library view, health probes, and Prometheus metrics, routed with chi.
//
// Endpoints:
//
//	POST /api/v1/recommend           run the pipeline for a query
//	POST /api/v1/recommend/followup  answer a pending clarification
//	GET  /api/v1/library             paged history listing
//	GET  /api/v1/health              store-backed health check
//	GET  /api/v1/health/live         liveness probe
//	GET  /api/v1/health/ready        readiness probe (store ping)
//	GET  /metrics                    Prometheus metrics
package api
