// Package server serves the devpulse landing page and the status widget's
// data over HTTP using echo.
//
// Routes:
//
//   - GET /: landing page rendered from an html/template in the supplied assets
//   - GET /api/status: the current status record as JSON
//   - GET /api/sse: Server-Sent Events stream of the record
//   - GET /healthz: liveness of the page server
//
// Shutdown follows context cancellation with a 5-second bound for in-flight
// requests. Open SSE streams end when the server context is cancelled.
package server
