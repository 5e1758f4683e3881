// Package devpulse is a landing page for a local development stack that
// shows whether the backend API and its database are reachable, along with
// the backend's version and environment.
//
// # Quick Start
//
//	be, _ := devpulse.NewBackend(os.Getenv("API_URL"))
//	dp, _ := devpulse.New(devpulse.WithBackend(be))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	dp.Start(ctx) // serves http://localhost:3000 until ctx is cancelled
//
// # Polling
//
// A [Poller] probes the [Backend] immediately and then every 10 seconds.
// Each cycle runs two branches concurrently:
//
//   - API: GET /health, then on success GET /api for version and environment
//   - DB: GET /api/db-check
//
// A probe fails on a network error, a timeout (5 seconds by default) or a
// non-2xx status. Failures never propagate: they set [APIError] or
// [DBDisconnected] and are logged. Version and environment keep their last
// known good values until a later info call succeeds.
//
// The poller can be used on its own:
//
//	p, _ := devpulse.NewPoller(be, devpulse.WithInterval(5*time.Second))
//	stop, err := p.Start(ctx)
//	if err != nil {
//	    return err
//	}
//	defer stop()
//	fmt.Println(p.Snapshot().APIStatus)
//
// # Architecture
//
//   - internal/poller: HTTP probe client and the gocron-based tick scheduler
//   - internal/store: the single status record with pub/sub for live updates
//   - internal/server: echo server with the landing page, JSON and SSE
//   - dashboard: the embedded page template
//   - config: YAML and environment configuration for the CLI
package devpulse
