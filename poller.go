package devpulse

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jpalmerr/devpulse/internal/poller"
	"github.com/jpalmerr/devpulse/internal/store"
)

const (
	probeHealth  = "health"
	probeDBCheck = "db-check"
	probeInfo    = "info"
)

// StopFunc cancels a running [Poller]. It is safe to call more than once.
type StopFunc func()

// Poller keeps a [StatusRecord] up to date by probing a [Backend].
//
// Each poll cycle runs two independent branches concurrently:
//
//   - API: health check, then (only on success) the info call for version
//     and environment
//   - DB: db check
//
// The branches write disjoint fields of the record, one field write at a
// time. Probe failures are mapped to status values and never returned.
//
// The typical lifecycle is:
//
//	be, _ := devpulse.NewBackend(devpulse.DefaultBaseURL)
//	p, _ := devpulse.NewPoller(be)
//	stop, err := p.Start(ctx)
//	if err != nil {
//	    return err
//	}
//	defer stop()
//
// A Poller is single-use: once stopped, its record is frozen and it cannot
// be started again.
type Poller struct {
	backend  Backend
	interval time.Duration
	logger   *zap.Logger
	client   *poller.Client
	records  *store.RecordStore

	mu        sync.Mutex
	started   bool
	stopped   bool
	scheduler *poller.Scheduler
	cancel    context.CancelFunc

	subMu       sync.RWMutex
	subscribers map[uint64]func(StatusRecord)
	nextSubID   uint64
}

// NewPoller creates a [Poller] for backend. The record starts as
// [NewStatusRecord]; nothing is probed until [Poller.Start] or
// [Poller.PollOnce].
func NewPoller(backend Backend, opts ...PollerOption) (*Poller, error) {
	if backend.baseURL == "" {
		return nil, errors.New("backend is not configured, use NewBackend")
	}

	cfg := &pollerConfig{
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Poller{
		backend:     backend,
		interval:    cfg.interval,
		logger:      logger,
		client:      poller.NewClient(),
		records:     store.NewRecordStore(toStoreRecord(NewStatusRecord())),
		subscribers: make(map[uint64]func(StatusRecord)),
	}
	for _, cb := range cfg.callbacks {
		p.Subscribe(cb)
	}
	return p, nil
}

// Start polls immediately and then every interval until the returned
// [StopFunc] is called or ctx is cancelled.
//
// If a tick fires while the previous cycle is still running, that tick is
// skipped. Start returns [ErrAlreadyStarted] on a running poller and
// [ErrStopped] on a stopped one.
func (p *Poller) Start(ctx context.Context) (StopFunc, error) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil, ErrStopped
	}
	if p.started {
		p.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	if ctx == nil {
		ctx = context.Background()
	}

	pollCtx, cancel := context.WithCancel(ctx)
	scheduler := poller.NewScheduler(p.interval, p.PollOnce, p.logger)
	p.started = true
	p.cancel = cancel
	p.scheduler = scheduler
	p.mu.Unlock()

	if err := scheduler.Start(pollCtx); err != nil {
		p.Stop()
		return nil, fmt.Errorf("failed to start poller: %w", err)
	}

	// parent cancellation tears the poller down like an explicit Stop
	go func() {
		<-pollCtx.Done()
		p.Stop()
	}()

	p.logger.Info("poller started",
		zap.String("base_url", p.backend.BaseURL()),
		zap.Duration("interval", p.interval),
		zap.Duration("timeout", p.backend.Timeout()),
	)

	return p.Stop, nil
}

// Stop ends polling. The record is frozen before in-flight probes are
// cancelled, so no result is applied after Stop is called. Stop blocks until
// a running cycle has returned and is idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	scheduler, cancel := p.scheduler, p.cancel
	p.mu.Unlock()

	p.records.Freeze()
	if cancel != nil {
		cancel()
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	p.client.Close()

	p.logger.Info("poller stopped")
}

// Snapshot returns a copy of the current record.
func (p *Poller) Snapshot() StatusRecord {
	return fromStoreRecord(p.records.Get())
}

// Subscribe registers fn to receive a snapshot after every applied field
// write. The returned function removes the subscription.
//
// fn runs synchronously on a polling goroutine and must not block. Panics
// are recovered and logged with a correlation ID.
func (p *Poller) Subscribe(fn func(StatusRecord)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	p.subMu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	p.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.subMu.Lock()
			delete(p.subscribers, id)
			p.subMu.Unlock()
		})
	}
}

// recordStore exposes the wire-level record store to the landing page server.
func (p *Poller) recordStore() store.Store {
	return p.records
}

// PollOnce runs one poll cycle and returns when both branches are done.
//
// Probe failures are absorbed: they set APIStatus to error or DBStatus to
// disconnected and are logged at WARN. After [Poller.Stop], PollOnce does
// nothing.
func (p *Poller) PollOnce(ctx context.Context) {
	if p.records.Frozen() {
		return
	}

	log := p.logger.With(zap.String("cycle_id", uuid.NewString()))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.checkAPI(ctx, log)
	}()
	go func() {
		defer wg.Done()
		p.checkDB(ctx, log)
	}()
	wg.Wait()
}

// checkAPI runs the health check and, on success, the info call.
func (p *Poller) checkAPI(ctx context.Context, log *zap.Logger) {
	resp := p.client.Get(ctx, p.backend.HealthURL(), p.backend.headers, p.backend.timeout)
	if err := resp.Err(); err != nil {
		p.logCallFailure(log, callError(probeHealth, err), p.backend.HealthURL(), resp)
		p.apply(func(r *store.Record) { setAPIStatus(r, APIError) })
		return
	}
	log.Debug("probe succeeded",
		zap.String("probe", probeHealth),
		zap.Int("status_code", resp.StatusCode),
		zap.Int64("latency_ms", resp.Latency.Milliseconds()),
	)
	if !p.apply(func(r *store.Record) { setAPIStatus(r, APIOK) }) {
		return
	}

	resp = p.client.Get(ctx, p.backend.InfoURL(), p.backend.headers, p.backend.timeout)
	if err := resp.Err(); err != nil {
		p.logCallFailure(log, callError(probeInfo, err), p.backend.InfoURL(), resp)
		return
	}

	info, err := p.extractInfo(resp.Body)
	if err != nil {
		p.logCallFailure(log, callError(probeInfo, err), p.backend.InfoURL(), resp)
		return
	}

	p.apply(func(r *store.Record) {
		r.Version = orPlaceholder(info.Version)
		r.Environment = orPlaceholder(info.Environment)
	})
	log.Debug("probe succeeded",
		zap.String("probe", probeInfo),
		zap.String("version", info.Version),
		zap.String("environment", info.Environment),
	)
}

// checkDB runs the db check.
func (p *Poller) checkDB(ctx context.Context, log *zap.Logger) {
	resp := p.client.Get(ctx, p.backend.DBCheckURL(), p.backend.headers, p.backend.timeout)
	if err := resp.Err(); err != nil {
		p.logCallFailure(log, callError(probeDBCheck, err), p.backend.DBCheckURL(), resp)
		p.apply(func(r *store.Record) { setDBStatus(r, DBDisconnected) })
		return
	}

	log.Debug("probe succeeded",
		zap.String("probe", probeDBCheck),
		zap.Int("status_code", resp.StatusCode),
		zap.Int64("latency_ms", resp.Latency.Milliseconds()),
	)
	p.apply(func(r *store.Record) { setDBStatus(r, DBConnected) })
}

// extractInfo runs the backend's info extractor, converting a panic into an error.
func (p *Poller) extractInfo(body []byte) (info Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			p.logger.Error("info extractor panic",
				zap.String("correlation_id", correlationID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			err = fmt.Errorf("info extractor panic (correlation_id: %s)", correlationID)
		}
	}()
	return p.backend.infoExtractor(body)
}

// apply performs one field write and notifies subscribers.
// It reports false when the record is frozen and the write was discarded.
func (p *Poller) apply(mutate func(*store.Record)) bool {
	rec, ok := p.records.Apply(mutate)
	if !ok {
		return false
	}
	p.notify(fromStoreRecord(rec))
	return true
}

func (p *Poller) notify(rec StatusRecord) {
	p.subMu.RLock()
	subs := make([]func(StatusRecord), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.subMu.RUnlock()

	for _, fn := range subs {
		p.invokeSubscriberSafe(fn, rec)
	}
}

// invokeSubscriberSafe calls a subscriber with panic recovery.
func (p *Poller) invokeSubscriberSafe(fn func(StatusRecord), rec StatusRecord) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("record subscriber panicked",
				zap.String("correlation_id", uuid.NewString()),
				zap.Any("panic", r),
			)
		}
	}()
	fn(rec)
}

func (p *Poller) logCallFailure(log *zap.Logger, err error, url string, resp poller.Response) {
	log.Warn("probe failed",
		zap.String("url", url),
		zap.Int("status_code", resp.StatusCode),
		zap.Int64("latency_ms", resp.Latency.Milliseconds()),
		zap.Error(err),
	)
}
