package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"loca2-asset-tracker/internal/locaapi"
	"loca2-asset-tracker/internal/models"
)

// Interval ceiling relative to the configured base during backoff.
const maxBackoffFactor = 10

// API is the slice of the Loca client the coordinator drives.
type API interface {
	Login(ctx context.Context) error
	AssetStatuses(ctx context.Context) ([]json.RawMessage, error)
}

// Listener receives every successfully published snapshot. The map must be
// treated as read-only; it is shared between all listeners.
type Listener func(devices map[int]models.Device)

// Coordinator owns the poll-normalize-publish cycle. All mutable state
// (snapshot, failure count, interval, availability) lives here and is only
// touched under its lock.
type Coordinator struct {
	api              API
	log              zerolog.Logger
	baseInterval     time.Duration
	maxInterval      time.Duration
	timeout          time.Duration
	failureThreshold int

	cycleMu sync.Mutex

	mu         sync.RWMutex
	interval   time.Duration
	data       map[int]models.Device
	lastUpdate time.Time
	failures   int
	available  bool
	listeners  []Listener
}

func NewCoordinator(client API, cfg Config, log zerolog.Logger) *Coordinator {
	base := time.Duration(cfg.Poll.Interval) * time.Second

	return &Coordinator{
		api:              client,
		log:              log.With().Str("component", "coordinator").Logger(),
		baseInterval:     base,
		maxInterval:      base * maxBackoffFactor,
		interval:         base,
		timeout:          time.Duration(cfg.Loca.Timeout) * time.Second,
		failureThreshold: cfg.Poll.FailureThreshold,
		data:             make(map[int]models.Device),
	}
}

// AddListener registers a snapshot consumer. Must be called before Run.
func (c *Coordinator) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Run drives the poll loop until killSig is closed. The ticker is reset
// whenever a cycle changed the interval.
func (c *Coordinator) Run(wg *sync.WaitGroup, killSig chan struct{}) {
	wg.Add(1)
	defer wg.Done()

	c.log.Info().
		Dur("interval", c.baseInterval).
		Int("failure_threshold", c.failureThreshold).
		Msg("start poll loop")

	ticker := time.NewTicker(c.Interval())
	defer ticker.Stop()

	c.poll()
	current := c.resetTicker(ticker, c.baseInterval)

	for {
		select {
		case <-killSig:
			c.log.Info().Msg("poll loop stopped")
			return
		case <-ticker.C:
			c.poll()
			current = c.resetTicker(ticker, current)
		}
	}
}

func (c *Coordinator) resetTicker(ticker *time.Ticker, current time.Duration) time.Duration {
	next := c.Interval()
	if next != current {
		ticker.Reset(next)
	}
	return next
}

// poll runs one cycle. If the previous cycle is somehow still in flight the
// tick is skipped rather than overlapped.
func (c *Coordinator) poll() {
	if !c.cycleMu.TryLock() {
		pollCyclesSkipped.Inc()
		c.log.Warn().Msg("previous cycle still running, skipping tick")
		return
	}
	defer c.cycleMu.Unlock()

	start := time.Now()
	defer func() {
		cycleDuration.Observe(time.Since(start).Seconds())
		pollCycles.Inc()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	raw, err := c.api.AssetStatuses(ctx)
	if errors.Is(err, locaapi.ErrAuth) {
		// One re-authentication per cycle, then a single refetch.
		if err = c.api.Login(ctx); err == nil {
			raw, err = c.api.AssetStatuses(ctx)
		}
	}

	if err != nil {
		c.handleFailure(err)
		return
	}

	devices, skipped := Normalize(raw)
	if skipped > 0 {
		recordsSkipped.Add(float64(skipped))
		c.log.Warn().Int("skipped", skipped).Msg("dropped malformed asset status records")
	}

	c.publish(devices)
}

// publish replaces the snapshot wholesale and notifies listeners. A failed
// cycle never reaches this point, so consumers always observe either the
// previous full snapshot or the new one.
func (c *Coordinator) publish(devices map[int]models.Device) {
	c.mu.Lock()
	recovered := c.failures > 0
	c.data = devices
	c.lastUpdate = time.Now()
	c.failures = 0
	c.interval = c.baseInterval
	c.available = true
	listeners := c.listeners
	c.mu.Unlock()

	trackedDevices.Set(float64(len(devices)))
	lastSuccess.SetToCurrentTime()

	if recovered {
		c.log.Info().Msg("poll recovered, interval restored")
	}
	c.log.Debug().Int("devices", len(devices)).Msg("published snapshot")

	for _, l := range listeners {
		l(devices)
	}
}

// handleFailure counts the failure, extends the interval for transport
// errors, and flips availability at the threshold. The previously published
// snapshot is left untouched.
func (c *Coordinator) handleFailure(err error) {
	kind := failureKind(err)
	pollFailures.WithLabelValues(kind).Inc()

	c.mu.Lock()
	c.failures++
	failures := c.failures
	if failures >= c.failureThreshold {
		c.available = false
	}

	// Transport failures and rate limiting both back off; polling a
	// throttled or unreachable service at the base rate helps nobody.
	if kind == "connection" || kind == "timeout" || kind == "rate_limit" {
		next := c.interval * 2
		if next > c.maxInterval {
			next = c.maxInterval
		}
		c.interval = next
	}
	interval := c.interval
	c.mu.Unlock()

	c.log.Error().
		Err(err).
		Str("kind", kind).
		Int("consecutive_failures", failures).
		Dur("next_interval", interval).
		Msg("poll cycle failed")
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, locaapi.ErrAuth):
		return "auth"
	case errors.Is(err, locaapi.ErrTimeout):
		return "timeout"
	case errors.Is(err, locaapi.ErrConn):
		return "connection"
	case errors.Is(err, locaapi.ErrRateLimit):
		return "rate_limit"
	default:
		return "other"
	}
}

// Snapshot returns a copy of the current device map and its publish time.
func (c *Coordinator) Snapshot() (map[int]models.Device, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[int]models.Device, len(c.data))
	for id, d := range c.data {
		out[id] = d
	}

	return out, c.lastUpdate
}

// Device looks up a single device in the current snapshot.
func (c *Coordinator) Device(id int) (models.Device, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.data[id]
	return d, ok
}

// Available reports whether the source is considered reachable. False until
// the first successful cycle and after failureThreshold consecutive
// failures.
func (c *Coordinator) Available() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.available
}

// Failures returns the consecutive failure count.
func (c *Coordinator) Failures() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.failures
}

// Interval returns the current (possibly backed-off) polling interval.
func (c *Coordinator) Interval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.interval
}
