package docstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"
)

// DefaultRetryInterval is the delay between failed connection attempts.
const DefaultRetryInterval = 5 * time.Second

// Seed is a set of documents loaded into a collection only while it is empty.
type Seed struct {
	Collection string
	Documents  []Document
}

// Supervisor drives a Switch from DISCONNECTED to CONNECTED, retrying the dialer on a
// fixed interval. With a probe interval configured it also pings the remote and demotes
// the switch when the backend stops answering; without one, CONNECTED is final.
type Supervisor struct {
	sw            *Switch
	dial          Dialer
	retryInterval time.Duration
	probeInterval time.Duration
	fallbackSeeds []Seed
	remoteSeeds   []Seed
	logger        *slog.Logger
	metrics       supervisorMetrics
	group         singleflight.Group
}

type SupervisorOption func(*Supervisor)

func WithRetryInterval(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		if d > 0 {
			s.retryInterval = d
		}
	}
}

// WithProbeInterval enables liveness probing; zero keeps the connection sticky.
func WithProbeInterval(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		if d > 0 {
			s.probeInterval = d
		}
	}
}

// WithFallbackSeed registers documents loaded into the fallback store whenever the
// remote is unreachable and the collection is still empty.
func WithFallbackSeed(seed Seed) SupervisorOption {
	return func(s *Supervisor) {
		s.fallbackSeeds = append(s.fallbackSeeds, seed)
	}
}

// WithRemoteSeed registers documents inserted once into an empty remote collection.
func WithRemoteSeed(seed Seed) SupervisorOption {
	return func(s *Supervisor) {
		s.remoteSeeds = append(s.remoteSeeds, seed)
	}
}

func WithSupervisorLogger(logger *slog.Logger) SupervisorOption {
	return func(s *Supervisor) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithSupervisorMeter(m metric.Meter) SupervisorOption {
	return func(s *Supervisor) {
		s.metrics = newSupervisorMetrics(m)
	}
}

func NewSupervisor(sw *Switch, dial Dialer, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		sw:            sw,
		dial:          dial,
		retryInterval: DefaultRetryInterval,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Run blocks until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		if err := s.Connect(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.LogAttrs(ctx, slog.LevelWarn, "document store unavailable, serving fallback data",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", s.retryInterval))
			if !sleep(ctx, s.retryInterval) {
				return nil
			}
			continue
		}
		if s.probeInterval <= 0 {
			<-ctx.Done()
			return nil
		}
		if !s.watch(ctx) {
			return nil
		}
	}
}

// Connect performs a single attempt. Concurrent callers share the same dial.
func (s *Supervisor) Connect(ctx context.Context) error {
	if s.sw.Mode() == Connected {
		return nil
	}
	_, err, _ := s.group.Do("connect", func() (any, error) {
		return nil, s.connect(ctx)
	})
	return err
}

// Close demotes the switch and closes the remote backend, if any.
func (s *Supervisor) Close() error {
	if remote := s.sw.Demote(); remote != nil {
		return remote.Close()
	}
	return nil
}

func (s *Supervisor) connect(ctx context.Context) error {
	if s.sw.Mode() == Connected {
		return nil
	}
	if s.dial == nil {
		s.seedFallback(ctx)
		return errors.New("no document store configured")
	}
	dialCtx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()
	remote, err := s.dial(dialCtx)
	if err != nil {
		s.metrics.recordAttempt(ctx, "failure")
		s.seedFallback(ctx)
		return err
	}
	s.seedRemote(ctx, remote)
	if !s.sw.Promote(remote) {
		_ = remote.Close()
		return nil
	}
	s.metrics.recordAttempt(ctx, "success")
	s.logger.LogAttrs(ctx, slog.LevelInfo, "document store connected")
	return nil
}

// watch returns true after a demotion and false once ctx is done.
func (s *Supervisor) watch(ctx context.Context) bool {
	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
		remote := s.sw.Remote()
		if remote == nil {
			return true
		}
		pingCtx, cancel := context.WithTimeout(ctx, ServerSelectionTimeout)
		err := remote.Ping(pingCtx)
		cancel()
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return false
		}
		if demoted := s.sw.Demote(); demoted != nil {
			_ = demoted.Close()
		}
		s.metrics.recordDemotion(ctx)
		s.logger.LogAttrs(ctx, slog.LevelWarn, "document store stopped responding, reverting to fallback",
			slog.String("error", err.Error()))
		s.seedFallback(ctx)
		return true
	}
}

func (s *Supervisor) seedFallback(ctx context.Context) {
	for _, seed := range s.fallbackSeeds {
		if s.sw.Fallback().Seed(seed.Collection, seed.Documents) {
			s.logger.LogAttrs(ctx, slog.LevelInfo, "fallback collection seeded",
				slog.String("collection", seed.Collection),
				slog.Int("documents", len(seed.Documents)))
		}
	}
}

func (s *Supervisor) seedRemote(ctx context.Context, remote Remote) {
	for _, seed := range s.remoteSeeds {
		seeded, err := SeedIfEmpty(ctx, remote, seed)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to seed remote collection",
				slog.String("collection", seed.Collection),
				slog.String("error", err.Error()))
			continue
		}
		if seeded {
			s.logger.LogAttrs(ctx, slog.LevelInfo, "remote collection seeded",
				slog.String("collection", seed.Collection),
				slog.Int("documents", len(seed.Documents)))
		}
	}
}

// SeedIfEmpty inserts the seed documents when the collection holds nothing yet.
func SeedIfEmpty(ctx context.Context, store Store, seed Seed) (bool, error) {
	count, err := store.Count(ctx, seed.Collection)
	if err != nil {
		return false, err
	}
	if count > 0 || len(seed.Documents) == 0 {
		return false, nil
	}
	for _, doc := range seed.Documents {
		if err := store.Insert(ctx, seed.Collection, doc); err != nil && !errors.Is(err, ErrConflict) {
			return false, err
		}
	}
	return true, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

type supervisorMetrics struct {
	attempts  metric.Int64Counter
	demotions metric.Int64Counter
}

func newSupervisorMetrics(m metric.Meter) supervisorMetrics {
	if m == nil {
		return supervisorMetrics{}
	}
	attempts, _ := m.Int64Counter("docstore.connect.attempts", metric.WithDescription("Remote document store connection attempts"))
	demotions, _ := m.Int64Counter("docstore.demotions", metric.WithDescription("Transitions back to the fallback store"))
	return supervisorMetrics{attempts: attempts, demotions: demotions}
}

func (m supervisorMetrics) recordAttempt(ctx context.Context, result string) {
	if m.attempts != nil {
		m.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
}

func (m supervisorMetrics) recordDemotion(ctx context.Context) {
	if m.demotions != nil {
		m.demotions.Add(ctx, 1)
	}
}
