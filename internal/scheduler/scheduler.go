// Package scheduler runs the nightly settlement job under a singleton cron
// manager with start/stop/status control.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashyield/powergrid/internal/clock"
	obsmetrics "github.com/hashyield/powergrid/internal/observability/metrics"
	settlementdomain "github.com/hashyield/powergrid/internal/settlement/domain"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const JobDailySettlement = "daily_settlement"

// Status reports the manager state for the admin endpoints.
type Status struct {
	Running  bool `json:"running"`
	JobCount int  `json:"job_count"`
}

type Params struct {
	fx.In

	Log           *zap.Logger
	Clock         clock.Clock
	SettlementSvc settlementdomain.Service
	Metrics       *obsmetrics.SchedulerMetrics
	Config        Config `optional:"true"`
}

// Manager owns the cron instance. At most one schedule is active at a
// time; Start on a running manager is a warning, not an error.
type Manager struct {
	log           *zap.Logger
	cfg           Config
	clock         clock.Clock
	settlementSvc settlementdomain.Service
	metrics       *obsmetrics.SchedulerMetrics

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

func NewManager(p Params) *Manager {
	return &Manager{
		log:           p.Log.Named("scheduler"),
		cfg:           p.Config.withDefaults(),
		clock:         p.Clock,
		settlementSvc: p.SettlementSvc,
		metrics:       p.Metrics,
	}
}

func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		m.log.Warn("scheduler already running")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(m.cfg.Spec, m.runDailySettlement); err != nil {
		return err
	}
	c.Start()
	m.cron = c
	m.running = true
	m.log.Info("scheduler started", zap.String("spec", m.cfg.Spec))
	return nil
}

// Stop halts scheduling and waits for an in-flight run to finish, so a
// shutdown never leaves a settlement date half committed.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.log.Warn("scheduler not running")
		m.mu.Unlock()
		return
	}
	c := m.cron
	m.cron = nil
	m.running = false
	m.mu.Unlock()

	<-c.Stop().Done()
	m.log.Info("scheduler stopped")
}

func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := Status{Running: m.running}
	if m.cron != nil {
		status.JobCount = len(m.cron.Entries())
	}
	return status
}

func (m *Manager) runDailySettlement() {
	m.runJob(JobDailySettlement, func(ctx context.Context) error {
		settled, err := m.settlementSvc.Run(ctx, m.clock.Now(), m.cfg.ClosePrice)
		if err != nil {
			return err
		}
		m.metrics.AddPositionsSettled(JobDailySettlement, settled)
		m.log.Info("settlement run finished",
			zap.String("job", JobDailySettlement),
			zap.Int("positions", settled),
		)
		return nil
	})
}

func (m *Manager) runJob(job string, fn func(ctx context.Context) error) {
	m.metrics.IncJobRun(job)
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.JobTimeout)
	defer cancel()

	err := fn(ctx)
	duration := time.Since(start)
	m.metrics.ObserveJobDuration(job, duration)
	if err == nil {
		return
	}
	m.metrics.IncJobError(job, err)
	if errors.Is(err, context.DeadlineExceeded) {
		m.metrics.IncJobTimeout(job)
	}
	m.log.Error("scheduler job failed",
		zap.String("job", job),
		zap.Duration("duration", duration),
		zap.String("reason", obsmetrics.ClassifySchedulerJobReason(err)),
		zap.Bool("retryable", obsmetrics.IsSchedulerErrorRetryable(err)),
		zap.Error(err),
	)
}

// RunOnce triggers one settlement run outside the cron schedule. The admin
// surface uses it for manual catch-up after an outage.
func (m *Manager) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.JobTimeout)
	defer cancel()
	return m.settlementSvc.Run(ctx, m.clock.Now(), m.cfg.ClosePrice)
}
