package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// TrackingSyncer met à jour les commandes en cours de livraison.
type TrackingSyncer interface {
	SyncTracking(ctx context.Context) (int, error)
}

// UnpaidExpirer annule les commandes restées impayées.
type UnpaidExpirer interface {
	ExpireUnpaid(ctx context.Context, ttl time.Duration) (int, error)
}

// Jobs: Tracking est optionnel. Un intervalle nul désactive la tâche.
type Jobs struct {
	Tracking      TrackingSyncer
	TrackingEvery time.Duration
	Unpaid        UnpaidExpirer
	UnpaidTTL     time.Duration
	UnpaidEvery   time.Duration
	// Timeout borne chaque exécution.
	Timeout time.Duration
}

type Scheduler struct {
	cron gocron.Scheduler
}

// New enregistre les tâches sans les démarrer.
func New(jobs Jobs) (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	timeout := jobs.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	if jobs.Tracking != nil && jobs.TrackingEvery > 0 {
		if _, err := cron.NewJob(
			gocron.DurationJob(jobs.TrackingEvery),
			gocron.NewTask(run, "tracking-sync", timeout, func(ctx context.Context) (int, error) {
				return jobs.Tracking.SyncTracking(ctx)
			}),
			gocron.WithName("tracking-sync"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			return nil, err
		}
	}

	if jobs.Unpaid != nil && jobs.UnpaidEvery > 0 && jobs.UnpaidTTL > 0 {
		if _, err := cron.NewJob(
			gocron.DurationJob(jobs.UnpaidEvery),
			gocron.NewTask(run, "unpaid-expiry", timeout, func(ctx context.Context) (int, error) {
				return jobs.Unpaid.ExpireUnpaid(ctx, jobs.UnpaidTTL)
			}),
			gocron.WithName("unpaid-expiry"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			return nil, err
		}
	}

	return &Scheduler{cron: cron}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Int("jobs", len(s.cron.Jobs())).Msg("⏱️ Planificateur démarré")
}

func (s *Scheduler) Shutdown() error {
	return s.cron.Shutdown()
}

func run(name string, timeout time.Duration, job func(ctx context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := job(ctx)
	if err != nil {
		log.Error().Err(err).Str("job", name).Msg("❌ Tâche planifiée en échec")
		return
	}
	if n > 0 {
		log.Info().Str("job", name).Int("orders", n).Msg("✅ Tâche planifiée terminée")
	}
}
