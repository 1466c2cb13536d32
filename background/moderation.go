// Package background runs work outside the request cycle. Its single job
// is the moderation sweep: active listings whose report count crossed the
// configured threshold are demoted to pending until someone reviews them.
package background

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/user/campwood-go/broadcast"
	"github.com/user/campwood-go/config"
)

// sweepTimeout bounds a single sweep run.
const sweepTimeout = 30 * time.Second

// Sweeper periodically demotes heavily reported listings.
type Sweeper struct {
	db        *pgxpool.Pool
	threshold int
	schedule  string
	events    *broadcast.Broadcaster
	log       *logrus.Logger
	cron      *cron.Cron
}

// NewSweeper creates a moderation Sweeper.
func NewSweeper(db *pgxpool.Pool, cfg *config.ModerationConfig, events *broadcast.Broadcaster, log *logrus.Logger) *Sweeper {
	return &Sweeper{
		db:        db,
		threshold: cfg.ReportThreshold,
		schedule:  cfg.Schedule,
		events:    events,
		log:       log,
		cron:      cron.New(),
	}
}

// Start registers the sweep on its cron schedule and starts the scheduler.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.WithError(err).Error("moderation sweep failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.WithFields(logrus.Fields{"schedule": s.schedule, "threshold": s.threshold}).
		Info("moderation sweeper started")
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("moderation sweeper stopped")
}

// RunOnce demotes every active listing at or above the report threshold
// and returns the demoted ids. Demoted listings leave the public map, so
// subscribers receive deleted events for them.
func (s *Sweeper) RunOnce(ctx context.Context) ([]int, error) {
	rows, err := s.db.Query(ctx,
		`UPDATE locations SET status = 'pending', updated_at = now()
		 WHERE status = 'active' AND report_count >= $1
		 RETURNING id`, s.threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var demoted []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		demoted = append(demoted, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range demoted {
		s.events.Publish(broadcast.Event{Type: broadcast.EventDeleted, ID: id})
	}

	if len(demoted) > 0 {
		s.log.WithField("count", len(demoted)).Info("moderation sweep demoted listings")
	}
	return demoted, nil
}
