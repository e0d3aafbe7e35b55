package scheduler

import (
	"context"
	"log"

	"github.com/patrickassako/triomphe-immobilier/config"
	"github.com/patrickassako/triomphe-immobilier/storage"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the nightly catalog jobs on cron expressions from config.
type Scheduler struct {
	cfg   *config.Config
	store *storage.PostgresStore
	cron  *cron.Cron
}

func New(cfg *config.Config, store *storage.PostgresStore) *Scheduler {
	return &Scheduler{
		cfg:   cfg,
		store: store,
		cron:  cron.New(),
	}
}

// Start registers the jobs and launches the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.Jobs.FeaturedCron, func() {
		s.markFeatured(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("Scheduler started, featured refresh at %q", s.cfg.Jobs.FeaturedCron)
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("Scheduler stopped")
}

// markFeatured promotes the newest published properties to the featured
// strip, replacing yesterday's selection.
func (s *Scheduler) markFeatured(ctx context.Context) {
	n, err := s.store.MarkRecentFeatured(ctx, s.cfg.Jobs.FeaturedCount)
	if err != nil {
		log.Printf("Featured job: %v", err)
		return
	}
	log.Printf("Featured job: marked %d properties", n)
}
