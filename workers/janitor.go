package workers

import (
	"context"
	"log"
	"time"

	"github.com/patrickassako/triomphe-immobilier/cache"
)

// Janitor sweeps expired entries out of the result caches so idle filters do
// not pin memory between requests.
type Janitor struct {
	caches []*cache.TTL
}

func NewJanitor(caches ...*cache.TTL) *Janitor {
	return &Janitor{caches: caches}
}

func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Cache janitor stopping")
			return
		case <-ticker.C:
			removed := 0
			for _, c := range j.caches {
				removed += c.Sweep()
			}
			if removed > 0 {
				log.Printf("Cache janitor: swept %d expired entries", removed)
			}
		}
	}
}
