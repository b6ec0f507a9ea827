package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mstamatov/userpipe-backend/internal/models"
)

// Fetcher supplies raw record batches from the external provider.
type Fetcher interface {
	FetchBatch(ctx context.Context, size int) ([]models.RawRecord, error)
}

// Pipeline is the ingestion sync loop: fetch → normalize → cache-write →
// schema-ensure → durable-write, on a fixed interval, forever. Exactly one
// instance runs per process; records within a cycle are processed serially.
type Pipeline struct {
	Fetcher    Fetcher
	Normalizer *Normalizer
	Cache      Cache
	Store      Store

	BatchSize int
	Interval  time.Duration
	CacheTTL  time.Duration
}

// Run executes cycles until ctx is cancelled. No per-cycle failure ever
// terminates the loop; errors are logged and the next interval retries.
// Cancellation takes effect between cycles only.
func (p *Pipeline) Run(ctx context.Context) {
	log.Printf("🚀 Ingestion pipeline started (batch=%d interval=%s ttl=%s)",
		p.BatchSize, p.Interval, p.CacheTTL)

	for {
		if err := p.RunCycle(ctx); err != nil {
			log.Printf("❌ Cycle failed: %v", err)
		}

		log.Printf("💤 Sleeping for %s...", p.Interval)
		select {
		case <-ctx.Done():
			log.Println("Ingestion pipeline stopped")
			return
		case <-time.After(p.Interval):
		}
	}
}

// RunCycle performs one ingestion cycle. Cache writes happen before durable
// persistence, so a record can be cache-visible before it is committed; the
// two stores converge per record within the TTL window.
func (p *Pipeline) RunCycle(ctx context.Context) error {
	log.Printf("Fetching %d users from provider...", p.BatchSize)
	batch, err := p.Fetcher.FetchBatch(ctx, p.BatchSize)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		log.Println("⚠️  No data received. Retrying next cycle...")
		return nil
	}

	users, addresses := p.Normalizer.Normalize(batch)
	if len(users) == 0 {
		log.Println("⚠️  No valid records in batch. Retrying next cycle...")
		return nil
	}

	p.writeCache(ctx, users, addresses)

	if err := p.ensureSchema(ctx); err != nil {
		return err
	}
	p.writeDurable(ctx, users, addresses)

	log.Printf("✅ Successfully processed %d users", len(users))
	return nil
}

// writeCache stores every pair with the configured TTL. A failed write is
// logged and does not abort the durable step.
func (p *Pipeline) writeCache(ctx context.Context, users []models.User, addresses []models.Address) {
	cached := 0
	for i := range users {
		if err := p.Cache.Put(ctx, users[i].UID, models.Flatten(users[i], addresses[i]), p.CacheTTL); err != nil {
			log.Printf("⚠️  Cache write failed for %s: %v", users[i].UID, err)
			continue
		}
		cached++
	}
	log.Printf("%d users cached with a TTL of %s", cached, p.CacheTTL)
}

// ensureSchema creates both relations when either is missing. The existence
// probe keeps the common path to two cheap queries per cycle.
func (p *Pipeline) ensureSchema(ctx context.Context) error {
	usersOK, err := p.Store.TableExists(ctx, "users")
	if err != nil {
		return err
	}
	addrOK, err := p.Store.TableExists(ctx, "users_address")
	if err != nil {
		return err
	}
	if usersOK && addrOK {
		return nil
	}

	if err := p.Store.EnsureSchema(ctx); err != nil {
		return err
	}
	log.Println("users and users_address tables created")
	return nil
}

// writeDurable inserts every user then every address. Each insert is
// independent: duplicates and row failures are logged and skipped, so a
// partial batch can land.
func (p *Pipeline) writeDurable(ctx context.Context, users []models.User, addresses []models.Address) {
	for _, u := range users {
		switch err := p.Store.InsertUser(ctx, u); {
		case errors.Is(err, ErrDuplicateUser):
			log.Printf("User %s already ingested, skipping", u.UID)
		case err != nil:
			log.Printf("❌ Insert failed for user %s: %v", u.UID, err)
		default:
			log.Printf("User %s added to Postgres", u.UID)
		}
	}

	for _, a := range addresses {
		switch err := p.Store.InsertAddress(ctx, a); {
		case errors.Is(err, ErrDuplicateUser):
			log.Printf("Address for %s already ingested, skipping", a.UID)
		case err != nil:
			log.Printf("❌ Insert failed for address %s: %v", a.UID, err)
		default:
			log.Printf("User %s address added to Postgres", a.UID)
		}
	}
}
