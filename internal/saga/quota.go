package saga

import (
	"context"
	"fmt"
	"time"

	"clinic-booking-saga/internal/domain/entity"
	"clinic-booking-saga/internal/domain/repository"
	"clinic-booking-saga/pkg/clock"

	"github.com/redis/go-redis/v9"
)

// acquireScript is the enforcement point for the strict
// at-most-N-acquired-per-day invariant: Redis executes Lua scripts
// single-threaded, so the check-then-increment below is atomic across
// every concurrently racing transaction (EVALSHA after the first call).
// KEYS[1] is the per-transaction idempotency marker, KEYS[2] the per-day
// counter, ARGV[1] the cap.
var acquireScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == '1' then
		return 1
	end
	local used = tonumber(redis.call('GET', KEYS[2]) or '0')
	if used >= tonumber(ARGV[1]) then
		return 0
	end
	redis.call('INCR', KEYS[2])
	redis.call('SET', KEYS[1], '1')
	return 1
`)

// releaseScript undoes an acquisition exactly once: replaying a release
// against an already-released (or never-acquired) allocation is a no-op.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == '1' then
		redis.call('DEL', KEYS[1])
		redis.call('DECR', KEYS[2])
	end
	return 1
`)

// Quota is the daily discount-quota arbiter: a globally shared,
// per-calendar-day counter of at most N discount slots.
type Quota struct {
	redis *redis.Client
	repo  repository.QuotaRepository
	clock *clock.FixedClock
	cap   int
}

func NewQuota(redisClient *redis.Client, repo repository.QuotaRepository, fixedClock *clock.FixedClock, cap int) *Quota {
	return &Quota{redis: redisClient, repo: repo, clock: fixedClock, cap: cap}
}

func allocKey(transactionID string) string { return "quota:alloc:" + transactionID }
func counterKey(date string) string        { return "quota:used:" + date }

// HandlePriced consumes booking.priced and produces exactly one of
// booking.quota.skipped / booking.quota.acquired / booking.quota.failed.
func (q *Quota) HandlePriced(ctx context.Context, evt entity.Event) (entity.Event, error) {
	payload := entity.PayloadFromJSON(evt.Data)
	now := time.Now().UTC()

	if !payload.DiscountEligible {
		return entity.Event{
			Type:          entity.EventBookingQuotaSkipped,
			TransactionID: evt.TransactionID,
			Timestamp:     now,
			Data:          payload.ToJSON(),
		}, nil
	}

	date := q.clock.Today()
	result, err := acquireScript.Run(ctx, q.redis, []string{allocKey(evt.TransactionID), counterKey(date)}, q.cap).Int()
	if err != nil {
		return entity.Event{}, fmt.Errorf("quota acquire script: %w", err)
	}

	if result == 0 {
		return entity.Event{
			Type:          entity.EventBookingQuotaFailed,
			TransactionID: evt.TransactionID,
			Timestamp:     now,
			Error:         "Daily discount quota reached. Please try again tomorrow.",
		}, nil
	}

	// Persist the durable audit copy. RecordAcquired absorbs duplicate
	// deliveries via the transaction_id unique index — no rollback needed
	// on a conflict, only on a genuine infrastructure error.
	if err := q.repo.RecordAcquired(ctx, evt.TransactionID, date); err != nil {
		_, _ = releaseScript.Run(ctx, q.redis, []string{allocKey(evt.TransactionID), counterKey(date)}).Result()
		return entity.Event{}, fmt.Errorf("record acquired allocation: %w", err)
	}

	return entity.Event{
		Type:          entity.EventBookingQuotaAcquired,
		TransactionID: evt.TransactionID,
		Timestamp:     now,
		Data:          payload.ToJSON(),
	}, nil
}

// HandleCompensate consumes booking.compensate and always produces
// booking.quota.released, whether or not an active allocation existed.
func (q *Quota) HandleCompensate(ctx context.Context, evt entity.Event) (entity.Event, error) {
	date, found, err := q.repo.AllocationDate(ctx, evt.TransactionID)
	if err != nil {
		return entity.Event{}, fmt.Errorf("lookup allocation date: %w", err)
	}
	if !found {
		date = q.clock.Today()
	}

	if _, err := releaseScript.Run(ctx, q.redis, []string{allocKey(evt.TransactionID), counterKey(date)}).Result(); err != nil {
		return entity.Event{}, fmt.Errorf("quota release script: %w", err)
	}
	if _, err := q.repo.RecordReleased(ctx, evt.TransactionID); err != nil {
		return entity.Event{}, fmt.Errorf("record released allocation: %w", err)
	}

	return entity.Event{
		Type:          entity.EventBookingQuotaReleased,
		TransactionID: evt.TransactionID,
		Timestamp:     time.Now().UTC(),
	}, nil
}
