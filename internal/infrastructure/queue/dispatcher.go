package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/recordlink/registrar/internal/core/domain"
	"github.com/recordlink/registrar/internal/core/ports"
	"github.com/recordlink/registrar/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes relink jobs to a fixed set of workers using consistent
// hashing on the account id, so jobs for one account never run concurrently.
// A repeated job for an account finds it already linked and has no effect.
type Dispatcher struct {
	workers []chan string
	linkage ports.LinkageService
	log     zerolog.Logger
	stopped atomic.Bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers, each
// holding up to buffer pending jobs. Non-positive values select defaults.
func NewDispatcher(numWorkers, buffer int, linkage ports.LinkageService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = channelBuffer
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		linkage: linkage,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, buffer)
	}
	return d
}

// Run processes jobs until ctx is cancelled. Jobs still queued at that point
// are dropped; the accounts stay listed as unlinked.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, ch := range d.workers {
		g.Go(func() error {
			d.runWorker(ctx, i, ch)
			return nil
		})
	}
	err := g.Wait()
	d.stopped.Store(true)
	return err
}

// Enqueue hands accountID to its worker without blocking. It returns false
// when that worker's buffer is full or the dispatcher has stopped.
func (d *Dispatcher) Enqueue(accountID string) bool {
	if d.stopped.Load() {
		return false
	}
	idx := d.shardIndex(accountID)
	select {
	case d.workers[idx] <- accountID:
		metrics.RelinkQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		d.log.Warn().Str("account_id", accountID).Int("worker_id", idx).Msg("relink queue full")
		return false
	}
}

// shardIndex maps an account id deterministically to a worker index.
func (d *Dispatcher) shardIndex(accountID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(accountID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	depth := metrics.RelinkQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case accountID := <-ch:
			depth.Set(float64(len(ch)))
			ref, err := d.linkage.Relink(ctx, accountID)
			if err != nil {
				d.log.Error().Err(err).
					Str("account_id", accountID).
					Str("kind", string(domain.KindOf(err))).
					Int("worker_id", id).
					Msg("relink failed")
				continue
			}
			d.log.Info().
				Str("account_id", accountID).
				Str("cid", ref.CID).
				Str("tx_hash", ref.TxHash).
				Int("worker_id", id).
				Msg("account relinked")
		}
	}
}
