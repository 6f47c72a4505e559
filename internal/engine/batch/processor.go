// Package batch streams the results of a batch of graph inputs in the order
// they complete.
package batch

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"sync"

	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/planar/internal/core/ports"
	"go.trai.ch/planar/internal/engine/race"
	"go.trai.ch/zerr"
)

// Processor fans a batch out over the race coordinator and streams records
// back as items resolve.
type Processor struct {
	fingerprinter ports.Fingerprinter
	coord         *race.Coordinator
	logger        ports.Logger
	tracer        ports.Tracer
	maxBatchSize  int
}

// New creates a new Processor. A maxBatchSize of zero accepts any batch.
func New(
	fingerprinter ports.Fingerprinter,
	coord *race.Coordinator,
	logger ports.Logger,
	tracer ports.Tracer,
	maxBatchSize int,
) *Processor {
	return &Processor{
		fingerprinter: fingerprinter,
		coord:         coord,
		logger:        logger,
		tracer:        tracer,
		maxBatchSize:  maxBatchSize,
	}
}

// Validate rejects a batch wholesale before any item is processed.
func (p *Processor) Validate(inputs []string) error {
	if inputs == nil {
		return zerr.Wrap(domain.ErrMalformedBatch, "batch is not a list of strings")
	}
	if p.maxBatchSize > 0 && len(inputs) > p.maxBatchSize {
		err := zerr.With(zerr.Wrap(domain.ErrMalformedBatch, "batch too large"), "size", len(inputs))
		return zerr.With(err, "max_batch_size", p.maxBatchSize)
	}
	return nil
}

// Process resolves every input and yields one record per input in completion
// order. Each record carries the index of its input. Stopping the iteration
// early cancels the items still pending; computations already handed to the
// pool run to completion and are still written back to the cache.
func (p *Processor) Process(ctx context.Context, inputs []string) iter.Seq[domain.Record] {
	return func(yield func(domain.Record) bool) {
		ctx, span := p.tracer.Start(ctx, "planar.batch", ports.WithAttribute("planar.items", len(inputs)))
		defer span.End()

		var wg sync.WaitGroup
		ctx, cancel := context.WithCancel(ctx)
		// Wait after cancel so abandoned items unwind before we return.
		defer wg.Wait()
		defer cancel()

		// Sized to the batch so no item ever blocks on a consumer that left.
		records := make(chan domain.Record, len(inputs))
		flight := p.coord.NewFlight()

		for i, input := range inputs {
			fp, err := p.fingerprinter.Fingerprint(input)
			if err != nil {
				records <- domain.NewErrorRecord(i, "", err)
				continue
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				records <- p.resolve(ctx, flight, i, fp, input)
			}()
		}

		failed := 0
		for range inputs {
			rec := <-records
			if rec.Error != nil {
				failed++
			}
			if !yield(rec) {
				p.logger.Debug("batch consumer stopped early", "items", len(inputs))
				return
			}
		}
		span.SetAttribute("planar.failed", failed)
	}
}

func (p *Processor) resolve(
	ctx context.Context,
	flight *race.Flight,
	index int,
	fp domain.Fingerprint,
	input string,
) domain.Record {
	out, err := flight.Resolve(ctx, fp, input)
	if err != nil {
		p.logger.Debug("item failed", "index", index, "fingerprint", fp.Short(), "error", err.Error())
		return domain.NewErrorRecord(index, fp, err)
	}
	return domain.Record{
		Index:       index,
		Fingerprint: fp,
		Source:      out.Source,
		Shared:      out.Shared,
		Result:      out.Result,
	}
}

// Collect drains a record stream and returns the records in input order.
func Collect(records iter.Seq[domain.Record]) []domain.Record {
	out := slices.Collect(records)
	slices.SortFunc(out, func(a, b domain.Record) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return out
}
