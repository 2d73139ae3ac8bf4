// Package worker fans inbound messages out to a bounded pool, runs each
// one through the decision pipeline, and hands the decisions to a sink.
package worker

import (
	"context"
	"fmt"

	"github.com/go-pkgz/pool"
	"go.uber.org/zap"

	"github.com/spigell/recruit-responder/internal/message"
	"github.com/spigell/recruit-responder/internal/pipeline"
	"github.com/spigell/recruit-responder/internal/profile"
)

// Source produces inbound messages. The channel closes when the source is
// drained or the context ends.
type Source interface {
	Messages(ctx context.Context) (<-chan *message.RawMessage, error)
}

// Sink receives every rendered decision. Implementations are expected to be
// idempotent on fingerprint, since a duplicate message can slip past the
// cache under concurrency.
type Sink interface {
	Deliver(ctx context.Context, decision *pipeline.Decision) error
}

// Processor is the per-message decision capability, satisfied by
// *pipeline.Pipeline.
type Processor interface {
	Process(ctx context.Context, msg *message.RawMessage, prof *profile.UserProfile) *pipeline.Decision
}

// Config tunes the pool.
type Config struct {
	// Workers is the pool size. Values below 1 run a single worker.
	Workers int
	// KeyedBySender routes every message from one sender to the same
	// worker, restoring per-sender arrival order at the cost of less
	// even load.
	KeyedBySender bool
}

// Pool consumes a Source until it is drained or the context is cancelled.
type Pool struct {
	processor Processor
	profile   *profile.UserProfile
	sink      Sink
	cfg       Config
	logger    *zap.Logger
}

func New(processor Processor, prof *profile.UserProfile, sink Sink, cfg Config, log *zap.Logger) *Pool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		processor: processor,
		profile:   prof,
		sink:      sink,
		cfg:       cfg,
		logger:    log,
	}
}

// Run blocks until the source is drained and every in-flight message has
// been decided and delivered. Cancelling ctx abandons queued messages; a
// message is only ever observable through its delivered decision, so
// abandonment leaves no partial state.
func (p *Pool) Run(ctx context.Context, source Source) error {
	handler := pool.WorkerFunc[*message.RawMessage](func(ctx context.Context, msg *message.RawMessage) error {
		decision := p.processor.Process(ctx, msg, p.profile)
		if err := p.sink.Deliver(ctx, decision); err != nil {
			p.logger.Error("delivering decision failed",
				zap.String("fingerprint", decision.Fingerprint), zap.Error(err))
			return err
		}
		return nil
	})

	group := pool.New[*message.RawMessage](p.cfg.Workers, handler).
		WithContinueOnError()
	if p.cfg.KeyedBySender {
		group = group.WithChunkFn(func(msg *message.RawMessage) string {
			return msg.Sender
		})
	}

	if err := group.Go(ctx); err != nil {
		return fmt.Errorf("starting worker pool: %w", err)
	}

	messages, err := source.Messages(ctx)
	if err != nil {
		_ = group.Close(ctx)
		return fmt.Errorf("opening message source: %w", err)
	}

	p.logger.Info("worker pool started",
		zap.Int("workers", p.cfg.Workers),
		zap.Bool("keyed_by_sender", p.cfg.KeyedBySender),
	)

	for msg := range messages {
		group.Submit(msg)
	}

	if err := group.Close(ctx); err != nil {
		return fmt.Errorf("draining worker pool: %w", err)
	}
	return nil
}
