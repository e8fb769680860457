package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/groblegark/relay/internal/model"
)

// fetchWait bounds each pull so consumer loops notice cancellation.
const fetchWait = 2 * time.Second

// HandleFunc processes one delivered event for the named consuming system.
// It must be safe to run more than once for the same event: a crash after
// processing but before the ack causes redelivery.
type HandleFunc func(ctx context.Context, event *model.Event, system string)

// Pool runs one durable consumer loop per subscribed system. Each loop
// pulls one message at a time, hands it to the HandleFunc, and only then
// acknowledges it.
type Pool struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	handle HandleFunc
	logger *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool connects to NATS and ensures the stream exists.
func NewPool(url string, handle HandleFunc, logger *slog.Logger) (*Pool, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}
	if err := ensureStream(js); err != nil {
		nc.Close()
		return nil, err
	}
	return &Pool{conn: nc, js: js, handle: handle, logger: logger}, nil
}

// Start launches one consumer loop per system. Loops run until Stop.
func (p *Pool) Start(ctx context.Context, systems []string) error {
	ctx, p.cancel = context.WithCancel(ctx)

	for _, system := range systems {
		sub, err := p.js.PullSubscribe(
			FilterSubject(system),
			durableName(system),
			nats.BindStream(StreamName),
			nats.AckExplicit(),
		)
		if err != nil {
			p.cancel()
			p.wg.Wait()
			return fmt.Errorf("creating consumer for %s: %w", system, err)
		}

		p.wg.Add(1)
		go p.consume(ctx, sub, system)
	}
	return nil
}

// Stop cancels all consumer loops, waits for them to drain, and closes the
// connection.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.conn.Close()
}

// consume drains one system's queue, one message at a time.
func (p *Pool) consume(ctx context.Context, sub *nats.Subscription, system string) {
	defer p.wg.Done()
	p.logger.Info("consumer started", "system", system, "filter", FilterSubject(system))

	for {
		if ctx.Err() != nil {
			p.logger.Info("consumer stopping", "system", system)
			return
		}

		msgs, err := sub.Fetch(1, nats.MaxWait(fetchWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if ctx.Err() != nil || errors.Is(err, nats.ErrConnectionClosed) {
				p.logger.Info("consumer stopping", "system", system)
				return
			}
			p.logger.Warn("fetch failed", "system", system, "error", err)
			continue
		}

		for _, msg := range msgs {
			var event model.Event
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				// Redelivery cannot fix a decode failure; drop it.
				p.logger.Warn("discarding undecodable message", "system", system, "subject", msg.Subject, "error", err)
				_ = msg.Ack()
				continue
			}

			p.handle(ctx, &event, system)

			// Ack only after processing: at-least-once delivery.
			if err := msg.Ack(); err != nil {
				p.logger.Warn("ack failed", "system", system, "event_id", event.ID, "error", err)
			}
		}
	}
}

// durableName returns the per-system durable consumer name.
func durableName(system string) string {
	return "relay-" + token(system)
}
