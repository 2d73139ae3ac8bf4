package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/recruit-responder/internal/message"
	"github.com/spigell/recruit-responder/internal/pipeline"
	"github.com/spigell/recruit-responder/internal/profile"
)

// sliceSource replays a fixed batch of messages.
type sliceSource struct {
	msgs []*message.RawMessage
}

func (s *sliceSource) Messages(context.Context) (<-chan *message.RawMessage, error) {
	out := make(chan *message.RawMessage, len(s.msgs))
	for _, msg := range s.msgs {
		out <- msg
	}
	close(out)
	return out, nil
}

// recordingSink collects delivered decisions.
type recordingSink struct {
	mu        sync.Mutex
	decisions []*pipeline.Decision
	err       error
}

func (s *recordingSink) Deliver(_ context.Context, d *pipeline.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.decisions = append(s.decisions, d)
	return nil
}

func (s *recordingSink) bySender(sender string) []*pipeline.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*pipeline.Decision
	for _, d := range s.decisions {
		if d.Sender == sender {
			out = append(out, d)
		}
	}
	return out
}

// echoProcessor renders a fixed-status decision without real capabilities.
type echoProcessor struct{}

func (echoProcessor) Process(_ context.Context, msg *message.RawMessage, _ *profile.UserProfile) *pipeline.Decision {
	return &pipeline.Decision{
		Fingerprint:  msg.Fingerprint(),
		Sender:       msg.Sender,
		Status:       pipeline.StatusIgnored,
		ReviewReason: msg.Body,
	}
}

func batch(n int, sender string) []*message.RawMessage {
	msgs := make([]*message.RawMessage, n)
	for i := range msgs {
		msgs[i] = &message.RawMessage{Sender: sender, Body: fmt.Sprintf("message %d", i)}
	}
	return msgs
}

func TestPoolDrainsSource(t *testing.T) {
	sink := &recordingSink{}
	p := New(echoProcessor{}, &profile.UserProfile{}, sink, Config{Workers: 4}, nil)

	msgs := append(batch(10, "alice"), batch(10, "bob")...)
	err := p.Run(context.Background(), &sliceSource{msgs: msgs})

	require.NoError(t, err)
	assert.Len(t, sink.decisions, 20)
}

func TestPoolKeyedBySenderPreservesOrder(t *testing.T) {
	sink := &recordingSink{}
	p := New(echoProcessor{}, &profile.UserProfile{}, sink, Config{Workers: 8, KeyedBySender: true}, nil)

	msgs := append(batch(20, "alice"), batch(20, "bob")...)
	err := p.Run(context.Background(), &sliceSource{msgs: msgs})
	require.NoError(t, err)

	for _, sender := range []string{"alice", "bob"} {
		decisions := sink.bySender(sender)
		require.Len(t, decisions, 20, "sender=%s", sender)
		for i, d := range decisions {
			assert.Equal(t, fmt.Sprintf("message %d", i), d.ReviewReason, "sender=%s", sender)
		}
	}
}

func TestPoolContinuesPastSinkErrors(t *testing.T) {
	sink := &recordingSink{err: errors.New("persistence down")}
	p := New(echoProcessor{}, &profile.UserProfile{}, sink, Config{Workers: 2}, nil)

	err := p.Run(context.Background(), &sliceSource{msgs: batch(5, "alice")})

	// Errors from individual messages surface on Close but never stop
	// the remaining messages from being processed.
	assert.Error(t, err)
}

func TestPoolSingleWorkerFloor(t *testing.T) {
	p := New(echoProcessor{}, &profile.UserProfile{}, &recordingSink{}, Config{Workers: 0}, nil)
	assert.Equal(t, 1, p.cfg.Workers)
}
