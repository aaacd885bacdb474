package mqtt

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/pin-blinker/internal/logic"
)

// doneToken is a paho.Token that has already completed.
type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (doneToken) Error() error { return nil }

// stubClient records publishes and reports a switchable connection state.
// Methods not overridden panic through the nil embedded interface.
type stubClient struct {
	paho.Client

	connected atomic.Bool

	mu        sync.Mutex
	published []string
}

func (c *stubClient) IsConnectionOpen() bool { return c.connected.Load() }

func (c *stubClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, topic)
	return doneToken{}
}

func (c *stubClient) count(topic string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.published {
		if t == topic {
			n++
		}
	}
	return n
}

func newStubPublisher() (*RealPublisher, *stubClient) {
	c := &stubClient{}
	p := &RealPublisher{
		ctx:    context.Background(),
		client: c,
		now:    func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
		outbox: newOutbox(outboxCapacity),
	}
	return p, c
}

func TestRealPublisherQueuesWhileDisconnected(t *testing.T) {
	p, c := newStubPublisher()

	for i := 0; i < 3; i++ {
		if err := p.PublishReport(logic.Report{ElapsedMs: uint64(i)}); err != nil {
			t.Fatalf("PublishReport: %v", err)
		}
	}
	if got := c.count(TopicStatus); got != 0 {
		t.Fatalf("published while disconnected: %d", got)
	}

	c.connected.Store(true)
	p.onConnect(c)

	if got := c.count(TopicStatus); got != 3 {
		t.Errorf("replayed reports: got %d, want 3", got)
	}
	if got := c.count(TopicSystem); got != 1 {
		t.Errorf("ONLINE events: got %d, want 1", got)
	}

	if err := p.PublishEdge(logic.Edge{Count: 1}); err != nil {
		t.Fatalf("PublishEdge: %v", err)
	}
	if got := c.count(TopicEvents); got != 1 {
		t.Errorf("direct edge publishes: got %d, want 1", got)
	}
}

func TestRealPublisherNoMessageStrandedAcrossReconnect(t *testing.T) {
	const publishers, perPublisher = 8, 20

	for round := 0; round < 50; round++ {
		p, c := newStubPublisher()

		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < publishers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for j := 0; j < perPublisher; j++ {
					p.PublishReport(logic.Report{})
				}
			}()
		}

		// paho marks the connection open before calling the handler.
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			c.connected.Store(true)
			p.onConnect(c)
		}()

		close(start)
		wg.Wait()

		if got := c.count(TopicStatus); got != publishers*perPublisher {
			p.mu.Lock()
			left, _ := p.outbox.drain()
			p.mu.Unlock()
			t.Fatalf("round %d: delivered %d of %d, %d left in outbox", round, got, publishers*perPublisher, len(left))
		}
	}
}
