package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/pin-blinker/internal/logger"
	"github.com/sweeney/pin-blinker/internal/logic"
)

const (
	outboxCapacity = 256
	publishTimeout = 5 * time.Second
)

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the connection is down are queued and replayed on reconnect.
type RealPublisher struct {
	ctx    context.Context
	client paho.Client
	now    func() time.Time

	mu     sync.Mutex
	outbox *outbox
}

// NewRealPublisher starts connecting to broker in the background and
// returns immediately. The broker sees OFFLINE on TopicSystem if the
// connection drops without a clean Close.
func NewRealPublisher(ctx context.Context, broker, clientID string) *RealPublisher {
	p := &RealPublisher{
		ctx:    logger.WithName(ctx, "mqtt"),
		now:    time.Now,
		outbox: newOutbox(outboxCapacity),
	}

	will, _ := FormatSystemPayload(SystemEvent{Timestamp: p.now(), Event: "OFFLINE", Reason: "CONNECTION_LOST"})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warnf(p.ctx, "connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

func (p *RealPublisher) onConnect(c paho.Client) {
	logger.Infof(p.ctx, "connected")

	p.mu.Lock()
	pending, dropped := p.outbox.drain()
	p.mu.Unlock()

	if dropped > 0 {
		logger.Warnf(p.ctx, "dropped %d messages while disconnected", dropped)
	}

	online, _ := FormatSystemPayload(SystemEvent{Timestamp: p.now(), Event: "ONLINE"})
	c.Publish(TopicSystem, 1, true, online)

	for _, m := range pending {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
	if len(pending) > 0 {
		logger.Infof(p.ctx, "replayed %d buffered messages", len(pending))
	}
}

// IsConnected reports whether the client currently has a live connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	// Checked under mu so a message is either queued before onConnect
	// drains the outbox or sent on the open connection.
	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		dropped := p.outbox.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		if dropped {
			logger.Debugf(p.ctx, "outbox full, dropped oldest message")
		}
		return nil
	}
	p.mu.Unlock()

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// PublishReport sends a status report (QoS 0, not retained).
func (p *RealPublisher) PublishReport(r logic.Report) error {
	payload, err := FormatReport(r, p.now())
	if err != nil {
		return fmt.Errorf("format report: %w", err)
	}
	return p.publish(TopicStatus, 0, false, payload)
}

// PublishEdge sends a transition event (QoS 0, not retained).
func (p *RealPublisher) PublishEdge(e logic.Edge) error {
	payload, err := FormatEdge(e, p.now())
	if err != nil {
		return fmt.Errorf("format edge: %w", err)
	}
	return p.publish(TopicEvents, 0, false, payload)
}

// PublishSystem sends a lifecycle event (QoS 1).
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(TopicSystem, 1, event.Retained, payload)
}

// Close disconnects from the broker, waiting up to a second for in-flight work.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
