package mqtt

import (
	"context"
	"log"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Handler processes one incoming message from a topic.
type Handler func(topic string, message paho.Message) error

// IConsumer subscribes to one or more topics and feeds messages to a
// handler. The type parameter documents the payload the handler decodes.
type IConsumer[T any] interface {
	Consume(ctx context.Context)
	SetHandler(handler Handler)
}

// qosFor upgrades analysis result topics to at-least-once delivery; raw
// sensor streams stay at QoS 0 since the next reading supersedes a lost one.
func qosFor(topic string) byte {
	t := strings.TrimSpace(topic)
	if strings.HasPrefix(t, "analysis/") {
		return 1
	}
	return 0
}

// Consumer subscribes to a single topic.
type Consumer struct {
	client  paho.Client
	topic   string
	handler Handler
}

func NewConsumer(client paho.Client, topic string, handler Handler) *Consumer {
	return &Consumer{client: client, topic: topic, handler: handler}
}

func (c *Consumer) SetHandler(handler Handler) {
	c.handler = handler
}

// Consume subscribes and blocks until ctx is cancelled, then unsubscribes.
func (c *Consumer) Consume(ctx context.Context) {
	token := c.client.Subscribe(c.topic, qosFor(c.topic), func(_ paho.Client, msg paho.Message) {
		if c.handler == nil {
			log.Printf("mqtt: no handler for topic %s", c.topic)
			return
		}
		if err := c.handler(c.topic, msg); err != nil {
			log.Printf("mqtt: handler error on %s: %v", c.topic, err)
		}
	})
	if token.Wait() && token.Error() != nil {
		log.Printf("mqtt: subscribe to %s failed: %v", c.topic, token.Error())
		return
	}
	log.Printf("mqtt: subscribed to %s", c.topic)

	<-ctx.Done()

	unsub := c.client.Unsubscribe(c.topic)
	unsub.Wait()
}

// MultiConsumer subscribes to several topics with one handler.
type MultiConsumer struct {
	client  paho.Client
	topics  []string
	handler Handler
}

func NewMultiConsumer(client paho.Client, topics []string, handler Handler) *MultiConsumer {
	return &MultiConsumer{client: client, topics: topics, handler: handler}
}

func (m *MultiConsumer) SetHandler(handler Handler) {
	m.handler = handler
}

func (m *MultiConsumer) Consume(ctx context.Context) {
	for _, topic := range m.topics {
		topic := topic
		token := m.client.Subscribe(topic, qosFor(topic), func(_ paho.Client, msg paho.Message) {
			if m.handler == nil {
				log.Printf("mqtt: no handler for topic %s", topic)
				return
			}
			if err := m.handler(topic, msg); err != nil {
				log.Printf("mqtt: handler error on %s: %v", topic, err)
			}
		})
		token.Wait()
		if token.Error() != nil {
			log.Printf("mqtt: subscribe to %s failed: %v", topic, token.Error())
		} else {
			log.Printf("mqtt: subscribed to %s", topic)
		}
	}

	<-ctx.Done()

	for _, topic := range m.topics {
		tok := m.client.Unsubscribe(topic)
		tok.Wait()
	}
}
