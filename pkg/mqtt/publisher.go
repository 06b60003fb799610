package mqtt

import (
	"fmt"
	"log"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// IPublisher publishes serialized payloads to one topic.
type IPublisher interface {
	Publish(payload []byte) error
	Close()
}

// Publisher sends to a fixed topic over a shared client.
type Publisher struct {
	client paho.Client
	topic  string
}

// NewPublisher binds the shared client to a topic.
func NewPublisher(client paho.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Publish sends the payload with the topic's QoS level.
func (p *Publisher) Publish(payload []byte) error {
	token := p.client.Publish(p.topic, qosFor(p.topic), false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt: publish to %s: %w", p.topic, token.Error())
	}
	return nil
}

// Close disconnects the underlying client.
func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
		log.Println("mqtt: publisher disconnected")
	}
}
