package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/nergy-se/tibbernobo/pkg/version"
)

// Publisher reports installed week profiles.
type Publisher interface {
	Publish(p Payload) error
	Close() error
}

var _ Publisher = &publisher{}

type publisher struct {
	client paho.Client
	topic  string
}

// New connects to broker. The connection is meant to live for a single run
// so no reconnect is configured.
func New(broker, topic string) (Publisher, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("tibbernobo-" + version.Commit()).
		SetConnectTimeout(10 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &publisher{
		client: client,
		topic:  topic,
	}, nil
}

// Publish sends the payload retained with QoS 1 so late subscribers see the
// latest profile.
func (p *publisher) Publish(payload Payload) error {
	b, err := FormatPayload(payload)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	token := p.client.Publish(p.topic, 1, true, b)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *publisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
