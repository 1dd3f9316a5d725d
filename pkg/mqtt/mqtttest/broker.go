package mqtttest

import (
	"sync"

	mqttv2 "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"
)

type Message struct {
	Topic   string
	Payload []byte
}

// Broker is an in-process MQTT broker on a random local port. It keeps every
// message published on the subscribed filter.
type Broker struct {
	server   *mqttv2.Server
	tcp      *listeners.TCP
	messages []Message
	mutex    sync.Mutex
}

func New(filter string) (*Broker, error) {
	server := mqttv2.New(&mqttv2.Options{
		InlineClient: true,
	})
	_ = server.AddHook(new(auth.AllowHook), nil)

	tcp := listeners.NewTCP(listeners.Config{ID: "t1", Address: "127.0.0.1:0"})
	err := server.AddListener(tcp)
	if err != nil {
		return nil, err
	}

	b := &Broker{server: server, tcp: tcp}
	err = server.Subscribe(filter, 1, func(cl *mqttv2.Client, sub packets.Subscription, pk packets.Packet) {
		b.mutex.Lock()
		b.messages = append(b.messages, Message{
			Topic:   pk.TopicName,
			Payload: append([]byte(nil), pk.Payload...),
		})
		b.mutex.Unlock()
	})
	if err != nil {
		return nil, err
	}

	err = server.Serve()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// URL is the broker address in the form paho expects.
func (b *Broker) URL() string {
	return "tcp://" + b.tcp.Address()
}

func (b *Broker) Messages() []Message {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]Message(nil), b.messages...)
}

// Retained returns the retained message stored for topic.
func (b *Broker) Retained(topic string) ([]byte, bool) {
	for _, pk := range b.server.Topics.Messages(topic) {
		if pk.TopicName == topic {
			return pk.Payload, true
		}
	}
	return nil, false
}

func (b *Broker) Close() error {
	return b.server.Close()
}
