package world

// MessageHandler receives inbound messages from the gateway.
type MessageHandler func(topic string, payload []byte)

// Gateway is the publish/subscribe channel the world talks through. The
// transport behind it (MQTT in production, an in-memory fake in tests) owns
// connection management and reconnection.
type Gateway interface {
	Subscribe(topic string, handler MessageHandler) error
	Publish(topic string, payload []byte) error
}

type nopGateway struct{}

func (nopGateway) Subscribe(string, MessageHandler) error { return nil }
func (nopGateway) Publish(string, []byte) error           { return nil }
