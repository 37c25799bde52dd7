package mqtt

import (
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type record struct {
	topic   string
	qos     byte
	payload []byte
}

// mockClient implements paho.Client for tests.
type mockClient struct {
	opts        *paho.ClientOptions
	connected   bool
	connectErr  error
	subscribed  []record
	published   []record
	handlers    map[string]paho.MessageHandler
	publishErrs []error
	timeout     bool
	disconnects int
}

func newMock(connected bool) *mockClient {
	return &mockClient{connected: connected, handlers: map[string]paho.MessageHandler{}}
}

// stub routes newMQTTClient to mc for the duration of the test.
func stub(t *testing.T, mc *mockClient) {
	t.Helper()
	prev := newMQTTClient
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = prev })
}

func (m *mockClient) IsConnected() bool { return m.connected }
func (m *mockClient) Connect() paho.Token {
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	if m.connected && m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{timeout: !m.connected}
}
func (m *mockClient) Disconnect(uint) { m.disconnects++; m.connected = false }
func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, record{topic, qos, b})
	if m.timeout {
		return &dummyToken{timeout: true}
	}
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(topic string, qos byte, h paho.MessageHandler) paho.Token {
	m.subscribed = append(m.subscribed, record{topic: topic, qos: qos})
	m.handlers[topic] = h
	return &dummyToken{}
}
func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) Unsubscribe(...string) paho.Token        { return &dummyToken{} }
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *mockClient) IsConnectionOpen() bool                  { return m.connected }

// deliver simulates an inbound message on a subscribed topic.
func (m *mockClient) deliver(subscription, topic string, payload []byte) {
	if h, ok := m.handlers[subscription]; ok {
		h(m, mockMessage{topic: topic, p: payload})
	}
}

type dummyToken struct {
	err     error
	timeout bool
}

func (d dummyToken) Wait() bool                     { return !d.timeout }
func (d dummyToken) WaitTimeout(time.Duration) bool { return !d.timeout }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

type mockMessage struct {
	topic string
	p     []byte
}

func (m mockMessage) Duplicate() bool   { return false }
func (m mockMessage) Qos() byte         { return 0 }
func (m mockMessage) Retained() bool    { return false }
func (m mockMessage) Topic() string     { return m.topic }
func (m mockMessage) MessageID() uint16 { return 0 }
func (m mockMessage) Payload() []byte   { return m.p }
func (m mockMessage) Ack()              {}
