package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremon "github.com/kilianp07/robotsim/core/monitoring"
	coremqtt "github.com/kilianp07/robotsim/core/mqtt"
	"github.com/kilianp07/robotsim/core/world"
	"github.com/kilianp07/robotsim/infra/logger"
)

// QoS keys looked up in Config.QoS.
const (
	QoSCommand = "command"
	QoSStatus  = "status"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Gateway implements world.Gateway on top of Eclipse Paho. It never fails
// because the broker is down: publications return coremqtt.ErrNotConnected
// and subscriptions are replayed once a connection is established.
type Gateway struct {
	cli            pahoClient
	broker         string
	qos            map[string]byte
	publishTimeout time.Duration
	logger         logger.Logger

	mu   sync.RWMutex
	subs map[string]world.MessageHandler
}

var _ world.Gateway = (*Gateway)(nil)

// NewGateway creates the client and tries to connect for at most
// cfg.ConnectTimeoutMS. Only configuration errors are returned.
func NewGateway(cfg Config) (*Gateway, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New("mqtt_gateway")
	broker, err := NormalizeBroker(cfg.Broker)
	if err != nil {
		log.Warnf("%v, falling back to %s", err, broker)
		cfg.Broker = broker
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	g := &Gateway{
		broker:         broker,
		qos:            cfg.QoS,
		publishTimeout: cfg.publishTimeout(),
		logger:         log,
		subs:           make(map[string]world.MessageHandler),
	}
	opts.SetOnConnectHandler(func(paho.Client) { g.onConnect() })
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		g.logger.Warnf("connection to %s lost: %v", g.broker, err)
		coremon.CaptureException(err, map[string]string{"module": "mqtt", "broker": g.broker})
	})
	g.cli = newMQTTClient(opts)

	token := g.cli.Connect()
	switch {
	case !token.WaitTimeout(cfg.connectTimeout()):
		g.logger.Warnf("broker %s unreachable after %s, running without messaging until it is", broker, cfg.connectTimeout())
	case token.Error() != nil:
		g.logger.Warnf("connect %s: %v, running without messaging until it is reachable", broker, token.Error())
		coremon.CaptureException(token.Error(), map[string]string{"module": "mqtt", "broker": broker})
	default:
		g.logger.Infof("connected to %s as %s", broker, cfg.ClientID)
	}
	return g, nil
}

// Broker returns the normalized broker URL.
func (g *Gateway) Broker() string { return g.broker }

// Connected reports whether the broker connection is up.
func (g *Gateway) Connected() bool { return g.cli.IsConnected() }

func (g *Gateway) onConnect() {
	g.mu.RLock()
	subs := make(map[string]world.MessageHandler, len(g.subs))
	for t, h := range g.subs {
		subs[t] = h
	}
	g.mu.RUnlock()
	g.logger.Infof("connected to %s, subscribing to %d topics", g.broker, len(subs))
	for topic, h := range subs {
		if err := g.subscribe(topic, h); err != nil {
			g.logger.Errorf("resubscribe %s: %v", topic, err)
		}
	}
}

// Subscribe registers handler for topic. While disconnected the
// subscription is only recorded and nil is returned.
func (g *Gateway) Subscribe(topic string, handler world.MessageHandler) error {
	if handler == nil {
		return fmt.Errorf("nil handler for %s", topic)
	}
	g.mu.Lock()
	g.subs[topic] = handler
	g.mu.Unlock()
	if !g.cli.IsConnected() {
		g.logger.Debugf("subscription to %s deferred until connected", topic)
		return nil
	}
	return g.subscribe(topic, handler)
}

func (g *Gateway) subscribe(topic string, handler world.MessageHandler) error {
	token := g.cli.Subscribe(topic, g.qosFor(topic), func(_ paho.Client, m paho.Message) {
		handler(m.Topic(), m.Payload())
	})
	if !token.WaitTimeout(g.publishTimeout) {
		return fmt.Errorf("subscribe %s: %w", topic, coremqtt.ErrPublishTimeout)
	}
	return token.Error()
}

// Publish sends payload to topic.
func (g *Gateway) Publish(topic string, payload []byte) error {
	if !g.cli.IsConnected() {
		return coremqtt.ErrNotConnected
	}
	token := g.cli.Publish(topic, g.qosFor(topic), false, payload)
	if !token.WaitTimeout(g.publishTimeout) {
		return coremqtt.ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker and stops reconnection attempts.
func (g *Gateway) Close() {
	g.cli.Disconnect(250)
}

func (g *Gateway) qosFor(topic string) byte {
	key := QoSStatus
	if strings.HasSuffix(topic, "/command") {
		key = QoSCommand
	}
	if g.qos != nil {
		if q, ok := g.qos[key]; ok {
			return q
		}
	}
	return 0
}
