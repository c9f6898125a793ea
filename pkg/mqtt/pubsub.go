// Package mqtt connects a client to the coordinator's broker and exchanges JSON
// messages on per-channel topics.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connTimeout    = 10
	reconnTimeout  = 1
	disconnTimeout = 250

	defaultTimeout = 30 * time.Second

	AliveTopic  = "control/client/alive"
	CreateTopic = "control/client/create"
	RoundTopic  = "control/coordinator/round"
	ResultTopic = "control/client/result"
)

var (
	errPublishTimeout     = errors.New("failed to publish due to timeout reached")
	errSubscribeTimeout   = errors.New("failed to subscribe due to timeout reached")
	errUnsubscribeTimeout = errors.New("failed to unsubscribe due to timeout reached")
	errEmptyTopic         = errors.New("empty topic")
	errEmptyID            = errors.New("empty ID")

	lwtPayloadTemplate = `{"status":"offline","client_id":"%s"}`
)

// Handler processes the raw payload received on topic.
type Handler func(topic string, payload []byte) error

type PubSub interface {
	Publish(ctx context.Context, topic string, msg any) error
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Unsubscribe(ctx context.Context, topic string) error
	Disconnect(ctx context.Context) error
}

type Config struct {
	URL       string
	QoS       byte
	ID        string
	Username  string
	Password  string
	ChannelID string
	Timeout   time.Duration
}

type pubsub struct {
	client  mqtt.Client
	qos     byte
	timeout time.Duration
	logger  *slog.Logger

	mu   sync.Mutex
	subs map[string]Handler
}

// Topic returns the full topic of a control suffix on a channel.
func Topic(channelID, suffix string) string {
	return fmt.Sprintf("channels/%s/messages/%s", channelID, suffix)
}

func NewPubSub(cfg Config, logger *slog.Logger) (PubSub, error) {
	if cfg.ID == "" {
		return nil, errEmptyID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	ps := &pubsub{
		qos:     cfg.QoS,
		timeout: cfg.Timeout,
		logger:  logger,
		subs:    make(map[string]Handler),
	}

	client, err := connect(clientOptions(cfg, logger, ps.resubscribe), cfg.Timeout)
	if err != nil {
		return nil, err
	}
	ps.client = client

	return ps, nil
}

func (ps *pubsub) Publish(ctx context.Context, topic string, msg any) error {
	if topic == "" {
		return errEmptyTopic
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return ps.await(ctx, ps.client.Publish(topic, ps.qos, false, data), errPublishTimeout)
}

func (ps *pubsub) Subscribe(ctx context.Context, topic string, handler Handler) error {
	if topic == "" {
		return errEmptyTopic
	}

	if err := ps.await(ctx, ps.client.Subscribe(topic, ps.qos, ps.mqttHandler(handler)), errSubscribeTimeout); err != nil {
		return err
	}

	ps.mu.Lock()
	ps.subs[topic] = handler
	ps.mu.Unlock()

	return nil
}

func (ps *pubsub) Unsubscribe(ctx context.Context, topic string) error {
	if topic == "" {
		return errEmptyTopic
	}

	ps.mu.Lock()
	delete(ps.subs, topic)
	ps.mu.Unlock()

	return ps.await(ctx, ps.client.Unsubscribe(topic), errUnsubscribeTimeout)
}

// resubscribe restores every active subscription. The session is clean, so the
// broker forgets them each time the connection drops.
func (ps *pubsub) resubscribe(c mqtt.Client) {
	ps.mu.Lock()
	subs := maps.Clone(ps.subs)
	ps.mu.Unlock()

	for topic, h := range subs {
		token := c.Subscribe(topic, ps.qos, ps.mqttHandler(h))
		if !token.WaitTimeout(ps.timeout) {
			ps.logger.Warn("Failed to resubscribe", slog.String("topic", topic), slog.Any("error", errSubscribeTimeout))

			continue
		}
		if err := token.Error(); err != nil {
			ps.logger.Warn("Failed to resubscribe", slog.String("topic", topic), slog.Any("error", err))

			continue
		}

		ps.logger.Info("Resubscribed after reconnect", slog.String("topic", topic))
	}
}

// await blocks until the broker acknowledges token, ctx ends or the configured
// timeout passes, whichever comes first.
func (ps *pubsub) await(ctx context.Context, token mqtt.Token, errTimeout error) error {
	timer := time.NewTimer(ps.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errTimeout
	}
}

func (ps *pubsub) Disconnect(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		ps.client.Disconnect(disconnTimeout)

		return nil
	}
}

func clientOptions(cfg Config, logger *slog.Logger, onConnect func(mqtt.Client)) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(cfg.ID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(connTimeout * time.Second).
		SetMaxReconnectInterval(reconnTimeout * time.Minute)

	if cfg.ChannelID != "" {
		opts.SetWill(Topic(cfg.ChannelID, AliveTopic), fmt.Sprintf(lwtPayloadTemplate, cfg.ID), 0, false)
	}

	opts.SetOnConnectHandler(func(c mqtt.Client) {
		logger.Info("MQTT connection established", slog.String("broker", cfg.URL))
		onConnect(c)
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		args := []any{}
		if err != nil {
			args = append(args, slog.Any("error", err))
		}

		logger.Info("MQTT connection lost", args...)
	})

	opts.SetReconnectingHandler(func(_ mqtt.Client, options *mqtt.ClientOptions) {
		args := []any{}
		if options != nil {
			args = append(args, slog.String("client_id", options.ClientID))
		}

		logger.Info("MQTT reconnecting", args...)
	})

	return opts
}

func connect(opts *mqtt.ClientOptions, timeout time.Duration) (mqtt.Client, error) {
	client := mqtt.NewClient(opts)

	token := client.Connect()
	if ok := token.WaitTimeout(timeout); !ok {
		return nil, errors.New("timeout reached while connecting to MQTT broker")
	}
	if err := token.Error(); err != nil {
		return nil, errors.Join(errors.New("failed to connect to MQTT broker"), err)
	}

	return client, nil
}

func (ps *pubsub) mqttHandler(h Handler) mqtt.MessageHandler {
	return func(_ mqtt.Client, m mqtt.Message) {
		if err := h(m.Topic(), m.Payload()); err != nil {
			ps.logger.Warn("Failed to handle MQTT message",
				slog.String("topic", m.Topic()),
				slog.Any("error", err),
			)
		}

		m.Ack()
	}
}
