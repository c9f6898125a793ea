package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/absmach/fedlearn/pkg/mqtt"
)

// Agent connects a Service to the coordinator over MQTT.
type Agent struct {
	svc                Service
	pubsub             mqtt.PubSub
	channelID          string
	clientID           string
	name               string
	partition          int
	livelinessInterval time.Duration
	logger             *slog.Logger
}

type AgentConfig struct {
	ChannelID          string
	ClientID           string
	Name               string
	Partition          int
	LivelinessInterval time.Duration
}

func NewAgent(svc Service, pubsub mqtt.PubSub, cfg AgentConfig, logger *slog.Logger) *Agent {
	return &Agent{
		svc:                svc,
		pubsub:             pubsub,
		channelID:          cfg.ChannelID,
		clientID:           cfg.ClientID,
		name:               cfg.Name,
		partition:          cfg.Partition,
		livelinessInterval: cfg.LivelinessInterval,
		logger:             logger,
	}
}

// Run announces the client, subscribes to round instructions and publishes liveliness
// until ctx is done.
func (a *Agent) Run(ctx context.Context) error {
	payload := map[string]any{
		"client_id": a.clientID,
		"name":      a.name,
		"partition": a.partition,
	}
	if err := a.pubsub.Publish(ctx, mqtt.Topic(a.channelID, mqtt.CreateTopic), payload); err != nil {
		return errors.Join(errors.New("failed to publish discovery"), err)
	}

	topic := mqtt.Topic(a.channelID, mqtt.RoundTopic)
	if err := a.pubsub.Subscribe(ctx, topic, a.Handle(ctx)); err != nil {
		return fmt.Errorf("failed to subscribe to round topic: %w", err)
	}

	if a.livelinessInterval > 0 {
		go a.startLivelinessUpdates(ctx)
	}

	a.logger.Info("Client is waiting for rounds", slog.String("topic", topic))
	<-ctx.Done()

	unsubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return a.pubsub.Unsubscribe(unsubCtx, topic)
}

// Handle decodes round instructions and publishes the reply of every round addressed
// to this client, including failed ones. A round that has started runs to completion
// even when ctx is cancelled; only killing the process interrupts it.
func (a *Agent) Handle(ctx context.Context) mqtt.Handler {
	ctx = context.WithoutCancel(ctx)

	return func(_ string, payload []byte) error {
		var ins fl.Instruction
		if err := json.Unmarshal(payload, &ins); err != nil {
			return fmt.Errorf("failed to decode instruction: %w", err)
		}
		if ins.ClientID != "" && ins.ClientID != a.clientID {
			return nil
		}

		reply, err := a.svc.HandleInstruction(ctx, ins)
		if perr := a.pubsub.Publish(ctx, mqtt.Topic(a.channelID, mqtt.ResultTopic), reply); perr != nil {
			err = errors.Join(err, fmt.Errorf("failed to publish reply: %w", perr))
		}

		return err
	}
}

func (a *Agent) startLivelinessUpdates(ctx context.Context) {
	ticker := time.NewTicker(a.livelinessInterval)
	defer ticker.Stop()

	topic := mqtt.Topic(a.channelID, mqtt.AliveTopic)
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("stopping liveliness updates")

			return
		case <-ticker.C:
			payload := map[string]any{
				"status":    "alive",
				"client_id": a.clientID,
			}
			if err := a.pubsub.Publish(ctx, topic, payload); err != nil {
				a.logger.Error("failed to publish liveliness message", slog.Any("error", err))

				continue
			}

			a.logger.Debug("Published liveliness message", slog.String("topic", topic))
		}
	}
}
