// Package notify pushes exchange request lifecycle events to workers over
// MQTT so clients can refresh without polling.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/medrota/shiftswap/internal/model"
)

type Event string

const (
	EventRequestCreated   Event = "exchange.created"
	EventRequestAccepted  Event = "exchange.accepted"
	EventRequestRejected  Event = "exchange.rejected"
	EventRequestCancelled Event = "exchange.cancelled"
)

type payload struct {
	Event     Event     `json:"event"`
	RequestID int       `json:"request_id"`
	OriginID  int       `json:"origin_id"`
	At        time.Time `json:"at"`
}

// Notifier publishes to shiftswap/workers/<id>/exchanges. A nil Notifier is
// valid and publishes nothing.
type Notifier struct {
	client mqtt.Client
}

func NewNotifier(brokerURL, clientID string) (*Notifier, error) {
	if brokerURL == "" {
		return nil, nil
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", brokerURL).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Error().Err(err).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &Notifier{client: client}, nil
}

// Publish fans the event out to every worker involved in the request.
// Delivery is best effort; a failed publish never fails the operation.
func (n *Notifier) Publish(event Event, request model.ExchangeRequest) {
	if n == nil || n.client == nil {
		return
	}
	raw, err := json.Marshal(payload{
		Event:     event,
		RequestID: request.ID,
		OriginID:  request.OriginID,
		At:        time.Now(),
	})
	if err != nil {
		return
	}

	targets := []int{request.RequesterID}
	if request.RecipientID != nil {
		targets = append(targets, *request.RecipientID)
	}
	for _, workerID := range targets {
		topic := fmt.Sprintf("shiftswap/workers/%d/exchanges", workerID)
		if token := n.client.Publish(topic, 0, false, raw); token.Wait() && token.Error() != nil {
			log.Error().Err(token.Error()).Str("topic", topic).Msg("failed to publish exchange event")
		}
	}
}
