package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"wearxture_back_end/internal/config"
	"wearxture_back_end/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Publisher diffuse les événements de commande.
type Publisher interface {
	Publish(ctx context.Context, evt models.OrderEvent) error
}

// OrderChannel est le canal Redis des événements d'un client.
func OrderChannel(email string) string {
	return "orders:" + strings.ToLower(email)
}

// KafkaPublisher écrit les événements dans un topic, clé = id de commande.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt models.OrderEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// RedisPublisher publie sur le canal du client pour le flux websocket.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, evt models.OrderEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, OrderChannel(evt.UserEmail), payload).Err()
}

// Subscribe retourne l'abonnement aux événements d'un client.
func (p *RedisPublisher) Subscribe(ctx context.Context, email string) *redis.PubSub {
	return p.client.Subscribe(ctx, OrderChannel(email))
}

// FanOut publie sur chaque destination; un échec est journalisé sans bloquer les autres.
type FanOut []Publisher

func (f FanOut) Publish(ctx context.Context, evt models.OrderEvent) error {
	var first error
	for _, p := range f {
		if err := p.Publish(ctx, evt); err != nil {
			log.Warn().Err(err).Str("order_id", evt.OrderID).Str("type", evt.Type).
				Msg("⚠️ Publication d'événement échouée")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Noop ignore les événements.
type Noop struct{}

func (Noop) Publish(context.Context, models.OrderEvent) error { return nil }
