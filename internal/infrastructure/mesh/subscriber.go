package mesh

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"rescue-coordination-system/internal/config"
)

// MessageHandler обробляє одне повідомлення mesh-мережі
type MessageHandler func(ctx context.Context, payload []byte) error

// Subscriber приймає повідомлення mesh-мережі з MQTT-брокера шлюзу.
// Польові вузли публікують телеметрію через LoRa-шлюз, який ретранслює
// її в топіки брокера.
type Subscriber struct {
	client mqtt.Client
	cfg    config.MQTTConfig
	logger *zap.Logger
}

// NewSubscriber створює підключеного MQTT-підписника
func NewSubscriber(cfg config.MQTTConfig, logger *zap.Logger) (*Subscriber, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("Connected to MQTT broker", zap.String("broker", cfg.Broker))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	})

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &Subscriber{
		client: client,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Subscribe підписується на топіки сенсорів і телеметрії та маршрутизує
// кожне повідомлення в обробник. Помилки обробки логуються; потік
// повідомлень не переривається.
func (s *Subscriber) Subscribe(ctx context.Context, handler MessageHandler) error {
	callback := func(_ mqtt.Client, msg mqtt.Message) {
		if err := handler(ctx, msg.Payload()); err != nil {
			s.logger.Warn("Failed to handle mesh message",
				zap.String("topic", msg.Topic()),
				zap.Error(err),
			)
		}
	}

	for _, topic := range []string{s.cfg.SensorTopic, s.cfg.TelemetryTopic} {
		if token := s.client.Subscribe(topic, 1, callback); token.Wait() && token.Error() != nil {
			return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
		}
		s.logger.Info("Subscribed to mesh topic", zap.String("topic", topic))
	}

	return nil
}

// Close відписується та розриває з'єднання з брокером
func (s *Subscriber) Close() {
	if s.client.IsConnected() {
		if token := s.client.Unsubscribe(s.cfg.SensorTopic, s.cfg.TelemetryTopic); token.Wait() && token.Error() != nil {
			s.logger.Warn("Failed to unsubscribe from mesh topics", zap.Error(token.Error()))
		}
	}
	s.client.Disconnect(250)
}
