package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/aquaflow/aquaflow-backend/internal/models"
	"github.com/aquaflow/aquaflow-backend/internal/storage"
)

const anomalyQueueName = "anomaly.detected"

// StartAnomalyConsumer connects to the broker, declares the anomaly.detected
// queue (durable), and persists each event as an Anomaly row. It runs a
// reconnect loop with backoff and never returns once started; malformed
// messages are rejected without requeue so a poison message cannot wedge the
// queue.
func StartAnomalyConsumer(url string, store storage.Storage) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logrus.WithError(err).Warnf("anomaly-consumer: dial failed; retrying in %s", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, store); err != nil {
			logrus.WithError(err).Warn("anomaly-consumer: consume loop ended; reconnecting")
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, store storage.Storage) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(anomalyQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(anomalyQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, store); err != nil {
			logrus.WithError(err).Error("anomaly-consumer: handle message failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, store storage.Storage) error {
	var ev AnomalyDetectedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.RequestID == 0 || ev.Type == "" {
		return fmt.Errorf("incomplete anomaly event: %+v", ev)
	}

	anomaly := &models.Anomaly{
		RequestID:   ev.RequestID,
		Type:        ev.Type,
		Description: ev.Description,
	}
	if err := store.CreateAnomaly(anomaly); err != nil {
		return fmt.Errorf("persist anomaly: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"anomalyId": anomaly.ID,
		"requestId": anomaly.RequestID,
		"type":      anomaly.Type,
	}).Info("anomaly event ingested")
	return nil
}
