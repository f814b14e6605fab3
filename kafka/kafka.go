package kafka

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"

	"travel-friend/api/logger"
	"travel-friend/api/mailer"
	"travel-friend/api/worker"
)

var (
	EmailProducer *kafka.Producer
	EmailTopic    string = "expense_emails"
	GroupID       string = "email-dispatch-consumer"
)

func InitProducer() error {
	config := &kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BOOTSTRAP_SERVERS"),
		"sasl.username":     os.Getenv("KAFKA_API_KEY"),
		"sasl.password":     os.Getenv("KAFKA_API_SECRET"),
		"security.protocol": "SASL_SSL",
		"sasl.mechanism":    "PLAIN",
	}

	var err error
	EmailProducer, err = kafka.NewProducer(config)
	if err != nil {
		logger.Get().Error("failed to initialize Kafka producer",
			zap.String("bootstrap_servers", os.Getenv("KAFKA_BOOTSTRAP_SERVERS")),
			zap.Error(err))
		return err
	}

	logger.Get().Info("Kafka producer initialized successfully",
		zap.String("bootstrap_servers", os.Getenv("KAFKA_BOOTSTRAP_SERVERS")))
	return nil
}

// EnqueueEmail produces an email job onto the email topic. Errors are
// returned so callers can record the miss, but delivery stays best-effort.
func EnqueueEmail(job mailer.EmailJob) error {
	if EmailProducer == nil {
		return fmt.Errorf("kafka producer not initialized")
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &EmailTopic, Partition: kafka.PartitionAny},
		Key:            []byte(job.UserID),
		Value:          payload,
	}

	if err := EmailProducer.Produce(msg, nil); err != nil {
		logger.Get().Error("failed to produce email job",
			zap.String("topic", EmailTopic),
			zap.String("user_id", job.UserID),
			zap.Error(err))
		return err
	}

	logger.Get().Debug("email job produced successfully",
		zap.String("topic", EmailTopic),
		zap.String("user_id", job.UserID))
	return nil
}

// StartEmailConsumer reads email jobs off the topic and hands them to the
// worker pool, partitioned by recipient so per-user ordering holds.
func StartEmailConsumer(pool *worker.WorkerPool) error {
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  os.Getenv("KAFKA_BOOTSTRAP_SERVERS"),
		"security.protocol":  "SASL_SSL",
		"sasl.mechanisms":    "PLAIN",
		"sasl.username":      os.Getenv("KAFKA_API_KEY"),
		"sasl.password":      os.Getenv("KAFKA_API_SECRET"),
		"session.timeout.ms": "45000",
		"group.id":           GroupID,
		"auto.offset.reset":  "latest",
	})
	if err != nil {
		logger.Get().Error("failed to create consumer",
			zap.String("bootstrap_servers", os.Getenv("KAFKA_BOOTSTRAP_SERVERS")),
			zap.Error(err))
		return err
	}

	err = consumer.Subscribe(EmailTopic, nil)
	if err != nil {
		logger.Get().Error("failed to subscribe to topic",
			zap.String("topic", EmailTopic),
			zap.Error(err))
		return err
	}

	logger.Get().Info("Kafka consumer started successfully",
		zap.String("topic", EmailTopic),
		zap.String("group_id", GroupID))

	go func() {
		for {
			msg, err := consumer.ReadMessage(-1)
			if err != nil {
				logger.Get().Error("consumer error",
					zap.String("topic", EmailTopic),
					zap.Error(err))
				continue
			}

			var job mailer.EmailJob
			if err := json.Unmarshal(msg.Value, &job); err != nil {
				logger.Get().Error("failed to unmarshal email job",
					zap.String("topic", EmailTopic),
					zap.Error(err))
				continue
			}

			pool.Submit(msg.Value, pool.PartitionFor(job.UserID))
		}
	}()
	return nil
}
