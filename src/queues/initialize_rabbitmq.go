package queues

import (
	"math"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/bonsol-collective/proof-of-post/pkg/logger"
)

const (
	Exchange     = "postproof"
	VerifyQueue  = "postproof.verify"
	ResultsQueue = "postproof.results"
)

// Connect dials RabbitMQ with exponential backoff. Brokers routinely come
// up after the client in compose setups.
func Connect(url string) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	maxRetries := 7
	waitTime := 1 * time.Second

	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}

		logger.Default().Warnf("RabbitMQ dial attempt %d failed: %v. Retrying in %v", i+1, err, waitTime)
		time.Sleep(waitTime)

		waitTime = time.Duration(math.Pow(2, float64(i+1))) * time.Second
	}

	return nil, err
}

// SetupVerificationQueues declares the postproof exchange, the job and
// result queues, and binds each queue under its own routing key.
func SetupVerificationQueues(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		Exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return err
	}

	for _, queueName := range []string{VerifyQueue, ResultsQueue} {
		_, err = ch.QueueDeclare(
			queueName, // name
			true,      // durable
			false,     // delete when unused
			false,     // exclusive
			false,     // no-wait
			nil,       // arguments
		)
		if err != nil {
			return err
		}

		err = ch.QueueBind(
			queueName, // queue name
			queueName, // routing key
			Exchange,  // exchange
			false,
			nil,
		)
		if err != nil {
			return err
		}
	}

	return nil
}
