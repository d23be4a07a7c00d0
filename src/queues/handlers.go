package queues

import (
	"context"
	"encoding/json"

	"github.com/gagliardetto/solana-go"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/bonsol-collective/proof-of-post/pkg/logger"
	"github.com/bonsol-collective/proof-of-post/src/external"
)

// VerifyJob asks the worker to run one verification against a campaign.
type VerifyJob struct {
	Campaign string `json:"campaign"`
	PostRef  string `json:"post_ref"`
	Tip      uint64 `json:"tip"`
}

// VerifyResult reports the submission outcome back to the results queue.
// The proof itself resolves later; consumers poll the status API for
// completion.
type VerifyResult struct {
	Campaign  string `json:"campaign"`
	RequestID string `json:"request_id,omitempty"`
	Signature string `json:"signature,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleVerifyJobs consumes verification jobs until the context is
// cancelled, submitting each one and publishing the outcome. Deliveries
// are processed sequentially; a bad job is reported, never retried.
func HandleVerifyJobs(ctx context.Context, client *external.SolanaClient, ch *amqp.Channel) error {
	log := logger.Default()

	msgs, err := ch.Consume(
		VerifyQueue, // queue
		"",          // consumer
		true,        // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return err
	}

	log.Infof("Waiting for verification jobs on %s", VerifyQueue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			result := processJob(ctx, client, d)
			if err := publishResult(ch, result); err != nil {
				log.Errorf(err, "Failed to publish result for campaign %s", result.Campaign)
			}
		}
	}
}

func processJob(ctx context.Context, client *external.SolanaClient, d amqp.Delivery) VerifyResult {
	log := logger.Default()

	var job VerifyJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		log.Errorf(err, "Failed to unmarshal verification job")
		return VerifyResult{Error: "unmarshal: " + err.Error()}
	}

	campaign, err := solana.PublicKeyFromBase58(job.Campaign)
	if err != nil {
		log.Errorf(err, "Invalid campaign address %q", job.Campaign)
		return VerifyResult{Campaign: job.Campaign, Error: "invalid campaign address: " + err.Error()}
	}

	handle, err := client.VerifyPost(ctx, campaign, job.PostRef, job.Tip)
	if err != nil {
		log.Errorf(err, "Verification submission failed for campaign %s", job.Campaign)
		return VerifyResult{Campaign: job.Campaign, Error: err.Error()}
	}

	log.Infof("Submitted verification %s for campaign %s", handle.RequestID, job.Campaign)
	return VerifyResult{
		Campaign:  job.Campaign,
		RequestID: handle.RequestID,
		Signature: handle.Signature.String(),
	}
}

func publishResult(ch *amqp.Channel, result VerifyResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return ch.Publish(
		Exchange,
		ResultsQueue, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
