// Package worker provides a NATS worker that processes music-generation jobs.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/thaitrn/musicgen-service/internal/core"
	"github.com/thaitrn/musicgen-service/internal/musicgen/audio"
)

// handleMessageTimeout bounds one generation job end to end, matching the
// hosted service's deadline for a single inference call.
const handleMessageTimeout = 600 * time.Second

// NatsWorker listens for generation jobs on a NATS subject, runs them
// through a generation backend, and stores the resulting clips.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	store          core.ObjectStore
	generator      core.Generator
	log            *logger.Logger
}

// NewNatsWorker creates a new instance of a NATS worker.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	store core.ObjectStore,
	generator core.Generator,
	log *logger.Logger,
) (*NatsWorker, error) {
	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		store:          store,
		generator:      generator,
		log:            log,
	}, nil
}

// Run starts the worker and begins listening for messages.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	var event core.GenerationJobEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		w.log.Error("Failed to unmarshal generation job: %v", err)

		return
	}

	replyEvent, processErr := w.processJob(ctx, event)
	if processErr != nil {
		w.log.Error("Failed to process generation job %s: %v", event.JobID, processErr)

		return
	}

	err = w.publishReplyEvent(msg, replyEvent)
	if err != nil {
		w.log.Error("Failed to publish reply event for job %s: %v", event.JobID, err)
	}
}

// processJob handles the core logic of generating a clip and uploading it.
func (w *NatsWorker) processJob(
	ctx context.Context,
	event core.GenerationJobEvent,
) (*core.ClipStoredEvent, error) {
	req := event.Request()

	validationErr := req.Validate()
	if validationErr != nil {
		return nil, fmt.Errorf("invalid generation job %s: %w", event.JobID, validationErr)
	}

	audioData, err := w.generator.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate music: %w", err)
	}

	meta, metaErr := audio.ParseMetadata(audioData)
	if metaErr != nil {
		return nil, fmt.Errorf("generated data is not a valid WAV clip: %w", metaErr)
	}

	audioKey := uuid.NewString() + ".wav"

	err = w.store.Upload(ctx, audioKey, audioData)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio data for key '%s': %w", audioKey, err)
	}

	return &core.ClipStoredEvent{
		JobID:      event.JobID,
		Prompt:     event.Prompt,
		AudioKey:   audioKey,
		SampleRate: meta.SampleRate,
		Duration:   meta.Duration(),
		SizeBytes:  len(audioData),
	}, nil
}

// publishReplyEvent marshals and responds with the ClipStoredEvent.
func (w *NatsWorker) publishReplyEvent(msg *nats.Msg, replyEvent *core.ClipStoredEvent) error {
	replyData, err := json.Marshal(replyEvent)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply event: %w", err)
	}

	return nil
}
