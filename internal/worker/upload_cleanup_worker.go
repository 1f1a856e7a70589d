package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"surveylens/internal/platform/rabbitmq"
	"surveylens/internal/storage"
)

// UploadCleanupWorker consumes blob-removal events and deletes the backing
// file from durable storage. Metadata records are already gone by the time
// an event is published, so a redelivery after a crash is harmless.
type UploadCleanupWorker struct {
	conn      *amqp.Connection
	store     storage.Store
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewUploadCleanupWorker(conn *amqp.Connection, store storage.Store, queueName string) *UploadCleanupWorker {
	return &UploadCleanupWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
	}
}

func (w *UploadCleanupWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var event rabbitmq.CleanupEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					log.Printf("worker decode cleanup event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.store.Remove(workerCtx, event.StorageKey); err != nil {
					if errors.Is(err, storage.ErrBlobNotFound) {
						// Already gone; nothing left to clean up.
						_ = d.Ack(false)
						continue
					}
					log.Printf("worker remove blob %s failed: %v", event.StorageKey, err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *UploadCleanupWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
