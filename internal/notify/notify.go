package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	QueueChapterPurchased = "chapter.purchased"
	QueueChapterReleased  = "chapter.released"
)

// Notifier emits fire-and-forget events. Callers log failures and move
// on; a lost notification must never roll back a purchase or release.
type Notifier interface {
	ChapterPurchased(ctx context.Context, userId string, novelId string, chapterId string) error
	ChapterReleased(ctx context.Context, novelId string, chapterId string, chapterNumber int) error
}

type ChapterPurchasedMessage struct {
	UserID    string
	NovelID   string
	ChapterID string
}

type ChapterReleasedMessage struct {
	NovelID       string
	ChapterID     string
	ChapterNumber int
}

type AMQPNotifier struct {
	ch *amqp.Channel
}

func NewAMQPNotifier(conn *amqp.Connection) (*AMQPNotifier, error) {
	ch, err := conn.Channel()

	if err != nil {
		return nil, fmt.Errorf("error opening channel: %v", err)
	}

	for _, queue := range []string{QueueChapterPurchased, QueueChapterReleased} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("error declaring queue: %v", err)
		}
	}

	return &AMQPNotifier{
		ch: ch,
	}, nil
}

func (n *AMQPNotifier) ChapterPurchased(ctx context.Context, userId string, novelId string, chapterId string) error {
	return n.publish(ctx, QueueChapterPurchased, ChapterPurchasedMessage{
		UserID:    userId,
		NovelID:   novelId,
		ChapterID: chapterId,
	})
}

func (n *AMQPNotifier) ChapterReleased(ctx context.Context, novelId string, chapterId string, chapterNumber int) error {
	return n.publish(ctx, QueueChapterReleased, ChapterReleasedMessage{
		NovelID:       novelId,
		ChapterID:     chapterId,
		ChapterNumber: chapterNumber,
	})
}

func (n *AMQPNotifier) publish(ctx context.Context, queue string, message any) error {
	body, err := json.Marshal(message)

	if err != nil {
		return fmt.Errorf("error marshalling message: %v", err)
	}

	err = n.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})

	if err != nil {
		return fmt.Errorf("error publishing message: %v", err)
	}

	return nil
}

func (n *AMQPNotifier) Close() error {
	return n.ch.Close()
}

// NoopNotifier stands in when no broker is configured.
type NoopNotifier struct{}

func (NoopNotifier) ChapterPurchased(ctx context.Context, userId string, novelId string, chapterId string) error {
	return nil
}

func (NoopNotifier) ChapterReleased(ctx context.Context, novelId string, chapterId string, chapterNumber int) error {
	return nil
}
