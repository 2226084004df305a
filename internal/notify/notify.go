// Package notify announces generation outcomes on RabbitMQ so the posting
// and calendar tooling can react without polling the output directory.
package notify

import (
	"encoding/json"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"carecontent/batchgen/internal/batch"
	"carecontent/batchgen/internal/logx"
)

const (
	// QueueVideoGenerated receives one message per successfully generated item.
	QueueVideoGenerated = "video_generated"
	// QueueRunCompleted receives one summary message per finished run.
	QueueRunCompleted = "run_completed"
)

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

type itemPayload struct {
	RunID       string         `json:"run_id"`
	TaskID      string         `json:"task_id"`
	ContentType string         `json:"content_type"`
	OutputPath  string         `json:"output_path"`
	SizeBytes   int64          `json:"size_bytes"`
	Hostname    string         `json:"hostname"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type runPayload struct {
	RunID       string `json:"run_id"`
	GeneratedAt string `json:"generated_at"`
	Total       int    `json:"total"`
	Successful  int    `json:"successful"`
	Failed      int    `json:"failed"`
	Hostname    string `json:"hostname"`
}

func New(rawURL string) (*Client, error) {
	logx.Info("queue connect", "url", redactURL(rawURL))
	conn, err := amqp.Dial(rawURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch}, nil
}

func (c *Client) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// AnnounceItem publishes one successful generation to QueueVideoGenerated.
func (c *Client) AnnounceItem(runID string, r batch.GenerationResult, hostname string) error {
	payload, err := json.Marshal(itemPayload{
		RunID:       runID,
		TaskID:      r.TaskID,
		ContentType: r.ContentType,
		OutputPath:  r.OutputPath,
		SizeBytes:   r.FileSize,
		Hostname:    hostname,
		Metadata:    r.Metadata,
	})
	if err != nil {
		return err
	}
	return c.publish(QueueVideoGenerated, payload)
}

// AnnounceRun publishes the run summary to QueueRunCompleted.
func (c *Client) AnnounceRun(m batch.RunManifest, hostname string) error {
	payload, err := json.Marshal(runPayload{
		RunID:       m.RunID,
		GeneratedAt: m.GeneratedAt.Format(time.RFC3339),
		Total:       m.Total,
		Successful:  m.Successful,
		Failed:      m.Failed,
		Hostname:    hostname,
	})
	if err != nil {
		return err
	}
	return c.publish(QueueRunCompleted, payload)
}

func (c *Client) publish(queueName string, payload []byte) error {
	logx.Debug("queue publish", "queue", queueName, "bytes", len(payload))
	if err := c.ensureQueue(queueName); err != nil {
		return err
	}
	return c.ch.Publish(
		"",
		queueName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
		},
	)
}

func (c *Client) ensureQueue(name string) error {
	logx.Debug("queue ensure", "queue", name)
	_, err := c.ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
	return err
}

func redactURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	if parsed.User == nil {
		return parsed.String()
	}
	username := parsed.User.Username()
	if _, hasPassword := parsed.User.Password(); hasPassword {
		parsed.User = url.UserPassword(username, "REDACTED")
	} else {
		parsed.User = url.User(username)
	}
	return parsed.String()
}
