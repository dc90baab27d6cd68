package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"notevi/internal/config"
)

// Publisher 将邮件任务发布到持久化队列。发布失败只记录日志,
// 调用方不应因此回滚业务事务。
type Publisher struct {
	url       string
	queueName string
	enabled   bool
}

func NewPublisher(cfg config.Config) *Publisher {
	return &Publisher{
		url:       cfg.AMQPURL,
		queueName: cfg.EmailQueueName,
		enabled:   cfg.EmailEnabled,
	}
}

// Enqueue 发布一条邮件任务。每次发布使用独立连接,避免长连接状态管理;
// 邮件量级下这是可接受的取舍。
func (p *Publisher) Enqueue(ctx context.Context, task EmailTask) error {
	if !p.enabled {
		logrus.WithFields(logrus.Fields{"kind": task.Kind, "recipient": task.Recipient}).
			Debug("email disabled, task dropped")
		return nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		logrus.WithError(err).Error("mailer: dial broker failed")
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logrus.WithError(err).Error("mailer: open channel failed")
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// 幂等声明,durable 保证消息在 broker 重启后仍然存在
	if _, err := ch.QueueDeclare(p.queueName, true, false, false, false, nil); err != nil {
		logrus.WithError(err).Error("mailer: queue declare failed")
		return fmt.Errorf("queue declare: %w", err)
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", p.queueName, false, false, pub); err != nil {
		logrus.WithError(err).Error("mailer: publish failed")
		return fmt.Errorf("publish: %w", err)
	}

	logrus.WithFields(logrus.Fields{"kind": task.Kind, "recipient": task.Recipient}).
		Info("email task enqueued")
	return nil
}
