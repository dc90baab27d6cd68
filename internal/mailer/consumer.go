package mailer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"notevi/internal/config"
)

// Consumer 从邮件队列消费任务并通过 SMTP 发送。
type Consumer struct {
	cfg config.Config
}

func NewConsumer(cfg config.Config) *Consumer {
	return &Consumer{cfg: cfg}
}

// Start 连接 broker 并持续消费,连接断开后按指数退避重连。
// 该方法阻塞,应当在独立的 goroutine 中运行。
func (c *Consumer) Start() {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.cfg.AMQPURL)
		if err != nil {
			logrus.WithError(err).Warnf("mailer consumer: dial failed, retrying in %s", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(conn); err != nil {
			logrus.WithError(err).Warn("mailer consumer: consume loop ended, reconnecting")
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func (c *Consumer) consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		logrus.WithError(err).Warn("mailer consumer: set QoS failed")
	}

	if _, err := ch.QueueDeclare(c.cfg.EmailQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(c.cfg.EmailQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.handle(d.Body); err != nil {
			logrus.WithError(err).Error("mailer consumer: handle message failed")
			// 不重新入队,避免坏消息造成死循环
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *Consumer) handle(body []byte) error {
	var task EmailTask
	if err := json.Unmarshal(body, &task); err != nil {
		return fmt.Errorf("unmarshal task: %w", err)
	}

	msg, err := RenderEmail(task, c.cfg)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	if err := c.send(task.Recipient, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	logrus.WithFields(logrus.Fields{"kind": task.Kind, "recipient": task.Recipient}).
		Info("email sent")
	return nil
}

func (c *Consumer) send(recipient string, msg []byte) error {
	addr := c.cfg.SMTPHost + ":" + c.cfg.SMTPPort
	auth := smtp.PlainAuth("", c.cfg.SMTPUser, c.cfg.SMTPPassword, c.cfg.SMTPHost)
	return smtp.SendMail(addr, auth, c.cfg.SMTPUser, []string{recipient}, msg)
}
