// Package mailer 通过消息队列异步投递邮件:业务侧发布任务,后台消费者负责 SMTP 发送。
package mailer

const (
	// TaskRegister 注册成功后的欢迎邮件。
	TaskRegister = "register"
	// TaskVerify 邮箱验证邮件,携带验证令牌。
	TaskVerify = "verify"
)

// EmailTask 是发布到邮件队列的消息体。
type EmailTask struct {
	Kind      string `json:"kind"`
	Username  string `json:"username"`
	Recipient string `json:"recipient"`
	Token     string `json:"token,omitempty"`
}
