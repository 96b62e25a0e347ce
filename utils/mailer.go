package utils

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
)

var ErrMailerNotConfigured = errors.New("SMTP_EMAIL hoặc SMTP_PASSWORD chưa cấu hình")

// Mailer gửi email HTML qua SMTP (mặc định Gmail).
type Mailer struct {
	Host     string
	Port     string
	From     string
	Password string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(host, port, from, password string) *Mailer {
	return &Mailer{Host: host, Port: port, From: from, Password: password, send: smtp.SendMail}
}

func (m *Mailer) Configured() bool {
	return m != nil && m.From != "" && m.Password != ""
}

func (m *Mailer) message(to, subject, htmlBody string) []byte {
	var buf bytes.Buffer
	// Headers: hỗ trợ UTF-8 & HTML
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	fmt.Fprintf(&buf, "From: %s\r\n", m.From)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("\r\n")
	buf.WriteString(htmlBody)
	return buf.Bytes()
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	if !m.Configured() {
		return ErrMailerNotConfigured
	}
	err := m.send(
		m.Host+":"+m.Port,
		smtp.PlainAuth("", m.From, m.Password, m.Host),
		m.From,
		[]string{to},
		m.message(to, subject, htmlBody),
	)
	if err != nil {
		return fmt.Errorf("gửi email thất bại: %w", err)
	}
	return nil
}

var accountCreatedTmpl = template.Must(template.New("account").Parse(`
<h3>Xin chào {{.FullName}},</h3>
<p>Bạn đã được cấp tài khoản <b>{{.Role}}</b> trên hệ thống Sports Center.</p>
<p><b>Tên đăng nhập:</b> {{.Username}}<br>
<b>Mật khẩu:</b> {{.Password}}</p>
<p>Vui lòng đăng nhập và đổi mật khẩu sau khi sử dụng lần đầu.</p>
<hr>
<p><i>Đây là email tự động, vui lòng không trả lời.</i></p>
`))

type AccountCreatedEmail struct {
	FullName string
	Role     string
	Username string
	Password string
}

const AccountCreatedSubject = "Tài khoản Sports Center của bạn đã được tạo"

// Render trả về nội dung HTML, các giá trị đều được escape.
func (e AccountCreatedEmail) Render() (string, error) {
	var buf bytes.Buffer
	if err := accountCreatedTmpl.Execute(&buf, e); err != nil {
		return "", err
	}
	return buf.String(), nil
}
