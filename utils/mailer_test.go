package utils

import (
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailerNotConfigured(t *testing.T) {
	m := NewMailer("smtp.gmail.com", "587", "", "")
	assert.False(t, m.Configured())
	assert.ErrorIs(t, m.Send("a@b.test", "hi", "body"), ErrMailerNotConfigured)

	var nilMailer *Mailer
	assert.False(t, nilMailer.Configured())
}

func TestMailerSendBuildsMessage(t *testing.T) {
	m := NewMailer("smtp.test", "2525", "desk@sports.test", "pw")
	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		assert.Equal(t, "desk@sports.test", from)
		return nil
	}

	require.NoError(t, m.Send("coach@sports.test", "Xin chào", "<p>ok</p>"))
	assert.Equal(t, "smtp.test:2525", gotAddr)
	assert.Equal(t, []string{"coach@sports.test"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Xin chào\r\n")
	assert.Contains(t, string(gotMsg), "charset=\"UTF-8\"")
	assert.Contains(t, string(gotMsg), "\r\n\r\n<p>ok</p>")
}

func TestAccountCreatedEmailEscapes(t *testing.T) {
	body, err := AccountCreatedEmail{
		FullName: "<script>x</script>",
		Role:     "trainer",
		Username: "coach",
		Password: "secret123",
	}.Render()
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "<b>trainer</b>")
	assert.Contains(t, body, "secret123")
}
