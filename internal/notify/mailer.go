// FilePath: internal/notify/mailer.go
package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beeguardai/hub/internal/config"
	"github.com/beeguardai/hub/internal/errors"
	"github.com/beeguardai/hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
	gomail "gopkg.in/gomail.v2"
)

// Mailer sends alert and report emails over SMTP
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendGroupedAlert sends one email covering every violating hive of a
// user in this evaluation cycle.
func (m *Mailer) SendGroupedAlert(ctx context.Context, recipient string, items []models.AlertBatchItem) error {
	if len(items) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Hornet alert: %d hive(s) over threshold", len(items))
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", alertBody(items))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return errors.NewDispatchError("failed to send alert email", err)
	}

	nuts.L.Infof("[Mailer] Alert email sent to %s (%d hives)", recipient, len(items))
	return nil
}

// SendReport sends a report email with the generated document attached
func (m *Mailer) SendReport(ctx context.Context, recipient string, document []byte, filename string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", "BeeGuard report - "+time.Now().Format("02/01/2006"))
	msg.SetBody("text/html", reportBody())
	msg.Attach(filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(document)
		return err
	}))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return errors.NewDispatchError("failed to send report email", err)
	}

	nuts.L.Infof("[Mailer] Report email sent to %s (%s)", recipient, filename)
	return nil
}

func alertBody(items []models.AlertBatchItem) string {
	var b strings.Builder
	b.WriteString(`<html><body style="font-family:sans-serif">`)
	b.WriteString(`<h2>Hornet activity over threshold</h2>`)
	b.WriteString(`<table border="1" cellpadding="6" cellspacing="0">`)
	b.WriteString(`<tr><th>Hive</th><th>Apiary</th><th>Ratio</th><th>Hornets (avg/h)</th><th>Bees (avg/h)</th></tr>`)
	for _, item := range items {
		apiary := item.ApiaryName
		if apiary == "" {
			apiary = "-"
		}
		fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%.1f%%</td><td>%.1f</td><td>%.1f</td></tr>`,
			item.HiveName, apiary, item.RatioPercent, item.HornetAvg, item.BeeAvg)
	}
	b.WriteString(`</table>`)
	b.WriteString(`<p>You receive this email because hornet alerts are enabled in your settings.</p>`)
	b.WriteString(`</body></html>`)
	return b.String()
}

func reportBody() string {
	return `<html><body style="font-family:sans-serif">` +
		`<h2>Your BeeGuard report</h2>` +
		`<p>Please find your periodic hive report attached. It covers ` +
		`temperatures, humidity, bee activity and hornet detections per hive.</p>` +
		`<p>You receive this email because reports are enabled in your settings.</p>` +
		`</body></html>`
}
