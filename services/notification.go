package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"google.golang.org/api/option"
	"gopkg.in/gomail.v2"

	"studyplan-backend/models"
)

// Notifier is what the plan service tells about invitations and assignments.
// Delivery is best effort: implementations log failures instead of returning
// them.
type Notifier interface {
	NotifyInvitation(ctx context.Context, email string, inviter *models.User, plan *models.StudyPlan)
	NotifyInvitationAccepted(ctx context.Context, creator, member *models.User, plan *models.StudyPlan)
	NotifyTaskAssigned(ctx context.Context, assignee, assigner *models.User, plan *models.StudyPlan, task *models.Task)
}

type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error
}

type Pusher interface {
	Push(ctx context.Context, deviceToken, title, body string, data map[string]string) error
}

// ============================================================
// MAILERS
// ============================================================

type SendGridMailer struct {
	client   *sendgrid.Client
	fromName string
	from     string
}

func NewSendGridMailer(apiKey, from, fromName string) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		from:     from,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.from),
		subject,
		mail.NewEmail(toName, toEmail),
		"",
		htmlBody,
	)
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(_ context.Context, toEmail, toName, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetAddressHeader("To", toEmail, toName)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// ============================================================
// PUSH NOTIFICATIONS via Firebase Cloud Messaging
// ============================================================

type FirebasePusher struct {
	client *messaging.Client
}

func NewFirebasePusher(ctx context.Context, credentialsFile string) (*FirebasePusher, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &FirebasePusher{client: client}, nil
}

func (p *FirebasePusher) Push(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	_, err := p.client.Send(ctx, &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}

// ============================================================
// NOTIFICATION EVENTS
// ============================================================

type NotificationService struct {
	logger  zerolog.Logger
	mailer  Mailer
	pusher  Pusher
	appName string
	appURL  string
}

// NewNotificationService accepts nil mailer or pusher; the matching channel
// is then skipped.
func NewNotificationService(logger zerolog.Logger, mailer Mailer, pusher Pusher, appName, appURL string) *NotificationService {
	return &NotificationService{
		logger:  logger,
		mailer:  mailer,
		pusher:  pusher,
		appName: appName,
		appURL:  appURL,
	}
}

func (ns *NotificationService) NotifyInvitation(ctx context.Context, email string, inviter *models.User, plan *models.StudyPlan) {
	subject := fmt.Sprintf("%s invited you to join \"%s\" on %s", inviter.Name, plan.Title, ns.appName)
	body := ns.render(invitationTemplate, map[string]any{
		"InviterName": inviter.Name,
		"PlanTitle":   plan.Title,
		"AppName":     ns.appName,
		"AppURL":      ns.appURL,
	})
	ns.sendEmail(ctx, email, "", subject, body)
}

func (ns *NotificationService) NotifyInvitationAccepted(ctx context.Context, creator, member *models.User, plan *models.StudyPlan) {
	subject := fmt.Sprintf("%s joined \"%s\"", member.Name, plan.Title)
	body := ns.render(acceptedTemplate, map[string]any{
		"CreatorName": creator.Name,
		"MemberName":  member.Name,
		"PlanTitle":   plan.Title,
		"AppName":     ns.appName,
	})
	ns.sendEmail(ctx, creator.Email, creator.Name, subject, body)
}

func (ns *NotificationService) NotifyTaskAssigned(ctx context.Context, assignee, assigner *models.User, plan *models.StudyPlan, task *models.Task) {
	if ns.pusher == nil || assignee.FCMToken == "" {
		return
	}

	title := fmt.Sprintf("New task in \"%s\"", plan.Title)
	body := fmt.Sprintf("%s assigned you \"%s\"", assigner.Name, task.Title)
	err := ns.pusher.Push(ctx, assignee.FCMToken, title, body, map[string]string{
		"type":    models.ActivityTaskAssigned,
		"plan_id": plan.ID,
		"task_id": task.ID,
	})
	if err != nil {
		ns.logger.Warn().Err(err).Str("user_id", assignee.ID).Msg("failed to push task assignment")
		return
	}
	ns.logger.Debug().Str("user_id", assignee.ID).Str("task_id", task.ID).Msg("pushed task assignment")
}

func (ns *NotificationService) sendEmail(ctx context.Context, toEmail, toName, subject, body string) {
	if toEmail == "" {
		ns.logger.Debug().Str("subject", subject).Msg("no recipient address, skipping email")
		return
	}
	if ns.mailer == nil {
		ns.logger.Debug().Str("email", toEmail).Msg("no mailer configured, skipping email")
		return
	}
	if err := ns.mailer.Send(ctx, toEmail, toName, subject, body); err != nil {
		ns.logger.Warn().Err(err).Str("email", toEmail).Msg("failed to send email")
		return
	}
	ns.logger.Info().Str("email", toEmail).Msg("email sent")
}

func (ns *NotificationService) render(tmpl *template.Template, data map[string]any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		ns.logger.Error().Err(err).Str("template", tmpl.Name()).Msg("failed to render email")
		return ""
	}
	return buf.String()
}

// ============================================================
// EMAIL TEMPLATES
// ============================================================

var invitationTemplate = template.Must(template.New("invitation").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2>You're invited!</h2>
	<p><strong>{{.InviterName}}</strong> invited you to study together in <strong>"{{.PlanTitle}}"</strong> on {{.AppName}}.</p>
	<p>Sign in with this e-mail address to accept or decline.</p>
	<p><a href="{{.AppURL}}">Open {{.AppName}}</a></p>
</body>
</html>`))

var acceptedTemplate = template.Must(template.New("accepted").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
	<p>Hi <strong>{{.CreatorName}}</strong>,</p>
	<p><strong>{{.MemberName}}</strong> accepted your invitation and joined <strong>"{{.PlanTitle}}"</strong>.</p>
	<p style="color: #999; font-size: 12px;">{{.AppName}}</p>
</body>
</html>`))
