package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"studyplan-backend/models"
)

type sentMail struct {
	to      string
	subject string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(_ context.Context, toEmail, _, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: toEmail, subject: subject})
	return nil
}

func TestNotifyInvitationAccepted(t *testing.T) {
	plan := &models.StudyPlan{ID: "p1", Title: "Physics"}
	member := &models.User{ID: "b", Name: "B", Email: "b@x.com"}

	t.Run("mails the creator", func(t *testing.T) {
		mailer := &recordingMailer{}
		ns := NewNotificationService(zerolog.Nop(), mailer, nil, "StudyPlan", "http://localhost")

		ns.NotifyInvitationAccepted(context.Background(), &models.User{ID: "a", Name: "A", Email: "a@x.com"}, member, plan)

		if len(mailer.sent) != 1 || mailer.sent[0].to != "a@x.com" {
			t.Fatalf("expected one mail to a@x.com, got %+v", mailer.sent)
		}
		if !strings.Contains(mailer.sent[0].subject, "B joined") {
			t.Fatalf("unexpected subject %q", mailer.sent[0].subject)
		}
	})

	t.Run("creator without an address", func(t *testing.T) {
		// Same shape as the stand-in PlanService uses when the creator lookup fails.
		mailer := &recordingMailer{}
		ns := NewNotificationService(zerolog.Nop(), mailer, nil, "StudyPlan", "http://localhost")

		ns.NotifyInvitationAccepted(context.Background(), &models.User{ID: "a", Name: "Someone"}, member, plan)

		if len(mailer.sent) != 0 {
			t.Fatalf("expected no mail, got %+v", mailer.sent)
		}
	})
}

func TestNotifyInvitation(t *testing.T) {
	mailer := &recordingMailer{}
	ns := NewNotificationService(zerolog.Nop(), mailer, nil, "StudyPlan", "http://localhost")
	inviter := &models.User{ID: "a", Name: "A", Email: "a@x.com"}
	plan := &models.StudyPlan{ID: "p1", Title: "Physics"}

	ns.NotifyInvitation(context.Background(), "c@x.com", inviter, plan)
	ns.NotifyInvitation(context.Background(), "", inviter, plan)

	if len(mailer.sent) != 1 || mailer.sent[0].to != "c@x.com" {
		t.Fatalf("expected one mail to c@x.com, got %+v", mailer.sent)
	}
}
