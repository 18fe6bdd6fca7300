package utils

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"studyplan-backend/config"
)

type signup struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"min=6"`
	Status   string `validate:"oneof=accepted rejected"`
}

func TestValidationMessage(t *testing.T) {
	v := validator.New()

	err := v.Struct(signup{Email: "nope", Password: "123", Status: "maybe"})
	got := ValidationMessage(err)
	want := "name is required, email must be a valid email, password must be at least 6, status must be one of: accepted, rejected"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestValidationMessageJSONErrors(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}

	syntaxErr := json.Unmarshal([]byte(`{"title":`), &dst)
	if got := ValidationMessage(syntaxErr); got != "malformed JSON body" && got != "invalid request body" {
		t.Fatalf("unexpected message %q", got)
	}

	typeErr := json.Unmarshal([]byte(`{"title": 5}`), &dst)
	if got := ValidationMessage(typeErr); got != "title has the wrong type" {
		t.Fatalf("unexpected message %q", got)
	}

	if got := ValidationMessage(errors.New("eof")); got != "invalid request body" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "", want: time.Time{}},
		{in: "2026-03-01", want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{in: "2026-03-01T10:30:00Z", want: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
		{in: "03/01/2026", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	p := PaginationQuery{Page: 3, Limit: 20}
	if p.Offset() != 40 {
		t.Fatalf("expected offset 40, got %d", p.Offset())
	}
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{config.EnvDev, config.EnvProd, config.EnvLocal} {
		if _, err := NewLogger(env); err != nil {
			t.Fatalf("env %s: %v", env, err)
		}
	}
	if _, err := NewLogger("staging"); err == nil {
		t.Fatal("expected error for unknown env")
	}
}
