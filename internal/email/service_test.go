package email

import (
	"strings"
	"testing"
)

func TestServiceIsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{
			name:     "empty config",
			config:   Config{},
			expected: false,
		},
		{
			name: "missing host",
			config: Config{
				Port: "587",
				From: "test@example.com",
			},
			expected: false,
		},
		{
			name: "missing port",
			config: Config{
				Host: "smtp.example.com",
				From: "test@example.com",
			},
			expected: false,
		},
		{
			name: "missing from",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
			},
			expected: false,
		},
		{
			name: "fully configured",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
				From: "test@example.com",
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.config)
			if svc.IsConfigured() != tt.expected {
				t.Errorf("IsConfigured() = %v, want %v", svc.IsConfigured(), tt.expected)
			}
		})
	}
}

func TestRenderInviteTemplate(t *testing.T) {
	data := InviteData{
		AppName:      "Hitched",
		InviteeName:  "Jamie",
		InviterName:  "Alex",
		ProjectTitle: "Alex & Sam's Wedding",
		Role:         "EDITOR",
	}

	html, err := renderTemplate(inviteEmailTemplate, data)
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}

	if !strings.Contains(html, "Hitched") {
		t.Error("template should contain app name")
	}
	if !strings.Contains(html, "Jamie") {
		t.Error("template should contain invitee name")
	}
	if !strings.Contains(html, "Alex") {
		t.Error("template should contain inviter name")
	}
	if !strings.Contains(html, "EDITOR") {
		t.Error("template should contain role")
	}
}

func TestRenderRSVPTemplate(t *testing.T) {
	attending, err := renderTemplate(rsvpEmailTemplate, RSVPData{
		AppName:      "Hitched",
		PlannerName:  "Alex",
		GuestName:    "Riley",
		Attending:    true,
		ProjectTitle: "Alex & Sam's Wedding",
	})
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}
	if !strings.Contains(attending, "Riley") {
		t.Error("template should contain guest name")
	}
	if !strings.Contains(attending, "Attending") {
		t.Error("template should say attending")
	}

	declined, err := renderTemplate(rsvpEmailTemplate, RSVPData{
		AppName:      "Hitched",
		PlannerName:  "Alex",
		GuestName:    "Riley",
		Attending:    false,
		ProjectTitle: "Alex & Sam's Wedding",
	})
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}
	if !strings.Contains(declined, "Not attending") {
		t.Error("template should say not attending")
	}
}
