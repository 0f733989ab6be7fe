package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Invoice.NumberPrefix != "INV" {
		t.Fatalf("expected default prefix INV, got %q", cfg.Invoice.NumberPrefix)
	}
	if cfg.Reminder.DaysAfterDue != 1 || cfg.Reminder.MaxReminders != 3 || cfg.Reminder.IntervalDays != 3 {
		t.Fatalf("unexpected reminder defaults: %+v", cfg.Reminder)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected sqlite default driver, got %q", cfg.Database.Driver)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FAKTUR_INVOICE_PREFIX", "RG")
	t.Setenv("FAKTUR_REMINDER_MAX_REMINDERS", "5")
	t.Setenv("FAKTUR_REMINDER_INTERVAL_DAYS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Invoice.NumberPrefix != "RG" {
		t.Fatalf("expected prefix RG, got %q", cfg.Invoice.NumberPrefix)
	}
	if cfg.Reminder.MaxReminders != 5 {
		t.Fatalf("expected max reminders 5, got %d", cfg.Reminder.MaxReminders)
	}
	if cfg.Reminder.IntervalDays != 3 {
		t.Fatalf("expected interval fallback 3, got %d", cfg.Reminder.IntervalDays)
	}
}

func TestMailConfigured(t *testing.T) {
	cfg := Config{}
	if cfg.MailConfigured() {
		t.Fatal("empty config should not be mail configured")
	}
	cfg.SMTP.Host = "smtp.example.com"
	if cfg.MailConfigured() {
		t.Fatal("missing company email should not be mail configured")
	}
	cfg.Company.Email = "billing@example.com"
	if !cfg.MailConfigured() {
		t.Fatal("expected mail configured")
	}
}
