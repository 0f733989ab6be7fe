package token

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	mgr, err := NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	signed, err := mgr.Issue("123456", time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	subject, err := mgr.Parse(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if subject != "123456" {
		t.Fatalf("subject = %q, want 123456", subject)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	mgr, err := NewManager("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	signed, err := mgr.Issue("123456", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := mgr.Parse(signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	mgr, _ := NewManager("test-secret", time.Hour)
	other, _ := NewManager("other-secret", time.Hour)

	signed, err := mgr.Issue("123456", time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := other.Parse(signed); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}
}

func TestNewManagerRequiresKey(t *testing.T) {
	if _, err := NewManager("", time.Hour); err == nil {
		t.Fatal("expected error for empty signing key")
	}
}
