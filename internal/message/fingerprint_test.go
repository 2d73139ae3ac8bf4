package message

import "testing"

func TestFingerprintStableAcrossWhitespaceAndCase(t *testing.T) {
	a := &RawMessage{Sender: "Jane Recruiter", Body: "Hi! Senior   Go role at Acme."}
	b := &RawMessage{Sender: "Jane Recruiter", Body: "hi! senior go ROLE at acme."}

	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("expected identical fingerprints, got %s and %s", a.Fingerprint(), b.Fingerprint())
	}
}

func TestFingerprintDiffersBySender(t *testing.T) {
	a := &RawMessage{Sender: "Jane", Body: "same body"}
	b := &RawMessage{Sender: "John", Body: "same body"}

	if a.Fingerprint() == b.Fingerprint() {
		t.Fatalf("expected different fingerprints for different senders")
	}
}

func TestFingerprintDiffersByBody(t *testing.T) {
	a := &RawMessage{Sender: "Jane", Body: "first message"}
	b := &RawMessage{Sender: "Jane", Body: "second message"}

	if a.Fingerprint() == b.Fingerprint() {
		t.Fatalf("expected different fingerprints for different bodies")
	}
}

func TestNormalizeBody(t *testing.T) {
	got := NormalizeBody("  Hello\n\tWorld  ")
	if got != "hello world" {
		t.Fatalf("unexpected normalized body: %q", got)
	}
}

func TestContextText(t *testing.T) {
	m := &RawMessage{Context: []string{"first", "second"}}
	if m.ContextText() != "first\n---\nsecond" {
		t.Fatalf("unexpected context text: %q", m.ContextText())
	}

	empty := &RawMessage{}
	if empty.HasContext() {
		t.Fatalf("expected no context")
	}
}
