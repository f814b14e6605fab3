package notify

import (
	"net/url"
	"strings"
	"testing"
)

func TestPaymentLink(t *testing.T) {
	link := PaymentLink("alice@upi", "Alice", 300, "Hotel night")
	if !strings.HasPrefix(link, "upi://pay?") {
		t.Fatalf("link = %q, want upi://pay?... prefix", link)
	}

	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	q := parsed.Query()
	if got := q.Get("pa"); got != "alice@upi" {
		t.Errorf("pa = %q, want alice@upi", got)
	}
	if got := q.Get("am"); got != "300.00" {
		t.Errorf("am = %q, want 300.00", got)
	}
	if got := q.Get("cu"); got != "INR" {
		t.Errorf("cu = %q, want INR", got)
	}
	if got := q.Get("tn"); got != "Hotel night" {
		t.Errorf("tn = %q, want Hotel night", got)
	}
}

func TestPaymentLinkWithoutHandle(t *testing.T) {
	if link := PaymentLink("", "Alice", 300, "Hotel"); link != "" {
		t.Errorf("link = %q, want empty for missing handle", link)
	}
}

func TestPaymentRequestMessage(t *testing.T) {
	msg := PaymentRequestMessage("Alice", "INR", 300, "Hotel night")
	for _, want := range []string{"Alice", "INR 300.00", "Hotel night"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}

	// Currency defaults to INR.
	msg = PaymentRequestMessage("Alice", "", 42.5, "Cab")
	if !strings.Contains(msg, "INR 42.50") {
		t.Errorf("message %q missing default currency amount", msg)
	}
}
