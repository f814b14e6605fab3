// Package mailer sends transactional email through the external mail-relay
// service. Delivery is best-effort; the API never blocks on it.
package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// EmailJob is one outbound email, as enqueued on the email topic.
type EmailJob struct {
	UserID  string `json:"user_id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

var client = &http.Client{Timeout: 10 * time.Second}

// Send posts the job to the mail relay endpoint.
func Send(job EmailJob) error {
	relayURL := os.Getenv("MAIL_RELAY_URL")
	if relayURL == "" {
		return fmt.Errorf("MAIL_RELAY_URL environment variable not set")
	}

	jsonData, err := json.Marshal(job)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", relayURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+os.Getenv("MAIL_RELAY_API_KEY"))

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail relay returned status %d", resp.StatusCode)
	}
	return nil
}
