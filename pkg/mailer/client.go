package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	BaseURL    string
	APIKey     string
	Sender     string
	HTTPClient *http.Client
}

type SendRequest struct {
	From     string                 `json:"from"`
	To       string                 `json:"to"`
	Subject  string                 `json:"subject"`
	Template string                 `json:"template"`
	Vars     map[string]interface{} `json:"vars"`
}

type SendResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"message_id"`
}

func NewClient(baseURL, apiKey, sender string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Sender:  sender,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) send(reqData SendRequest) error {
	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := fmt.Sprintf("%s/v1/messages", c.BaseURL)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var response SendResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if !response.Success {
		return fmt.Errorf("mailer rejected message: %s", response.Message)
	}

	return nil
}

// SendOrderConfirmation notifies the customer that payment went through.
func (c *Client) SendOrderConfirmation(email, name, orderNumber string, total float64) error {
	return c.send(SendRequest{
		From:     c.Sender,
		To:       email,
		Subject:  fmt.Sprintf("Order %s confirmed", orderNumber),
		Template: "order_confirmation",
		Vars: map[string]interface{}{
			"name":         name,
			"order_number": orderNumber,
			"total":        total,
		},
	})
}
