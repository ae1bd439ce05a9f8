package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Expo caps push batches at 100 messages per request.
const expoMaxBatchSize = 100

type PushMessage struct {
	To        string                 `json:"to"`
	Sound     string                 `json:"sound"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Priority  string                 `json:"priority"`
	ChannelID string                 `json:"channelId"`
}

// ExpoClient sends push notifications through the Expo Push API.
type ExpoClient struct {
	url         string
	accessToken string
	client      *http.Client
	log         *zap.Logger
}

func NewExpoClient(url, accessToken string, log *zap.Logger) *ExpoClient {
	return &ExpoClient{
		url:         url,
		accessToken: accessToken,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}
}

func (c *ExpoClient) NotifyLowStock(ctx context.Context, tokens []string, ev LowStockEvent) ([]Receipt, error) {
	title := "Low Stock Alert"
	body := fmt.Sprintf("%s is running low! Only %d left (minimum: %d)",
		ev.ItemName, ev.CurrentQuantity, ev.MinimumStock)
	data := map[string]interface{}{
		"type":             "low_stock",
		"item_id":          ev.ItemID,
		"item_name":        ev.ItemName,
		"current_quantity": ev.CurrentQuantity,
		"minimum_stock":    ev.MinimumStock,
	}
	return c.push(ctx, buildMessages(tokens, title, body, data))
}

func (c *ExpoClient) NotifySaleCompleted(ctx context.Context, tokens []string, ev SaleCompletedEvent) ([]Receipt, error) {
	title := "New Sale Recorded"
	body := fmt.Sprintf("Sale of %s Ks completed. %d item(s) sold.", ev.TotalAmount, ev.ItemsCount)
	data := map[string]interface{}{
		"type":         "sale_completed",
		"sale_id":      ev.SaleID,
		"total_amount": ev.TotalAmount,
		"items_count":  ev.ItemsCount,
	}
	return c.push(ctx, buildMessages(tokens, title, body, data))
}

func buildMessages(tokens []string, title, body string, data map[string]interface{}) []PushMessage {
	messages := make([]PushMessage, 0, len(tokens))
	for _, token := range tokens {
		if token == "" {
			continue
		}
		messages = append(messages, PushMessage{
			To:        token,
			Sound:     "default",
			Title:     title,
			Body:      body,
			Data:      data,
			Priority:  "high",
			ChannelID: "default",
		})
	}
	return messages
}

// chunkMessages splits a batch into provider-sized chunks.
func chunkMessages(messages []PushMessage, size int) [][]PushMessage {
	if len(messages) == 0 {
		return nil
	}
	chunks := make([][]PushMessage, 0, (len(messages)+size-1)/size)
	for start := 0; start < len(messages); start += size {
		end := start + size
		if end > len(messages) {
			end = len(messages)
		}
		chunks = append(chunks, messages[start:end])
	}
	return chunks
}

func (c *ExpoClient) push(ctx context.Context, messages []PushMessage) ([]Receipt, error) {
	if len(messages) == 0 {
		return nil, nil
	}

	var receipts []Receipt
	for _, chunk := range chunkMessages(messages, expoMaxBatchSize) {
		chunkReceipts, err := c.sendChunk(ctx, chunk)
		if err != nil {
			c.log.Warn("push chunk failed", zap.Int("messages", len(chunk)), zap.Error(err))
			continue
		}
		receipts = append(receipts, chunkReceipts...)
	}

	for _, r := range receipts {
		if r.Status == "error" {
			c.log.Warn("push delivery error", zap.String("message", r.Message))
		}
	}

	return receipts, nil
}

func (c *ExpoClient) sendChunk(ctx context.Context, chunk []PushMessage) ([]Receipt, error) {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("push provider returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Data []Receipt `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode push response: %w", err)
	}

	return parsed.Data, nil
}
