package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChunkMessages(t *testing.T) {
	makeBatch := func(n int) []PushMessage {
		out := make([]PushMessage, n)
		for i := range out {
			out[i].To = fmt.Sprintf("token-%d", i)
		}
		return out
	}

	assert.Nil(t, chunkMessages(nil, 100))

	chunks := chunkMessages(makeBatch(100), 100)
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0], 100)

	chunks = chunkMessages(makeBatch(101), 100)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[1], 1)

	chunks = chunkMessages(makeBatch(250), 100)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[2], 50)
}

func TestBuildMessagesSkipsEmptyTokens(t *testing.T) {
	messages := buildMessages([]string{"a", "", "b"}, "title", "body", nil)
	require.Len(t, messages, 2)
	assert.Equal(t, "a", messages[0].To)
	assert.Equal(t, "b", messages[1].To)
	assert.Equal(t, "high", messages[0].Priority)
	assert.Equal(t, "default", messages[0].Sound)
}

func TestNotifyLowStockMessageBody(t *testing.T) {
	var got []PushMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []Receipt{{Status: "ok", ID: "receipt-1"}},
		})
	}))
	defer srv.Close()

	client := NewExpoClient(srv.URL, "", zap.NewNop())
	receipts, err := client.NotifyLowStock(context.Background(), []string{"ExponentPushToken[x]"}, LowStockEvent{
		ItemID:          3,
		ItemName:        "Cooking Oil",
		CurrentQuantity: 2,
		MinimumStock:    5,
	})
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, "ok", receipts[0].Status)

	require.Len(t, got, 1)
	assert.Equal(t, "Low Stock Alert", got[0].Title)
	assert.Equal(t, "Cooking Oil is running low! Only 2 left (minimum: 5)", got[0].Body)
	assert.Equal(t, "low_stock", got[0].Data["type"])
}

func TestNotifySaleCompletedMessageBody(t *testing.T) {
	var got []PushMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []Receipt{}})
	}))
	defer srv.Close()

	client := NewExpoClient(srv.URL, "", zap.NewNop())
	_, err := client.NotifySaleCompleted(context.Background(), []string{"ExponentPushToken[x]"}, SaleCompletedEvent{
		SaleID:      12,
		TotalAmount: "3500.00",
		ItemsCount:  4,
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "New Sale Recorded", got[0].Title)
	assert.Equal(t, "Sale of 3500.00 Ks completed. 4 item(s) sold.", got[0].Body)
}

func TestPushSurvivesProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewExpoClient(srv.URL, "", zap.NewNop())
	receipts, err := client.NotifyLowStock(context.Background(), []string{"ExponentPushToken[x]"}, LowStockEvent{})
	assert.NoError(t, err)
	assert.Empty(t, receipts)
}

func TestPushNoTokensNoRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	defer srv.Close()

	client := NewExpoClient(srv.URL, "", zap.NewNop())
	receipts, err := client.NotifyLowStock(context.Background(), nil, LowStockEvent{})
	assert.NoError(t, err)
	assert.Nil(t, receipts)
}

func TestValidExpoToken(t *testing.T) {
	assert.True(t, validExpoToken("ExponentPushToken[abc123]"))
	assert.False(t, validExpoToken("abc123"))
	assert.False(t, validExpoToken("ExponentPushToken[abc123"))
	assert.False(t, validExpoToken(""))
}

func TestValidAlertTime(t *testing.T) {
	assert.True(t, validAlertTime("09:30"))
	assert.True(t, validAlertTime("23:59"))
	assert.False(t, validAlertTime("24:00"))
	assert.False(t, validAlertTime("9am"))
	assert.False(t, validAlertTime(""))
}
