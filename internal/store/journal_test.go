package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-cloud-go/internal/config"
	"whatsapp-cloud-go/internal/database"
	wamodels "whatsapp-cloud-go/pkg/models"
	"whatsapp-cloud-go/pkg/whatsapp"
)

func newJournal(t *testing.T) *Journal {
	t.Helper()
	db, err := database.Open(&config.Config{DBDriver: config.DriverSQLite, DBDSN: filepath.Join(t.TempDir(), "journal.db")})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewJournal(db)
}

func strp(s string) *string { return &s }

func TestRecordEvent_Messages(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()
	sender := wamodels.Contact{Name: strp("Ann"), PhoneNumber: strp("1555")}

	require.NoError(t, j.RecordEvent(ctx, &wamodels.TextMessage{
		ID: "m1", Timestamp: "100", Type: wamodels.MessageTypeText, Body: "hi", Sender: sender,
		ContextMessageID: strp("wamid.prev"),
	}))
	require.NoError(t, j.RecordEvent(ctx, &wamodels.InteractiveReply{
		ID: "m2", Timestamp: "101", Type: wamodels.MessageTypeInteractive, Title: strp("Pizza"), Sender: sender,
	}))
	require.NoError(t, j.RecordEvent(ctx, &wamodels.OrderMessage{
		ID: "m3", Timestamp: "102", Type: wamodels.MessageTypeOrder, CatalogID: "cat",
		LineItems: []wamodels.ProductLineItem{{RetailerProductID: "sku", Quantity: 1, UnitPrice: 2, Currency: "USD"}},
		Sender:    sender,
	}))

	got, err := j.ListReceived(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "m3", got[0].WaMessageID)
	assert.Equal(t, "1 item(s) from catalog cat", got[0].Content)
	assert.Equal(t, "Pizza", got[1].Content)
	assert.Equal(t, "interactive", got[1].Type)
	assert.Equal(t, "hi", got[2].Content)
	assert.Equal(t, "wamid.prev", got[2].ContextMessageID)
	assert.Equal(t, "Ann", got[2].SenderName)
	assert.Equal(t, "1555", got[2].SenderPhone)
	assert.JSONEq(t, `{"id":"m1","context_message_id":"wamid.prev","timestamp":"100","type":"text","body":"hi",
		"sender":{"name":"Ann","phone_number":"1555"}}`, got[2].Payload)
}

func TestRecordEvent_RedeliveryIgnored(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()
	msg := &wamodels.TextMessage{ID: "m1", Timestamp: "100", Type: wamodels.MessageTypeText, Body: "hi"}

	require.NoError(t, j.RecordEvent(ctx, msg))
	require.NoError(t, j.RecordEvent(ctx, msg))

	got, err := j.ListReceived(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecordEvent_Statuses(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()
	billable := true
	marketing := wamodels.CategoryMarketing

	require.NoError(t, j.RecordEvent(ctx, &wamodels.DeliveryStatus{MessageID: "out1", Status: wamodels.StatusSent, Timestamp: "1", RecipientPhone: "1555"}))
	require.NoError(t, j.RecordEvent(ctx, &wamodels.DeliveryStatus{
		MessageID: "out1", Status: wamodels.StatusDelivered, Timestamp: "2", RecipientPhone: "1555",
		Billable: &billable, PricingModel: strp("CBP"), Category: &marketing,
	}))
	require.NoError(t, j.RecordEvent(ctx, &wamodels.DeliveryStatus{MessageID: "out2", Status: wamodels.StatusSent}))

	got, err := j.ListReceipts(ctx, "out1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "sent", got[0].Status)
	assert.Nil(t, got[0].Billable)
	assert.Equal(t, "delivered", got[1].Status)
	require.NotNil(t, got[1].Billable)
	assert.True(t, *got[1].Billable)
	assert.Equal(t, "CBP", got[1].PricingModel)
	assert.Equal(t, "marketing", got[1].Category)
	assert.Empty(t, got[0].Category)
}

func TestRecordSend(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()

	require.NoError(t, j.RecordSend(ctx, "1555", "text", &whatsapp.Response{
		OK: true, StatusCode: 200, Body: []byte(`{"messages":[{"id":"wamid.ok"}]}`),
	}))
	require.NoError(t, j.RecordSend(ctx, "1666", "image", &whatsapp.Response{
		OK: false, StatusCode: 400, Body: []byte(`{"error":{"message":"bad"}}`),
	}))

	got, err := j.ListSent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1666", got[0].Recipient)
	assert.False(t, got[0].Success)
	assert.Equal(t, 400, got[0].StatusCode)

	got, err = j.ListSent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "wamid.ok", got[1].WaMessageID)
	assert.True(t, got[1].Success)
}
