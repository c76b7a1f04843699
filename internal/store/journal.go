package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"whatsapp-cloud-go/internal/models"
	wamodels "whatsapp-cloud-go/pkg/models"
	"whatsapp-cloud-go/pkg/whatsapp"
)

// Journal keeps a record of decoded webhook events and outbound calls.
type Journal struct {
	db *gorm.DB
}

func NewJournal(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

// RecordEvent stores a decoded webhook event. Redelivered messages are
// ignored; every status notification is kept.
func (j *Journal) RecordEvent(ctx context.Context, ev wamodels.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "store: marshal event")
	}

	switch e := ev.(type) {
	case *wamodels.TextMessage:
		return j.insertReceived(ctx, received(e.ID, e.Type, e.Timestamp, e.Sender, e.ContextMessageID, e.Body, payload))
	case *wamodels.InteractiveReply:
		return j.insertReceived(ctx, received(e.ID, e.Type, e.Timestamp, e.Sender, e.ContextMessageID, deref(e.Title), payload))
	case *wamodels.OrderMessage:
		content := fmt.Sprintf("%d item(s) from catalog %s", len(e.LineItems), e.CatalogID)
		return j.insertReceived(ctx, received(e.ID, e.Type, e.Timestamp, e.Sender, nil, content, payload))
	case *wamodels.DeliveryStatus:
		receipt := models.DeliveryReceipt{
			WaMessageID:    e.MessageID,
			Status:         string(e.Status),
			RecipientPhone: e.RecipientPhone,
			Billable:       e.Billable,
			PricingModel:   deref(e.PricingModel),
			Category:       category(e.Category),
			Timestamp:      e.Timestamp,
		}
		if err := j.db.WithContext(ctx).Create(&receipt).Error; err != nil {
			return errors.Wrap(err, "store: insert delivery receipt")
		}
		return nil
	default:
		return errors.Errorf("store: unknown event %T", ev)
	}
}

func received(id string, msgType wamodels.MessageType, ts string, sender wamodels.Contact, contextID *string, content string, payload []byte) *models.ReceivedMessage {
	return &models.ReceivedMessage{
		WaMessageID:      id,
		Type:             string(msgType),
		SenderPhone:      deref(sender.PhoneNumber),
		SenderName:       deref(sender.Name),
		ContextMessageID: deref(contextID),
		Content:          content,
		Payload:          string(payload),
		Timestamp:        ts,
	}
}

func (j *Journal) insertReceived(ctx context.Context, m *models.ReceivedMessage) error {
	err := j.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "wa_message_id"}}, DoNothing: true}).
		Create(m).Error
	if err != nil {
		return errors.Wrap(err, "store: insert received message")
	}
	return nil
}

// RecordSend stores the outcome of an outbound call.
func (j *Journal) RecordSend(ctx context.Context, recipient, msgType string, res *whatsapp.Response) error {
	sent := models.SentMessage{
		WaMessageID: res.MessageID(),
		Recipient:   recipient,
		Type:        msgType,
		Success:     res.OK,
		StatusCode:  res.StatusCode,
		Response:    string(res.Body),
	}
	if err := j.db.WithContext(ctx).Create(&sent).Error; err != nil {
		return errors.Wrap(err, "store: insert sent message")
	}
	return nil
}

// ListReceived returns the newest received messages first.
func (j *Journal) ListReceived(ctx context.Context, limit int) ([]models.ReceivedMessage, error) {
	var out []models.ReceivedMessage
	err := j.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&out).Error
	return out, errors.Wrap(err, "store: list received messages")
}

// ListReceipts returns the status history of one sent message, oldest first.
func (j *Journal) ListReceipts(ctx context.Context, waMessageID string) ([]models.DeliveryReceipt, error) {
	var out []models.DeliveryReceipt
	err := j.db.WithContext(ctx).Where("wa_message_id = ?", waMessageID).Order("id ASC").Find(&out).Error
	return out, errors.Wrap(err, "store: list delivery receipts")
}

// ListSent returns the newest outbound calls first.
func (j *Journal) ListSent(ctx context.Context, limit int) ([]models.SentMessage, error) {
	var out []models.SentMessage
	err := j.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&out).Error
	return out, errors.Wrap(err, "store: list sent messages")
}

func category(c *wamodels.MessageCategory) string {
	if c == nil {
		return ""
	}
	return string(*c)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
