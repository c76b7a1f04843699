// Package webhook decodes inbound WhatsApp Cloud API webhook payloads
// into typed events.
package webhook

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"whatsapp-cloud-go/pkg/models"
)

var (
	// ErrMalformedPayload is returned when the payload is not valid JSON.
	ErrMalformedPayload = errors.New("webhook: malformed payload")
	// ErrNoRecognizedContent is returned when the envelope carries neither
	// messages nor statuses.
	ErrNoRecognizedContent = errors.New("webhook: no messages or statuses found")
)

// UnsupportedMessageTypeError reports a message whose type has no decoder.
type UnsupportedMessageTypeError struct {
	Type string
}

func (e *UnsupportedMessageTypeError) Error() string {
	return fmt.Sprintf("webhook: unsupported message type %q", e.Type)
}

// MissingFieldError reports a field the provider always sends but which was
// absent from the payload.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("webhook: required field %s is missing", e.Field)
}

// Decode parses a raw webhook payload and returns the single event it
// carries: a *models.TextMessage, *models.InteractiveReply,
// *models.OrderMessage or *models.DeliveryStatus.
//
// Only entry[0].changes[0].value is inspected. Messages take precedence over
// statuses and only the first of each is decoded.
func Decode(raw []byte) (models.Event, error) {
	var probe json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	envelope := node(raw).get("entry", "[0]", "changes", "[0]", "value")

	if messages, _ := envelope.array("messages"); len(messages) > 0 {
		sender := decodeContact(envelope.get("contacts", "[0]"))
		return decodeMessage(messages[0], sender)
	}

	if statuses, _ := envelope.array("statuses"); len(statuses) > 0 {
		return decodeStatus(statuses[0]), nil
	}

	return nil, ErrNoRecognizedContent
}

// DecodeString is Decode for a string payload.
func DecodeString(raw string) (models.Event, error) {
	return Decode([]byte(raw))
}

// DecodeReader reads the whole of r and decodes it.
func DecodeReader(r io.Reader) (models.Event, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "webhook: read payload")
	}
	return Decode(raw)
}

func decodeContact(n node) models.Contact {
	return models.Contact{
		Name:        n.str("profile", "name"),
		PhoneNumber: n.str("wa_id"),
	}
}

func decodeMessage(msg node, sender models.Contact) (models.Event, error) {
	msgType := msg.text("type")

	switch models.MessageType(msgType) {
	case models.MessageTypeText:
		return &models.TextMessage{
			ID:               msg.text("id"),
			ContextMessageID: msg.str("context", "id"),
			Timestamp:        msg.text("timestamp"),
			Type:             models.MessageTypeText,
			Body:             msg.text("text", "body"),
			Sender:           sender,
		}, nil

	case models.MessageTypeInteractive:
		reply := msg.get("interactive", "list_reply")
		return &models.InteractiveReply{
			ID:               msg.text("id"),
			ContextMessageID: msg.str("context", "id"),
			Timestamp:        msg.text("timestamp"),
			Type:             models.MessageTypeInteractive,
			ReplyID:          reply.str("id"),
			Title:            reply.str("title"),
			Description:      reply.str("description"),
			Sender:           sender,
		}, nil

	case models.MessageTypeOrder:
		order := msg.get("order")
		products, ok := order.array("product_items")
		if !ok {
			return nil, &MissingFieldError{Field: "order.product_items"}
		}
		items := make([]models.ProductLineItem, 0, len(products))
		for _, p := range products {
			items = append(items, models.ProductLineItem{
				RetailerProductID: p.text("product_retailer_id"),
				Quantity:          p.integer("quantity"),
				UnitPrice:         p.number("item_price"),
				Currency:          p.text("currency"),
			})
		}
		return &models.OrderMessage{
			ID:        msg.text("id"),
			Timestamp: msg.text("timestamp"),
			Type:      models.MessageTypeOrder,
			CatalogID: order.text("catalog_id"),
			OrderText: order.str("text"),
			LineItems: items,
			Sender:    sender,
		}, nil

	default:
		return nil, &UnsupportedMessageTypeError{Type: msgType}
	}
}

func decodeStatus(st node) *models.DeliveryStatus {
	pricing := st.get("pricing")
	var category *models.MessageCategory
	if s := pricing.str("category"); s != nil {
		c := models.MessageCategory(*s)
		category = &c
	}
	return &models.DeliveryStatus{
		MessageID:      st.text("id"),
		Status:         models.StatusText(st.text("status")),
		Timestamp:      st.text("timestamp"),
		RecipientPhone: st.text("recipient_id"),
		Billable:       pricing.boolean("billable"),
		PricingModel:   pricing.str("pricing_model"),
		Category:       category,
	}
}
