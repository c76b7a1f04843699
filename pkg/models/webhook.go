package models

// MessageType is the value of the "type" field of a WhatsApp message
type MessageType string

const (
	MessageTypeText        MessageType = "text"
	MessageTypeInteractive MessageType = "interactive"
	MessageTypeOrder       MessageType = "order"
	MessageTypeImage       MessageType = "image"
	MessageTypeVideo       MessageType = "video"
	MessageTypeAudio       MessageType = "audio"
	MessageTypeDocument    MessageType = "document"
	MessageTypeLocation    MessageType = "location"
	MessageTypeReaction    MessageType = "reaction"
)

// EventKind tags the variant of a decoded webhook Event
type EventKind string

const (
	KindText        EventKind = "text"
	KindInteractive EventKind = "interactive"
	KindOrder       EventKind = "order"
	KindStatus      EventKind = "status"
)

// StatusText is the lifecycle state reported by a delivery status
type StatusText string

const (
	StatusSent      StatusText = "sent"
	StatusDelivered StatusText = "delivered"
	StatusRead      StatusText = "read"
	StatusFailed    StatusText = "failed"
)

// MessageCategory is the pricing category of a conversation
type MessageCategory string

const (
	CategoryService        MessageCategory = "service"
	CategoryUtility        MessageCategory = "utility"
	CategoryAuthentication MessageCategory = "authentication"
	CategoryMarketing      MessageCategory = "marketing"
)

// Event is a single record decoded from an inbound webhook payload.
// It is implemented only by TextMessage, InteractiveReply, OrderMessage and DeliveryStatus.
type Event interface {
	EventKind() EventKind
	event()
}

// Contact represents the sender of an inbound message
type Contact struct {
	Name        *string `json:"name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// TextMessage represents a plain text message sent by a user
type TextMessage struct {
	ID               string      `json:"id"`
	ContextMessageID *string     `json:"context_message_id,omitempty"`
	Timestamp        string      `json:"timestamp"`
	Type             MessageType `json:"type"`
	Body             string      `json:"body"`
	Sender           Contact     `json:"sender"`
}

func (TextMessage) EventKind() EventKind { return KindText }
func (TextMessage) event()               {}

// InteractiveReply represents a list selection made by a user.
// Button replies are not modelled; their reply fields are left nil.
type InteractiveReply struct {
	ID               string      `json:"id"`
	ContextMessageID *string     `json:"context_message_id,omitempty"`
	Timestamp        string      `json:"timestamp"`
	Type             MessageType `json:"type"`
	ReplyID          *string     `json:"reply_id,omitempty"`
	Title            *string     `json:"title,omitempty"`
	Description      *string     `json:"description,omitempty"`
	Sender           Contact     `json:"sender"`
}

func (InteractiveReply) EventKind() EventKind { return KindInteractive }
func (InteractiveReply) event()               {}

// ProductLineItem is one product entry of an order
type ProductLineItem struct {
	RetailerProductID string  `json:"retailer_product_id"`
	Quantity          int     `json:"quantity"`
	UnitPrice         float64 `json:"unit_price"`
	Currency          string  `json:"currency"`
}

// OrderMessage represents a cart submitted by a user from a catalog
type OrderMessage struct {
	ID        string            `json:"id"`
	Timestamp string            `json:"timestamp"`
	Type      MessageType       `json:"type"`
	CatalogID string            `json:"catalog_id"`
	OrderText *string           `json:"order_text,omitempty"`
	LineItems []ProductLineItem `json:"line_items"`
	Sender    Contact           `json:"sender"`
}

func (OrderMessage) EventKind() EventKind { return KindOrder }
func (OrderMessage) event()               {}

// DeliveryStatus is a notification about a message sent by the business
type DeliveryStatus struct {
	MessageID      string           `json:"message_id"`
	Status         StatusText       `json:"status"`
	Timestamp      string           `json:"timestamp"`
	RecipientPhone string           `json:"recipient_phone"`
	Billable       *bool            `json:"billable,omitempty"`
	PricingModel   *string          `json:"pricing_model,omitempty"`
	Category       *MessageCategory `json:"category,omitempty"`
}

func (DeliveryStatus) EventKind() EventKind { return KindStatus }
func (DeliveryStatus) event()               {}
