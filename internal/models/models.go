package models

import (
	"time"
)

// ReceivedMessage is an inbound user message decoded from a webhook
type ReceivedMessage struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	WaMessageID      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"wa_message_id"`
	Type             string    `gorm:"type:varchar(50)" json:"type"`
	SenderPhone      string    `gorm:"type:varchar(50);index" json:"sender_phone"`
	SenderName       string    `gorm:"type:varchar(255)" json:"sender_name"`
	ContextMessageID string    `gorm:"type:varchar(255)" json:"context_message_id"`
	Content          string    `gorm:"type:text" json:"content"`
	Payload          string    `gorm:"type:text" json:"payload"` // JSON of the decoded event
	Timestamp        string    `gorm:"type:varchar(20)" json:"timestamp"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ReceivedMessage) TableName() string {
	return "received_messages"
}

// DeliveryReceipt is a status notification for a message the business sent
type DeliveryReceipt struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	WaMessageID    string    `gorm:"type:varchar(255);index;not null" json:"wa_message_id"`
	Status         string    `gorm:"type:varchar(20)" json:"status"`
	RecipientPhone string    `gorm:"type:varchar(50)" json:"recipient_phone"`
	Billable       *bool     `json:"billable"`
	PricingModel   string    `gorm:"type:varchar(50)" json:"pricing_model"`
	Category       string    `gorm:"type:varchar(50)" json:"category"`
	Timestamp      string    `gorm:"type:varchar(20)" json:"timestamp"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DeliveryReceipt) TableName() string {
	return "delivery_receipts"
}

// SentMessage records the outcome of an outbound call made through the gateway
type SentMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WaMessageID string    `gorm:"type:varchar(255);index" json:"wa_message_id"`
	Recipient   string    `gorm:"type:varchar(50);index" json:"recipient"`
	Type        string    `gorm:"type:varchar(50)" json:"type"`
	Success     bool      `json:"success"`
	StatusCode  int       `json:"status_code"`
	Response    string    `gorm:"type:text" json:"response"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SentMessage) TableName() string {
	return "sent_messages"
}

// All lists every journal model for auto-migration.
func All() []interface{} {
	return []interface{}{
		&ReceivedMessage{},
		&DeliveryReceipt{},
		&SentMessage{},
	}
}
