package whatsapp

import (
	"context"

	"whatsapp-cloud-go/pkg/models"
)

// --- Message Structures ---

// GenericMessage is the body of POST /{phone-number-id}/messages.
// Exactly one of the type-specific fields is set, matching Type.
type GenericMessage struct {
	MessagingProduct string          `json:"messaging_product"`
	RecipientType    string          `json:"recipient_type,omitempty"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Text             *TextObj        `json:"text,omitempty"`
	Reaction         *ReactionObj    `json:"reaction,omitempty"`
	Image            *MediaObj       `json:"image,omitempty"`
	Video            *MediaObj       `json:"video,omitempty"`
	Audio            *MediaObj       `json:"audio,omitempty"`
	Document         *MediaObj       `json:"document,omitempty"`
	Location         *LocationObj    `json:"location,omitempty"`
	Interactive      *InteractiveObj `json:"interactive,omitempty"`
	Context          *ContextObj     `json:"context,omitempty"`
}

type TextObj struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

// ContextObj marks a message as a reply to an earlier one
type ContextObj struct {
	MessageID string `json:"message_id"`
}

type ReactionObj struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

// MediaObj references media either by public Link or by uploaded ID
type MediaObj struct {
	ID       string `json:"id,omitempty"`
	Link     string `json:"link,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"` // documents only
}

type LocationObj struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

type InteractiveObj struct {
	Type   string     `json:"type"`
	Header *HeaderObj `json:"header,omitempty"`
	Body   BodyObj    `json:"body"`
	Footer *FooterObj `json:"footer,omitempty"`
	Action ActionObj  `json:"action"`
}

type HeaderObj struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type BodyObj struct {
	Text string `json:"text"`
}

type FooterObj struct {
	Text string `json:"text"`
}

type ActionObj struct {
	Name              string       `json:"name,omitempty"` // catalog_message
	Button            string       `json:"button,omitempty"`
	Buttons           []ButtonObj  `json:"buttons,omitempty"`
	Sections          []SectionObj `json:"sections,omitempty"`
	CatalogID         string       `json:"catalog_id,omitempty"`
	ProductRetailerID string       `json:"product_retailer_id,omitempty"`
}

type ButtonObj struct {
	Type  string   `json:"type"`
	Reply ReplyObj `json:"reply"`
}

type ReplyObj struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type SectionObj struct {
	Title        string        `json:"title,omitempty"`
	ProductItems []ProductItem `json:"product_items,omitempty"`
	Rows         []RowObj      `json:"rows,omitempty"`
}

type ProductItem struct {
	ProductRetailerID string `json:"product_retailer_id"`
}

type RowObj struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// MediaKind selects the media field of a GenericMessage
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
	MediaDocument MediaKind = "document"
)

// TextOptions tunes SendText. A nil *TextOptions enables link previews.
type TextOptions struct {
	PreviewURL       bool
	ContextMessageID string
}

// ListMessage is an interactive list with a button opening its sections
type ListMessage struct {
	Header   string
	Body     string
	Footer   string
	Button   string
	Sections []models.ListSection
}

// ProductListMessage shows several catalog products grouped in sections
type ProductListMessage struct {
	CatalogID string
	Header    string
	Body      string
	Footer    string
	Sections  []models.CatalogSection
}

func newMessage(to string, msgType models.MessageType) GenericMessage {
	return GenericMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             string(msgType),
	}
}

func footer(text string) *FooterObj {
	if text == "" {
		return nil
	}
	return &FooterObj{Text: text}
}

// --- Builders ---

func BuildText(to, body string, opts *TextOptions) GenericMessage {
	if opts == nil {
		opts = &TextOptions{PreviewURL: true}
	}
	msg := newMessage(to, models.MessageTypeText)
	msg.Text = &TextObj{PreviewURL: opts.PreviewURL, Body: body}
	if opts.ContextMessageID != "" {
		msg.Context = &ContextObj{MessageID: opts.ContextMessageID}
	}
	return msg
}

func BuildReaction(to, messageID, emoji string) GenericMessage {
	msg := newMessage(to, models.MessageTypeReaction)
	msg.Reaction = &ReactionObj{MessageID: messageID, Emoji: emoji}
	return msg
}

func BuildLocation(to string, loc LocationObj) GenericMessage {
	msg := newMessage(to, models.MessageTypeLocation)
	msg.Location = &loc
	return msg
}

func BuildMedia(to string, kind MediaKind, media MediaObj) GenericMessage {
	msg := newMessage(to, models.MessageType(kind))
	switch kind {
	case MediaImage:
		msg.Image = &media
	case MediaVideo:
		msg.Video = &media
	case MediaAudio:
		media.Caption = ""
		msg.Audio = &media
	case MediaDocument:
		msg.Document = &media
	}
	return msg
}

func BuildInteractiveButtons(to, body string, buttons []models.ReplyButton) GenericMessage {
	objs := make([]ButtonObj, 0, len(buttons))
	for _, b := range buttons {
		objs = append(objs, ButtonObj{Type: "reply", Reply: ReplyObj{ID: b.ID, Title: b.Title}})
	}
	msg := newMessage(to, models.MessageTypeInteractive)
	msg.Interactive = &InteractiveObj{
		Type:   "button",
		Body:   BodyObj{Text: body},
		Action: ActionObj{Buttons: objs},
	}
	return msg
}

func BuildInteractiveList(to string, list ListMessage) GenericMessage {
	sections := make([]SectionObj, 0, len(list.Sections))
	for _, s := range list.Sections {
		rows := make([]RowObj, 0, len(s.Rows))
		for _, r := range s.Rows {
			rows = append(rows, RowObj{ID: r.ID, Title: r.Title, Description: r.Description})
		}
		sections = append(sections, SectionObj{Title: s.Title, Rows: rows})
	}
	msg := newMessage(to, models.MessageTypeInteractive)
	msg.Interactive = &InteractiveObj{
		Type:   "list",
		Body:   BodyObj{Text: list.Body},
		Footer: footer(list.Footer),
		Action: ActionObj{Button: list.Button, Sections: sections},
	}
	if list.Header != "" {
		msg.Interactive.Header = &HeaderObj{Type: "text", Text: list.Header}
	}
	return msg
}

func BuildCatalog(to, body, footerText string) GenericMessage {
	msg := newMessage(to, models.MessageTypeInteractive)
	msg.Interactive = &InteractiveObj{
		Type:   "catalog_message",
		Body:   BodyObj{Text: body},
		Footer: footer(footerText),
		Action: ActionObj{Name: "catalog_message"},
	}
	return msg
}

func BuildCatalogProduct(to, catalogID, productRetailerID, body, footerText string) GenericMessage {
	msg := newMessage(to, models.MessageTypeInteractive)
	msg.Interactive = &InteractiveObj{
		Type:   "product",
		Body:   BodyObj{Text: body},
		Footer: footer(footerText),
		Action: ActionObj{CatalogID: catalogID, ProductRetailerID: productRetailerID},
	}
	return msg
}

func BuildCatalogProductList(to string, list ProductListMessage) GenericMessage {
	sections := make([]SectionObj, 0, len(list.Sections))
	for _, s := range list.Sections {
		items := make([]ProductItem, 0, len(s.RetailerProductIDs))
		for _, id := range s.RetailerProductIDs {
			items = append(items, ProductItem{ProductRetailerID: id})
		}
		sections = append(sections, SectionObj{Title: s.Title, ProductItems: items})
	}
	msg := newMessage(to, models.MessageTypeInteractive)
	msg.Interactive = &InteractiveObj{
		Type:   "product_list",
		Header: &HeaderObj{Type: "text", Text: list.Header},
		Body:   BodyObj{Text: list.Body},
		Footer: footer(list.Footer),
		Action: ActionObj{CatalogID: list.CatalogID, Sections: sections},
	}
	return msg
}

// --- Messaging Methods ---

// SendRawMessage posts an already built message.
func (c *Client) SendRawMessage(ctx context.Context, msg GenericMessage) (*Response, error) {
	if msg.MessagingProduct == "" {
		msg.MessagingProduct = "whatsapp"
	}
	res, err := c.sendRequest(ctx, "POST", c.messagesURL(), nil, msg)
	if err != nil {
		return nil, err
	}
	c.report(res, "message sent", "failed to send message", map[string]string{"to": msg.To, "type": msg.Type})
	return res, nil
}

// SendText sends a text message, optionally as a reply to contextMessageID.
func (c *Client) SendText(ctx context.Context, to, body string, opts *TextOptions) (*Response, error) {
	return c.SendRawMessage(ctx, BuildText(to, body, opts))
}

func (c *Client) SendReaction(ctx context.Context, to, messageID, emoji string) (*Response, error) {
	return c.SendRawMessage(ctx, BuildReaction(to, messageID, emoji))
}

func (c *Client) SendLocation(ctx context.Context, to string, loc LocationObj) (*Response, error) {
	return c.SendRawMessage(ctx, BuildLocation(to, loc))
}

// SendMedia sends media referenced by link or uploaded media ID.
func (c *Client) SendMedia(ctx context.Context, to string, kind MediaKind, media MediaObj) (*Response, error) {
	return c.SendRawMessage(ctx, BuildMedia(to, kind, media))
}

func (c *Client) SendImage(ctx context.Context, to, link, caption string) (*Response, error) {
	return c.SendMedia(ctx, to, MediaImage, MediaObj{Link: link, Caption: caption})
}

func (c *Client) SendVideo(ctx context.Context, to, link, caption string) (*Response, error) {
	return c.SendMedia(ctx, to, MediaVideo, MediaObj{Link: link, Caption: caption})
}

func (c *Client) SendAudio(ctx context.Context, to, link string) (*Response, error) {
	return c.SendMedia(ctx, to, MediaAudio, MediaObj{Link: link})
}

func (c *Client) SendDocument(ctx context.Context, to, link, caption, filename string) (*Response, error) {
	return c.SendMedia(ctx, to, MediaDocument, MediaObj{Link: link, Caption: caption, Filename: filename})
}

// SendInteractiveButtons sends reply buttons. The provider rejects more
// than three; the limit is not checked here.
func (c *Client) SendInteractiveButtons(ctx context.Context, to, body string, buttons []models.ReplyButton) (*Response, error) {
	return c.SendRawMessage(ctx, BuildInteractiveButtons(to, body, buttons))
}

func (c *Client) SendInteractiveList(ctx context.Context, to string, list ListMessage) (*Response, error) {
	return c.SendRawMessage(ctx, BuildInteractiveList(to, list))
}

// SendCatalog sends the business catalog.
func (c *Client) SendCatalog(ctx context.Context, to, body, footerText string) (*Response, error) {
	return c.SendRawMessage(ctx, BuildCatalog(to, body, footerText))
}

// SendCatalogProduct sends a single product from a catalog.
func (c *Client) SendCatalogProduct(ctx context.Context, to, catalogID, productRetailerID, body, footerText string) (*Response, error) {
	return c.SendRawMessage(ctx, BuildCatalogProduct(to, catalogID, productRetailerID, body, footerText))
}

func (c *Client) SendCatalogProductList(ctx context.Context, to string, list ProductListMessage) (*Response, error) {
	return c.SendRawMessage(ctx, BuildCatalogProductList(to, list))
}

type readReceipt struct {
	MessagingProduct string `json:"messaging_product"`
	Status           string `json:"status"`
	MessageID        string `json:"message_id"`
}

// MarkAsRead marks an inbound message as read.
func (c *Client) MarkAsRead(ctx context.Context, messageID string) (*Response, error) {
	res, err := c.sendRequest(ctx, "POST", c.messagesURL(), nil, readReceipt{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	})
	if err != nil {
		return nil, err
	}
	c.report(res, "message marked as read", "failed to mark message as read", map[string]string{"message_id": messageID})
	return res, nil
}
