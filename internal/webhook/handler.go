package webhook

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"whatsapp-cloud-go/internal/config"
	"whatsapp-cloud-go/pkg/models"
	decoder "whatsapp-cloud-go/pkg/webhook"
	"whatsapp-cloud-go/pkg/whatsapp"
)

// Recorder persists decoded events.
type Recorder interface {
	RecordEvent(ctx context.Context, ev models.Event) error
}

// Notifier fans decoded events out to live subscribers.
type Notifier interface {
	NotifyEvent(ev models.Event)
}

// ReadMarker acknowledges inbound messages to the sender.
type ReadMarker interface {
	MarkAsRead(ctx context.Context, messageID string) (*whatsapp.Response, error)
}

// Handler serves the provider-facing webhook endpoints.
// Journal, Hub and Reader are optional.
type Handler struct {
	VerifyToken  string
	AutoMarkRead bool

	Journal Recorder
	Hub     Notifier
	Reader  ReadMarker

	// keys of recently handled events
	seen *expirable.LRU[string, struct{}]
	log  zerolog.Logger
}

func NewHandler(cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{
		VerifyToken:  cfg.VerifyToken,
		AutoMarkRead: cfg.AutoMarkRead,
		seen:         expirable.NewLRU[string, struct{}](1000, nil, time.Hour),
		log:          log.With().Str("component", "webhook").Logger(),
	}
}

func (h *Handler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "" || token == "" {
		c.Status(http.StatusBadRequest)
		return
	}
	if mode != "subscribe" || token != h.VerifyToken {
		h.log.Warn().Str("mode", mode).Msg("webhook verification rejected")
		c.Status(http.StatusForbidden)
		return
	}

	h.log.Info().Msg("webhook verified")
	c.String(http.StatusOK, challenge)
}

// HandleMessage decodes one notification. Anything that parses as JSON is
// acknowledged with 200 so the provider does not keep redelivering it.
func (h *Handler) HandleMessage(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read webhook body")
		c.Status(http.StatusBadRequest)
		return
	}

	ev, err := decoder.Decode(body)
	if err != nil {
		var (
			unsupported *decoder.UnsupportedMessageTypeError
			missing     *decoder.MissingFieldError
		)
		switch {
		case errors.Is(err, decoder.ErrMalformedPayload):
			h.log.Warn().Err(err).Msg("malformed webhook payload")
			c.Status(http.StatusBadRequest)
			return
		case errors.As(err, &unsupported):
			h.log.Info().Str("type", unsupported.Type).Msg("ignoring unsupported message type")
		case errors.As(err, &missing):
			h.log.Warn().Str("field", missing.Field).Msg("incomplete webhook message")
		default:
			h.log.Debug().Err(err).Msg("nothing to handle in webhook payload")
		}
		c.Status(http.StatusOK)
		return
	}

	key := dedupKey(ev)
	if key != "" {
		if _, dup := h.seen.Get(key); dup {
			h.log.Debug().Str("key", key).Msg("skipping redelivered webhook event")
			c.Status(http.StatusOK)
			return
		}
	}

	h.log.Info().Str("kind", string(ev.EventKind())).Msg("webhook event received")

	recorded := true
	if h.Journal != nil {
		if err := h.Journal.RecordEvent(c.Request.Context(), ev); err != nil {
			h.log.Error().Err(err).Msg("failed to record webhook event")
			recorded = false
		}
	}
	// a failed write stays eligible for the provider's redelivery
	if key != "" && recorded {
		h.seen.Add(key, struct{}{})
	}
	if h.Hub != nil {
		h.Hub.NotifyEvent(ev)
	}
	if id := inboundID(ev); id != "" && h.AutoMarkRead && h.Reader != nil {
		go h.markRead(id)
	}

	c.Status(http.StatusOK)
}

func (h *Handler) markRead(messageID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := h.Reader.MarkAsRead(ctx, messageID)
	if err != nil {
		h.log.Error().Err(err).Str("message_id", messageID).Msg("mark as read failed")
		return
	}
	if !res.OK {
		h.log.Warn().Int("status", res.StatusCode).Str("message_id", messageID).Msg("mark as read rejected")
	}
}

// dedupKey identifies an event across redeliveries. Events without a
// provider id get "" and are never deduplicated.
func dedupKey(ev models.Event) string {
	if st, ok := ev.(*models.DeliveryStatus); ok {
		if st.MessageID == "" {
			return ""
		}
		return st.MessageID + "/" + string(st.Status)
	}
	return inboundID(ev)
}

// inboundID returns the provider id of a user message, or "" for statuses.
func inboundID(ev models.Event) string {
	switch e := ev.(type) {
	case *models.TextMessage:
		return e.ID
	case *models.InteractiveReply:
		return e.ID
	case *models.OrderMessage:
		return e.ID
	}
	return ""
}
