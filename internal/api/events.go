package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"whatsapp-cloud-go/internal/store"
)

const defaultEventLimit = 50

type EventsHandler struct {
	Journal *store.Journal
}

func NewEventsHandler(journal *store.Journal) *EventsHandler {
	return &EventsHandler{Journal: journal}
}

// GetEvents lists the journal: received messages and sent calls, newest
// first. ?limit= caps each list.
func (h *EventsHandler) GetEvents(c *gin.Context) {
	if h.Journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "journal is disabled"})
		return
	}

	limit := defaultEventLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	received, err := h.Journal.ListReceived(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sent, err := h.Journal.ListSent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": received, "sent": sent})
}

// GetReceipts lists the delivery statuses reported for one sent message.
func (h *EventsHandler) GetReceipts(c *gin.Context) {
	if h.Journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "journal is disabled"})
		return
	}

	receipts, err := h.Journal.ListReceipts(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, receipts)
}
