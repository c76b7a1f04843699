package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"whatsapp-cloud-go/pkg/models"
	"whatsapp-cloud-go/pkg/whatsapp"
)

// SendRecorder keeps a trace of outbound calls.
type SendRecorder interface {
	RecordSend(ctx context.Context, recipient, msgType string, res *whatsapp.Response) error
}

type WhatsAppHandler struct {
	Client  *whatsapp.Client
	Journal SendRecorder // optional

	log zerolog.Logger
}

func NewWhatsAppHandler(client *whatsapp.Client, log zerolog.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{Client: client, log: log.With().Str("component", "api").Logger()}
}

// Register mounts the send, media and commerce routes on g.
func (h *WhatsAppHandler) Register(g *gin.RouterGroup) {
	msgs := g.Group("/messages")
	{
		msgs.POST("", h.SendRaw)
		msgs.POST("/text", h.SendText)
		msgs.POST("/reaction", h.SendReaction)
		msgs.POST("/location", h.SendLocation)
		msgs.POST("/image", h.sendMedia(whatsapp.MediaImage))
		msgs.POST("/video", h.sendMedia(whatsapp.MediaVideo))
		msgs.POST("/audio", h.sendMedia(whatsapp.MediaAudio))
		msgs.POST("/document", h.sendMedia(whatsapp.MediaDocument))
		msgs.POST("/buttons", h.SendButtons)
		msgs.POST("/list", h.SendList)
		msgs.POST("/catalog", h.SendCatalog)
		msgs.POST("/product", h.SendProduct)
		msgs.POST("/products", h.SendProducts)
		msgs.POST("/:id/read", h.MarkAsRead)
	}

	g.POST("/media", h.UploadMedia)
	g.GET("/media/:id", h.RetrieveMediaURL)
	g.DELETE("/media/:id", h.DeleteMedia)

	g.POST("/profile", h.UpdateProfile)
	g.GET("/commerce", h.GetCommerce)
	g.POST("/commerce/cart", h.UpdateCart)
	g.POST("/commerce/catalog", h.UpdateCatalog)
}

// --- Requests ---

type TextRequest struct {
	To               string `json:"to" binding:"required"`
	Body             string `json:"body" binding:"required"`
	PreviewURL       *bool  `json:"preview_url"`
	ContextMessageID string `json:"context_message_id"`
}

type ReactionRequest struct {
	To        string `json:"to" binding:"required"`
	MessageID string `json:"message_id" binding:"required"`
	Emoji     string `json:"emoji"`
}

type LocationRequest struct {
	To        string  `json:"to" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
}

// MediaRequest references media by public link or by an uploaded media id.
type MediaRequest struct {
	To       string `json:"to" binding:"required"`
	Link     string `json:"link"`
	ID       string `json:"id"`
	Caption  string `json:"caption"`
	Filename string `json:"filename"`
}

type ButtonsRequest struct {
	To      string               `json:"to" binding:"required"`
	Body    string               `json:"body" binding:"required"`
	Buttons []models.ReplyButton `json:"buttons" binding:"required"`
}

type ListRequest struct {
	To       string               `json:"to" binding:"required"`
	Header   string               `json:"header"`
	Body     string               `json:"body" binding:"required"`
	Footer   string               `json:"footer"`
	Button   string               `json:"button" binding:"required"`
	Sections []models.ListSection `json:"sections"`
}

type CatalogRequest struct {
	To     string `json:"to" binding:"required"`
	Body   string `json:"body"`
	Footer string `json:"footer"`
}

type ProductRequest struct {
	To                string `json:"to" binding:"required"`
	CatalogID         string `json:"catalog_id" binding:"required"`
	ProductRetailerID string `json:"product_retailer_id" binding:"required"`
	Body              string `json:"body"`
	Footer            string `json:"footer"`
}

type ProductsRequest struct {
	To        string                  `json:"to" binding:"required"`
	CatalogID string                  `json:"catalog_id" binding:"required"`
	Header    string                  `json:"header"`
	Body      string                  `json:"body"`
	Footer    string                  `json:"footer"`
	Sections  []models.CatalogSection `json:"sections"`
}

// --- Messages ---

// SendRaw forwards a fully built message body.
func (h *WhatsAppHandler) SendRaw(c *gin.Context) {
	var msg whatsapp.GenericMessage
	if !bind(c, &msg) {
		return
	}
	res, err := h.Client.SendRawMessage(c.Request.Context(), msg)
	h.sent(c, msg.To, msg.Type, res, err)
}

func (h *WhatsAppHandler) SendText(c *gin.Context) {
	var req TextRequest
	if !bind(c, &req) {
		return
	}
	opts := &whatsapp.TextOptions{PreviewURL: true, ContextMessageID: req.ContextMessageID}
	if req.PreviewURL != nil {
		opts.PreviewURL = *req.PreviewURL
	}
	res, err := h.Client.SendText(c.Request.Context(), req.To, req.Body, opts)
	h.sent(c, req.To, string(models.MessageTypeText), res, err)
}

func (h *WhatsAppHandler) SendReaction(c *gin.Context) {
	var req ReactionRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Client.SendReaction(c.Request.Context(), req.To, req.MessageID, req.Emoji)
	h.sent(c, req.To, string(models.MessageTypeReaction), res, err)
}

func (h *WhatsAppHandler) SendLocation(c *gin.Context) {
	var req LocationRequest
	if !bind(c, &req) {
		return
	}
	loc := whatsapp.LocationObj{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Name:      req.Name,
		Address:   req.Address,
	}
	res, err := h.Client.SendLocation(c.Request.Context(), req.To, loc)
	h.sent(c, req.To, string(models.MessageTypeLocation), res, err)
}

func (h *WhatsAppHandler) sendMedia(kind whatsapp.MediaKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MediaRequest
		if !bind(c, &req) {
			return
		}
		if req.Link == "" && req.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "link or id is required"})
			return
		}
		media := whatsapp.MediaObj{ID: req.ID, Link: req.Link, Caption: req.Caption, Filename: req.Filename}
		res, err := h.Client.SendMedia(c.Request.Context(), req.To, kind, media)
		h.sent(c, req.To, string(kind), res, err)
	}
}

func (h *WhatsAppHandler) SendButtons(c *gin.Context) {
	var req ButtonsRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Client.SendInteractiveButtons(c.Request.Context(), req.To, req.Body, req.Buttons)
	h.sent(c, req.To, "button", res, err)
}

func (h *WhatsAppHandler) SendList(c *gin.Context) {
	var req ListRequest
	if !bind(c, &req) {
		return
	}
	list := whatsapp.ListMessage{
		Header:   req.Header,
		Body:     req.Body,
		Footer:   req.Footer,
		Button:   req.Button,
		Sections: req.Sections,
	}
	res, err := h.Client.SendInteractiveList(c.Request.Context(), req.To, list)
	h.sent(c, req.To, "list", res, err)
}

func (h *WhatsAppHandler) SendCatalog(c *gin.Context) {
	var req CatalogRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Client.SendCatalog(c.Request.Context(), req.To, req.Body, req.Footer)
	h.sent(c, req.To, "catalog_message", res, err)
}

func (h *WhatsAppHandler) SendProduct(c *gin.Context) {
	var req ProductRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Client.SendCatalogProduct(c.Request.Context(), req.To, req.CatalogID, req.ProductRetailerID, req.Body, req.Footer)
	h.sent(c, req.To, "product", res, err)
}

func (h *WhatsAppHandler) SendProducts(c *gin.Context) {
	var req ProductsRequest
	if !bind(c, &req) {
		return
	}
	list := whatsapp.ProductListMessage{
		CatalogID: req.CatalogID,
		Header:    req.Header,
		Body:      req.Body,
		Footer:    req.Footer,
		Sections:  req.Sections,
	}
	res, err := h.Client.SendCatalogProductList(c.Request.Context(), req.To, list)
	h.sent(c, req.To, "product_list", res, err)
}

func (h *WhatsAppHandler) MarkAsRead(c *gin.Context) {
	res, err := h.Client.MarkAsRead(c.Request.Context(), c.Param("id"))
	reply(c, res, err)
}

// --- Media ---

// UploadMedia handles media file uploads
func (h *WhatsAppHandler) UploadMedia(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}

	mimeType := header.Header.Get("Content-Type")

	media, err := h.Client.UploadMedia(c.Request.Context(), fileBytes, mimeType, header.Filename)
	if err != nil {
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("media upload failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, media)
}

func (h *WhatsAppHandler) RetrieveMediaURL(c *gin.Context) {
	media, err := h.Client.RetrieveMediaURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, media)
}

func (h *WhatsAppHandler) DeleteMedia(c *gin.Context) {
	res, err := h.Client.DeleteMedia(c.Request.Context(), c.Param("id"))
	reply(c, res, err)
}

// --- Business profile and commerce ---

func (h *WhatsAppHandler) UpdateProfile(c *gin.Context) {
	var profile models.BusinessProfile
	if !bind(c, &profile) {
		return
	}
	res, err := h.Client.UpdateBusinessProfile(c.Request.Context(), profile)
	reply(c, res, err)
}

func (h *WhatsAppHandler) GetCommerce(c *gin.Context) {
	res, err := h.Client.GetCommerceSettings(c.Request.Context())
	reply(c, res, err)
}

func (h *WhatsAppHandler) UpdateCart(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	res, err := h.Client.UpdateCartStatus(c.Request.Context(), *req.Enabled)
	reply(c, res, err)
}

func (h *WhatsAppHandler) UpdateCatalog(c *gin.Context) {
	var req struct {
		Visible *bool `json:"visible" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	res, err := h.Client.UpdateCatalogStatus(c.Request.Context(), *req.Visible)
	reply(c, res, err)
}

// --- helpers ---

func bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *WhatsAppHandler) sent(c *gin.Context, to, msgType string, res *whatsapp.Response, err error) {
	if err == nil && h.Journal != nil {
		if jerr := h.Journal.RecordSend(c.Request.Context(), to, msgType, res); jerr != nil {
			h.log.Error().Err(jerr).Str("to", to).Msg("failed to record sent message")
		}
	}
	reply(c, res, err)
}

// reply answers {"success": ..., "response": ...} with the provider body
// passed through. Transport failures become 502.
func reply(c *gin.Context, res *whatsapp.Response, err error) {
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}

	var body interface{} = string(res.Body)
	if json.Valid(res.Body) {
		body = res.Body
	}
	c.JSON(http.StatusOK, gin.H{"success": res.OK, "response": body})
}
