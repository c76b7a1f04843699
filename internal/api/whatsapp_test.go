package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-cloud-go/internal/config"
	"whatsapp-cloud-go/internal/database"
	"whatsapp-cloud-go/internal/store"
	"whatsapp-cloud-go/pkg/whatsapp"
)

const sentBody = `{"messaging_product":"whatsapp","contacts":[{"input":"15550001","wa_id":"15550001"}],"messages":[{"id":"wamid.sent"}]}`

type graphCall struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type fakeGraph struct {
	*httptest.Server
	mu    sync.Mutex
	calls []graphCall
}

func newFakeGraph(t *testing.T, status int, body string) *fakeGraph {
	fg := &fakeGraph{}
	fg.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		fg.mu.Lock()
		fg.calls = append(fg.calls, graphCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(b)})
		fg.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(fg.Close)
	return fg
}

func (fg *fakeGraph) last(t *testing.T) graphCall {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	require.NotEmpty(t, fg.calls)
	return fg.calls[len(fg.calls)-1]
}

func newTestJournal(t *testing.T) *store.Journal {
	db, err := database.Open(&config.Config{DBDriver: config.DriverSQLite, DBDSN: filepath.Join(t.TempDir(), "api.db")})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return store.NewJournal(db)
}

func newTestAPI(t *testing.T, fg *fakeGraph, journal *store.Journal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	client := whatsapp.NewClient(whatsapp.Options{
		AccessToken:   "token",
		PhoneNumberID: "1234",
		BaseURL:       fg.URL,
	})

	h := NewWhatsAppHandler(client, zerolog.Nop())
	events := NewEventsHandler(journal)
	if journal != nil {
		h.Journal = journal
	}

	r := gin.New()
	g := r.Group("/api")
	h.Register(g)
	g.GET("/events", events.GetEvents)
	g.GET("/events/:id/receipts", events.GetReceipts)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

type apiReply struct {
	Success  bool            `json:"success"`
	Response json.RawMessage `json:"response"`
	Error    string          `json:"error"`
}

func decodeReply(t *testing.T, w *httptest.ResponseRecorder) apiReply {
	var out apiReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSendEndpoints(t *testing.T) {
	tests := []struct {
		name string
		path string
		req  string
		want string
	}{
		{
			name: "text",
			path: "/api/messages/text",
			req:  `{"to":"15550001","body":"Hello World"}`,
			want: `{"messaging_product":"whatsapp","recipient_type":"individual","to":"15550001","type":"text","text":{"preview_url":true,"body":"Hello World"}}`,
		},
		{
			name: "text reply without preview",
			path: "/api/messages/text",
			req:  `{"to":"15550001","body":"ok","preview_url":false,"context_message_id":"wamid.prev"}`,
			want: `{"messaging_product":"whatsapp","recipient_type":"individual","to":"15550001","type":"text","text":{"preview_url":false,"body":"ok"},"context":{"message_id":"wamid.prev"}}`,
		},
		{
			name: "reaction",
			path: "/api/messages/reaction",
			req:  `{"to":"15550001","message_id":"wamid.x","emoji":"👍"}`,
			want: `{"messaging_product":"whatsapp","recipient_type":"individual","to":"15550001","type":"reaction","reaction":{"message_id":"wamid.x","emoji":"👍"}}`,
		},
		{
			name: "image by id",
			path: "/api/messages/image",
			req:  `{"to":"15550001","id":"media-1","caption":"look"}`,
			want: `{"messaging_product":"whatsapp","recipient_type":"individual","to":"15550001","type":"image","image":{"id":"media-1","caption":"look"}}`,
		},
		{
			name: "catalog product",
			path: "/api/messages/product",
			req:  `{"to":"15550001","catalog_id":"cat","product_retailer_id":"sku-1","body":"try it"}`,
			want: `{"messaging_product":"whatsapp","recipient_type":"individual","to":"15550001","type":"interactive","interactive":{"type":"product","body":{"text":"try it"},"action":{"catalog_id":"cat","product_retailer_id":"sku-1"}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fg := newFakeGraph(t, http.StatusOK, sentBody)
			r := newTestAPI(t, fg, nil)

			w := do(r, http.MethodPost, tt.path, tt.req)
			require.Equal(t, http.StatusOK, w.Code)

			rep := decodeReply(t, w)
			assert.True(t, rep.Success)
			assert.JSONEq(t, sentBody, string(rep.Response))

			call := fg.last(t)
			assert.Equal(t, http.MethodPost, call.Method)
			assert.Equal(t, "/v18.0/1234/messages", call.Path)
			assert.JSONEq(t, tt.want, call.Body)
		})
	}
}

func TestSendEndpoints_BadRequest(t *testing.T) {
	fg := newFakeGraph(t, http.StatusOK, sentBody)
	r := newTestAPI(t, fg, nil)

	tests := []struct {
		name string
		path string
		req  string
	}{
		{"missing recipient", "/api/messages/text", `{"body":"hi"}`},
		{"not json", "/api/messages/text", `hello`},
		{"media without source", "/api/messages/video", `{"to":"15550001"}`},
		{"cart without flag", "/api/commerce/cart", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, tt.path, tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	fg.mu.Lock()
	defer fg.mu.Unlock()
	assert.Empty(t, fg.calls)
}

func TestSend_ProviderRejection(t *testing.T) {
	errBody := `{"error":{"message":"Invalid parameter","code":100}}`
	fg := newFakeGraph(t, http.StatusBadRequest, errBody)
	r := newTestAPI(t, fg, nil)

	w := do(r, http.MethodPost, "/api/messages/text", `{"to":"15550001","body":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)

	rep := decodeReply(t, w)
	assert.False(t, rep.Success)
	assert.JSONEq(t, errBody, string(rep.Response))
}

func TestSend_TransportFailure(t *testing.T) {
	fg := newFakeGraph(t, http.StatusOK, sentBody)
	r := newTestAPI(t, fg, nil)
	fg.Close()

	w := do(r, http.MethodPost, "/api/messages/text", `{"to":"15550001","body":"hi"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)

	rep := decodeReply(t, w)
	assert.False(t, rep.Success)
	assert.NotEmpty(t, rep.Error)
}

func TestMarkAsRead(t *testing.T) {
	fg := newFakeGraph(t, http.StatusOK, `{"success":true}`)
	r := newTestAPI(t, fg, nil)

	w := do(r, http.MethodPost, "/api/messages/wamid.in/read", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeReply(t, w).Success)
	assert.JSONEq(t, `{"messaging_product":"whatsapp","status":"read","message_id":"wamid.in"}`, fg.last(t).Body)
}

func TestCommerceEndpoints(t *testing.T) {
	fg := newFakeGraph(t, http.StatusOK, `{"success":true}`)
	r := newTestAPI(t, fg, nil)

	w := do(r, http.MethodPost, "/api/commerce/cart", `{"enabled":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	call := fg.last(t)
	assert.Equal(t, "/v18.0/1234/whatsapp_commerce_settings", call.Path)
	assert.Equal(t, "is_cart_enabled=false", call.Query)

	w = do(r, http.MethodPost, "/api/commerce/catalog", `{"visible":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "is_catalog_visible=true", fg.last(t).Query)

	w = do(r, http.MethodGet, "/api/commerce", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.MethodGet, fg.last(t).Method)
}

func TestUpdateProfile(t *testing.T) {
	fg := newFakeGraph(t, http.StatusOK, `{"success":true}`)
	r := newTestAPI(t, fg, nil)

	w := do(r, http.MethodPost, "/api/profile", `{"about":"Open 9-5","vertical":"RETAIL"}`)
	require.Equal(t, http.StatusOK, w.Code)

	call := fg.last(t)
	assert.Equal(t, "/v18.0/1234/whatsapp_business_profile", call.Path)
	assert.JSONEq(t, `{"messaging_product":"whatsapp","about":"Open 9-5","vertical":"RETAIL"}`, call.Body)
}

func TestUploadMedia(t *testing.T) {
	fg := newFakeGraph(t, http.StatusOK, `{"id":"media-9"}`)
	r := newTestAPI(t, fg, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"media-9"`)
	assert.Equal(t, "/v18.0/1234/media", fg.last(t).Path)
}

func TestEvents_JournalSends(t *testing.T) {
	fg := newFakeGraph(t, http.StatusOK, sentBody)
	journal := newTestJournal(t)
	r := newTestAPI(t, fg, journal)

	w := do(r, http.MethodPost, "/api/messages/text", `{"to":"15550001","body":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)

	sent, err := journal.ListSent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "wamid.sent", sent[0].WaMessageID)
	assert.Equal(t, "text", sent[0].Type)
	assert.True(t, sent[0].Success)

	w = do(r, http.MethodGet, "/api/events?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		Received []json.RawMessage `json:"received"`
		Sent     []struct {
			Recipient string `json:"recipient"`
		} `json:"sent"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Empty(t, listing.Received)
	require.Len(t, listing.Sent, 1)
	assert.Equal(t, "15550001", listing.Sent[0].Recipient)

	w = do(r, http.MethodGet, "/api/events?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvents_Disabled(t *testing.T) {
	fg := newFakeGraph(t, http.StatusOK, sentBody)
	r := newTestAPI(t, fg, nil)

	w := do(r, http.MethodGet, "/api/events", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
