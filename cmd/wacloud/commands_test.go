package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const textPayload = `{"entry":[{"changes":[{"value":{
	"contacts":[{"profile":{"name":"Ann"},"wa_id":"15550001"}],
	"messages":[{"id":"wamid.in","timestamp":"1700000000","type":"text","text":{"body":"hi"}}]}}]}]}`

func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Setenv("DB_DRIVER", "none")
	t.Setenv("LOG_LEVEL", "info")

	var out bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"wacloud"}, args...))
	return out.String(), err
}

func TestDecodeCommand(t *testing.T) {
	out, err := runApp(t, textPayload, "decode")
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"text","event":{
		"id":"wamid.in","timestamp":"1700000000","type":"text","body":"hi",
		"sender":{"name":"Ann","phone_number":"15550001"}}}`, out)
}

func TestDecodeCommand_Errors(t *testing.T) {
	_, err := runApp(t, `{"entry":`, "decode")
	assert.Error(t, err)

	_, err = runApp(t, `{"entry":[]}`, "decode")
	assert.Error(t, err)

	_, err = runApp(t, "", "decode", "/does/not/exist.json")
	assert.Error(t, err)
}

func TestSendTextCommand(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotPath, gotBody = r.URL.Path, string(b)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.sent"}]}`))
	}))
	defer srv.Close()

	out, err := runApp(t, "",
		"--token", "tok", "--phone-number-id", "42", "--base-url", srv.URL,
		"send-text", "--to", "15550001", "--body", "Hello World", "--no-preview")
	require.NoError(t, err)

	assert.Equal(t, "/v18.0/42/messages", gotPath)
	assert.JSONEq(t, `{"messaging_product":"whatsapp","recipient_type":"individual","to":"15550001","type":"text","text":{"preview_url":false,"body":"Hello World"}}`, gotBody)
	assert.JSONEq(t, `{"success":true,"response":{"messages":[{"id":"wamid.sent"}]}}`, out)
}

func TestMarkReadCommand_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid message id"}}`))
	}))
	defer srv.Close()

	out, err := runApp(t, "",
		"--token", "tok", "--phone-number-id", "42", "--base-url", srv.URL,
		"mark-read", "wamid.bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid message id")
	assert.Contains(t, out, `"success": false`)
}

func TestCommerceCommand(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.Method+" "+r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	base := []string{"--token", "tok", "--phone-number-id", "42", "--base-url", srv.URL, "commerce"}

	_, err := runApp(t, "", base...)
	require.NoError(t, err)
	_, err = runApp(t, "", append(base, "--cart=false", "--catalog")...)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GET ",
		"POST is_cart_enabled=false",
		"POST is_catalog_visible=true",
	}, queries)
}

func TestMissingCredentials(t *testing.T) {
	t.Setenv("WHATSAPP_ACCESS_TOKEN", "")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "")
	_, err := runApp(t, "", "mark-read", "wamid.x")
	assert.Error(t, err)
}
