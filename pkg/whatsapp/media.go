package whatsapp

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"whatsapp-cloud-go/pkg/models"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadMedia stores a file in the provider's media store. The returned
// media ID can be used in SendMedia instead of a public link.
// An empty or generic mimeType is replaced by one sniffed from fileData.
func (c *Client) UploadMedia(ctx context.Context, fileData []byte, mimeType, filename string) (*models.Media, error) {
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(fileData).String()
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, errors.Wrap(err, "whatsapp: create form file")
	}
	if _, err := part.Write(fileData); err != nil {
		return nil, errors.Wrap(err, "whatsapp: write form file")
	}
	if err := writer.WriteField("messaging_product", "whatsapp"); err != nil {
		return nil, errors.Wrap(err, "whatsapp: write form field")
	}
	if err := writer.WriteField("type", mimeType); err != nil {
		return nil, errors.Wrap(err, "whatsapp: write form field")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "whatsapp: close form")
	}

	res, err := c.do(ctx, "POST", c.mediaURL(), writer.FormDataContentType(), body)
	if err != nil {
		return nil, err
	}
	c.report(res, "media uploaded", "failed to upload media", map[string]string{"filename": filename})
	if err := res.Err(); err != nil {
		return nil, err
	}

	var media models.Media
	if err := res.Decode(&media); err != nil {
		return nil, errors.Wrap(err, "whatsapp: decode media response")
	}
	media.Filename = filename
	media.MimeType = mimeType
	media.FileSize = int64(len(fileData))
	return &media, nil
}

// RetrieveMediaURL looks up the short-lived download URL of a media object.
func (c *Client) RetrieveMediaURL(ctx context.Context, mediaID string) (*models.Media, error) {
	res, err := c.sendRequest(ctx, "GET", c.endpoint(mediaID), nil, nil)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	var media models.Media
	if err := res.Decode(&media); err != nil {
		return nil, errors.Wrap(err, "whatsapp: decode media response")
	}
	return &media, nil
}

func (c *Client) DeleteMedia(ctx context.Context, mediaID string) (*Response, error) {
	res, err := c.sendRequest(ctx, "DELETE", c.endpoint(mediaID), nil, nil)
	if err != nil {
		return nil, err
	}
	c.report(res, "media deleted", "failed to delete media", map[string]string{"media_id": mediaID})
	return res, nil
}
