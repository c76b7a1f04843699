package models

// Media represents a file uploaded to the provider's media store
type Media struct {
	ID       string `json:"id"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	URL      string `json:"url,omitempty"`
}
