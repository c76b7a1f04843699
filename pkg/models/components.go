package models

// ReplyButton is a quick reply button of an interactive button message.
// The provider accepts at most three buttons per message.
type ReplyButton struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SectionRow is a selectable row of an interactive list message
type SectionRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ListSection groups rows of an interactive list message
type ListSection struct {
	Title string       `json:"title"`
	Rows  []SectionRow `json:"rows"`
}

// CatalogSection groups catalog products of a multi-product message
type CatalogSection struct {
	Title              string   `json:"title"`
	RetailerProductIDs []string `json:"retailer_product_ids"`
}
