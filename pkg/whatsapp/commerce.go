package whatsapp

import (
	"context"
	"net/url"
	"strconv"

	"whatsapp-cloud-go/pkg/models"
)

type businessProfileRequest struct {
	MessagingProduct string `json:"messaging_product"`
	models.BusinessProfile
}

// UpdateBusinessProfile updates the profile of the business phone number.
// Empty fields are not sent.
func (c *Client) UpdateBusinessProfile(ctx context.Context, profile models.BusinessProfile) (*Response, error) {
	res, err := c.sendRequest(ctx, "POST", c.businessProfileURL(), nil, businessProfileRequest{
		MessagingProduct: "whatsapp",
		BusinessProfile:  profile,
	})
	if err != nil {
		return nil, err
	}
	c.report(res, "business profile updated", "failed to update business profile", nil)
	return res, nil
}

// UpdateCartStatus enables or disables the cart for the phone number.
func (c *Client) UpdateCartStatus(ctx context.Context, enabled bool) (*Response, error) {
	return c.updateCommerce(ctx, "is_cart_enabled", enabled, "cart status")
}

// UpdateCatalogStatus shows or hides the catalog for the phone number.
func (c *Client) UpdateCatalogStatus(ctx context.Context, visible bool) (*Response, error) {
	return c.updateCommerce(ctx, "is_catalog_visible", visible, "catalog status")
}

func (c *Client) updateCommerce(ctx context.Context, param string, value bool, what string) (*Response, error) {
	query := url.Values{}
	query.Set(param, strconv.FormatBool(value))

	res, err := c.sendRequest(ctx, "POST", c.commerceURL(), query, nil)
	if err != nil {
		return nil, err
	}
	c.report(res, what+" updated", "failed to update "+what, map[string]string{param: strconv.FormatBool(value)})
	return res, nil
}

// GetCommerceSettings retrieves the cart and catalog settings.
func (c *Client) GetCommerceSettings(ctx context.Context) (*Response, error) {
	res, err := c.sendRequest(ctx, "GET", c.commerceURL(), nil, nil)
	if err != nil {
		return nil, err
	}
	c.report(res, "commerce settings retrieved", "failed to retrieve commerce settings", nil)
	return res, nil
}
