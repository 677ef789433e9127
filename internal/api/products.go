package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/powervision/estoque/internal/domain"
)

// ListProducts returns every product in server order.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "list products"
	status, body, err := c.do(ctx, op, http.MethodGet, c.serverURL.JoinPath("products"), nil, true)
	if err != nil {
		return nil, err
	}
	if !isOK(status) {
		return nil, gatewayError(op, status, body)
	}

	var products []domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	const op = "get product"
	status, body, err := c.do(ctx, op, http.MethodGet, c.productURL(id), nil, true)
	if err != nil {
		return domain.Product{}, err
	}
	if !isOK(status) {
		return domain.Product{}, gatewayError(op, status, body)
	}

	var p domain.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return domain.Product{}, &domain.TransportError{Op: op, Err: err}
	}
	return p, nil
}

// CreateProduct posts a new product. The response body is ignored.
func (c *Client) CreateProduct(ctx context.Context, draft domain.ProductDraft) error {
	const op = "create product"
	// The trailing slash is part of the backend route.
	return c.mutate(ctx, op, http.MethodPost, c.serverURL.JoinPath("products/"), draft)
}

// UpdateProduct sends every editable field of id.
func (c *Client) UpdateProduct(ctx context.Context, id domain.ProductID, patch domain.ProductPatch) error {
	return c.mutate(ctx, "update product", http.MethodPatch, c.productURL(id), patch)
}

func (c *Client) DeleteProduct(ctx context.Context, id domain.ProductID) error {
	return c.mutate(ctx, "delete product", http.MethodDelete, c.productURL(id), nil)
}

func (c *Client) mutate(ctx context.Context, op, method string, u *url.URL, payload any) error {
	status, body, err := c.do(ctx, op, method, u, payload, true)
	if err != nil {
		return err
	}
	if !isOK(status) {
		return gatewayError(op, status, body)
	}
	return nil
}

func (c *Client) productURL(id domain.ProductID) *url.URL {
	return c.serverURL.JoinPath("products", url.PathEscape(id.String()))
}

func gatewayError(op string, status int, body []byte) error {
	return &domain.GatewayError{Op: op, Status: status, Message: serverMessage(body)}
}
