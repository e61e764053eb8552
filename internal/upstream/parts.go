package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"systrack/console/internal/models"
)

// PartsPage is one page of the parts listing.
type PartsPage struct {
	Parts      []models.Part `json:"parts"`
	TotalPages int           `json:"totalPages"`
}

func (c *Client) Parts(ctx context.Context, token string, page, limit int) (PartsPage, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var result PartsPage
	if err := c.do(ctx, "parts.list", http.MethodGet, "/api/part", token, query, nil, &result); err != nil {
		return PartsPage{}, err
	}
	return result, nil
}

// FreeParts lists parts attached to no system.
func (c *Client) FreeParts(ctx context.Context, token string) ([]models.Part, error) {
	var result struct {
		Parts []models.Part `json:"parts"`
	}
	if err := c.do(ctx, "parts.free", http.MethodGet, "/api/part/freeparts", token, nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Parts, nil
}

type PartInput struct {
	PartType       string             `json:"partType"`
	Brand          string             `json:"brand"`
	Model          string             `json:"model"`
	SerialNumber   string             `json:"serialNumber"`
	Barcode        string             `json:"barcode"`
	Status         models.PartStatus  `json:"status"`
	UnusableReason string             `json:"unusableReason,omitempty"`
	Specs          []models.SpecEntry `json:"specs"`
	Notes          string             `json:"notes,omitempty"`
}

func (c *Client) CreatePart(ctx context.Context, token string, input PartInput) (models.Part, string, error) {
	var resp struct {
		Message string      `json:"message"`
		Part    models.Part `json:"part"`
	}
	if err := c.do(ctx, "parts.create", http.MethodPost, "/api/part", token, nil, input, &resp); err != nil {
		return models.Part{}, "", err
	}
	return resp.Part, resp.Message, nil
}

// UpdatePart transmits only the changed fields; callers compute the
// diff against the last-known snapshot first.
func (c *Client) UpdatePart(ctx context.Context, token, id string, fields map[string]string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, "parts.update", http.MethodPut, "/api/part/"+id, token, nil, fields, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) DeletePart(ctx context.Context, token, id string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, "parts.delete", http.MethodDelete, "/api/part/"+id, token, nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// PartByBarcode resolves a scanned barcode image name to its part
// record. A missing record surfaces as NotFoundError, which is a
// distinct lookup outcome rather than a failure.
func (c *Client) PartByBarcode(ctx context.Context, token, imageName string) (models.Part, error) {
	var part models.Part
	path := "/api/part/barcode/" + url.PathEscape(imageName)
	if err := c.do(ctx, "parts.barcode", http.MethodGet, path, token, nil, nil, &part); err != nil {
		return models.Part{}, err
	}
	return part, nil
}
