package upstream

import (
	"context"
	"net/http"

	"systrack/console/internal/models"
)

func (c *Client) Systems(ctx context.Context, token string) ([]models.System, error) {
	var result struct {
		Systems []models.System `json:"systems"`
	}
	if err := c.do(ctx, "systems.list", http.MethodGet, "/api/system/allsys", token, nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Systems, nil
}

// SystemInput is the creation payload. EmployeeID keeps the upstream
// service's field casing.
type SystemInput struct {
	Name       string   `json:"name"`
	Parts      []string `json:"parts"`
	EmployeeID string   `json:"EmployeeID,omitempty"`
}

// CreateSystem is a single request; part and employee transitions
// happen server-side atomically from the client's perspective.
func (c *Client) CreateSystem(ctx context.Context, token string, input SystemInput) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, "systems.create", http.MethodPost, "/api/system/", token, nil, input, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// UpdateSystem renames a system and/or attaches the given free parts.
func (c *Client) UpdateSystem(ctx context.Context, token, id, name string, parts []string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	body := map[string]any{"name": name, "parts": parts}
	if err := c.do(ctx, "systems.update", http.MethodPost, "/api/system/updateSystem/"+id, token, nil, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) AssignSystem(ctx context.Context, token, id, employeeID string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	body := map[string]string{"EmployeeID": employeeID}
	if err := c.do(ctx, "systems.assign", http.MethodPost, "/api/system/assignSystem/"+id, token, nil, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// UnassignSystem clears the system's assignee and the employee's
// allocation in one logical upstream operation.
func (c *Client) UnassignSystem(ctx context.Context, token, id string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, "systems.unassign", http.MethodPatch, "/api/system/unassign/"+id, token, nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) RemovePart(ctx context.Context, token, systemID, partID string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	path := "/api/system/" + systemID + "/remove-part/" + partID
	if err := c.do(ctx, "systems.removePart", http.MethodPut, path, token, nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SystemParts lists the part records attached to one system.
func (c *Client) SystemParts(ctx context.Context, token, systemID string) ([]models.Part, error) {
	var result struct {
		Parts []models.Part `json:"parts"`
	}
	if err := c.do(ctx, "systems.parts", http.MethodGet, "/api/system/by-system/"+systemID, token, nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Parts, nil
}

func (c *Client) Stats(ctx context.Context, token string) (models.Stats, error) {
	var stats models.Stats
	if err := c.do(ctx, "systems.stats", http.MethodGet, "/api/system/stats", token, nil, nil, &stats); err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}

func (c *Client) Logs(ctx context.Context, token string) ([]models.AuditEntry, error) {
	var result struct {
		Logs []models.AuditEntry `json:"logs"`
	}
	if err := c.do(ctx, "systems.logs", http.MethodGet, "/api/system/logs", token, nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Logs, nil
}
