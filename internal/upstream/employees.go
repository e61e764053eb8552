package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"systrack/console/internal/models"
)

// EmployeesPage is one page of the searchable employee listing.
type EmployeesPage struct {
	Employees  []models.Employee `json:"employees"`
	TotalPages int               `json:"totalPages"`
}

func (c *Client) Employees(ctx context.Context, token, search string, page, limit int) (EmployeesPage, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var result EmployeesPage
	if err := c.do(ctx, "employees.list", http.MethodGet, "/api/employee/allemployee", token, query, nil, &result); err != nil {
		return EmployeesPage{}, err
	}
	return result, nil
}

func (c *Client) UnassignedEmployees(ctx context.Context, token string) ([]models.Employee, error) {
	var result struct {
		Employees []models.Employee `json:"employees"`
	}
	if err := c.do(ctx, "employees.unassigned", http.MethodGet, "/api/employee/unassigned", token, nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Employees, nil
}

type EmployeeInput struct {
	Name        string            `json:"name"`
	EmployeeID  string            `json:"employeeID"`
	Department  models.Department `json:"department"`
	Designation string            `json:"designation"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
}

func (c *Client) CreateEmployee(ctx context.Context, token string, input EmployeeInput) (models.Employee, string, error) {
	var resp struct {
		Message  string          `json:"message"`
		Employee models.Employee `json:"employee"`
	}
	if err := c.do(ctx, "employees.create", http.MethodPost, "/api/employee", token, nil, input, &resp); err != nil {
		return models.Employee{}, "", err
	}
	return resp.Employee, resp.Message, nil
}

func (c *Client) UpdateEmployee(ctx context.Context, token, id string, fields map[string]string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, "employees.update", http.MethodPut, "/api/employee/"+id, token, nil, fields, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) DeleteEmployee(ctx context.Context, token, id string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, "employees.delete", http.MethodDelete, "/api/employee/"+id, token, nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ResetPassword relays an employee reset link token and the new
// password to the upstream service.
func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	body := map[string]string{"token": resetToken, "password": password}
	if err := c.do(ctx, "employees.resetPassword", http.MethodPost, "/api/employee/reset-password", "", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
