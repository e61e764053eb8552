package upstream

import (
	"context"
	"fmt"
	"net/http"

	"systrack/console/internal/models"
)

// Credentials is the payload returned by the upstream login and
// signup endpoints.
type Credentials struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	var creds Credentials
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "users.login", http.MethodPost, "/api/users/login", "", nil, body, &creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (Credentials, error) {
	var creds Credentials
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, "users.signup", http.MethodPost, "/api/users/signup", "", nil, body, &creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// VerifyRole asks the upstream service to confirm the token holds the
// required role. The returned role is the server's answer, never the
// locally stored one.
func (c *Client) VerifyRole(ctx context.Context, token string, required models.Role) (models.Role, error) {
	if required != models.RoleAdmin && required != models.RoleSuperAdmin {
		return models.RoleNone, fmt.Errorf("unverifiable role %q", required)
	}

	var resp struct {
		Role string `json:"role"`
	}
	route := "users.verify." + string(required)
	if err := c.do(ctx, route, http.MethodGet, "/api/users/"+string(required), token, nil, nil, &resp); err != nil {
		return models.RoleNone, err
	}
	return models.Role(resp.Role), nil
}
