package client

import (
	"context"
	"fmt"
)

// CurrentUser fetches the user the access token belongs to and returns their
// display name (contact name when no display name is set)
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	env, err := c.getEnvelope(ctx, c.apiURL("/platform/users/current"), nil)
	if err != nil {
		return "", err
	}

	if len(env.Users) == 0 {
		return "", fmt.Errorf("current-user response carried no users")
	}

	user := env.Users[0]
	if user.DisplayName != "" {
		return user.DisplayName, nil
	}
	return user.ContactName, nil
}
