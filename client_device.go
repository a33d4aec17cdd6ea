package goHawcx

import "context"

// LastLoggedInUser returns the user the engine last authenticated, or "".
func (c *Client) LastLoggedInUser(ctx context.Context) (string, error) {
	if err := c.checkOpen(); err != nil {
		return "", err
	}
	return c.bridge.GetLastLoggedInUser(ctx)
}

// ClearSessionTokens drops stored session tokens for userID.
func (c *Client) ClearSessionTokens(ctx context.Context, userID string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	id, err := ensureNonEmpty(userID, "userId")
	if err != nil {
		return c.rejectInput(err)
	}
	return c.bridge.ClearSessionTokens(ctx, id)
}

// ClearUserKeychainData removes every secret the engine holds for userID.
func (c *Client) ClearUserKeychainData(ctx context.Context, userID string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	id, err := ensureNonEmpty(userID, "userId")
	if err != nil {
		return c.rejectInput(err)
	}
	return c.bridge.ClearUserKeychainData(ctx, id)
}
