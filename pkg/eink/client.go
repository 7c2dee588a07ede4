package eink

// Client is the entry point to a remote e-ink server.
type Client struct {
	apiClient *APIClient
	displays  *DisplayCollection
}

// NewClient wraps an existing API client.
func NewClient(apiClient *APIClient) (*Client, error) {
	displays, err := NewDisplayCollection(apiClient)
	if err != nil {
		return nil, err
	}

	return &Client{apiClient: apiClient, displays: displays}, nil
}

// Displays returns the server's display collection.
func (c *Client) Displays() *DisplayCollection {
	return c.displays
}

// Display returns a record for displayID without contacting the server.
func (c *Client) Display(displayID string) (Display, error) {
	return NewDisplay(c.apiClient, displayID)
}

// APIClient returns the underlying API client.
func (c *Client) APIClient() *APIClient {
	return c.apiClient
}
