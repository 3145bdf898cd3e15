package domain

import (
	"context"
	"slices"
	"time"
)

// Client represents a registered relying party. Clients are public (PKCE
// only, no secret) and immutable during request handling.
type Client struct {
	ID           string    `json:"id"`
	RedirectURIs []string  `json:"redirect_uris"`
	Scopes       []string  `json:"scopes"`
	CreatedAt    time.Time `json:"created_at"`
}

// AllowsRedirectURI reports whether uri exactly matches a registered
// redirect URI. No prefix or wildcard matching.
func (c *Client) AllowsRedirectURI(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

// AllowsScopes reports whether every requested scope is registered for the client.
func (c *Client) AllowsScopes(scopes []string) bool {
	for _, s := range scopes {
		if !slices.Contains(c.Scopes, s) {
			return false
		}
	}
	return true
}

// ClientRepository defines the interface for client registry access
type ClientRepository interface {
	// Create registers a new client
	Create(ctx context.Context, client *Client) error

	// FindByID finds a client by its id
	FindByID(ctx context.Context, id string) (*Client, error)

	// List lists all registered clients
	List(ctx context.Context) ([]*Client, error)

	// Delete removes a client registration
	Delete(ctx context.Context, id string) error
}
