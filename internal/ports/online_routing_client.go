package ports

import "context"

// Contract for the online routing transport.
type OnlineRoutingClient interface {
	// Perform a GET against url and return the response body.
	// Network and HTTP-level failures are returned as errors.
	MakeRequest(ctx context.Context, url string) (string, error)
}
