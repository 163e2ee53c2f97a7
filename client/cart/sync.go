package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Syncer mirrors a cart state to the server for the session behind token.
type Syncer interface {
	Push(ctx context.Context, token string, s State) error
}

// HTTPSyncer pushes the cart to PUT {BaseURL}/cart/sync.
type HTTPSyncer struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSyncer(baseURL string) *HTTPSyncer {
	return &HTTPSyncer{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  http.DefaultClient,
	}
}

func (h *HTTPSyncer) Push(ctx context.Context, token string, s State) error {
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, h.BaseURL+"/cart/sync", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("cart sync: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("cart sync: unexpected status %d", resp.StatusCode)
	}
	return nil
}
