package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ruteri/snowflake-keypair-provisioner/api"
)

// ProvisioningClient triggers provisioning runs on a remote provisioning server.
type ProvisioningClient struct {
	// ServerAddr is the base URL of the provisioning server
	ServerAddr string

	// HTTPClient is used for requests, http.DefaultClient if nil
	HTTPClient *http.Client
}

// NewProvisioningClient creates a client for the server at serverAddr.
func NewProvisioningClient(serverAddr string) *ProvisioningClient {
	return &ProvisioningClient{ServerAddr: serverAddr}
}

// Provision posts the event to the server and returns its response.
func (p *ProvisioningClient) Provision(ctx context.Context, event *api.ProvisionEvent) (*api.ProvisionResponse, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("could not encode provisioning event: %w", err)
	}

	url := fmt.Sprintf("%s/api/provision", p.ServerAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request provisioning endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("provisioning endpoint returned non-200 response: %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("provisioning endpoint returned error %d: %s", resp.StatusCode, bytes.TrimSpace(bodyBytes))
	}

	var parsedResponse api.ProvisionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsedResponse); err != nil {
		return nil, fmt.Errorf("could not parse provisioning response: %w", err)
	}

	return &parsedResponse, nil
}
