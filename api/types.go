package api

import (
	"encoding/json"
	"net/http"

	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
)

// ProvisionEvent is the invocation payload, shared by the HTTP API, the CLI and Lambda.
// Unknown fields are ignored.
type ProvisionEvent struct {
	// SecretInsert is the optional namespace segment of the secret names.
	SecretInsert string `json:"secret_insert"`

	// Account is the Snowflake account identifier, stored verbatim (null if absent).
	Account *string `json:"account"`

	// User is the Snowflake user the key pairs are for, stored verbatim (null if absent).
	User *string `json:"user"`
}

// Request converts the event into a provisioning request.
func (e *ProvisionEvent) Request() *interfaces.ProvisioningRequest {
	return &interfaces.ProvisioningRequest{
		Namespace: e.SecretInsert,
		Account:   e.Account,
		User:      e.User,
	}
}

// ProvisionResponse reports a successful provisioning run.
// It has the shape of a Lambda proxy integration response.
type ProvisionResponse struct {
	StatusCode int `json:"statusCode"`

	// Body is the JSON encoded confirmation message naming the written secrets.
	Body string `json:"body"`
}

// NewProvisionResponse creates the success response for a provisioning result.
func NewProvisionResponse(result *interfaces.ProvisioningResult) (*ProvisionResponse, error) {
	body, err := json.Marshal(result.Message())
	if err != nil {
		return nil, err
	}

	return &ProvisionResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
	}, nil
}

// Message decodes the confirmation message from the body.
func (r *ProvisionResponse) Message() (string, error) {
	var message string
	err := json.Unmarshal([]byte(r.Body), &message)
	return message, err
}
