package provisioner

import (
	"context"

	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockSecretStore mocks the SecretStore interface
type MockSecretStore struct {
	mock.Mock
}

// Fetch mocks the Fetch method
func (m *MockSecretStore) Fetch(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

// Store mocks the Store method
func (m *MockSecretStore) Store(ctx context.Context, name string, value string) error {
	args := m.Called(ctx, name, value)
	return args.Error(0)
}

// Available mocks the Available method
func (m *MockSecretStore) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// Name returns a fixed store name
func (m *MockSecretStore) Name() string {
	return "mock"
}

// LocationURI returns a fixed store URI
func (m *MockSecretStore) LocationURI() string {
	return "mock:"
}

// MockKeyGenerator mocks the KeyGenerator interface
type MockKeyGenerator struct {
	mock.Mock
}

// Generate mocks the Generate method
func (m *MockKeyGenerator) Generate() (*interfaces.KeyPair, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.KeyPair), args.Error(1)
}

// MockProvisioner mocks the Provisioner interface
type MockProvisioner struct {
	mock.Mock
}

// Provision mocks the Provision method
func (m *MockProvisioner) Provision(ctx context.Context, req *interfaces.ProvisioningRequest) (*interfaces.ProvisioningResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.ProvisioningResult), args.Error(1)
}
