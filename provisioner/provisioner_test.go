package provisioner

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ruteri/snowflake-keypair-provisioner/cryptoutils"
	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
	"github.com/ruteri/snowflake-keypair-provisioner/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

// testKeyPair builds a PEM shaped key pair without paying for RSA generation
func testKeyPair(seed byte) (*interfaces.KeyPair, string) {
	der := bytes.Repeat([]byte{seed}, 294)
	pub := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	priv := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: bytes.Repeat([]byte{^seed}, 1200)})
	return &interfaces.KeyPair{PrivateKeyPem: string(priv), PublicKeyArmored: string(pub)}, base64.StdEncoding.EncodeToString(der)
}

// recordCalls expects an existence check and a write for every name, capturing call order
func recordCalls(store *MockSecretStore, calls *[]string, names ...string) {
	for _, name := range names {
		store.On("Fetch", mock.Anything, name).Return("previous", nil).Once().
			Run(func(args mock.Arguments) { *calls = append(*calls, "fetch "+args.String(1)) })
		store.On("Store", mock.Anything, name, mock.Anything).Return(nil).Once().
			Run(func(args mock.Arguments) { *calls = append(*calls, "store "+args.String(1)) })
	}
}

func TestProvision_Success(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keyPair1, normalized1 := testKeyPair(1)
	keyPair2, normalized2 := testKeyPair(2)

	keygen := &MockKeyGenerator{}
	keygen.On("Generate").Return(keyPair1, nil).Once()
	keygen.On("Generate").Return(keyPair2, nil).Once()

	store := &MockSecretStore{}
	var calls []string
	recordCalls(store, &calls,
		"/snowflake_resource/acct42",
		"/snowflake_resource/acct42/rsa_private_key_pem_1",
		"/snowflake_resource/acct42/rsa_private_key_pem_2")

	p := NewProvisioner(store, keygen, logger)
	result, err := p.Provision(context.Background(), &interfaces.ProvisioningRequest{
		Namespace: "acct42",
		Account:   strPtr("acme"),
		User:      strPtr("svc_user"),
	})
	require.NoError(t, err)

	assert.Equal(t, &interfaces.ProvisioningResult{
		RootSecret:        "/snowflake_resource/acct42",
		PrivateKey1Secret: "/snowflake_resource/acct42/rsa_private_key_pem_1",
		PrivateKey2Secret: "/snowflake_resource/acct42/rsa_private_key_pem_2",
		Store:             "mock",
	}, result)
	assert.Contains(t, result.Message(), "/snowflake_resource/acct42,")
	assert.Contains(t, result.Message(), "/snowflake_resource/acct42/rsa_private_key_pem_1")
	assert.Contains(t, result.Message(), "/snowflake_resource/acct42/rsa_private_key_pem_2")

	assert.Equal(t, []string{
		"fetch /snowflake_resource/acct42",
		"store /snowflake_resource/acct42",
		"fetch /snowflake_resource/acct42/rsa_private_key_pem_1",
		"store /snowflake_resource/acct42/rsa_private_key_pem_1",
		"fetch /snowflake_resource/acct42/rsa_private_key_pem_2",
		"store /snowflake_resource/acct42/rsa_private_key_pem_2",
	}, calls)

	// Root record
	var record map[string]interface{}
	rootValue := store.Calls[1].Arguments.String(2)
	require.NoError(t, json.Unmarshal([]byte(rootValue), &record))
	assert.Equal(t, map[string]interface{}{
		"account":          "acme",
		"user":             "svc_user",
		"rsa_public_key_1": normalized1,
		"rsa_public_key_2": normalized2,
	}, record)

	// Private keys are stored as raw PEM text
	assert.Equal(t, keyPair1.PrivateKeyPem, store.Calls[3].Arguments.String(2))
	assert.Equal(t, keyPair2.PrivateKeyPem, store.Calls[5].Arguments.String(2))

	keygen.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestProvision_AbsentAccountAndUser(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keyPair1, _ := testKeyPair(1)
	keyPair2, _ := testKeyPair(2)

	keygen := &MockKeyGenerator{}
	keygen.On("Generate").Return(keyPair1, nil).Once()
	keygen.On("Generate").Return(keyPair2, nil).Once()

	store := &MockSecretStore{}
	var calls []string
	recordCalls(store, &calls, SecretNamesFor("").All()...)

	p := NewProvisioner(store, keygen, logger)
	result, err := p.Provision(context.Background(), &interfaces.ProvisioningRequest{})
	require.NoError(t, err)
	assert.Equal(t, "/snowflake_resource", result.RootSecret)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(store.Calls[1].Arguments.String(2)), &record))
	assert.Contains(t, record, "account")
	assert.Contains(t, record, "user")
	assert.Nil(t, record["account"])
	assert.Nil(t, record["user"])
}

func TestProvision_Failures(t *testing.T) {
	names := SecretNamesFor("acct42")
	notFound := fmt.Errorf("%w: %s", interfaces.ErrSecretNotFound, names.Root)
	denied := fmt.Errorf("%w: AccessDeniedException", interfaces.ErrBackendUnavailable)
	keyPair1, _ := testKeyPair(1)
	keyPair2, _ := testKeyPair(2)

	tests := []struct {
		name          string
		setupKeygen   func(*MockKeyGenerator)
		setupStore    func(*MockSecretStore)
		expectedErr   error
		expectedCalls []string
	}{
		{
			name: "first key generation fails",
			setupKeygen: func(k *MockKeyGenerator) {
				k.On("Generate").Return(nil, fmt.Errorf("%w: entropy", interfaces.ErrKeyGeneration)).Once()
			},
			setupStore:  func(s *MockSecretStore) {},
			expectedErr: interfaces.ErrKeyGeneration,
		},
		{
			name: "second key generation fails",
			setupKeygen: func(k *MockKeyGenerator) {
				k.On("Generate").Return(keyPair1, nil).Once()
				k.On("Generate").Return(nil, fmt.Errorf("%w: entropy", interfaces.ErrKeyGeneration)).Once()
			},
			setupStore:  func(s *MockSecretStore) {},
			expectedErr: interfaces.ErrKeyGeneration,
		},
		{
			name: "malformed public key",
			setupKeygen: func(k *MockKeyGenerator) {
				k.On("Generate").Return(&interfaces.KeyPair{PrivateKeyPem: keyPair1.PrivateKeyPem, PublicKeyArmored: "garbage"}, nil).Once()
			},
			setupStore:  func(s *MockSecretStore) {},
			expectedErr: interfaces.ErrKeyGeneration,
		},
		{
			name: "identical key pairs",
			setupKeygen: func(k *MockKeyGenerator) {
				k.On("Generate").Return(keyPair1, nil).Twice()
			},
			setupStore:  func(s *MockSecretStore) {},
			expectedErr: interfaces.ErrKeyGeneration,
		},
		{
			name: "root secret missing",
			setupKeygen: func(k *MockKeyGenerator) {
				k.On("Generate").Return(keyPair1, nil).Once()
				k.On("Generate").Return(keyPair2, nil).Once()
			},
			setupStore: func(s *MockSecretStore) {
				s.On("Fetch", mock.Anything, names.Root).Return("", notFound).Once()
			},
			expectedErr:   interfaces.ErrSecretNotFound,
			expectedCalls: []string{"Fetch"},
		},
		{
			name: "second private key write denied",
			setupKeygen: func(k *MockKeyGenerator) {
				k.On("Generate").Return(keyPair1, nil).Once()
				k.On("Generate").Return(keyPair2, nil).Once()
			},
			setupStore: func(s *MockSecretStore) {
				s.On("Fetch", mock.Anything, mock.Anything).Return("previous", nil)
				s.On("Store", mock.Anything, names.Root, mock.Anything).Return(nil).Once()
				s.On("Store", mock.Anything, names.PrivateKey1, keyPair1.PrivateKeyPem).Return(nil).Once()
				s.On("Store", mock.Anything, names.PrivateKey2, keyPair2.PrivateKeyPem).Return(denied).Once()
			},
			expectedErr:   interfaces.ErrBackendUnavailable,
			expectedCalls: []string{"Fetch", "Store", "Fetch", "Store", "Fetch", "Store"},
		},
		{
			name: "private key existence check fails",
			setupKeygen: func(k *MockKeyGenerator) {
				k.On("Generate").Return(keyPair1, nil).Once()
				k.On("Generate").Return(keyPair2, nil).Once()
			},
			setupStore: func(s *MockSecretStore) {
				s.On("Fetch", mock.Anything, names.Root).Return("previous", nil).Once()
				s.On("Store", mock.Anything, names.Root, mock.Anything).Return(nil).Once()
				s.On("Fetch", mock.Anything, names.PrivateKey1).Return("", denied).Once()
			},
			expectedErr:   interfaces.ErrBackendUnavailable,
			expectedCalls: []string{"Fetch", "Store", "Fetch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			keygen := &MockKeyGenerator{}
			tt.setupKeygen(keygen)
			store := &MockSecretStore{}
			tt.setupStore(store)

			p := NewProvisioner(store, keygen, logger)
			result, err := p.Provision(context.Background(), &interfaces.ProvisioningRequest{Namespace: "acct42"})

			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.expectedErr), "unexpected error: %v", err)

			var methods []string
			for _, call := range store.Calls {
				methods = append(methods, call.Method)
			}
			assert.Equal(t, tt.expectedCalls, methods)

			keygen.AssertExpectations(t)
			store.AssertExpectations(t)
		})
	}
}

func TestProvision_WithFileStore(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	baseDir := t.TempDir()

	names := SecretNamesFor("acct42")
	for _, name := range names.All() {
		dir := filepath.Join(baseDir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(dir, 0700))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "current"), []byte("placeholder"), 0600))
	}

	store, err := storage.NewFileBackend(baseDir, logger)
	require.NoError(t, err)

	p := NewProvisioner(store, cryptoutils.NewRSAKeyGenerator(cryptoutils.DefaultRSAKeyBits), logger)
	_, err = p.Provision(ctx, &interfaces.ProvisioningRequest{
		Namespace: "acct42",
		Account:   strPtr("acme"),
		User:      strPtr("svc_user"),
	})
	require.NoError(t, err)

	rootValue, err := store.Fetch(ctx, names.Root)
	require.NoError(t, err)
	var record interfaces.AggregateSecretRecord
	require.NoError(t, json.Unmarshal([]byte(rootValue), &record))
	assert.Equal(t, "acme", *record.Account)
	assert.Equal(t, "svc_user", *record.User)
	assert.NotEqual(t, record.RSAPublicKey1, record.RSAPublicKey2)

	// Each stored private key matches the public key published in the root record
	for i, name := range []string{names.PrivateKey1, names.PrivateKey2} {
		privValue, err := store.Fetch(ctx, name)
		require.NoError(t, err)

		priv, err := cryptoutils.NewPrivateKeyPEM(privValue)
		require.NoError(t, err)
		privKey, err := priv.GetPrivateKey()
		require.NoError(t, err)

		pubDER, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
		require.NoError(t, err)
		derivedPub := cryptoutils.PublicKeyPEM(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}))
		normalized, err := derivedPub.Normalized()
		require.NoError(t, err)

		published := []string{record.RSAPublicKey1, record.RSAPublicKey2}[i]
		assert.Equal(t, published, normalized)
	}

	// A second run rotates all key material
	_, err = p.Provision(ctx, &interfaces.ProvisioningRequest{Namespace: "acct42"})
	require.NoError(t, err)
	rotated, err := store.Fetch(ctx, names.Root)
	require.NoError(t, err)
	assert.NotEqual(t, rootValue, rotated)
}
