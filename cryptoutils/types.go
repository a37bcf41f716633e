package cryptoutils

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
)

// PrivateKeyPEM represents an unencrypted PKCS#8 RSA private key in PEM format.
type PrivateKeyPEM string

// NewPrivateKeyPEM creates a new private key object from PEM-encoded data with validation.
func NewPrivateKeyPEM(data string) (PrivateKeyPEM, error) {
	// Validate PEM format
	block, _ := pem.Decode([]byte(data))
	if block == nil || block.Type != "PRIVATE KEY" {
		return "", errors.New("invalid private key: not in PEM format or not a PKCS#8 private key")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("invalid private key structure: %w", err)
	}

	if _, ok := key.(*rsa.PrivateKey); !ok {
		return "", fmt.Errorf("unsupported private key type: %T", key)
	}

	return PrivateKeyPEM(data), nil
}

// Validate checks if the private key is properly formed.
func (priv PrivateKeyPEM) Validate() error {
	_, err := NewPrivateKeyPEM(string(priv))
	return err
}

// GetPrivateKey returns the parsed RSA private key.
func (priv PrivateKeyPEM) GetPrivateKey() (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(priv))
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("unsupported private key type: %T", key)
	}
	return rsaKey, nil
}

// PublicKeyPEM represents an RSA public key (PKIX) in PEM format.
type PublicKeyPEM string

// NewPublicKeyPEM creates a new public key object from PEM-encoded data with validation.
func NewPublicKeyPEM(data string) (PublicKeyPEM, error) {
	// Validate PEM format
	block, _ := pem.Decode([]byte(data))
	if block == nil || block.Type != "PUBLIC KEY" {
		return "", errors.New("invalid public key: not in PEM format or not a public key")
	}

	// Validate public key structure
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("invalid public key structure: %w", err)
	}

	if _, ok := key.(*rsa.PublicKey); !ok {
		return "", fmt.Errorf("unsupported public key type: %T", key)
	}

	return PublicKeyPEM(data), nil
}

// Validate checks if the public key is properly formed.
func (pub PublicKeyPEM) Validate() error {
	_, err := NewPublicKeyPEM(string(pub))
	return err
}

// GetPublicKey returns the parsed RSA public key.
func (pub PublicKeyPEM) GetPublicKey() (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pub))
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("unsupported public key type: %T", key)
	}
	return rsaKey, nil
}

// Fingerprint returns the SHA-256 fingerprint of the DER encoded public key
// in the "SHA256:<base64>" form Snowflake reports as RSA_PUBLIC_KEY_FP.
func (pub PublicKeyPEM) Fingerprint() (string, error) {
	block, _ := pem.Decode([]byte(pub))
	if block == nil {
		return "", errors.New("failed to decode PEM block")
	}

	sum := sha256.Sum256(block.Bytes)
	return "SHA256:" + base64.StdEncoding.EncodeToString(sum[:]), nil
}

// Normalized returns the public key body as a single base64 line.
func (pub PublicKeyPEM) Normalized() (string, error) {
	return NormalizePublicKey(string(pub))
}
