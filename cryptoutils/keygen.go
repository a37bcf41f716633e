package cryptoutils

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
)

// DefaultRSAKeyBits is the key size Snowflake key-pair authentication expects.
const DefaultRSAKeyBits = 2048

// RSAKeyGenerator generates RSA key pairs in process.
// Private keys are PKCS#8 encoded, public keys PKIX encoded, both PEM armored.
type RSAKeyGenerator struct {
	Bits int
}

// NewRSAKeyGenerator creates a generator for keys of the given size.
// A zero size selects DefaultRSAKeyBits.
func NewRSAKeyGenerator(bits int) *RSAKeyGenerator {
	if bits == 0 {
		bits = DefaultRSAKeyBits
	}
	return &RSAKeyGenerator{Bits: bits}
}

// Generate creates a new key pair. Errors wrap interfaces.ErrKeyGeneration.
func (g *RSAKeyGenerator) Generate() (*interfaces.KeyPair, error) {
	pub, priv, err := RandomRSAKeypair(g.Bits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrKeyGeneration, err)
	}

	return &interfaces.KeyPair{
		PrivateKeyPem:    string(priv),
		PublicKeyArmored: string(pub),
	}, nil
}

// RandomRSAKeypair generates an RSA key pair of the given size.
func RandomRSAKeypair(bits int) (PublicKeyPEM, PrivateKeyPEM, error) {
	if bits < DefaultRSAKeyBits {
		return "", "", fmt.Errorf("RSA key size %d is below the %d bit minimum", bits, DefaultRSAKeyBits)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return "", "", err
	}

	privateKeyBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return "", "", err
	}

	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: privateKeyBytes,
	})

	pubkeyBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return "", "", err
	}

	pubkeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubkeyBytes,
	})

	return PublicKeyPEM(pubkeyPEM), PrivateKeyPEM(privateKeyPEM), nil
}
