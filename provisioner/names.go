package provisioner

// SecretPrefix is the fixed root every provisioned secret name starts with.
const SecretPrefix = "/snowflake_resource"

const (
	privateKey1Suffix = "/rsa_private_key_pem_1"
	privateKey2Suffix = "/rsa_private_key_pem_2"
)

// SecretNames holds the three secret identifiers of one credential set.
type SecretNames struct {
	// Root holds the JSON record with account, user and both public keys.
	Root        string
	PrivateKey1 string
	PrivateKey2 string
}

// SecretNamesFor computes the secret names for an optional namespace.
// The namespace is used verbatim; an empty namespace selects the unpartitioned set.
func SecretNamesFor(namespace string) SecretNames {
	root := SecretPrefix
	if namespace != "" {
		root = SecretPrefix + "/" + namespace
	}

	return SecretNames{
		Root:        root,
		PrivateKey1: root + privateKey1Suffix,
		PrivateKey2: root + privateKey2Suffix,
	}
}

// All returns the names in write order.
func (n SecretNames) All() []string {
	return []string{n.Root, n.PrivateKey1, n.PrivateKey2}
}
