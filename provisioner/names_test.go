package provisioner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecretNamesFor(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		expected  SecretNames
	}{
		{
			name:      "empty namespace",
			namespace: "",
			expected: SecretNames{
				Root:        "/snowflake_resource",
				PrivateKey1: "/snowflake_resource/rsa_private_key_pem_1",
				PrivateKey2: "/snowflake_resource/rsa_private_key_pem_2",
			},
		},
		{
			name:      "simple namespace",
			namespace: "acct42",
			expected: SecretNames{
				Root:        "/snowflake_resource/acct42",
				PrivateKey1: "/snowflake_resource/acct42/rsa_private_key_pem_1",
				PrivateKey2: "/snowflake_resource/acct42/rsa_private_key_pem_2",
			},
		},
		{
			name:      "namespace used verbatim",
			namespace: "prod/etl ",
			expected: SecretNames{
				Root:        "/snowflake_resource/prod/etl ",
				PrivateKey1: "/snowflake_resource/prod/etl /rsa_private_key_pem_1",
				PrivateKey2: "/snowflake_resource/prod/etl /rsa_private_key_pem_2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := SecretNamesFor(tt.namespace)
			assert.Equal(t, tt.expected, names)
			assert.Equal(t, []string{tt.expected.Root, tt.expected.PrivateKey1, tt.expected.PrivateKey2}, names.All())
		})
	}
}
