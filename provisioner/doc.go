// Package provisioner implements Snowflake key-pair credential provisioning.
//
// A provisioning run generates two independent RSA key pairs and writes three
// secrets under names derived from an optional namespace:
//
//	/snowflake_resource[/ns]                        JSON: account, user, rsa_public_key_1, rsa_public_key_2
//	/snowflake_resource[/ns]/rsa_private_key_pem_1  PKCS#8 PEM
//	/snowflake_resource[/ns]/rsa_private_key_pem_2  PKCS#8 PEM
//
// Public keys in the JSON record are stripped of their PEM armor and line breaks,
// the single line form Snowflake expects in ALTER USER ... SET RSA_PUBLIC_KEY.
// Two keys allow rotation: RSA_PUBLIC_KEY and RSA_PUBLIC_KEY_2 can be swapped
// without downtime.
//
// All three secrets must exist before the first run. Each one is read to confirm
// it exists and then overwritten; a failure at any step aborts the run, leaving
// already written secrets in place.
package provisioner
