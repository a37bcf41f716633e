/*
Package api defines the wire types of the Snowflake key-pair provisioner.

The same ProvisionEvent payload drives every entrypoint:

	{"secret_insert": "acct42", "account": "acme", "user": "svc_user"}

and a successful run answers with a ProvisionResponse:

	{"statusCode": 200, "body": "\"Root Secrets /snowflake_resource/acct42, ... written to secretsmanager-us-east-1\""}

Subpackages:

  - provisionhandler - HTTP handler exposing POST /api/provision
  - clients - HTTP client for a remote provisioning server
*/
package api
