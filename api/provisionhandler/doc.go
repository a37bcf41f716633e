// Package provisionhandler exposes the provisioning workflow over HTTP.
//
// A POST to /api/provision with an api.ProvisionEvent body generates two fresh
// RSA key pairs and overwrites the root and private key secrets of the
// requested namespace. Missing target secrets are reported as 412 Precondition
// Failed so that callers can tell an unprepared namespace from a backend outage.
package provisionhandler
