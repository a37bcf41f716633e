// Package main (cmd/httpserver) serves the provisioning API over HTTP.
//
// The server opens the configured secret store once at startup and exposes
// POST /api/provision together with the health and drain endpoints. Readiness
// reports 503 while the secret store cannot be reached.
//
// Configuration is read from provisioner.yaml (or --config), then PROVISIONER_*
// environment variables, then command line flags.
package main
