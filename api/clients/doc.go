// Package clients provides HTTP clients for the provisioning server API.
package clients
