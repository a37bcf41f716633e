/*
Package httpserver runs the provisioning HTTP API.

The server mounts the provisioning routes next to the usual operational
endpoints:

  - GET /livez - Liveness check, always 200 while the process serves requests
  - GET /readyz - Readiness check, 503 while draining or when the secret store is unreachable
  - GET /drain - Mark the server not ready ahead of shutdown
  - GET /undrain - Mark the server ready again
  - /debug/* - pprof profiles, only when enabled

All API and health requests are logged through the structured request logger.
Shutdown waits up to GracefulShutdownDuration for in-flight provisioning runs.
*/
package httpserver
