// Package main (cmd/lambda) runs the provisioning workflow as an AWS Lambda function.
//
// The invocation payload is an api.ProvisionEvent. The secret store and key
// generator are created once per cold start and reused across invocations.
// Errors are returned to the Lambda runtime, which reports a failed invocation.
package main
