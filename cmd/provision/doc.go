/*
Command provision runs one key-pair rotation for a Snowflake user.

	provision --secret-store secretsmanager://us-east-1 --secret-insert acct42 --account acme --user svc_user

The three target secrets must already exist. On success the command prints the
same response the HTTP API and the Lambda handler return.
*/
package main
