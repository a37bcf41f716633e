package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
)

// SecretsManagerStore implements a secret store using AWS Secrets Manager.
// Secret names are used verbatim as SecretId.
type SecretsManagerStore struct {
	client      secretsmanageriface.SecretsManagerAPI
	region      string
	log         *slog.Logger
	locationURI string
}

// NewSecretsManagerStore creates a new AWS Secrets Manager store.
// An empty region falls back to the SDK's environment and shared config resolution.
// If accessKey and secretKey are provided they are used as static credentials,
// otherwise the default credential chain applies.
func NewSecretsManagerStore(region, endpoint, accessKey, secretKey string, log *slog.Logger) (*SecretsManagerStore, error) {
	// Format the URI for tracking
	uri := fmt.Sprintf("secretsmanager://%s", region)
	if accessKey != "" {
		uri = fmt.Sprintf("secretsmanager://%s:***@%s", accessKey, region)
	}
	if endpoint != "" {
		uri += fmt.Sprintf("?endpoint=%s", endpoint)
	}

	cfg := aws.Config{}
	if region != "" {
		cfg.Region = aws.String(region)
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	if accessKey != "" && secretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            cfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	if region == "" && sess.Config.Region != nil {
		region = aws.StringValue(sess.Config.Region)
	}

	return &SecretsManagerStore{
		client:      secretsmanager.New(sess),
		region:      region,
		log:         log,
		locationURI: uri,
	}, nil
}

// NewSecretsManagerStoreWithClient creates a store around an existing client.
func NewSecretsManagerStoreWithClient(client secretsmanageriface.SecretsManagerAPI, region string, log *slog.Logger) *SecretsManagerStore {
	return &SecretsManagerStore{
		client:      client,
		region:      region,
		log:         log,
		locationURI: fmt.Sprintf("secretsmanager://%s", region),
	}
}

// Fetch retrieves the current value of a secret.
// Returns ErrSecretNotFound if the secret doesn't exist.
func (s *SecretsManagerStore) Fetch(ctx context.Context, name string) (string, error) {
	start := time.Now()

	result, err := s.client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		if isResourceNotFound(err) {
			s.log.Debug("Secret not found in Secrets Manager",
				slog.String("secret", name),
				slog.Duration("duration", time.Since(start)))
			return "", fmt.Errorf("%w: %s", interfaces.ErrSecretNotFound, name)
		}

		s.log.Error("Failed to get secret from Secrets Manager",
			slog.String("secret", name),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return "", fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	var value string
	if result.SecretString != nil {
		value = aws.StringValue(result.SecretString)
	} else {
		value = string(result.SecretBinary)
	}

	s.log.Debug("Fetched secret from Secrets Manager",
		slog.String("secret", name),
		slog.String("version", aws.StringValue(result.VersionId)),
		slog.Duration("duration", time.Since(start)))

	return value, nil
}

// Store puts a new current version of an existing secret.
// Secrets Manager rejects puts to unknown secrets, which surfaces as ErrSecretNotFound.
func (s *SecretsManagerStore) Store(ctx context.Context, name string, value string) error {
	start := time.Now()

	result, err := s.client.PutSecretValueWithContext(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(value),
	})
	if err != nil {
		if isResourceNotFound(err) {
			return fmt.Errorf("%w: %s", interfaces.ErrSecretNotFound, name)
		}
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	s.log.Debug("Stored secret in Secrets Manager",
		slog.String("secret", name),
		slog.String("version", aws.StringValue(result.VersionId)),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// Available checks if Secrets Manager is reachable with the configured credentials.
func (s *SecretsManagerStore) Available(ctx context.Context) bool {
	start := time.Now()

	_, err := s.client.ListSecretsWithContext(ctx, &secretsmanager.ListSecretsInput{
		MaxResults: aws.Int64(1),
	})
	if err != nil {
		s.log.Warn("Secrets Manager unavailable",
			slog.String("region", s.region),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return false
	}

	return true
}

// Name returns a unique identifier for this secret store.
func (s *SecretsManagerStore) Name() string {
	if s.region == "" {
		return "secretsmanager"
	}
	return fmt.Sprintf("secretsmanager-%s", s.region)
}

// LocationURI returns the URI that identifies this secret store.
func (s *SecretsManagerStore) LocationURI() string {
	return s.locationURI
}

func isResourceNotFound(err error) bool {
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == secretsmanager.ErrCodeResourceNotFoundException
}
