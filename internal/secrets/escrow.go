// Package secrets escrows the session wrapping key in AWS Secrets Manager
// so cached sessions can be invalidated centrally. The vault key itself
// never leaves the machine.
package secrets

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/slvault/slvault/internal/crypto"
)

// Escrow fetches the session wrapping key from Secrets Manager, creating
// it on first use. It implements session.KeySource.
type Escrow struct {
	client     *secretsmanager.Client
	secretName string
}

// NewEscrow creates an escrow client using the default AWS credential chain.
func NewEscrow(ctx context.Context, secretName, region string) (*Escrow, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Escrow{
		client:     secretsmanager.NewFromConfig(cfg),
		secretName: secretName,
	}, nil
}

// SessionKey returns the escrowed wrapping key. A missing secret is
// provisioned with a fresh random key; deleting the secret invalidates every
// cached session that was wrapped with it.
func (e *Escrow) SessionKey(ctx context.Context) ([]byte, error) {
	result, err := e.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(e.secretName),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return e.createKey(ctx)
		}
		return nil, fmt.Errorf("failed to fetch session secret: %w", err)
	}
	if result.SecretString == nil {
		return nil, fmt.Errorf("session secret %s has no string value", e.secretName)
	}

	key, err := crypto.DecodeBase64(*result.SecretString)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session secret: %w", err)
	}
	if len(key) != crypto.KeySize {
		return nil, fmt.Errorf("session secret has wrong length %d", len(key))
	}
	return key, nil
}

func (e *Escrow) createKey(ctx context.Context) ([]byte, error) {
	key := make([]byte, crypto.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}

	_, err := e.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(e.secretName),
		SecretString: aws.String(crypto.EncodeBase64(key)),
		Description:  aws.String("slvault session wrapping key"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session secret: %w", err)
	}
	return key, nil
}
