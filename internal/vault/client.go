// Package vault loads deployment secrets (bot token, storage credentials)
// from HashiCorp Vault, with the environment as fallback when Vault is
// disabled.
package vault

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/vault/api"

	"trade-parser-bot/config"
)

// Secrets is the credential bundle the bot needs at startup.
type Secrets struct {
	TelegramBotToken       string
	SupabaseServiceRoleKey string
	DatabasePassword       string
	JWTSecret              string
}

// Client wraps the HashiCorp Vault client.
type Client struct {
	client *api.Client
	config config.VaultConfig
}

// NewClient creates a new Vault client. With Vault disabled the client is
// still usable; LoadSecrets then reads from the environment only.
func NewClient(cfg config.VaultConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{config: cfg}, nil
	}

	vaultConfig := api.DefaultConfig()
	vaultConfig.Address = cfg.Address

	if cfg.TLSEnabled && cfg.CACert != "" {
		tlsConfig := &api.TLSConfig{CACert: cfg.CACert}
		if err := vaultConfig.ConfigureTLS(tlsConfig); err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &Client{client: client, config: cfg}, nil
}

// LoadSecrets reads the secret bundle. Vault values win over environment
// values; a key absent from both stays empty and is caught by config
// validation downstream.
func (c *Client) LoadSecrets(ctx context.Context) (*Secrets, error) {
	secrets := &Secrets{
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		SupabaseServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		DatabasePassword:       os.Getenv("DB_PASSWORD"),
		JWTSecret:              os.Getenv("AUTH_JWT_SECRET"),
	}
	if !c.config.Enabled {
		return secrets, nil
	}

	path := fmt.Sprintf("%s/data/%s", c.config.MountPath, c.config.SecretPath)
	secret, err := c.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets from vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return secrets, nil
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid secret format at %s", path)
	}

	if v := getString(data, "telegram_bot_token"); v != "" {
		secrets.TelegramBotToken = v
	}
	if v := getString(data, "supabase_service_role_key"); v != "" {
		secrets.SupabaseServiceRoleKey = v
	}
	if v := getString(data, "db_password"); v != "" {
		secrets.DatabasePassword = v
	}
	if v := getString(data, "jwt_secret"); v != "" {
		secrets.JWTSecret = v
	}
	return secrets, nil
}

func getString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
