package repos

import (
	"context"

	"github.com/hashicorp/vault/api"
)

// VaultRepository adapts the Vault API client to the secrets storage port.
type VaultRepository struct {
	client *api.Client
}

// NewVaultRepository creates a new VaultRepository wrapping the given client.
func NewVaultRepository(client *api.Client) *VaultRepository {
	return &VaultRepository{client: client}
}

// SetToken sets the token used to authenticate subsequent requests.
func (r *VaultRepository) SetToken(v string) {
	r.client.SetToken(v)
}

// GetSecrets reads the secret stored at path.
func (r *VaultRepository) GetSecrets(ctx context.Context, path string) (*api.Secret, error) {
	return r.client.Logical().ReadWithContext(ctx, path)
}

// WriteWithContext writes data to the given path.
func (r *VaultRepository) WriteWithContext(ctx context.Context, path string, data map[string]any) (*api.Secret, error) {
	return r.client.Logical().WriteWithContext(ctx, path, data)
}
