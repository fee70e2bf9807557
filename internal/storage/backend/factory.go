// Package backend selects the object storage implementation from configuration.
package backend

import (
	"fmt"

	"github.com/retroconnect/idverify/internal/config"
	"github.com/retroconnect/idverify/internal/storage"
	"github.com/retroconnect/idverify/internal/storage/cloudinary"
	"github.com/retroconnect/idverify/internal/storage/memory"
	"github.com/retroconnect/idverify/internal/storage/supabase"
)

// ProviderType defines supported storage backends
type ProviderType string

const (
	ProviderTypeSupabase   ProviderType = "supabase"
	ProviderTypeCloudinary ProviderType = "cloudinary"
	ProviderTypeMemory     ProviderType = "memory"
)

// memoryBaseURL prefixes public URLs handed out by the in-process store.
const memoryBaseURL = "http://localhost/storage/v1/object/public"

// New creates a storage.Storage based on STORAGE_PROVIDER.
func New(cfg *config.Config) (storage.Storage, error) {
	switch ProviderType(cfg.StorageProvider) {
	case ProviderTypeSupabase, "":
		if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("supabase storage requires SUPABASE_URL and SUPABASE_SERVICE_KEY")
		}
		sbConfig := supabase.DefaultConfig()
		sbConfig.BaseURL = cfg.SupabaseURL
		sbConfig.ServiceKey = cfg.SupabaseServiceKey
		return supabase.NewClient(sbConfig), nil

	case ProviderTypeCloudinary:
		if cfg.CloudinaryURL == "" {
			return nil, fmt.Errorf("cloudinary storage requires CLOUDINARY_URL")
		}
		store, err := cloudinary.New(cfg.CloudinaryURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloudinary storage: %w", err)
		}
		return store, nil

	case ProviderTypeMemory:
		return memory.New(memoryBaseURL), nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %s (supported: %s, %s, %s)",
			cfg.StorageProvider, ProviderTypeSupabase, ProviderTypeCloudinary, ProviderTypeMemory)
	}
}
