package vision

import (
	"context"
	"fmt"

	"github.com/retroconnect/idverify/internal/audit"
	"github.com/retroconnect/idverify/internal/config"
	"github.com/retroconnect/idverify/internal/provider"
	"github.com/retroconnect/idverify/internal/provider/googlevision"
	"github.com/retroconnect/idverify/internal/provider/mock"
	"github.com/retroconnect/idverify/internal/provider/rekognition"
)

// ProviderType defines supported vision provider types
type ProviderType string

const (
	// ProviderTypeGoogle is the Google Cloud Vision REST API
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeRekognition is AWS Rekognition
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock is the deterministic local provider
	ProviderTypeMock ProviderType = "mock"
)

// NewProvider creates a VisionProvider instance based on configuration
//
// Environment variables:
//   - VISION_PROVIDER: "google", "rekognition" or "mock" (default: "google")
//   - GOOGLE_VISION_API_KEY / GOOGLE_VISION_URL: Google Vision access
//   - AWS_REGION plus the AWS SDK credential chain for Rekognition
func NewProvider(ctx context.Context, cfg *config.Config, auditLogger audit.Logger) (provider.VisionProvider, error) {
	switch ProviderType(cfg.VisionProvider) {
	case ProviderTypeGoogle, "":
		if cfg.GoogleVisionAPIKey == "" {
			return nil, fmt.Errorf("google vision provider requires GOOGLE_VISION_API_KEY")
		}
		return createGoogleProvider(cfg, auditLogger), nil

	case ProviderTypeRekognition:
		return createRekognitionProvider(ctx, cfg, auditLogger)

	case ProviderTypeMock:
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown vision provider: %s (supported: %s, %s, %s)",
			cfg.VisionProvider, ProviderTypeGoogle, ProviderTypeRekognition, ProviderTypeMock)
	}
}

func createGoogleProvider(cfg *config.Config, auditLogger audit.Logger) provider.VisionProvider {
	gvConfig := googlevision.DefaultConfig()
	gvConfig.APIKey = cfg.GoogleVisionAPIKey
	if cfg.GoogleVisionURL != "" {
		gvConfig.BaseURL = cfg.GoogleVisionURL
	}

	return googlevision.NewProvider(gvConfig, googlevision.WithAuditLogger(auditLogger))
}

func createRekognitionProvider(ctx context.Context, cfg *config.Config, auditLogger audit.Logger) (provider.VisionProvider, error) {
	rekogConfig := rekognition.DefaultConfig()
	if cfg.AWSRegion != "" {
		rekogConfig.Region = cfg.AWSRegion
	}

	prov, err := rekognition.NewProvider(ctx, rekogConfig, rekognition.WithAuditLogger(auditLogger))
	if err != nil {
		return nil, fmt.Errorf("create rekognition provider: %w", err)
	}

	return prov, nil
}
