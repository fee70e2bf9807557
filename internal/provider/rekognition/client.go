package rekognition

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/smithy-go"

	"github.com/retroconnect/idverify/internal/provider"
)

const providerName = "rekognition"

const (
	errCodeAccessDenied          = "AccessDeniedException"
	errCodeInvalidParameter      = "InvalidParameterException"
	errCodeInvalidImageFormat    = "InvalidImageFormatException"
	errCodeImageTooLarge         = "ImageTooLargeException"
	errCodeProvisionedThroughput = "ProvisionedThroughputExceededException"
)

// API is the subset of the Rekognition client used here
type API interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// Client wraps the AWS Rekognition client
type Client struct {
	api    API
	config Config
}

// NewClient creates a new Rekognition client with the provided configuration
// It uses the AWS default credential chain to authenticate
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		api:    rekognition.NewFromConfig(awsCfg),
		config: cfg,
	}, nil
}

// NewClientWithAPI wraps an existing API implementation
func NewClientWithAPI(api API, cfg Config) *Client {
	return &Client{api: api, config: cfg}
}

// translateError maps AWS API errors onto provider.ServiceError so the
// service message can be relayed to callers.
func translateError(op string, err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	svcErr := &provider.ServiceError{
		Provider: providerName,
		Code:     apiErr.ErrorCode(),
		Message:  apiErr.ErrorMessage(),
	}
	if svcErr.Message == "" {
		svcErr.Message = apiErr.ErrorCode()
	}

	switch apiErr.ErrorCode() {
	case errCodeAccessDenied:
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidCredentials, svcErr)
	case errCodeInvalidParameter, errCodeInvalidImageFormat, errCodeImageTooLarge:
		return fmt.Errorf("%s: %w: %w", op, provider.ErrInvalidImage, svcErr)
	case errCodeProvisionedThroughput:
		return fmt.Errorf("%s: throttled: %w", op, svcErr)
	}
	return fmt.Errorf("%s: %w", op, svcErr)
}
