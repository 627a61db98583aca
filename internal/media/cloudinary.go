package media

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"warble/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type cloudinaryProvider struct {
	cld       *cloudinary.Cloudinary
	cloudName string
	apiKey    string
	apiSecret string
}

// NewCloudinaryProvider builds a Provider backed by Cloudinary.
func NewCloudinaryProvider(cfg *config.Config) (Provider, error) {
	if cfg.MediaCloudName == "" || cfg.MediaAPIKey == "" || cfg.MediaAPISecret == "" {
		return nil, fmt.Errorf("media provider credentials are not configured")
	}

	cld, err := cloudinary.NewFromParams(cfg.MediaCloudName, cfg.MediaAPIKey, cfg.MediaAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media provider: %w", err)
	}

	return &cloudinaryProvider{
		cld:       cld,
		cloudName: cfg.MediaCloudName,
		apiKey:    cfg.MediaAPIKey,
		apiSecret: cfg.MediaAPISecret,
	}, nil
}

// SignUpload signs {timestamp, folder} so the client can upload directly.
// Only signed parameters are accepted by the provider, which pins uploads to
// the configured folder.
func (p *cloudinaryProvider) SignUpload(folder string) (*SignedUpload, error) {
	timestamp := time.Now().Unix()

	params := url.Values{}
	params.Set("timestamp", strconv.FormatInt(timestamp, 10))
	params.Set("folder", folder)

	signature, err := api.SignParameters(params, p.apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload parameters: %w", err)
	}

	return &SignedUpload{
		Timestamp: timestamp,
		Signature: signature,
		APIKey:    p.apiKey,
		CloudName: p.cloudName,
		Folder:    folder,
	}, nil
}

// Release destroys the remote asset. "not found" responses are treated as
// success so releases stay idempotent.
func (p *cloudinaryProvider) Release(ctx context.Context, publicID, resourceType string) error {
	if resourceType == "" {
		resourceType = "image"
	}

	res, err := p.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to release media asset %s: %w", publicID, err)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("media provider rejected release of %s: %s", publicID, res.Result)
	}
	return nil
}
