package banner

import (
	"context"

	"oil-config/internal/oilconfig"
)

// Mock implements Source for testing.
type Mock struct {
	BannerFunc func(ctx context.Context) (oilconfig.RawConfig, error)
}

// Banner calls the configured BannerFunc or returns an empty record.
func (m *Mock) Banner(ctx context.Context) (oilconfig.RawConfig, error) {
	if m.BannerFunc != nil {
		return m.BannerFunc(ctx)
	}
	return oilconfig.RawConfig{}, nil
}
