package app

import (
	"testing"

	"photo_studio/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestCheckProviders(t *testing.T) {
	twilio := config.TwilioConfig{AccountSID: "AC123", AuthToken: "token"}
	cdn := config.CloudinaryConfig{CloudName: "studio", APIKey: "key", APISecret: "secret"}

	tests := []struct {
		name    string
		cfg     config.Config
		wantErr error
	}{
		{
			name: "local runs on fallbacks",
			cfg:  config.Config{Env: envLocal},
		},
		{
			name:    "prod without twilio",
			cfg:     config.Config{Env: envProd, Cloudinary: cdn},
			wantErr: ErrSMSProviderRequired,
		},
		{
			name:    "prod without cloudinary",
			cfg:     config.Config{Env: envProd, Twilio: twilio},
			wantErr: ErrCDNRequired,
		},
		{
			name: "prod fully configured",
			cfg:  config.Config{Env: envProd, Twilio: twilio, Cloudinary: cdn},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkProviders(&tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
