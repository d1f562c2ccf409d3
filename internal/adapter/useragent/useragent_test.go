package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vadimbarashkov/shortlink-analytics/internal/entity"
)

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name       string
		ua         string
		wantOS     string
		wantDevice string
	}{
		{
			name:       "empty",
			ua:         "",
			wantOS:     entity.UnknownOS,
			wantDevice: entity.DeviceDesktop,
		},
		{
			name:       "unparseable",
			ua:         "curl/8.4.0",
			wantOS:     entity.UnknownOS,
			wantDevice: entity.DeviceDesktop,
		},
		{
			name:       "windows desktop",
			ua:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			wantOS:     "Windows",
			wantDevice: entity.DeviceDesktop,
		},
		{
			name:       "linux desktop",
			ua:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			wantOS:     "Linux",
			wantDevice: entity.DeviceDesktop,
		},
	}

	p := NewParser()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			osName, device := p.Parse(tt.ua)

			assert.Equal(t, tt.wantOS, osName)
			assert.Equal(t, tt.wantDevice, device)
		})
	}
}

func TestParser_Devices(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{
			name: "iphone",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			want: entity.DeviceMobile,
		},
		{
			name: "android phone",
			ua:   "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			want: entity.DeviceMobile,
		},
		{
			name: "ipad",
			ua:   "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			want: entity.DeviceTablet,
		},
		{
			name: "android tablet",
			ua:   "Mozilla/5.0 (Linux; Android 13; SM-X700) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want: entity.DeviceTablet,
		},
	}

	p := NewParser()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, device := p.Parse(tt.ua)

			assert.Equal(t, tt.want, device)
		})
	}
}
