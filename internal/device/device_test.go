package device

import "testing"

const (
	uaAndroidChrome = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaIPhoneSafari  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaIPad          = "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1"
	uaWindowsChrome = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaGooglebot     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	c := NewClassifier()

	tests := []struct {
		name      string
		ua        string
		wantType  string
		likelyApp bool
	}{
		{"android phone", uaAndroidChrome, TypeMobile, true},
		{"iphone", uaIPhoneSafari, TypeMobile, true},
		{"ipad", uaIPad, TypeTablet, true},
		{"windows desktop", uaWindowsChrome, TypeDesktop, false},
		{"crawler", uaGooglebot, TypeBot, false},
		{"empty", "", TypeUnknown, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := c.Classify(tt.ua)
			if got.Type != tt.wantType {
				t.Errorf("Classify() type = %q, want %q", got.Type, tt.wantType)
			}
			if got.LikelyApp != tt.likelyApp {
				t.Errorf("Classify() likelyApp = %v, want %v", got.LikelyApp, tt.likelyApp)
			}
		})
	}
}

func TestClassify_OSAndBrowser(t *testing.T) {
	t.Parallel()

	got := NewClassifier().Classify(uaAndroidChrome)
	if got.OS != "Android" {
		t.Errorf("Classify() OS = %q, want Android", got.OS)
	}
	if got.Browser == "" {
		t.Error("Classify() browser is empty")
	}
}
