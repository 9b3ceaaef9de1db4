// Package device classifies clients from the User-Agent header.
package device

import (
	"github.com/mileusna/useragent"

	"github.com/botlink/botlink/internal/model"
)

// Device type values.
const (
	TypeMobile  = "mobile"
	TypeTablet  = "tablet"
	TypeDesktop = "desktop"
	TypeBot     = "bot"
	TypeUnknown = "unknown"
)

// Classifier derives a DeviceInfo summary from a raw User-Agent string.
type Classifier struct{}

// NewClassifier creates a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify parses the User-Agent and summarizes type, OS, browser and
// whether the client is likely able to open the messenger app directly.
func (c *Classifier) Classify(ua string) model.DeviceInfo {
	if ua == "" {
		return model.DeviceInfo{Type: TypeUnknown}
	}

	parsed := useragent.Parse(ua)

	info := model.DeviceInfo{
		Type:    TypeUnknown,
		OS:      parsed.OS,
		Browser: parsed.Name,
	}

	switch {
	case parsed.Bot:
		info.Type = TypeBot
	case parsed.Tablet:
		info.Type = TypeTablet
	case parsed.Mobile:
		info.Type = TypeMobile
	case parsed.Desktop:
		info.Type = TypeDesktop
	}

	// The messenger app ships for Android and iOS; mobile and tablet
	// clients on those platforms are assumed able to take a deep link.
	if (info.Type == TypeMobile || info.Type == TypeTablet) &&
		(parsed.OS == "Android" || parsed.OS == "iOS") {
		info.LikelyApp = true
	}

	return info
}
