package analytics

import (
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
)

// Типы устройств
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// UserAgentParser добавляет к событию браузер, ОС и тип устройства
type UserAgentParser struct {
	parser *uaparser.Parser
}

func NewUserAgentParser() *UserAgentParser {
	return &UserAgentParser{parser: uaparser.NewFromSaved()}
}

// Params возвращает параметры события для строки User-Agent
func (p *UserAgentParser) Params(userAgent string) map[string]any {
	if p == nil || userAgent == "" {
		return map[string]any{"device_type": DeviceUnknown}
	}

	client := p.parser.Parse(userAgent)
	return map[string]any{
		"browser":     client.UserAgent.Family,
		"os":          client.Os.Family,
		"device_type": deviceType(client, userAgent),
	}
}

func deviceType(client *uaparser.Client, userAgent string) string {
	lower := strings.ToLower(userAgent)
	if client.Device.Family == "Spider" || strings.Contains(lower, "bot") || strings.Contains(lower, "crawler") {
		return DeviceBot
	}

	if strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet") {
		return DeviceTablet
	}

	switch client.Os.Family {
	case "iOS", "Android", "Windows Phone":
		if client.Os.Family == "Android" && !strings.Contains(lower, "mobile") {
			return DeviceTablet
		}
		return DeviceMobile
	case "Windows", "Mac OS X", "Linux", "Ubuntu", "Chrome OS", "Fedora":
		return DeviceDesktop
	}

	return DeviceUnknown
}
