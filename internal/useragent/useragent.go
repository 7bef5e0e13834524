// Package useragent 从 User-Agent 字符串推断浏览器、操作系统和设备类型。
// 仅在客户端未自报分类时作为兜底，规则按顺序匹配，首个命中生效。
package useragent

import "strings"

// Browser 识别浏览器家族。Edge/Opera 的 UA 同时包含 "Chrome"，
// 多数 Chrome UA 又包含 "Safari"，因此匹配顺序不可调换。
func Browser(ua string) string {
	ua = strings.ToLower(ua)
	switch {
	case strings.Contains(ua, "edg/"):
		return "Edge"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		return "Opera"
	case strings.Contains(ua, "chrome/") && !strings.Contains(ua, "chromium"):
		return "Chrome"
	case strings.Contains(ua, "safari/") && !strings.Contains(ua, "chrome"):
		return "Safari"
	case strings.Contains(ua, "firefox/"):
		return "Firefox"
	default:
		return "Other"
	}
}

// OS 识别操作系统家族
func OS(ua string) string {
	ua = strings.ToLower(ua)
	switch {
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		return "macOS"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ipod"):
		return "iOS"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "Other"
	}
}

// Device 识别粗粒度设备类型，空 UA 返回 unknown
func Device(ua string) string {
	if ua == "" {
		return "unknown"
	}
	ua = strings.ToLower(ua)
	for _, pattern := range []string{"tablet", "ipad", "playbook", "silk"} {
		if strings.Contains(ua, pattern) {
			return "tablet"
		}
	}
	for _, pattern := range []string{"mobile", "iphone", "ipod", "windows phone"} {
		if strings.Contains(ua, pattern) {
			return "mobile"
		}
	}
	return "desktop"
}
