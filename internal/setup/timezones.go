package setup

import "github.com/hearthbot/hearth/internal/platform"

// timezones is the fixed choice list offered by the wizard's selection
// control. Values are IANA zone names.
var timezones = []platform.SelectOption{
	{Label: "UTC (Universal Time)", Value: "UTC", Description: "UTC+0"},
	{Label: "Eastern Time (US)", Value: "US/Eastern", Description: "UTC-5/-4"},
	{Label: "Central Time (US)", Value: "US/Central", Description: "UTC-6/-5"},
	{Label: "Mountain Time (US)", Value: "US/Mountain", Description: "UTC-7/-6"},
	{Label: "Pacific Time (US)", Value: "US/Pacific", Description: "UTC-8/-7"},
	{Label: "Alaska Time", Value: "US/Alaska", Description: "UTC-9/-8"},
	{Label: "Hawaii Time", Value: "US/Hawaii", Description: "UTC-10"},
	{Label: "London (GMT/BST)", Value: "Europe/London", Description: "UTC+0/+1"},
	{Label: "Paris/Berlin/Rome", Value: "Europe/Paris", Description: "UTC+1/+2"},
	{Label: "Moscow", Value: "Europe/Moscow", Description: "UTC+3"},
	{Label: "Dubai", Value: "Asia/Dubai", Description: "UTC+4"},
	{Label: "Mumbai/Delhi", Value: "Asia/Kolkata", Description: "UTC+5:30"},
	{Label: "Bangkok", Value: "Asia/Bangkok", Description: "UTC+7"},
	{Label: "Shanghai/Beijing", Value: "Asia/Shanghai", Description: "UTC+8"},
	{Label: "Tokyo", Value: "Asia/Tokyo", Description: "UTC+9"},
	{Label: "Sydney", Value: "Australia/Sydney", Description: "UTC+10/+11"},
	{Label: "Auckland", Value: "Pacific/Auckland", Description: "UTC+12/+13"},
}

// timezoneLabel returns the display label for a zone value, falling back to
// the value itself.
func timezoneLabel(value string) string {
	for _, tz := range timezones {
		if tz.Value == value {
			return tz.Label
		}
	}
	return value
}

// validTimezone reports whether value is one of the offered zones.
func validTimezone(value string) bool {
	for _, tz := range timezones {
		if tz.Value == value {
			return true
		}
	}
	return false
}
