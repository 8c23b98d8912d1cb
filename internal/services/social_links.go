package services

import (
	"regexp"
	"strings"
)

var (
	twitterPattern = regexp.MustCompile(
		`(?i)^(?:@|%40)?([a-zA-Z0-9_]+)\s*$|^(?:https?://)?(?:www\.)?(?:x\.com|twitter\.com)/(?:#!/)?@?([a-zA-Z0-9_]+)(?:/?|\?.*|#.*)?\s*$`,
	)

	facebookGroupPattern   = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?facebook\.com/groups/([^/?]+)(?:/|$|\?)`)
	facebookProfilePattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?facebook\.com/([^/?]+)(?:/|$|\?)`)
	facebookNamePattern    = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

	instagramURLPattern    = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?instagram\.com/([a-zA-Z0-9._]+)/?`)
	instagramHandlePattern = regexp.MustCompile(`^@?([a-zA-Z0-9._]+)$`)
)

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// TransformTwitterURL accepts @handle, a bare handle or any x.com/twitter.com
// URL and returns https://x.com/<handle>, or nil when no handle is found.
func TransformTwitterURL(twitter *string) *string {
	if blank(twitter) {
		return nil
	}

	match := twitterPattern.FindStringSubmatch(strings.TrimSpace(*twitter))
	if match == nil {
		return nil
	}

	handle := match[1]
	if handle == "" {
		handle = match[2]
	}
	if handle == "" {
		return nil
	}

	out := "https://x.com/" + handle
	return &out
}

// TransformFacebookURL canonicalises page and group URLs. profile.php links
// carry their id in the query string and are returned unchanged.
func TransformFacebookURL(facebook *string) *string {
	if blank(facebook) {
		return nil
	}
	raw := *facebook

	if match := facebookGroupPattern.FindStringSubmatch(raw); match != nil {
		if !facebookNamePattern.MatchString(match[1]) {
			return nil
		}
		out := "https://facebook.com/groups/" + match[1]
		return &out
	}

	if match := facebookProfilePattern.FindStringSubmatch(raw); match != nil {
		handle := match[1]
		if strings.HasPrefix(handle, "profile.php") {
			return &raw
		}
		if facebookNamePattern.MatchString(handle) {
			out := "https://facebook.com/" + handle
			return &out
		}
	}

	return nil
}

// TransformInstagramURL extracts a handle from a URL or a bare/@ handle
func TransformInstagramURL(instagram *string) *string {
	if blank(instagram) {
		return nil
	}
	raw := strings.TrimSpace(*instagram)

	if match := instagramURLPattern.FindStringSubmatch(raw); match != nil {
		out := "https://instagram.com/" + match[1]
		return &out
	}
	if match := instagramHandlePattern.FindStringSubmatch(raw); match != nil {
		out := "https://instagram.com/" + match[1]
		return &out
	}

	return nil
}

// NormalizeEmail keeps addresses containing '@', trimmed
func NormalizeEmail(email *string) *string {
	if email == nil || !strings.Contains(*email, "@") {
		return nil
	}
	out := strings.TrimSpace(*email)
	return &out
}
