package userpath

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// UnknownEventLabel is returned for events with no usable name.
const UnknownEventLabel = "Unknown Event"

// UnknownPath is the sentinel for page paths that cannot be cleaned into
// something meaningful.
const UnknownPath = "unknown"

// RawEvent is one row of the event log as delivered by the store layer.
// Optional columns are empty strings when absent; the pipeline never
// fails on missing fields.
type RawEvent struct {
	UserID           string  `json:"user_id"`
	EventName        string  `json:"event"`
	TimestampSeconds int64   `json:"created_at"`
	URLPath          string  `json:"url_path"`
	URL              string  `json:"url"`
	PageTitle        string  `json:"page_title"`
	Referrer         string  `json:"referrer"`
	ScreenName       string  `json:"screen_name"`
	ElementContent   string  `json:"element_content"`
	EventDurationMs  float64 `json:"event_duration"`
}

// NormalizedEvent is a RawEvent with derived fields attached. Values are
// immutable once built.
type NormalizedEvent struct {
	RawEvent

	Timestamp      time.Time
	CleanPath      string
	StepIdentifier string
}

// Options are the tunables of the pipeline. DefaultOptions gives the
// values the behavior of the system is documented against.
type Options struct {
	SessionTimeout time.Duration
	TitleMaxLen    int
	ContentMaxLen  int
}

func DefaultOptions() Options {
	return Options{
		SessionTimeout: 30 * time.Minute,
		TitleMaxLen:    20,
		ContentMaxLen:  15,
	}
}

// eventLabels maps known event codes to display labels. Read-only after
// init; covers mini program lifecycle events, common tracking events and
// sensors-style generic events.
var eventLabels = map[string]string{
	// Mini program lifecycle events.
	"$MPLaunch":    "Mini Program Launch",
	"$MPShow":      "Page Show",
	"$MPViewScreen": "Page View",
	"$MPPageLeave": "Page Leave",
	"$MPHide":      "Mini Program Hide",
	"$MPEnd":       "Mini Program End",

	// User behavior events.
	"click":         "Click",
	"search":        "Search",
	"share":         "Share",
	"add_to_cart":   "Add To Cart",
	"order_submit":  "Order Submit",
	"product_view":  "Product View",
	"user_register": "User Register",
	"user_login":    "User Login",
	"page_view":     "Page View",
	"button_click":  "Button Click",
	"form_submit":   "Form Submit",

	// Sensors generic events.
	"$pageview":     "Page View",
	"$WebClick":     "Web Click",
	"$WebStay":      "Page Stay",
	"$SignUp":       "Sign Up",
	"$track_signup": "User Register",
	"$identify":     "User Identify",

	// Other common events.
	"track":    "Track",
	"identify": "User Identify",
	"page":     "Page",
	"screen":   "Screen",
}

// referrerSources maps substrings of referrer domains to channel names.
// Ordered because matching is substring based.
var referrerSources = []struct {
	Key  string
	Name string
}{
	{"baidu", "Baidu Search"},
	{"google", "Google Search"},
	{"weixin", "WeChat"},
	{"wechat", "WeChat"},
	{"qq", "QQ"},
	{"sina", "Weibo"},
	{"zhihu", "Zhihu"},
	{"douyin", "Douyin"},
	{"xiaohongshu", "Xiaohongshu"},
	{"direct", "Direct"},
}

// excludedPaths are values that mean "no real page path". Compared after
// lowercasing.
var excludedPaths = map[string]bool{
	"null":      true,
	"none":      true,
	"":          true,
	"undefined": true,
	"localhost": true,
	"127.0.0.1": true,
}

var pageFileExtensions = map[string]bool{
	"html": true,
	"htm":  true,
	"php":  true,
	"jsp":  true,
	"asp":  true,
}

// FormatEventLabel turns a raw event code into its display label. Unknown
// codes get a best effort transform; empty input yields UnknownEventLabel.
func FormatEventLabel(event string) string {
	if event == "" {
		return UnknownEventLabel
	}
	if label, ok := eventLabels[event]; ok {
		return label
	}

	label := strings.ReplaceAll(event, "$MP", "")
	label = strings.ReplaceAll(label, "$", "")
	label = strings.ReplaceAll(label, "_", " ")
	label = titleCase(label)
	if strings.TrimSpace(label) == "" {
		return event
	}
	return label
}

// titleCase capitalizes the first letter of each space separated word and
// lowercases the rest.
func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// CleanPagePath sanitizes a raw page path. Values in the excluded set and
// paths that reduce to nothing become UnknownPath.
func CleanPagePath(path string) string {
	if excludedPaths[strings.ToLower(path)] {
		return UnknownPath
	}

	p := path

	// Full mini program paths carry a pages/ prefix; keep the page name.
	if strings.HasPrefix(p, "pages/") {
		p = strings.TrimPrefix(p, "pages/")
		p = strings.ReplaceAll(p, "tabBar/", "")
		if idx := strings.LastIndex(p, "/"); idx >= 0 {
			p = p[idx+1:]
		}
	}

	if idx := strings.Index(p, "?"); idx >= 0 {
		p = p[:idx]
	}

	if idx := strings.LastIndex(p, "."); idx >= 0 {
		if pageFileExtensions[p[idx+1:]] {
			p = p[:idx]
		}
	}

	if p == "" || p == "/" {
		return UnknownPath
	}
	return p
}

// ExtractDomain pulls the domain out of a URL, without the www prefix.
// Empty input means a direct visit.
func ExtractDomain(rawURL string) string {
	if strings.TrimSpace(rawURL) == "" {
		return "direct"
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return UnknownPath
	}
	domain := parsed.Host
	if domain == "" {
		return "direct"
	}
	domain = strings.TrimPrefix(domain, "www.")
	return domain
}

// CategorizeReferrer classifies a referrer URL into a known channel.
// Returns the channel key and its display name.
func CategorizeReferrer(referrer string) (string, string) {
	if strings.TrimSpace(referrer) == "" {
		return "direct", "Direct"
	}

	domain := ExtractDomain(referrer)
	lowered := strings.ToLower(domain)
	for _, src := range referrerSources {
		if strings.Contains(lowered, src.Key) {
			return src.Key, src.Name
		}
	}
	return domain, fmt.Sprintf("Source: %s", domain)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// BuildStepIdentifier builds the composite step label for one event:
// the formatted event name plus a single disambiguating suffix, chosen
// by priority page title > screen name > page path > url path > element
// content. Element content is bracketed differently to mark it as an
// interaction target rather than a page.
func BuildStepIdentifier(e RawEvent, cleanPath string, opts Options) string {
	identifier := FormatEventLabel(e.EventName)

	if strings.TrimSpace(e.PageTitle) != "" {
		return identifier + "(" + truncate(e.PageTitle, opts.TitleMaxLen) + ")"
	}
	if strings.TrimSpace(e.ScreenName) != "" {
		return identifier + "(" + truncate(e.ScreenName, opts.TitleMaxLen) + ")"
	}
	if cleanPath != "" && cleanPath != UnknownPath {
		return identifier + "(" + cleanPath + ")"
	}
	if strings.TrimSpace(e.URL) != "" {
		if parsed, err := url.Parse(e.URL); err == nil {
			p := parsed.Path
			if p == "" || p == "/" {
				p = parsed.Host
			}
			if p != "" {
				if cleaned := CleanPagePath(p); cleaned != UnknownPath {
					return identifier + "(" + cleaned + ")"
				}
			}
		}
		return identifier
	}
	if content := strings.TrimSpace(e.ElementContent); content != "" {
		return identifier + "[" + truncate(content, opts.ContentMaxLen) + "]"
	}

	return identifier
}

// Normalize derives the canonical per event fields from a raw row. Total
// over its input; missing fields degrade to sentinels, never errors.
func Normalize(e RawEvent, opts Options) NormalizedEvent {
	cleanPath := CleanPagePath(e.URLPath)
	return NormalizedEvent{
		RawEvent:       e,
		Timestamp:      time.Unix(e.TimestampSeconds, 0).UTC(),
		CleanPath:      cleanPath,
		StepIdentifier: BuildStepIdentifier(e, cleanPath, opts),
	}
}

// NormalizeAll maps Normalize over an event table, preserving order.
func NormalizeAll(events []RawEvent, opts Options) []NormalizedEvent {
	normalized := make([]NormalizedEvent, 0, len(events))
	for _, e := range events {
		normalized = append(normalized, Normalize(e, opts))
	}
	return normalized
}
