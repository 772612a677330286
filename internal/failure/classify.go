package failure

import (
	"strings"
)

// Kind is the closed set of failure categories a download can end in.
type Kind string

const (
	KindNone                Kind = ""
	KindThrottlingDetected  Kind = "throttling_detected"
	KindPrivateContent      Kind = "private_content"
	KindContentUnavailable  Kind = "content_unavailable"
	KindAgeRestricted       Kind = "age_restricted"
	KindFormatUnavailable   Kind = "format_unavailable"
	KindDirectoryUnwritable Kind = "directory_unwritable"
	KindUnknown             Kind = "unknown"
)

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// Remediation messages shown to the user verbatim
const (
	MessageThrottling = "YouTube is currently blocking requests from this machine due to bot detection. " +
		"This is common on shared cloud hosts. Please try again later or run the downloader locally."
	MessagePrivate           = "Content is private or unavailable"
	MessageUnavailable       = "Content is no longer available"
	MessageAgeRestricted     = "Age-restricted content detected. Cannot download without authentication"
	MessageFormatUnavailable = "Requested quality/format is not available. Try a different quality setting"
	UnknownMessagePrefix     = "Download error: "
)

// signature ties a set of lower-case substrings to a failure kind.
type signature struct {
	kind    Kind
	phrases []string
	message string
}

// signatures is evaluated top to bottom; the first match wins.
var signatures = []signature{
	{
		kind:    KindThrottlingDetected,
		phrases: throttlingPhrases,
		message: MessageThrottling,
	},
	{
		kind:    KindPrivateContent,
		phrases: []string{"private video"},
		message: MessagePrivate,
	},
	{
		kind:    KindContentUnavailable,
		phrases: []string{"video unavailable"},
		message: MessageUnavailable,
	},
	{
		kind:    KindAgeRestricted,
		phrases: []string{"confirm your age", "age-restricted", "inappropriate for some users"},
		message: MessageAgeRestricted,
	},
	{
		kind:    KindFormatUnavailable,
		phrases: []string{"requested format is not available"},
		message: MessageFormatUnavailable,
	},
}

// throttlingPhrases is shared by Classify and IsThrottling.
var throttlingPhrases = []string{
	"sign in to confirm",
	"not a bot",
	"bot detection",
	"too many requests",
	"http error 429",
}

// Classification is the outcome of mapping raw engine text to a Kind.
type Classification struct {
	Kind        Kind
	UserMessage string
}

// Classify maps a raw engine failure message to a Kind and a user-facing message.
func Classify(raw string) Classification {
	lower := strings.ToLower(raw)
	for _, sig := range signatures {
		if containsAny(lower, sig.phrases) {
			return Classification{Kind: sig.kind, UserMessage: sig.message}
		}
	}
	return Classification{Kind: KindUnknown, UserMessage: UnknownMessagePrefix + raw}
}

// IsThrottling reports whether raw carries a throttling or bot-defense signature.
func IsThrottling(raw string) bool {
	return containsAny(strings.ToLower(raw), throttlingPhrases)
}

// DirectoryUnwritable builds the classification used when the output directory cannot be prepared.
func DirectoryUnwritable(message string) Classification {
	return Classification{Kind: KindDirectoryUnwritable, UserMessage: message}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
