package constants

const ApiBasePath = "/api/v1"
const SitesApiPath = "sites"

type contextKey string

// SiteContextKey carries the validated site id set by the site dispatcher.
const SiteContextKey contextKey = "site_id"

// Event types emitted by the tracking script. The ingestion pipeline owns
// writes; this service only ever filters and counts by these values.
const (
	EventTypePageview    = "pageview"
	EventTypeCustomEvent = "custom_event"
	EventTypeOutbound    = "outbound"
	EventTypePerformance = "performance"
	EventTypeError       = "error"
	EventTypeButtonClick = "button_click"
	EventTypeCopy        = "copy"
	EventTypeFormSubmit  = "form_submit"
	EventTypeInputChange = "input_change"
)

// AllEventTypes is every type counted by the bucketed aggregation endpoint.
var AllEventTypes = []string{
	EventTypePageview,
	EventTypeCustomEvent,
	EventTypePerformance,
	EventTypeOutbound,
	EventTypeError,
	EventTypeButtonClick,
	EventTypeCopy,
	EventTypeFormSubmit,
	EventTypeInputChange,
}

// ListedEventTypes is the subset shown in the event list views. Performance
// and error rows are high-volume telemetry and are excluded there.
var ListedEventTypes = []string{
	EventTypeCustomEvent,
	EventTypePageview,
	EventTypeOutbound,
	EventTypeButtonClick,
	EventTypeCopy,
	EventTypeFormSubmit,
	EventTypeInputChange,
}

// PollLimit caps the realtime polling response size.
const PollLimit = 500

// DefaultPageSize is used when a listing request omits page_size.
const DefaultPageSize = 50

// MaxMatchingUserIDs caps the candidate id set produced by a profile
// search. Under very high cardinality the reported total may undercount.
const MaxMatchingUserIDs = 10000

// AllowedUserSortFields is the whitelist for the user listing sort column.
// Unlisted fields fall back to last_seen rather than erroring.
var AllowedUserSortFields = map[string]bool{
	"first_seen": true,
	"last_seen":  true,
	"pageviews":  true,
	"sessions":   true,
	"events":     true,
}

// AllowedSearchFields maps the search_field parameter to the profile
// column or trait it matches against.
var AllowedSearchFields = map[string]bool{
	"username": true,
	"name":     true,
	"email":    true,
	"user_id":  true,
}

const DefaultSearchField = "username"
const DefaultSortField = "last_seen"
