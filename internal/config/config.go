package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Age/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Go Age"
	AppID          = "com.github.tartampluch.go-age"
	KeyringService = "com.github.tartampluch.go-age"
	LogFileName    = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	CmdCalc     = "calc"
	CmdContacts = "contacts"
	CmdServe    = "serve"

	FlagVersion = "version"
	FlagDebug   = "debug"
	FlagDOB     = "dob"
	FlagRef     = "ref"
	FlagFormat  = "format"
	FlagLeap    = "leap"
	FlagFile    = "file"
	FlagURL     = "url"
	FlagUser    = "user"
	FlagLang    = "lang"

	FlagDescVersion = "Show application version and exit"
	FlagDescDebug   = "Enable debug logging"
	FlagDescDOB     = "Birth date (YYYY-MM-DD)"
	FlagDescRef     = "Reference date (YYYY-MM-DD), defaults to today"
	FlagDescFormat  = "Output format: text or json"
	FlagDescLeap    = "Leap-day birthday policy: feb28 or mar1"
	FlagDescFile    = "Path to a local .vcf file"
	FlagDescURL     = "CardDAV/WebDAV URL of a vCard export"
	FlagDescUser    = "HTTP Basic Auth username (password read from FEED_PASSWORD or the keyring)"
	FlagDescLang    = "Output language (en, fr)"

	FormatText = "text"
	FormatJSON = "json"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
	MsgUsage         = "Usage: go-age [-version] [-debug] <calc|contacts|serve> [flags]\n"
	MsgLogWarning    = "Warning: %s %s: %v\n"
	MsgError         = "error: %v\n"
)

// -----------------------------------------------------------------------------
// Environment Variables
// -----------------------------------------------------------------------------

const (
	EnvPort          = "PORT"
	EnvHost          = "HOST"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
	EnvCORSOrigins   = "CORS_ORIGINS"
	EnvTimezone      = "TIMEZONE"
	EnvLeapDayPolicy = "LEAP_DAY_POLICY"
	EnvFeedMode      = "FEED_MODE"
	EnvFeedPath      = "FEED_PATH"
	EnvFeedURL       = "FEED_URL"
	EnvFeedUser      = "FEED_USER"
	EnvFeedPassword  = "FEED_PASSWORD"
	EnvFeedRefresh   = "FEED_REFRESH_MINUTES"
	EnvFeedReminder  = "FEED_REMINDER"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeNone  = ""
	SourceModeWeb   = "web"
	SourceModeLocal = "local"

	LeapPolicyFeb28 = "feb28"
	LeapPolicyMar1  = "mar1"

	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatJSON = "json"
	LogFormatText = "text"

	DefaultPort        = 5000
	DefaultHost        = "0.0.0.0"
	DefaultLogLevel    = LogLevelInfo
	DefaultLogFormat   = LogFormatJSON
	DefaultCORSOrigins = "http://localhost:5173"
	DefaultTimezone    = "Local"
	DefaultLeapPolicy  = LeapPolicyFeb28
	DefaultRefreshMin  = 60
	DefaultLanguage    = "en"
	DefaultLeapYear    = 2000 // Leap year fallback for dates like --02-29
	UIDSalt            = "go-age-v1-" // Salt for deterministic UID generation
	ListSeparator      = ","
)

// -----------------------------------------------------------------------------
// Age Model Constants
// -----------------------------------------------------------------------------

const (
	// AssumedLifespanYears is the denominator of the lifespan percentage.
	AssumedLifespanYears = 80
	MaxPercentage        = 100
	PercentagePlaces     = 2

	ChineseZodiacBaseYear = 1900 // Year of the Rat
	MonthsPerYear         = 12
	DaysPerWeek           = 7
	HoursPerDay           = 24
	MinutesPerHour        = 60
	SecondsPerMinute      = 60

	// Fractional-year approximations used by the original widget.
	DaysPerYearApprox = 365
	DaysPerOrbit      = "365.25"
	DaysPerLunation   = "29.5"
	SeasonsPerYear    = 4

	HeartbeatsPerMinute = 70
	BreathsPerMinute    = 15
	SleepHoursPerDay    = 8

	WorkStartAge      = 18
	RetirementAge     = 65
	WorkWeeksPerYear  = 52
	WorkDaysPerWeek   = 5
	WorkHoursPerDay   = 8
	SchoolStartAge    = 5
	SchoolEndAge      = 18
	SchoolDaysPerYear = 180

	MinYear = 1
	MaxYear = 9999

	// MaxDerivedYear bounds dates computed from a valid reference date,
	// e.g. the next birthday after a reference in year 9999.
	MaxDerivedYear = MaxYear + 1
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Age//Engine//EN"
	ICalCalName   = "Birthdays & Milestones"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "goage"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropCategories  = "CATEGORIES"

	CategoryBirthday  = "BIRTHDAY"
	CategoryMilestone = "MILESTONE"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// DateFormatISO is the only layout accepted by the age API.
	DateFormatISO = "2006-01-02"

	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"
	FormatUIDMile   = "%s-m%d@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	MaxRequestBodySize  = 1 << 20           // 1MiB
	CORSMaxAge          = 300
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	RouteHealth       = "/health"
	RouteMetrics      = "/metrics"
	RouteCalendar     = "/calendar.ics"
	RouteAPI          = "/api"
	RouteCalculateAge = "/calculate-age"
	RouteContactAges  = "/contacts/ages"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderRequestID       = "X-Request-ID"
	HeaderAccept          = "Accept"
	HeaderAuthorization   = "Authorization"

	MimeJSON            = "application/json; charset=utf-8"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeVCard           = "text/vcard"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`

	StatusOK = "ok"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrMalformedInput   = "malformed input"
	ErrInvalidRange     = "invalid range"
	ErrDateShape        = "date must use the YYYY-MM-DD format"
	ErrDateEmpty        = "date is required"
	ErrDateImpossible   = "date does not exist in the Gregorian calendar"
	ErrYearRange        = "year must be between 1 and 9999"
	ErrBirthAfterRef    = "birth date is after the reference date"
	ErrDOBMissing       = "dob is required"
	ErrBodyDecode       = "request body must be a JSON object"
	ErrLeapPolicy       = "unknown leap-day policy"
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRange        = "PORT must be between 1 and 65535"
	ErrEnvNotInteger    = "must be an integer"
	ErrLogLevel         = "LOG_LEVEL must be one of: debug, info, warn, error"
	ErrLogFormat        = "LOG_FORMAT must be one of: json, text"
	ErrTimezone         = "TIMEZONE is not a valid IANA location"
	ErrRefreshInterval  = "FEED_REFRESH_MINUTES must be positive"
	ErrInvalidConfig    = "invalid configuration"
	ErrInvalidURL       = "invalid URL structure"
	ErrRequestBuild     = "failed to create request"
	ErrFetchNetwork     = "network error during fetch"
	ErrFetchStatus      = "server returned unexpected status"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrLocNotInit       = "localizer not initialized"
	ErrUnknownCommand   = "unknown command"
	ErrUsage            = "invalid usage"
	ErrFormatUnsupport  = "unsupported output format"
	ErrContactSource    = "either -file or -url is required"
	ErrInternal         = "internal server error"
	ErrCalculationLimit = "age calculation failed"
	ErrBodyTooLarge     = "request body too large"
	ErrCacheDir         = "failed to get user cache dir"
	ErrCreateDir        = "failed to create log directory"
	ErrLogFile          = "failed to open log file"
	ErrReference        = "reference"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgNotFound     = "Not Found"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary          = "Birthday: %s"
	FallbackSummaryAge       = "Birthday: %s (%d)"
	FallbackSummaryBirth     = "Birthday: %s (birth)"
	FallbackSummaryMilestone = "%s turns %d: %s"
	FallbackName             = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgSyncStarted   = "Synchronization started"
	MsgSyncFailed    = "Synchronization failed"
	MsgSyncFinished  = "Sync finished"
	MsgFetchStart    = "Initiating vCard download"
	MsgFetchStatus   = "Server returned error status"
	MsgFetchDone     = "vCards downloading"
	MsgWorkerStart   = "Background worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgAppStop       = "Application stopped gracefully"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgGenSuccess    = "Calendar generation successful"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Calendar cache updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgBdayToday     = "Birthday found today"
	MsgAgeComputed   = "Age computed"
	MsgAgeRejected   = "Age request rejected"
	MsgHTTPRequest   = "http request"
	MsgPanic         = "panic recovered"
	MsgFeedDisabled  = "Contacts feed disabled (no FEED_MODE)"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyAddr      = "addr"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "birthdays_found"
	LogKeyToday     = "birthdays_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyRef       = "reference_date"
	LogKeyYears     = "years"
	LogKeyDuration  = "duration_ms"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyRemote    = "remote_addr"
	LogKeyRequestID = "request_id"
	LogKeyPolicy    = "leap_policy"
	LogKeyStack     = "stack"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompFeed    = "feed"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
	CompCLI     = "cli"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricsNamespace = "goage"

	MetricResultOK        = "ok"
	MetricResultMalformed = "malformed"
	MetricResultRange     = "invalid_range"
	MetricResultError     = "error"

	// MetricRouteUnmatched labels requests that matched no route, keeping
	// label cardinality bounded.
	MetricRouteUnmatched = "unmatched"
)

// -----------------------------------------------------------------------------
// Translation Keys (message catalog used by the text renderer)
// -----------------------------------------------------------------------------

const (
	TKeyAgeLine         = "age_line"
	TKeyYears           = "unit_years"  // Plural
	TKeyMonths          = "unit_months" // Plural
	TKeyDays            = "unit_days"   // Plural
	TKeyToday           = "today"
	TKeyInDays          = "in_days"
	TKeyBornOn          = "born_on"
	TKeyTotalsHeader    = "totals_header"
	TKeyTotalDays       = "total_days"
	TKeyTotalWeeks      = "total_weeks"
	TKeyTotalHours      = "total_hours"
	TKeyTotalMinutes    = "total_minutes"
	TKeyTotalSeconds    = "total_seconds"
	TKeyNextBirthday    = "next_birthday"
	TKeyBirthdayToday   = "birthday_today"
	TKeyZodiac          = "zodiac"
	TKeyChinese         = "chinese_zodiac"
	TKeyGeneration      = "generation"
	TKeyLifePhase       = "life_phase"
	TKeyBirthstone      = "birthstone"
	TKeyMilestonesDone  = "milestones_done" // Plural
	TKeyNextMilestone   = "next_milestone"
	TKeyNoMilestone     = "no_milestone"
	TKeyLifespan        = "lifespan"
	TKeyFactsHeader     = "facts_header"
	TKeyFactOrbits      = "fact_orbits"
	TKeyFactMoons       = "fact_moons"
	TKeyFactHeartbeats  = "fact_heartbeats"
	TKeyFactBreaths     = "fact_breaths"
	TKeyFactSlept       = "fact_slept"
	TKeyFactLeapYears   = "fact_leap_years"
	TKeyFactNextLeapDay = "fact_next_leap_day"
	TKeyContactLine     = "contact_line"         // Requires Date, Name, Age, Days
	TKeyContactNoYear   = "contact_line_no_year" // Requires Date, Name, Days
	TKeyContactsSummary = "contacts_summary"     // Plural, requires Today
	TKeyEvtSummary      = "event_summary"        // Requires Name
	TKeyEvtSummaryAge   = "event_summary_age"    // Requires Name, Age
	TKeyEvtSummaryBirth = "event_summary_birth"  // Requires Name (age 0)
	TKeyEvtMilestone    = "event_milestone"      // Requires Name, Age, Label, Emoji
)
