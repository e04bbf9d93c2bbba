package constants

const (
	// Session / context
	SessionCookieName = "task_session"
	ContextKeyUserID  = "user_id"
	ContextKeyActor   = "actor"
	ContextKeyRequest = "request_id"
	HeaderRequestID   = "X-Request-ID"
	HeaderFetchSite   = "Sec-Fetch-Site"

	// Accounts
	MinPasswordLength   = 8
	DefaultFullName     = "New User"
	MaxUsernameLength   = 50
	MaxFullNameLength   = 100
	UniquenessFieldUser = "username"
	UniquenessFieldMail = "email"

	// Tasks
	DefaultCategory   = "General"
	HistogramDays     = 7
	MaxBulkTaskIDs    = 500
	MaxCategoryLength = 50
	MaxTitleLength    = 100

	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// AI suggestions
	MaxAIGeneratedTasks = 20

	// Tenancy
	TenantModeMulti  = "multi"
	TenantModeSingle = "single"
)
