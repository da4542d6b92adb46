package constants

const (
	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Context keys
	ContextKeySubject   = "subject"
	ContextKeyRequestID = "request_id"

	// Database table names
	TableDevices  = "devices"
	TableProducts = "products"

	// Lock key prefixes for the association pair lock
	LockPrefixDevice  = "device:"
	LockPrefixProduct = "product:"

	// Redis key namespace
	RedisKeyPrefix        = "devicehub:"
	RedisLockPrefix       = RedisKeyPrefix + "lock:"
	RedisReportKey        = RedisKeyPrefix + "consistency:report"
	RedisRateLimitPrefix  = RedisKeyPrefix + "ratelimit:"
	SchedulerTagReconcile = "reconcile"
)
