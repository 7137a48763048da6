package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"

	// DuplicateOrderError represents a create request for an order id that is still live.
	DuplicateOrderError ErrorCode = "duplicate_order"
	// OrderNotFoundError represents a replace or cancel request for an order id that is not live.
	OrderNotFoundError ErrorCode = "order_not_found"
	// InvalidReplaceError represents a replace request that attempts to change
	// an order's side or price.
	InvalidReplaceError ErrorCode = "invalid_replace"
	// InvariantViolationError represents corrupted book state reaching the
	// matching path. It is never recoverable per request.
	InvariantViolationError ErrorCode = "invariant_violation"
	// RequestParseError represents a malformed request log line.
	RequestParseError ErrorCode = "request_parse_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisDelError represents an error when deleting a value from Redis.
	RedisDelError ErrorCode = "redis_del_error"
	// RedisPublishError represents an error when publishing messages to channels in Redis.
	RedisPublishError ErrorCode = "redis_publish_error"

	// KafkaReadError represents an error when reading a message from Kafka.
	KafkaReadError ErrorCode = "kafka_read_error"
	// KafkaWriteError represents an error when writing a message to Kafka.
	KafkaWriteError ErrorCode = "kafka_write_error"
)

// Is reports whether a given error carries the ErrorCode, either as an
// ErrorDetails code or somewhere down its unwrap chain.
func (c ErrorCode) Is(err error) bool {
	for err != nil {
		if details, ok := err.(*ErrorDetails); ok && details.Code == string(c) {
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
