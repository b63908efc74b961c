package middleware

// Keys under which request metadata is stored on the echo context.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserRole  = "user_role"
	ContextKeyTenantID  = "tenant_id"
	ContextKeyRequestID = "request_id"
)
