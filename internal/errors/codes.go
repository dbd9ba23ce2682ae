package errors

// Error code constants returned in API responses.
// Format: CATEGORY_SPECIFIC_DETAIL; clients map these to display messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password (deliberately generic)
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // access/refresh token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed, bad signature or wrong token type
	AuthEmailExists        = "AUTH_EMAIL_EXISTS"        // email already registered
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"     // username already taken
	AuthResetTokenInvalid  = "AUTH_RESET_TOKEN_INVALID" // unknown, used or expired reset token

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // request body failed binding
	ValidationWeakPassword = "VALIDATION_WEAK_PASSWORD" // password policy violation
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // non-numeric path parameter

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"

	// ==================== Projects/Tasks ====================
	ProjectNotFound   = "PROJECT_NOT_FOUND"
	TaskNotFound      = "TASK_NOT_FOUND"
	TaskInvalidStatus = "TASK_INVALID_STATUS" // unknown task status value

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
