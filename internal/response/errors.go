package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenRevoked       ErrCode = "TOKEN_REVOKED"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrRouteNotFound ErrCode = "ROUTE_NOT_FOUND"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrInvalidExam              ErrCode = "INVALID_EXAM"
	ErrInsufficientQuestionPool ErrCode = "INSUFFICIENT_QUESTION_POOL"
	ErrAlreadyFinalized         ErrCode = "ALREADY_FINALIZED"
	ErrExamMissing              ErrCode = "EXAM_MISSING"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."
	case ErrTokenRevoked:
		return "Authentication token has been logged out."
	case ErrEmailTaken:
		return "This email is already registered."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have access to this resource."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "The request contains invalid fields."
	case ErrInvalidID:
		return "The identifier format is invalid."
	case ErrInvalidPayload:
		return "The request body could not be parsed."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrRouteNotFound:
		return "Route not found."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrInvalidExam:
		return "The exam does not exist or is not active."
	case ErrInsufficientQuestionPool:
		return "Not enough active questions are available for this exam."
	case ErrAlreadyFinalized:
		return "This submission has already been finalized."
	case ErrExamMissing:
		return "The exam for this submission no longer exists."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."

	default:
		return "An unknown error occurred."
	}
}
