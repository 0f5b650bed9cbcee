package graphstream

// Severity indicates how serious a validation warning is
type Severity string

const (
	SeverityInfo    Severity = "info"    // Informational (might be expected)
	SeverityWarning Severity = "warning" // Potentially problematic
	SeverityError   Severity = "error"   // Likely to cause a rejected submission
)

// WarningCode is a machine-readable identifier for validation warnings
type WarningCode string

const (
	// Message warnings
	WarningCodeNoMessages         WarningCode = "NO_MESSAGES"
	WarningCodeEmptyContent       WarningCode = "EMPTY_CONTENT"
	WarningCodeDuplicateMessageID WarningCode = "DUPLICATE_MESSAGE_ID"
	WarningCodeMissingMessageID   WarningCode = "MISSING_MESSAGE_ID"
	WarningCodeInvalidMessageType WarningCode = "INVALID_MESSAGE_TYPE"

	// Session warnings
	WarningCodeMissingUserID    WarningCode = "MISSING_USER_ID"
	WarningCodeMissingSessionID WarningCode = "MISSING_SESSION_ID"

	// Merchant warnings
	WarningCodeMissingMerchantID   WarningCode = "MISSING_MERCHANT_ID"
	WarningCodeMissingMerchantType WarningCode = "MISSING_MERCHANT_TYPE"
)

// ValidationWarning represents a potential issue with a submission.
// These are informational - the library doesn't block submissions based
// on warnings. The server is the source of truth for validation.
type ValidationWarning struct {
	Code     WarningCode // Machine-readable code
	Category string      // "message", "session", "merchant"
	Field    string      // Field that might cause issues
	Value    any         // The potentially problematic value
	Message  string      // Human-readable warning
	Severity Severity    // How serious this warning is
}

// ValidationRule interface allows adding custom validation logic
type ValidationRule interface {
	// Name returns a human-readable name for this rule
	Name() string

	// Check validates a submission and returns warnings
	Check(req *StreamRequest) []ValidationWarning
}
