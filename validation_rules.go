package graphstream

import (
	"fmt"
	"strings"
)

// MessageValidationRule checks the message list of a submission
type MessageValidationRule struct{}

func (r *MessageValidationRule) Name() string {
	return "Message Validation"
}

func (r *MessageValidationRule) Check(req *StreamRequest) []ValidationWarning {
	var warnings []ValidationWarning

	if len(req.Messages) == 0 {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeNoMessages,
			Category: "message",
			Field:    "messages",
			Value:    0,
			Message:  "Submission carries no messages",
			Severity: SeverityError,
		})
		return warnings
	}

	seen := make(map[string]bool, len(req.Messages))
	for i, msg := range req.Messages {
		if msg.ID == "" {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeMissingMessageID,
				Category: "message",
				Field:    fmt.Sprintf("messages[%d].id", i),
				Value:    msg.ID,
				Message:  "Message has no id; ids must be unique within a session",
				Severity: SeverityError,
			})
		} else if seen[msg.ID] {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeDuplicateMessageID,
				Category: "message",
				Field:    fmt.Sprintf("messages[%d].id", i),
				Value:    msg.ID,
				Message:  fmt.Sprintf("Message id %s appears more than once", msg.ID),
				Severity: SeverityError,
			})
		}
		seen[msg.ID] = true

		if !msg.Type.IsValid() {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeInvalidMessageType,
				Category: "message",
				Field:    fmt.Sprintf("messages[%d].type", i),
				Value:    msg.Type,
				Message:  fmt.Sprintf("Message type %q is not one of human, ai, tool", msg.Type),
				Severity: SeverityError,
			})
		}

		if msg.Type == MessageHuman && strings.TrimSpace(msg.Content) == "" {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeEmptyContent,
				Category: "message",
				Field:    fmt.Sprintf("messages[%d].content", i),
				Value:    msg.Content,
				Message:  "Human message has empty content",
				Severity: SeverityWarning,
			})
		}
	}

	return warnings
}

// SessionValidationRule checks the session identifiers of a submission
type SessionValidationRule struct{}

func (r *SessionValidationRule) Name() string {
	return "Session Validation"
}

func (r *SessionValidationRule) Check(req *StreamRequest) []ValidationWarning {
	var warnings []ValidationWarning

	if req.UserID == "" {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeMissingUserID,
			Category: "session",
			Field:    "user_id",
			Value:    req.UserID,
			Message:  "Submission has no user id (anonymous sessions may be rejected)",
			Severity: SeverityInfo,
		})
	}

	if req.SessionID == "" {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeMissingSessionID,
			Category: "session",
			Field:    "session_id",
			Value:    req.SessionID,
			Message:  "Submission has no session id",
			Severity: SeverityWarning,
		})
	}

	return warnings
}

// MerchantValidationRule checks the merchant scope of a submission
type MerchantValidationRule struct{}

func (r *MerchantValidationRule) Name() string {
	return "Merchant Validation"
}

func (r *MerchantValidationRule) Check(req *StreamRequest) []ValidationWarning {
	var warnings []ValidationWarning

	if req.MerchantID == "" {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeMissingMerchantID,
			Category: "merchant",
			Field:    "merchant_id",
			Value:    req.MerchantID,
			Message:  "Submission has no merchant id; the server requires an active entity",
			Severity: SeverityError,
		})
	}

	if req.MerchantType == "" {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeMissingMerchantType,
			Category: "merchant",
			Field:    "merchant_type",
			Value:    req.MerchantType,
			Message:  "Submission has no merchant type",
			Severity: SeverityWarning,
		})
	}

	return warnings
}
