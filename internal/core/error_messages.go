// Package core provides the scan reconciliation logic for inbound receiving.
//
// # Error Codes Reference
//
// This file defines user-facing error messages with codes for support
// reference. Operators can quote the code when reporting a problem.
//
// # Scan Errors (SCAN001-SCAN099)
//
//	SCAN001 - Invalid barcode: the scan was empty
//	          Action: Scan the label again
//	SCAN002 - Malformed barcode: not STYLE/COLOR/SIZE
//	          Action: Check that the label is a receiving label
//	SCAN003 - No matching SKU: the SKU is not in the expected list
//	          Action: Set the item aside and check the expected list
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Unreadable or unsupported spreadsheet (ErrParseFailure)
//	FILE003 - No file provided
//
// # Session Errors
//
//	RESET001 - Reset step out of order (ErrInvalidResetTransition)
//	STORE001 - Saved state could not be read or written
//	SOUND001 - Sound cue failed (ErrSoundPlayback)
//
// # Default Error (ERR000)
//
// Sentinel errors are matched with errors.Is first. Anything else falls back
// to case-insensitive substring patterns, first match wins.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// sentinelMessages maps sentinel errors to user messages.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrInvalidInput, UserMessage{
		Message: "유효하지 않은 바코드입니다.",
		Action:  "Scan the label again",
		Code:    "SCAN001",
	}},
	{ErrMalformedFormat, UserMessage{
		Message: "바코드 형식이 올바르지 않습니다. 형식: STYLE/COLOR/SIZE",
		Action:  "Check that the label is a receiving label",
		Code:    "SCAN002",
	}},
	{ErrNoMatch, UserMessage{
		Message: "일치하는 SKU가 없습니다.",
		Action:  "Set the item aside and check the expected list",
		Code:    "SCAN003",
	}},
	{ErrParseFailure, UserMessage{
		Message: "파일 읽기 중 오류가 발생했습니다. 파일 형식을 확인해 주세요.",
		Action:  "Upload the expected list as .xlsx or .csv",
		Code:    "FILE002",
	}},
	{ErrInvalidResetTransition, UserMessage{
		Message: "초기화 확인 순서가 올바르지 않습니다.",
		Action:  "Start the reset again",
		Code:    "RESET001",
	}},
	{ErrSoundPlayback, UserMessage{
		Message: "사운드 재생에 실패했습니다. 사운드 파일을 확인해 주세요.",
		Action:  "Check the sound files",
		Code:    "SOUND001",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the expected list into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to upload",
			Code:    "FILE003",
		},
	},
	{
		pattern: "load state",
		msg: UserMessage{
			Message: "Saved session could not be read",
			Action:  "Check the storage settings and restart",
			Code:    "STORE001",
		},
	},
	{
		pattern: "save state",
		msg: UserMessage{
			Message: "Session could not be saved",
			Action:  "Check the storage settings; the last action was not kept",
			Code:    "STORE001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "ERR001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
