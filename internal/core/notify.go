package core

import "time"

// HighlightDelay is how long a frontend keeps the last scanned SKU
// highlighted.
const HighlightDelay = 500 * time.Millisecond

// Level is the severity of an operator notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Sound selects the audio cue a frontend plays.
type Sound string

const (
	SoundSuccess Sound = "success"
	SoundError   Sound = "error"
)

// Notification is what a frontend shows and plays for an outcome.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Sound   Sound  `json:"sound"`
}

// ScanNotifications returns the notifications for a scan attempt. An
// accepted scan that changed SKU yields a warning followed by the success.
func ScanNotifications(out ScanOutcome, err error) []Notification {
	if err != nil {
		return []Notification{ErrorNotification(err)}
	}

	var ns []Notification
	if out.SkuChanged {
		ns = append(ns, Notification{
			Level:   LevelWarning,
			Message: "새로운 SKU가 스캔되었습니다. 이전 SKU와 다릅니다.",
			Sound:   SoundError,
		})
	}
	return append(ns, Notification{
		Level:   LevelSuccess,
		Message: "바코드 " + out.Barcode + " 스캔 성공!",
		Sound:   SoundSuccess,
	})
}

// ErrorNotification maps any error to an error notification.
func ErrorNotification(err error) Notification {
	msg := MapError(err)
	return Notification{
		Level:   LevelError,
		Message: msg.Message,
		Code:    msg.Code,
		Sound:   SoundError,
	}
}

// Fixed notifications for session operations.
var (
	UploadNotification = Notification{
		Level:   LevelSuccess,
		Message: "입고 예정 데이터가 성공적으로 업로드되었습니다!",
		Sound:   SoundSuccess,
	}
	ExportNotification = Notification{
		Level:   LevelSuccess,
		Message: "검수 내역이 엑셀로 내보내기되었습니다!",
		Sound:   SoundSuccess,
	}
	ResetNotification = Notification{
		Level:   LevelInfo,
		Message: "데이터가 초기화되었습니다.",
		Sound:   SoundSuccess,
	}
)
