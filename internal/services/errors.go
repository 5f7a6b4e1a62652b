package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service layer. Handlers map these to
// HTTP status codes in handleServiceError.
var (
	ErrQuestionNotFound   = errors.New("question not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrTestCaseNotFound   = errors.New("test case not found")
	ErrMCQNotFound        = errors.New("mcq not found")
	ErrNoteNotFound       = errors.New("note not found")
	ErrNoteFileNotFound   = errors.New("note file not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrActivityNotFound   = errors.New("activity not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("authoring session not found")

	ErrCategoryInUse       = errors.New("category has questions and cannot be deleted")
	ErrDuplicateTitle      = errors.New("a question with this title already exists")
	ErrDuplicateCategory   = errors.New("a category with this name already exists")
	ErrNotEnrolled         = errors.New("student is not enrolled in this course")
	ErrSessionSubmitted    = errors.New("authoring session already submitted")
	ErrStepNotReady        = errors.New("current step is incomplete")
	ErrInvalidFileType     = errors.New("file must be a PDF")
	ErrEmptyFile           = errors.New("uploaded file is empty")
	ErrNoFilesRequested    = errors.New("no file ids requested")
	ErrUnknownEditorRole   = errors.New("unknown editor role")
	ErrUnknownTemplateKind = errors.New("unknown template kind")
)

// PermissionError carries enough context to log who tried to do what.
type PermissionError struct {
	UserID     string
	ResourceID string
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is a PermissionError.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// Upload kinds for UploadError.
const (
	UploadKindStatement = "statement PDF file"
	UploadKindSolution  = "solution PDF file"
)

// UploadError marks a failed file upload during the second phase of a
// wizard submit. The question record itself was already persisted; the
// caller can retry just the upload.
type UploadError struct {
	Kind string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %s: %v", e.Kind, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

func NewUploadError(kind string, err error) *UploadError {
	return &UploadError{Kind: kind, Err: err}
}

// IsUploadError reports whether err is an UploadError.
func IsUploadError(err error) bool {
	var ue *UploadError
	return errors.As(err, &ue)
}
