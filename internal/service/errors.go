package service

import "errors"

var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("ticket not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrReaderNil          = errors.New("reader is nil")
	ErrInvalidStatus      = errors.New("invalid ticket status")
	ErrInvalidPhase       = errors.New("invalid conversation phase")
	ErrUploadNotAllowed   = errors.New("uploads are not accepted in the current phase")
	ErrUnsupportedType    = errors.New("unsupported file type")
	ErrFileTooLarge       = errors.New("file exceeds the upload limit")
	ErrEmptyFile          = errors.New("file is empty")
	ErrMessageRequired    = errors.New("message is required")
	ErrTextRequired       = errors.New("text is required")
	ErrTextTooLong        = errors.New("text is too long")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidUser        = errors.New("username and password are required")
)
