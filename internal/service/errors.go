package service

import "errors"

var (
	PasswordIncorrect     = errors.New("password incorrect")
	TokenIncorrect        = errors.New("token incorrect")
	ErrInviteTokenInvalid = errors.New("invite token invalid")
	ErrInviteTokenExpired = errors.New("invite token expired")
	ErrInviteTokenUsed    = errors.New("invite token usage limit reached")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrReviewerExists     = errors.New("reviewer already invited")
	ErrReviewerNotFound   = errors.New("reviewer not found")
	ErrScheduleInvalid    = errors.New("assignment schedule invalid")
	ErrSnapshotInvalid    = errors.New("form snapshot invalid")
	ErrTargetUserRequired = errors.New("target user is required")
)
