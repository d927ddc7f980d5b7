package app

import "errors"

var (
	// ErrInvalidCredentials is returned when the supplied credentials do not match.
	// This message is intended to be shown to end users and should not enable account enumeration.
	ErrInvalidCredentials = errors.New("Incorrect username or password")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	ErrNotCourseTeacher     = errors.New("only the course teacher can do this")
	ErrNoCourseAccess       = errors.New("you do not have access to this course")
	ErrNotCourseMember      = errors.New("you are not a member of this course")
	ErrNotAnnouncementOwner = errors.New("only the teacher who created the announcement can change it")
	ErrNotCompletionOwner   = errors.New("you can only remove your own completions")
	ErrNotFeedbackOwner     = errors.New("you can only change your own feedback")
	ErrNotBookmarkOwner     = errors.New("you can only remove your own bookmarks")

	ErrAlreadyCompleted  = errors.New("content is already marked as completed")
	ErrAlreadyBookmarked = errors.New("content is already bookmarked")

	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)
