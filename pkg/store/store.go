package store

import (
	"time"

	"simplelms/pkg/domain"
)

// Store defines persistence operations for the LMS entities. Batch creates
// are used by the fixture importer; the single-record operations serve the
// HTTP API.
type Store interface {
	// users
	CreateUsers(users []domain.User) error
	HasUsername(username string) (bool, error)
	GetUserByUsername(username string) (domain.User, bool, error)
	GetUser(id uint) (domain.User, bool, error)
	HasUser(id uint) (bool, error)
	UpdateUser(user domain.User) error

	// courses
	CreateCourses(courses []domain.Course) error
	GetCourse(id uint) (domain.Course, bool, error)
	HasCourse(id uint) (bool, error)
	ListCoursesByTeacher(teacherID uint) ([]domain.Course, error)

	// course members
	CreateMembers(members []domain.CourseMember) error
	GetMember(courseID, userID uint) (domain.CourseMember, bool, error)
	HasMember(courseID, userID uint) (bool, error)
	ListMembersByUser(userID uint) ([]domain.CourseMember, error)

	// course contents
	CreateContents(contents []domain.CourseContent) error
	GetContent(id uint) (domain.CourseContent, bool, error)
	HasContent(id uint) (bool, error)

	// comments
	CreateComments(comments []domain.Comment) error
	HasComment(id uint) (bool, error)

	// announcements
	CreateAnnouncements(announcements []domain.CourseAnnouncement) error
	CreateAnnouncement(a domain.CourseAnnouncement) (domain.CourseAnnouncement, error)
	GetAnnouncement(id uint) (domain.CourseAnnouncement, bool, error)
	HasAnnouncement(id uint) (bool, error)
	UpdateAnnouncement(a domain.CourseAnnouncement) error
	DeleteAnnouncement(id uint) error
	ListPublishedAnnouncements(courseID uint, now time.Time) ([]domain.CourseAnnouncement, error)

	// content completions
	CreateCompletions(completions []domain.ContentCompletion) error
	CreateCompletion(c domain.ContentCompletion) (domain.ContentCompletion, error)
	GetCompletion(id uint) (domain.ContentCompletion, bool, error)
	HasCompletion(studentID, contentID uint) (bool, error)
	DeleteCompletion(id uint) error
	ListCompletions(studentID, courseID uint) ([]domain.ContentCompletion, error)

	// course feedbacks
	CreateFeedbacks(feedbacks []domain.CourseFeedback) error
	SaveFeedback(f domain.CourseFeedback) (domain.CourseFeedback, error)
	GetFeedback(id uint) (domain.CourseFeedback, bool, error)
	HasFeedback(studentID, courseID uint) (bool, error)
	UpdateFeedback(f domain.CourseFeedback) error
	DeleteFeedback(id uint) error
	ListFeedbackByCourse(courseID uint) ([]domain.CourseFeedback, error)

	// content bookmarks
	CreateBookmarks(bookmarks []domain.ContentBookmark) error
	CreateBookmark(b domain.ContentBookmark) (domain.ContentBookmark, error)
	GetBookmark(id uint) (domain.ContentBookmark, bool, error)
	HasBookmark(studentID, contentID uint) (bool, error)
	DeleteBookmark(id uint) error
	ListBookmarksByStudent(studentID uint) ([]domain.ContentBookmark, error)

	// user profiles
	CreateProfiles(profiles []domain.UserProfile) error
	GetProfileByUser(userID uint) (domain.UserProfile, bool, error)
	HasProfileForUser(userID uint) (bool, error)
	HasProfile(id uint) (bool, error)
	SaveProfile(p domain.UserProfile) (domain.UserProfile, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID uint) (string, error)
	GetUserIDByToken(token string) (uint, bool, error)
	DeleteSession(token string) error
}
