package app

import (
	"fmt"
	"strings"
	"time"

	"simplelms/pkg/auth"
	"simplelms/pkg/domain"
	"simplelms/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	SessionStrategy string
	SessionTTL      time.Duration
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	JWTLeeway       time.Duration
	Store           store.Store
	Sessions        store.SessionStore
}

// App is the core application service wiring together storage and course logic.
type App struct {
	store    store.Store
	sessions store.SessionStore
}

// New constructs the application with database storage and session management.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch cfg.SessionStrategy {
		case "", "memory":
			sessionStore = store.NewMemorySessionStore()
		case "redis":
			if strings.TrimSpace(cfg.RedisAddr) == "" {
				return nil, fmt.Errorf("redisAddr is required for redis session strategy")
			}
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		case "jwt":
			if cfg.JWTSecret == "" {
				return nil, fmt.Errorf("jwtSecret is required for jwt session strategy")
			}
			var revoker store.TokenRevoker = store.NewMemoryTokenRevoker()
			if strings.TrimSpace(cfg.RedisAddr) != "" {
				revoker = store.NewRedisTokenRevoker(cfg.RedisAddr, cfg.RedisPassword)
			}
			jwtStore, err := store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL, revoker, store.JWTOptions{
				Issuer:   cfg.JWTIssuer,
				Audience: cfg.JWTAudience,
				Leeway:   cfg.JWTLeeway,
			})
			if err != nil {
				return nil, fmt.Errorf("init jwt session store: %w", err)
			}
			sessionStore = jwtStore
		default:
			return nil, fmt.Errorf("unknown session strategy %q", cfg.SessionStrategy)
		}
	}

	return &App{
		store:    dataStore,
		sessions: sessionStore,
	}, nil
}

// Store exposes the underlying entity store for batch tooling.
func (a *App) Store() store.Store {
	return a.store
}

// Login validates credentials and issues a session token.
func (a *App) Login(username, password string) (domain.User, string, error) {
	username = strings.TrimSpace(username)
	user, ok, err := a.store.GetUserByUsername(username)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session token: %w", err)
	}
	return user, token, nil
}

// Logout invalidates a session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// UserFromToken resolves a user from a session token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUser(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// ProfileView aggregates a user's account, profile and course relations.
type ProfileView struct {
	User           domain.User           `json:"user"`
	Profile        domain.UserProfile    `json:"profile"`
	CoursesCreated []domain.Course       `json:"coursesCreated"`
	CoursesJoined  []domain.CourseMember `json:"coursesJoined"`
}

// Profile returns the public profile of a user. A missing profile row is
// created on first read so every user always has one.
func (a *App) Profile(userID uint) (ProfileView, error) {
	user, ok, err := a.store.GetUser(userID)
	if err != nil {
		return ProfileView{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return ProfileView{}, ErrNotFound
	}
	profile, ok, err := a.store.GetProfileByUser(userID)
	if err != nil {
		return ProfileView{}, fmt.Errorf("fetch profile: %w", err)
	}
	if !ok {
		profile, err = a.store.SaveProfile(domain.UserProfile{UserID: userID})
		if err != nil {
			return ProfileView{}, fmt.Errorf("create profile: %w", err)
		}
	}
	created, err := a.store.ListCoursesByTeacher(userID)
	if err != nil {
		return ProfileView{}, fmt.Errorf("list courses: %w", err)
	}
	joined, err := a.store.ListMembersByUser(userID)
	if err != nil {
		return ProfileView{}, fmt.Errorf("list memberships: %w", err)
	}
	return ProfileView{
		User:           user,
		Profile:        profile,
		CoursesCreated: created,
		CoursesJoined:  joined,
	}, nil
}

// ProfileUpdate carries partial profile changes; nil fields are left as-is.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	Description *string
	PictureKey  string
}

// UpdateProfile applies partial updates to the user's account and profile.
func (a *App) UpdateProfile(user domain.User, in ProfileUpdate) error {
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if err := a.store.UpdateUser(user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	profile, ok, err := a.store.GetProfileByUser(user.ID)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	if !ok {
		profile = domain.UserProfile{UserID: user.ID}
	}
	if in.Phone != nil {
		profile.Phone = *in.Phone
	}
	if in.Description != nil {
		profile.Description = *in.Description
	}
	if in.PictureKey != "" {
		profile.PictureKey = in.PictureKey
	}
	if _, err := a.store.SaveProfile(profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// AnnouncementInput carries the fields for a new announcement.
type AnnouncementInput struct {
	Title       string
	Content     string
	PublishDate time.Time
	IsActive    bool
}

// CreateAnnouncement publishes a course announcement. Only the course
// teacher may create one.
func (a *App) CreateAnnouncement(user domain.User, courseID uint, in AnnouncementInput) (domain.CourseAnnouncement, error) {
	course, ok, err := a.store.GetCourse(courseID)
	if err != nil {
		return domain.CourseAnnouncement{}, fmt.Errorf("fetch course: %w", err)
	}
	if !ok {
		return domain.CourseAnnouncement{}, ErrNotFound
	}
	if course.TeacherID != user.ID {
		return domain.CourseAnnouncement{}, ErrNotCourseTeacher
	}
	now := time.Now().UTC()
	announcement, err := a.store.CreateAnnouncement(domain.CourseAnnouncement{
		CourseID:    course.ID,
		TeacherID:   user.ID,
		Title:       in.Title,
		Content:     in.Content,
		PublishDate: in.PublishDate,
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.CourseAnnouncement{}, fmt.Errorf("create announcement: %w", err)
	}
	return announcement, nil
}

// ListAnnouncements returns a course's active, already-published
// announcements, newest first. Requires teacher or member access.
func (a *App) ListAnnouncements(user domain.User, courseID uint) ([]domain.CourseAnnouncement, error) {
	if err := a.requireCourseAccess(user, courseID); err != nil {
		return nil, err
	}
	announcements, err := a.store.ListPublishedAnnouncements(courseID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}

// AnnouncementUpdate carries partial announcement changes.
type AnnouncementUpdate struct {
	Title       *string
	Content     *string
	PublishDate *time.Time
	IsActive    *bool
}

// UpdateAnnouncement edits an announcement. Only its author may do so.
func (a *App) UpdateAnnouncement(user domain.User, announcementID uint, in AnnouncementUpdate) (domain.CourseAnnouncement, error) {
	announcement, ok, err := a.store.GetAnnouncement(announcementID)
	if err != nil {
		return domain.CourseAnnouncement{}, fmt.Errorf("fetch announcement: %w", err)
	}
	if !ok {
		return domain.CourseAnnouncement{}, ErrNotFound
	}
	if announcement.TeacherID != user.ID {
		return domain.CourseAnnouncement{}, ErrNotAnnouncementOwner
	}
	if in.Title != nil {
		announcement.Title = *in.Title
	}
	if in.Content != nil {
		announcement.Content = *in.Content
	}
	if in.PublishDate != nil {
		announcement.PublishDate = *in.PublishDate
	}
	if in.IsActive != nil {
		announcement.IsActive = *in.IsActive
	}
	if err := a.store.UpdateAnnouncement(announcement); err != nil {
		return domain.CourseAnnouncement{}, fmt.Errorf("update announcement: %w", err)
	}
	updated, _, err := a.store.GetAnnouncement(announcementID)
	if err != nil {
		return domain.CourseAnnouncement{}, fmt.Errorf("fetch announcement: %w", err)
	}
	return updated, nil
}

// DeleteAnnouncement removes an announcement. Only its author may do so.
func (a *App) DeleteAnnouncement(user domain.User, announcementID uint) error {
	announcement, ok, err := a.store.GetAnnouncement(announcementID)
	if err != nil {
		return fmt.Errorf("fetch announcement: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	if announcement.TeacherID != user.ID {
		return ErrNotAnnouncementOwner
	}
	return a.store.DeleteAnnouncement(announcementID)
}

// AddCompletion marks a content as completed by the user. The user must be
// a member of the owning course, and each content completes at most once.
func (a *App) AddCompletion(user domain.User, contentID uint) (domain.ContentCompletion, error) {
	content, ok, err := a.store.GetContent(contentID)
	if err != nil {
		return domain.ContentCompletion{}, fmt.Errorf("fetch content: %w", err)
	}
	if !ok {
		return domain.ContentCompletion{}, ErrNotFound
	}
	if err := a.requireMembership(user, content.CourseID); err != nil {
		return domain.ContentCompletion{}, err
	}
	exists, err := a.store.HasCompletion(user.ID, contentID)
	if err != nil {
		return domain.ContentCompletion{}, fmt.Errorf("check completion: %w", err)
	}
	if exists {
		return domain.ContentCompletion{}, ErrAlreadyCompleted
	}
	completion, err := a.store.CreateCompletion(domain.ContentCompletion{
		StudentID:   user.ID,
		ContentID:   contentID,
		CompletedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.ContentCompletion{}, fmt.Errorf("create completion: %w", err)
	}
	return completion, nil
}

// ListCompletions returns the user's completions within a course.
func (a *App) ListCompletions(user domain.User, courseID uint) ([]domain.ContentCompletion, error) {
	if _, ok, err := a.store.GetCourse(courseID); err != nil {
		return nil, fmt.Errorf("fetch course: %w", err)
	} else if !ok {
		return nil, ErrNotFound
	}
	if err := a.requireMembership(user, courseID); err != nil {
		return nil, err
	}
	completions, err := a.store.ListCompletions(user.ID, courseID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return completions, nil
}

// DeleteCompletion removes a completion owned by the user.
func (a *App) DeleteCompletion(user domain.User, completionID uint) error {
	completion, ok, err := a.store.GetCompletion(completionID)
	if err != nil {
		return fmt.Errorf("fetch completion: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	if completion.StudentID != user.ID {
		return ErrNotCompletionOwner
	}
	return a.store.DeleteCompletion(completionID)
}

// SaveFeedback creates or replaces the user's feedback for a course. A
// member leaves at most one feedback per course.
func (a *App) SaveFeedback(user domain.User, courseID uint, rating int, text string) (domain.CourseFeedback, error) {
	if rating < 1 || rating > 5 {
		return domain.CourseFeedback{}, ErrInvalidRating
	}
	if _, ok, err := a.store.GetCourse(courseID); err != nil {
		return domain.CourseFeedback{}, fmt.Errorf("fetch course: %w", err)
	} else if !ok {
		return domain.CourseFeedback{}, ErrNotFound
	}
	if err := a.requireMembership(user, courseID); err != nil {
		return domain.CourseFeedback{}, err
	}
	now := time.Now().UTC()
	feedback, err := a.store.SaveFeedback(domain.CourseFeedback{
		CourseID:     courseID,
		StudentID:    user.ID,
		Rating:       rating,
		FeedbackText: text,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return domain.CourseFeedback{}, fmt.Errorf("save feedback: %w", err)
	}
	return feedback, nil
}

// ListFeedback returns all feedback for a course. Requires teacher or
// member access.
func (a *App) ListFeedback(user domain.User, courseID uint) ([]domain.CourseFeedback, error) {
	if err := a.requireCourseAccess(user, courseID); err != nil {
		return nil, err
	}
	feedback, err := a.store.ListFeedbackByCourse(courseID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return feedback, nil
}

// FeedbackUpdate carries partial feedback changes.
type FeedbackUpdate struct {
	Rating       *int
	FeedbackText *string
}

// UpdateFeedback edits feedback owned by the user.
func (a *App) UpdateFeedback(user domain.User, feedbackID uint, in FeedbackUpdate) (domain.CourseFeedback, error) {
	feedback, ok, err := a.store.GetFeedback(feedbackID)
	if err != nil {
		return domain.CourseFeedback{}, fmt.Errorf("fetch feedback: %w", err)
	}
	if !ok {
		return domain.CourseFeedback{}, ErrNotFound
	}
	if feedback.StudentID != user.ID {
		return domain.CourseFeedback{}, ErrNotFeedbackOwner
	}
	if in.Rating != nil {
		if *in.Rating < 1 || *in.Rating > 5 {
			return domain.CourseFeedback{}, ErrInvalidRating
		}
		feedback.Rating = *in.Rating
	}
	if in.FeedbackText != nil {
		feedback.FeedbackText = *in.FeedbackText
	}
	if err := a.store.UpdateFeedback(feedback); err != nil {
		return domain.CourseFeedback{}, fmt.Errorf("update feedback: %w", err)
	}
	updated, _, err := a.store.GetFeedback(feedbackID)
	if err != nil {
		return domain.CourseFeedback{}, fmt.Errorf("fetch feedback: %w", err)
	}
	return updated, nil
}

// DeleteFeedback removes feedback owned by the user.
func (a *App) DeleteFeedback(user domain.User, feedbackID uint) error {
	feedback, ok, err := a.store.GetFeedback(feedbackID)
	if err != nil {
		return fmt.Errorf("fetch feedback: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	if feedback.StudentID != user.ID {
		return ErrNotFeedbackOwner
	}
	return a.store.DeleteFeedback(feedbackID)
}

// AddBookmark bookmarks a content for the user. The user must be a member
// of the owning course, and each content bookmarks at most once.
func (a *App) AddBookmark(user domain.User, contentID uint) (domain.ContentBookmark, error) {
	content, ok, err := a.store.GetContent(contentID)
	if err != nil {
		return domain.ContentBookmark{}, fmt.Errorf("fetch content: %w", err)
	}
	if !ok {
		return domain.ContentBookmark{}, ErrNotFound
	}
	if err := a.requireMembership(user, content.CourseID); err != nil {
		return domain.ContentBookmark{}, err
	}
	exists, err := a.store.HasBookmark(user.ID, contentID)
	if err != nil {
		return domain.ContentBookmark{}, fmt.Errorf("check bookmark: %w", err)
	}
	if exists {
		return domain.ContentBookmark{}, ErrAlreadyBookmarked
	}
	bookmark, err := a.store.CreateBookmark(domain.ContentBookmark{
		StudentID: user.ID,
		ContentID: contentID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.ContentBookmark{}, fmt.Errorf("create bookmark: %w", err)
	}
	return bookmark, nil
}

// ListBookmarks returns all of the user's bookmarks.
func (a *App) ListBookmarks(user domain.User) ([]domain.ContentBookmark, error) {
	bookmarks, err := a.store.ListBookmarksByStudent(user.ID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return bookmarks, nil
}

// DeleteBookmark removes a bookmark owned by the user.
func (a *App) DeleteBookmark(user domain.User, bookmarkID uint) error {
	bookmark, ok, err := a.store.GetBookmark(bookmarkID)
	if err != nil {
		return fmt.Errorf("fetch bookmark: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	if bookmark.StudentID != user.ID {
		return ErrNotBookmarkOwner
	}
	return a.store.DeleteBookmark(bookmarkID)
}

// requireCourseAccess allows the course teacher and enrolled members.
func (a *App) requireCourseAccess(user domain.User, courseID uint) error {
	course, ok, err := a.store.GetCourse(courseID)
	if err != nil {
		return fmt.Errorf("fetch course: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	if course.TeacherID == user.ID {
		return nil
	}
	member, err := a.store.HasMember(courseID, user.ID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !member {
		return ErrNoCourseAccess
	}
	return nil
}

// requireMembership allows enrolled members only.
func (a *App) requireMembership(user domain.User, courseID uint) error {
	member, err := a.store.HasMember(courseID, user.ID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !member {
		return ErrNotCourseMember
	}
	return nil
}
