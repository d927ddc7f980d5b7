package store

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"simplelms/pkg/domain"
)

const createBatchSize = 200

// GormStore implements Store using GORM over Postgres or SQLite.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations. DSNs starting with
// "postgres://" or "postgresql://" use the Postgres driver; anything else is
// treated as a SQLite path.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&UserModel{},
		&CourseModel{},
		&CourseMemberModel{},
		&CourseContentModel{},
		&CommentModel{},
		&CourseAnnouncementModel{},
		&ContentCompletionModel{},
		&CourseFeedbackModel{},
		&ContentBookmarkModel{},
		&UserProfileModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// --- users ---

func (s *GormStore) CreateUsers(users []domain.User) error {
	if len(users) == 0 {
		return nil
	}
	models := make([]UserModel, 0, len(users))
	for _, u := range users {
		models = append(models, userToModel(u))
	}
	return s.db.CreateInBatches(&models, createBatchSize).Error
}

func (s *GormStore) HasUsername(username string) (bool, error) {
	return s.exists(&UserModel{}, "username = ?", username)
}

func (s *GormStore) GetUserByUsername(username string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("username = ?", username).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) GetUser(id uint) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) HasUser(id uint) (bool, error) {
	return s.exists(&UserModel{}, "id = ?", id)
}

func (s *GormStore) UpdateUser(u domain.User) error {
	return s.db.Model(&UserModel{}).Where("id = ?", u.ID).Updates(map[string]any{
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"updated_at": time.Now().UTC(),
	}).Error
}

// --- courses ---

func (s *GormStore) CreateCourses(courses []domain.Course) error {
	if len(courses) == 0 {
		return nil
	}
	models := make([]CourseModel, 0, len(courses))
	for _, c := range courses {
		models = append(models, courseToModel(c))
	}
	return s.db.CreateInBatches(&models, createBatchSize).Error
}

func (s *GormStore) GetCourse(id uint) (domain.Course, bool, error) {
	var model CourseModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Course{}, false, nil
		}
		return domain.Course{}, false, err
	}
	return courseFromModel(model), true, nil
}

func (s *GormStore) HasCourse(id uint) (bool, error) {
	return s.exists(&CourseModel{}, "id = ?", id)
}

func (s *GormStore) ListCoursesByTeacher(teacherID uint) ([]domain.Course, error) {
	var models []CourseModel
	if err := s.db.Where("teacher_id = ?", teacherID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Course, 0, len(models))
	for _, m := range models {
		res = append(res, courseFromModel(m))
	}
	return res, nil
}

// --- course members ---

func (s *GormStore) CreateMembers(members []domain.CourseMember) error {
	if len(members) == 0 {
		return nil
	}
	models := make([]CourseMemberModel, 0, len(members))
	for _, m := range members {
		models = append(models, memberToModel(m))
	}
	return s.db.CreateInBatches(&models, createBatchSize).Error
}

func (s *GormStore) GetMember(courseID, userID uint) (domain.CourseMember, bool, error) {
	var model CourseMemberModel
	if err := s.db.Where("course_id = ? AND user_id = ?", courseID, userID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.CourseMember{}, false, nil
		}
		return domain.CourseMember{}, false, err
	}
	return memberFromModel(model), true, nil
}

func (s *GormStore) HasMember(courseID, userID uint) (bool, error) {
	return s.exists(&CourseMemberModel{}, "course_id = ? AND user_id = ?", courseID, userID)
}

func (s *GormStore) ListMembersByUser(userID uint) ([]domain.CourseMember, error) {
	var models []CourseMemberModel
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.CourseMember, 0, len(models))
	for _, m := range models {
		res = append(res, memberFromModel(m))
	}
	return res, nil
}

// --- course contents ---

func (s *GormStore) CreateContents(contents []domain.CourseContent) error {
	if len(contents) == 0 {
		return nil
	}
	models := make([]CourseContentModel, 0, len(contents))
	for _, c := range contents {
		models = append(models, contentToModel(c))
	}
	return s.db.CreateInBatches(&models, createBatchSize).Error
}

func (s *GormStore) GetContent(id uint) (domain.CourseContent, bool, error) {
	var model CourseContentModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.CourseContent{}, false, nil
		}
		return domain.CourseContent{}, false, err
	}
	return contentFromModel(model), true, nil
}

func (s *GormStore) HasContent(id uint) (bool, error) {
	return s.exists(&CourseContentModel{}, "id = ?", id)
}

// --- comments ---

func (s *GormStore) CreateComments(comments []domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	models := make([]CommentModel, 0, len(comments))
	for _, c := range comments {
		models = append(models, commentToModel(c))
	}
	return s.db.CreateInBatches(&models, createBatchSize).Error
}

func (s *GormStore) HasComment(id uint) (bool, error) {
	return s.exists(&CommentModel{}, "id = ?", id)
}

// --- announcements ---

func (s *GormStore) CreateAnnouncements(announcements []domain.CourseAnnouncement) error {
	if len(announcements) == 0 {
		return nil
	}
	models := make([]CourseAnnouncementModel, 0, len(announcements))
	for _, a := range announcements {
		models = append(models, announcementToModel(a))
	}
	return s.db.CreateInBatches(&models, createBatchSize).Error
}

func (s *GormStore) CreateAnnouncement(a domain.CourseAnnouncement) (domain.CourseAnnouncement, error) {
	model := announcementToModel(a)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.CourseAnnouncement{}, err
	}
	return announcementFromModel(model), nil
}

func (s *GormStore) GetAnnouncement(id uint) (domain.CourseAnnouncement, bool, error) {
	var model CourseAnnouncementModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.CourseAnnouncement{}, false, nil
		}
		return domain.CourseAnnouncement{}, false, err
	}
	return announcementFromModel(model), true, nil
}

func (s *GormStore) HasAnnouncement(id uint) (bool, error) {
	return s.exists(&CourseAnnouncementModel{}, "id = ?", id)
}

func (s *GormStore) UpdateAnnouncement(a domain.CourseAnnouncement) error {
	return s.db.Model(&CourseAnnouncementModel{}).Where("id = ?", a.ID).Updates(map[string]any{
		"title":        a.Title,
		"content":      a.Content,
		"publish_date": a.PublishDate,
		"is_active":    a.IsActive,
		"updated_at":   time.Now().UTC(),
	}).Error
}

func (s *GormStore) DeleteAnnouncement(id uint) error {
	return s.db.Delete(&CourseAnnouncementModel{}, "id = ?", id).Error
}

func (s *GormStore) ListPublishedAnnouncements(courseID uint, now time.Time) ([]domain.CourseAnnouncement, error) {
	var models []CourseAnnouncementModel
	if err := s.db.Where("course_id = ? AND is_active = ? AND publish_date <= ?", courseID, true, now).
		Order("publish_date DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.CourseAnnouncement, 0, len(models))
	for _, m := range models {
		res = append(res, announcementFromModel(m))
	}
	return res, nil
}

// --- content completions ---

func (s *GormStore) CreateCompletions(completions []domain.ContentCompletion) error {
	if len(completions) == 0 {
		return nil
	}
	models := make([]ContentCompletionModel, 0, len(completions))
	for _, c := range completions {
		models = append(models, completionToModel(c))
	}
	return s.db.CreateInBatches(&models, createBatchSize).Error
}

func (s *GormStore) CreateCompletion(c domain.ContentCompletion) (domain.ContentCompletion, error) {
	model := completionToModel(c)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.ContentCompletion{}, err
	}
	return completionFromModel(model), nil
}

func (s *GormStore) GetCompletion(id uint) (domain.ContentCompletion, bool, error) {
	var model ContentCompletionModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ContentCompletion{}, false, nil
		}
		return domain.ContentCompletion{}, false, err
	}
	return completionFromModel(model), true, nil
}

func (s *GormStore) HasCompletion(studentID, contentID uint) (bool, error) {
	return s.exists(&ContentCompletionModel{}, "student_id = ? AND content_id = ?", studentID, contentID)
}

func (s *GormStore) DeleteCompletion(id uint) error {
	return s.db.Delete(&ContentCompletionModel{}, "id = ?", id).Error
}

func (s *GormStore) ListCompletions(studentID, courseID uint) ([]domain.ContentCompletion, error) {
	var models []ContentCompletionModel
	if err := s.db.
		Joins("JOIN course_content_models ON course_content_models.id = content_completion_models.content_id").
		Where("content_completion_models.student_id = ? AND course_content_models.course_id = ?", studentID, courseID).
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.ContentCompletion, 0, len(models))
	for _, m := range models {
		res = append(res, completionFromModel(m))
	}
	return res, nil
}

// --- course feedbacks ---

func (s *GormStore) CreateFeedbacks(feedbacks []domain.CourseFeedback) error {
	if len(feedbacks) == 0 {
		return nil
	}
	models := make([]CourseFeedbackModel, 0, len(feedbacks))
	for _, f := range feedbacks {
		models = append(models, feedbackToModel(f))
	}
	return s.db.CreateInBatches(&models, createBatchSize).Error
}

// SaveFeedback upserts on the (course, student) uniqueness key: one
// feedback per student per course.
func (s *GormStore) SaveFeedback(f domain.CourseFeedback) (domain.CourseFeedback, error) {
	model := feedbackToModel(f)
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "feedback_text", "updated_at"}),
	}).Create(&model).Error; err != nil {
		return domain.CourseFeedback{}, err
	}
	saved, ok, err := s.getFeedbackByKey(f.StudentID, f.CourseID)
	if err != nil {
		return domain.CourseFeedback{}, err
	}
	if !ok {
		return feedbackFromModel(model), nil
	}
	return saved, nil
}

func (s *GormStore) GetFeedback(id uint) (domain.CourseFeedback, bool, error) {
	var model CourseFeedbackModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.CourseFeedback{}, false, nil
		}
		return domain.CourseFeedback{}, false, err
	}
	return feedbackFromModel(model), true, nil
}

func (s *GormStore) getFeedbackByKey(studentID, courseID uint) (domain.CourseFeedback, bool, error) {
	var model CourseFeedbackModel
	if err := s.db.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.CourseFeedback{}, false, nil
		}
		return domain.CourseFeedback{}, false, err
	}
	return feedbackFromModel(model), true, nil
}

func (s *GormStore) HasFeedback(studentID, courseID uint) (bool, error) {
	return s.exists(&CourseFeedbackModel{}, "student_id = ? AND course_id = ?", studentID, courseID)
}

func (s *GormStore) UpdateFeedback(f domain.CourseFeedback) error {
	return s.db.Model(&CourseFeedbackModel{}).Where("id = ?", f.ID).Updates(map[string]any{
		"rating":        f.Rating,
		"feedback_text": f.FeedbackText,
		"updated_at":    time.Now().UTC(),
	}).Error
}

func (s *GormStore) DeleteFeedback(id uint) error {
	return s.db.Delete(&CourseFeedbackModel{}, "id = ?", id).Error
}

func (s *GormStore) ListFeedbackByCourse(courseID uint) ([]domain.CourseFeedback, error) {
	var models []CourseFeedbackModel
	if err := s.db.Where("course_id = ?", courseID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.CourseFeedback, 0, len(models))
	for _, m := range models {
		res = append(res, feedbackFromModel(m))
	}
	return res, nil
}

// --- content bookmarks ---

func (s *GormStore) CreateBookmarks(bookmarks []domain.ContentBookmark) error {
	if len(bookmarks) == 0 {
		return nil
	}
	models := make([]ContentBookmarkModel, 0, len(bookmarks))
	for _, b := range bookmarks {
		models = append(models, bookmarkToModel(b))
	}
	return s.db.CreateInBatches(&models, createBatchSize).Error
}

func (s *GormStore) CreateBookmark(b domain.ContentBookmark) (domain.ContentBookmark, error) {
	model := bookmarkToModel(b)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.ContentBookmark{}, err
	}
	return bookmarkFromModel(model), nil
}

func (s *GormStore) GetBookmark(id uint) (domain.ContentBookmark, bool, error) {
	var model ContentBookmarkModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ContentBookmark{}, false, nil
		}
		return domain.ContentBookmark{}, false, err
	}
	return bookmarkFromModel(model), true, nil
}

func (s *GormStore) HasBookmark(studentID, contentID uint) (bool, error) {
	return s.exists(&ContentBookmarkModel{}, "student_id = ? AND content_id = ?", studentID, contentID)
}

func (s *GormStore) DeleteBookmark(id uint) error {
	return s.db.Delete(&ContentBookmarkModel{}, "id = ?", id).Error
}

func (s *GormStore) ListBookmarksByStudent(studentID uint) ([]domain.ContentBookmark, error) {
	var models []ContentBookmarkModel
	if err := s.db.Where("student_id = ?", studentID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.ContentBookmark, 0, len(models))
	for _, m := range models {
		res = append(res, bookmarkFromModel(m))
	}
	return res, nil
}

// --- user profiles ---

func (s *GormStore) CreateProfiles(profiles []domain.UserProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	models := make([]UserProfileModel, 0, len(profiles))
	for _, p := range profiles {
		models = append(models, profileToModel(p))
	}
	return s.db.CreateInBatches(&models, createBatchSize).Error
}

func (s *GormStore) GetProfileByUser(userID uint) (domain.UserProfile, bool, error) {
	var model UserProfileModel
	if err := s.db.Where("user_id = ?", userID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.UserProfile{}, false, nil
		}
		return domain.UserProfile{}, false, err
	}
	return profileFromModel(model), true, nil
}

func (s *GormStore) HasProfileForUser(userID uint) (bool, error) {
	return s.exists(&UserProfileModel{}, "user_id = ?", userID)
}

func (s *GormStore) HasProfile(id uint) (bool, error) {
	return s.exists(&UserProfileModel{}, "id = ?", id)
}

// SaveProfile upserts on the owning user: profiles are one-to-one with users.
func (s *GormStore) SaveProfile(p domain.UserProfile) (domain.UserProfile, error) {
	model := profileToModel(p)
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"phone", "description", "picture_key", "updated_at"}),
	}).Create(&model).Error; err != nil {
		return domain.UserProfile{}, err
	}
	saved, ok, err := s.GetProfileByUser(p.UserID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if !ok {
		return profileFromModel(model), nil
	}
	return saved, nil
}

func (s *GormStore) exists(model any, query string, args ...any) (bool, error) {
	var count int64
	if err := s.db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
