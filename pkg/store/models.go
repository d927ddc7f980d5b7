package store

import "time"

// GORM models used for persistence. Primary keys are auto-increment
// integers; the fixture importer pre-assigns pks for some entity types.
type UserModel struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;size:150;not null"`
	PasswordHash string    `gorm:"not null"`
	Email        string
	FirstName    string
	LastName     string
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type CourseModel struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text"`
	Price       int       `gorm:"not null"`
	ImageKey    string
	TeacherID   uint      `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time
}

type CourseMemberModel struct {
	ID        uint      `gorm:"primaryKey"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_course_user"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_course_user"`
	Roles     string    `gorm:"size:3;not null;default:std"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

type CourseContentModel struct {
	ID          uint      `gorm:"primaryKey"`
	CourseID    uint      `gorm:"not null;index"`
	Name        string    `gorm:"size:200;not null"`
	Description string    `gorm:"type:text"`
	VideoURL    string    `gorm:"size:500"`
	ParentID    *uint     `gorm:"index"`
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time
}

type CommentModel struct {
	ID        uint      `gorm:"primaryKey"`
	ContentID uint      `gorm:"not null;index"`
	MemberID  uint      `gorm:"not null;index"`
	Comment   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

type CourseAnnouncementModel struct {
	ID          uint      `gorm:"primaryKey"`
	CourseID    uint      `gorm:"not null;index"`
	TeacherID   uint      `gorm:"not null;index"`
	Title       string    `gorm:"size:255;not null"`
	Content     string    `gorm:"type:text;not null"`
	PublishDate time.Time `gorm:"not null;index"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time
}

type ContentCompletionModel struct {
	ID          uint      `gorm:"primaryKey"`
	StudentID   uint      `gorm:"not null;uniqueIndex:idx_student_content_completion"`
	ContentID   uint      `gorm:"not null;uniqueIndex:idx_student_content_completion"`
	CompletedAt time.Time
}

type CourseFeedbackModel struct {
	ID           uint      `gorm:"primaryKey"`
	CourseID     uint      `gorm:"not null;uniqueIndex:idx_course_student_feedback"`
	StudentID    uint      `gorm:"not null;uniqueIndex:idx_course_student_feedback"`
	Rating       int       `gorm:"not null"`
	FeedbackText string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type ContentBookmarkModel struct {
	ID        uint      `gorm:"primaryKey"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_student_content_bookmark"`
	ContentID uint      `gorm:"not null;uniqueIndex:idx_student_content_bookmark"`
	CreatedAt time.Time
}

type UserProfileModel struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;uniqueIndex"`
	Phone       string    `gorm:"size:15"`
	Description string    `gorm:"type:text"`
	PictureKey  string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time
}
