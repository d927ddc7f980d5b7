package domain

import "time"

// MemberRole is the role of a user inside a course.
type MemberRole string

const (
	RoleStudent   MemberRole = "std"
	RoleAssistant MemberRole = "ast"
)

type User struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Course struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	ImageKey    string    `json:"-"`
	TeacherID   uint      `json:"teacherId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CourseMember struct {
	ID        uint       `json:"id"`
	CourseID  uint       `json:"courseId"`
	UserID    uint       `json:"userId"`
	Roles     MemberRole `json:"roles"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type CourseContent struct {
	ID          uint      `json:"id"`
	CourseID    uint      `json:"courseId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	ParentID    *uint     `json:"parentId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Comment belongs to a course member, not directly to a user: the author
// must be registered in the course that owns the content.
type Comment struct {
	ID        uint      `json:"id"`
	ContentID uint      `json:"contentId"`
	MemberID  uint      `json:"memberId"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CourseAnnouncement struct {
	ID          uint      `json:"id"`
	CourseID    uint      `json:"courseId"`
	TeacherID   uint      `json:"teacherId"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PublishDate time.Time `json:"publishDate"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ContentCompletion struct {
	ID          uint      `json:"id"`
	StudentID   uint      `json:"studentId"`
	ContentID   uint      `json:"contentId"`
	CompletedAt time.Time `json:"completedAt"`
}

type CourseFeedback struct {
	ID           uint      `json:"id"`
	CourseID     uint      `json:"courseId"`
	StudentID    uint      `json:"studentId"`
	Rating       int       `json:"rating"`
	FeedbackText string    `json:"feedbackText"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ContentBookmark struct {
	ID        uint      `json:"id"`
	StudentID uint      `json:"studentId"`
	ContentID uint      `json:"contentId"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserProfile struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"userId"`
	Phone       string    `json:"phone,omitempty"`
	Description string    `json:"description,omitempty"`
	PictureKey  string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
