package store

import "simplelms/pkg/domain"

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func courseToModel(c domain.Course) CourseModel {
	return CourseModel{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Price:       c.Price,
		ImageKey:    c.ImageKey,
		TeacherID:   c.TeacherID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func courseFromModel(m CourseModel) domain.Course {
	return domain.Course{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		ImageKey:    m.ImageKey,
		TeacherID:   m.TeacherID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func memberToModel(m domain.CourseMember) CourseMemberModel {
	return CourseMemberModel{
		ID:        m.ID,
		CourseID:  m.CourseID,
		UserID:    m.UserID,
		Roles:     string(m.Roles),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func memberFromModel(m CourseMemberModel) domain.CourseMember {
	roles := domain.MemberRole(m.Roles)
	if roles == "" {
		roles = domain.RoleStudent
	}
	return domain.CourseMember{
		ID:        m.ID,
		CourseID:  m.CourseID,
		UserID:    m.UserID,
		Roles:     roles,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func contentToModel(c domain.CourseContent) CourseContentModel {
	return CourseContentModel{
		ID:          c.ID,
		CourseID:    c.CourseID,
		Name:        c.Name,
		Description: c.Description,
		VideoURL:    c.VideoURL,
		ParentID:    c.ParentID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func contentFromModel(m CourseContentModel) domain.CourseContent {
	return domain.CourseContent{
		ID:          m.ID,
		CourseID:    m.CourseID,
		Name:        m.Name,
		Description: m.Description,
		VideoURL:    m.VideoURL,
		ParentID:    m.ParentID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func commentToModel(c domain.Comment) CommentModel {
	return CommentModel{
		ID:        c.ID,
		ContentID: c.ContentID,
		MemberID:  c.MemberID,
		Comment:   c.Comment,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func announcementToModel(a domain.CourseAnnouncement) CourseAnnouncementModel {
	return CourseAnnouncementModel{
		ID:          a.ID,
		CourseID:    a.CourseID,
		TeacherID:   a.TeacherID,
		Title:       a.Title,
		Content:     a.Content,
		PublishDate: a.PublishDate,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func announcementFromModel(m CourseAnnouncementModel) domain.CourseAnnouncement {
	return domain.CourseAnnouncement{
		ID:          m.ID,
		CourseID:    m.CourseID,
		TeacherID:   m.TeacherID,
		Title:       m.Title,
		Content:     m.Content,
		PublishDate: m.PublishDate,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func completionToModel(c domain.ContentCompletion) ContentCompletionModel {
	return ContentCompletionModel{
		ID:          c.ID,
		StudentID:   c.StudentID,
		ContentID:   c.ContentID,
		CompletedAt: c.CompletedAt,
	}
}

func completionFromModel(m ContentCompletionModel) domain.ContentCompletion {
	return domain.ContentCompletion{
		ID:          m.ID,
		StudentID:   m.StudentID,
		ContentID:   m.ContentID,
		CompletedAt: m.CompletedAt,
	}
}

func feedbackToModel(f domain.CourseFeedback) CourseFeedbackModel {
	return CourseFeedbackModel{
		ID:           f.ID,
		CourseID:     f.CourseID,
		StudentID:    f.StudentID,
		Rating:       f.Rating,
		FeedbackText: f.FeedbackText,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func feedbackFromModel(m CourseFeedbackModel) domain.CourseFeedback {
	return domain.CourseFeedback{
		ID:           m.ID,
		CourseID:     m.CourseID,
		StudentID:    m.StudentID,
		Rating:       m.Rating,
		FeedbackText: m.FeedbackText,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func bookmarkToModel(b domain.ContentBookmark) ContentBookmarkModel {
	return ContentBookmarkModel{
		ID:        b.ID,
		StudentID: b.StudentID,
		ContentID: b.ContentID,
		CreatedAt: b.CreatedAt,
	}
}

func bookmarkFromModel(m ContentBookmarkModel) domain.ContentBookmark {
	return domain.ContentBookmark{
		ID:        m.ID,
		StudentID: m.StudentID,
		ContentID: m.ContentID,
		CreatedAt: m.CreatedAt,
	}
}

func profileToModel(p domain.UserProfile) UserProfileModel {
	return UserProfileModel{
		ID:          p.ID,
		UserID:      p.UserID,
		Phone:       p.Phone,
		Description: p.Description,
		PictureKey:  p.PictureKey,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func profileFromModel(m UserProfileModel) domain.UserProfile {
	return domain.UserProfile{
		ID:          m.ID,
		UserID:      m.UserID,
		Phone:       m.Phone,
		Description: m.Description,
		PictureKey:  m.PictureKey,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
