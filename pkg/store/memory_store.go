package store

import (
	"sort"
	"sync"
	"time"

	"simplelms/pkg/domain"
)

// MemoryStore keeps all entities in-process. It backs tests and lets the
// importer run against a store fake without a database.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[uint]domain.User
	usernames     map[string]uint
	courses       map[uint]domain.Course
	members       map[uint]domain.CourseMember
	contents      map[uint]domain.CourseContent
	comments      map[uint]domain.Comment
	announcements map[uint]domain.CourseAnnouncement
	completions   map[uint]domain.ContentCompletion
	feedbacks     map[uint]domain.CourseFeedback
	bookmarks     map[uint]domain.ContentBookmark
	profiles      map[uint]domain.UserProfile
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[uint]domain.User),
		usernames:     make(map[string]uint),
		courses:       make(map[uint]domain.Course),
		members:       make(map[uint]domain.CourseMember),
		contents:      make(map[uint]domain.CourseContent),
		comments:      make(map[uint]domain.Comment),
		announcements: make(map[uint]domain.CourseAnnouncement),
		completions:   make(map[uint]domain.ContentCompletion),
		feedbacks:     make(map[uint]domain.CourseFeedback),
		bookmarks:     make(map[uint]domain.ContentBookmark),
		profiles:      make(map[uint]domain.UserProfile),
	}
}

// nextID mimics an auto-increment column: one past the highest assigned pk.
func nextID[T any](m map[uint]T) uint {
	var max uint
	for id := range m {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func sortedIDs[T any](m map[uint]T) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// --- users ---

func (m *MemoryStore) CreateUsers(users []domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		if u.ID == 0 {
			u.ID = nextID(m.users)
		}
		m.users[u.ID] = u
		m.usernames[u.Username] = u.ID
	}
	return nil
}

func (m *MemoryStore) HasUsername(username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.usernames[username]
	return ok, nil
}

func (m *MemoryStore) GetUserByUsername(username string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.usernames[username]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

func (m *MemoryStore) GetUser(id uint) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) HasUser(id uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[id]
	return ok, nil
}

func (m *MemoryStore) UpdateUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[u.ID]
	if !ok {
		return nil
	}
	cur.Email = u.Email
	cur.FirstName = u.FirstName
	cur.LastName = u.LastName
	cur.UpdatedAt = time.Now().UTC()
	m.users[u.ID] = cur
	return nil
}

// --- courses ---

func (m *MemoryStore) CreateCourses(courses []domain.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range courses {
		if c.ID == 0 {
			c.ID = nextID(m.courses)
		}
		m.courses[c.ID] = c
	}
	return nil
}

func (m *MemoryStore) GetCourse(id uint) (domain.Course, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	return c, ok, nil
}

func (m *MemoryStore) HasCourse(id uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.courses[id]
	return ok, nil
}

func (m *MemoryStore) ListCoursesByTeacher(teacherID uint) ([]domain.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Course, 0)
	for _, id := range sortedIDs(m.courses) {
		if c := m.courses[id]; c.TeacherID == teacherID {
			res = append(res, c)
		}
	}
	return res, nil
}

// --- course members ---

func (m *MemoryStore) CreateMembers(members []domain.CourseMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cm := range members {
		if cm.ID == 0 {
			cm.ID = nextID(m.members)
		}
		m.members[cm.ID] = cm
	}
	return nil
}

func (m *MemoryStore) GetMember(courseID, userID uint) (domain.CourseMember, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range sortedIDs(m.members) {
		cm := m.members[id]
		if cm.CourseID == courseID && cm.UserID == userID {
			return cm, true, nil
		}
	}
	return domain.CourseMember{}, false, nil
}

func (m *MemoryStore) HasMember(courseID, userID uint) (bool, error) {
	_, ok, err := m.GetMember(courseID, userID)
	return ok, err
}

func (m *MemoryStore) ListMembersByUser(userID uint) ([]domain.CourseMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.CourseMember, 0)
	for _, id := range sortedIDs(m.members) {
		if cm := m.members[id]; cm.UserID == userID {
			res = append(res, cm)
		}
	}
	return res, nil
}

// --- course contents ---

func (m *MemoryStore) CreateContents(contents []domain.CourseContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range contents {
		if c.ID == 0 {
			c.ID = nextID(m.contents)
		}
		m.contents[c.ID] = c
	}
	return nil
}

func (m *MemoryStore) GetContent(id uint) (domain.CourseContent, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contents[id]
	return c, ok, nil
}

func (m *MemoryStore) HasContent(id uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.contents[id]
	return ok, nil
}

// --- comments ---

func (m *MemoryStore) CreateComments(comments []domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range comments {
		if c.ID == 0 {
			c.ID = nextID(m.comments)
		}
		m.comments[c.ID] = c
	}
	return nil
}

func (m *MemoryStore) HasComment(id uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.comments[id]
	return ok, nil
}

// --- announcements ---

func (m *MemoryStore) CreateAnnouncements(announcements []domain.CourseAnnouncement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range announcements {
		if a.ID == 0 {
			a.ID = nextID(m.announcements)
		}
		m.announcements[a.ID] = a
	}
	return nil
}

func (m *MemoryStore) CreateAnnouncement(a domain.CourseAnnouncement) (domain.CourseAnnouncement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == 0 {
		a.ID = nextID(m.announcements)
	}
	m.announcements[a.ID] = a
	return a, nil
}

func (m *MemoryStore) GetAnnouncement(id uint) (domain.CourseAnnouncement, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.announcements[id]
	return a, ok, nil
}

func (m *MemoryStore) HasAnnouncement(id uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.announcements[id]
	return ok, nil
}

func (m *MemoryStore) UpdateAnnouncement(a domain.CourseAnnouncement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.announcements[a.ID]
	if !ok {
		return nil
	}
	cur.Title = a.Title
	cur.Content = a.Content
	cur.PublishDate = a.PublishDate
	cur.IsActive = a.IsActive
	cur.UpdatedAt = time.Now().UTC()
	m.announcements[a.ID] = cur
	return nil
}

func (m *MemoryStore) DeleteAnnouncement(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.announcements, id)
	return nil
}

func (m *MemoryStore) ListPublishedAnnouncements(courseID uint, now time.Time) ([]domain.CourseAnnouncement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.CourseAnnouncement, 0)
	for _, id := range sortedIDs(m.announcements) {
		a := m.announcements[id]
		if a.CourseID == courseID && a.IsActive && !a.PublishDate.After(now) {
			res = append(res, a)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].PublishDate.After(res[j].PublishDate) })
	return res, nil
}

// --- content completions ---

func (m *MemoryStore) CreateCompletions(completions []domain.ContentCompletion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range completions {
		if c.ID == 0 {
			c.ID = nextID(m.completions)
		}
		m.completions[c.ID] = c
	}
	return nil
}

func (m *MemoryStore) CreateCompletion(c domain.ContentCompletion) (domain.ContentCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		c.ID = nextID(m.completions)
	}
	m.completions[c.ID] = c
	return c, nil
}

func (m *MemoryStore) GetCompletion(id uint) (domain.ContentCompletion, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.completions[id]
	return c, ok, nil
}

func (m *MemoryStore) HasCompletion(studentID, contentID uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.completions {
		if c.StudentID == studentID && c.ContentID == contentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) DeleteCompletion(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.completions, id)
	return nil
}

func (m *MemoryStore) ListCompletions(studentID, courseID uint) ([]domain.ContentCompletion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.ContentCompletion, 0)
	for _, id := range sortedIDs(m.completions) {
		c := m.completions[id]
		if c.StudentID != studentID {
			continue
		}
		if content, ok := m.contents[c.ContentID]; ok && content.CourseID == courseID {
			res = append(res, c)
		}
	}
	return res, nil
}

// --- course feedbacks ---

func (m *MemoryStore) CreateFeedbacks(feedbacks []domain.CourseFeedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range feedbacks {
		if f.ID == 0 {
			f.ID = nextID(m.feedbacks)
		}
		m.feedbacks[f.ID] = f
	}
	return nil
}

func (m *MemoryStore) SaveFeedback(f domain.CourseFeedback) (domain.CourseFeedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, cur := range m.feedbacks {
		if cur.StudentID == f.StudentID && cur.CourseID == f.CourseID {
			cur.Rating = f.Rating
			cur.FeedbackText = f.FeedbackText
			cur.UpdatedAt = time.Now().UTC()
			m.feedbacks[id] = cur
			return cur, nil
		}
	}
	if f.ID == 0 {
		f.ID = nextID(m.feedbacks)
	}
	m.feedbacks[f.ID] = f
	return f, nil
}

func (m *MemoryStore) GetFeedback(id uint) (domain.CourseFeedback, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.feedbacks[id]
	return f, ok, nil
}

func (m *MemoryStore) HasFeedback(studentID, courseID uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.feedbacks {
		if f.StudentID == studentID && f.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) UpdateFeedback(f domain.CourseFeedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.feedbacks[f.ID]
	if !ok {
		return nil
	}
	cur.Rating = f.Rating
	cur.FeedbackText = f.FeedbackText
	cur.UpdatedAt = time.Now().UTC()
	m.feedbacks[f.ID] = cur
	return nil
}

func (m *MemoryStore) DeleteFeedback(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.feedbacks, id)
	return nil
}

func (m *MemoryStore) ListFeedbackByCourse(courseID uint) ([]domain.CourseFeedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.CourseFeedback, 0)
	for _, id := range sortedIDs(m.feedbacks) {
		if f := m.feedbacks[id]; f.CourseID == courseID {
			res = append(res, f)
		}
	}
	return res, nil
}

// --- content bookmarks ---

func (m *MemoryStore) CreateBookmarks(bookmarks []domain.ContentBookmark) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range bookmarks {
		if b.ID == 0 {
			b.ID = nextID(m.bookmarks)
		}
		m.bookmarks[b.ID] = b
	}
	return nil
}

func (m *MemoryStore) CreateBookmark(b domain.ContentBookmark) (domain.ContentBookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == 0 {
		b.ID = nextID(m.bookmarks)
	}
	m.bookmarks[b.ID] = b
	return b, nil
}

func (m *MemoryStore) GetBookmark(id uint) (domain.ContentBookmark, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookmarks[id]
	return b, ok, nil
}

func (m *MemoryStore) HasBookmark(studentID, contentID uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookmarks {
		if b.StudentID == studentID && b.ContentID == contentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) DeleteBookmark(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bookmarks, id)
	return nil
}

func (m *MemoryStore) ListBookmarksByStudent(studentID uint) ([]domain.ContentBookmark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.ContentBookmark, 0)
	for _, id := range sortedIDs(m.bookmarks) {
		if b := m.bookmarks[id]; b.StudentID == studentID {
			res = append(res, b)
		}
	}
	return res, nil
}

// --- user profiles ---

func (m *MemoryStore) CreateProfiles(profiles []domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range profiles {
		if p.ID == 0 {
			p.ID = nextID(m.profiles)
		}
		m.profiles[p.ID] = p
	}
	return nil
}

func (m *MemoryStore) GetProfileByUser(userID uint) (domain.UserProfile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range sortedIDs(m.profiles) {
		if p := m.profiles[id]; p.UserID == userID {
			return p, true, nil
		}
	}
	return domain.UserProfile{}, false, nil
}

func (m *MemoryStore) HasProfileForUser(userID uint) (bool, error) {
	_, ok, err := m.GetProfileByUser(userID)
	return ok, err
}

func (m *MemoryStore) HasProfile(id uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.profiles[id]
	return ok, nil
}

func (m *MemoryStore) SaveProfile(p domain.UserProfile) (domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, cur := range m.profiles {
		if cur.UserID == p.UserID {
			cur.Phone = p.Phone
			cur.Description = p.Description
			cur.PictureKey = p.PictureKey
			cur.UpdatedAt = time.Now().UTC()
			m.profiles[id] = cur
			return cur, nil
		}
	}
	if p.ID == 0 {
		p.ID = nextID(m.profiles)
	}
	m.profiles[p.ID] = p
	return p, nil
}
