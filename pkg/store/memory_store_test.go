package store

import (
	"testing"
	"time"

	"simplelms/pkg/domain"
)

func TestMemoryStoreAssignsSequentialIDs(t *testing.T) {
	m := NewMemoryStore()
	if err := m.CreateUsers([]domain.User{
		{Username: "a"}, {Username: "b"}, {Username: "c"},
	}); err != nil {
		t.Fatalf("create users: %v", err)
	}
	for i, name := range []string{"a", "b", "c"} {
		u, ok, err := m.GetUser(uint(i + 1))
		if err != nil || !ok {
			t.Fatalf("user %d: ok=%v err=%v", i+1, ok, err)
		}
		if u.Username != name {
			t.Fatalf("user %d username = %q, want %q", i+1, u.Username, name)
		}
	}
}

func TestMemoryStoreHonorsExplicitIDs(t *testing.T) {
	m := NewMemoryStore()
	if err := m.CreateAnnouncements([]domain.CourseAnnouncement{
		{ID: 10, Title: "ten"},
	}); err != nil {
		t.Fatalf("create announcements: %v", err)
	}
	if ok, _ := m.HasAnnouncement(10); !ok {
		t.Fatal("announcement 10 should exist")
	}
	// The next auto-assigned id continues past the explicit one.
	if err := m.CreateAnnouncements([]domain.CourseAnnouncement{{Title: "next"}}); err != nil {
		t.Fatalf("create announcements: %v", err)
	}
	if ok, _ := m.HasAnnouncement(11); !ok {
		t.Fatal("auto id should continue from highest explicit pk")
	}
}

func TestMemoryStoreMemberLookup(t *testing.T) {
	m := NewMemoryStore()
	if err := m.CreateMembers([]domain.CourseMember{
		{CourseID: 1, UserID: 2, Roles: domain.RoleStudent},
	}); err != nil {
		t.Fatalf("create members: %v", err)
	}
	member, ok, err := m.GetMember(1, 2)
	if err != nil || !ok {
		t.Fatalf("get member: ok=%v err=%v", ok, err)
	}
	if member.Roles != domain.RoleStudent {
		t.Fatalf("roles = %q", member.Roles)
	}
	if ok, _ := m.HasMember(1, 3); ok {
		t.Fatal("user 3 should not be a member")
	}
}

func TestMemoryStoreFeedbackUpsert(t *testing.T) {
	m := NewMemoryStore()
	first, err := m.SaveFeedback(domain.CourseFeedback{CourseID: 1, StudentID: 2, Rating: 3, FeedbackText: "ok"})
	if err != nil {
		t.Fatalf("save feedback: %v", err)
	}
	second, err := m.SaveFeedback(domain.CourseFeedback{CourseID: 1, StudentID: 2, Rating: 5, FeedbackText: "great"})
	if err != nil {
		t.Fatalf("save feedback: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("upsert created a new row: ids %d and %d", first.ID, second.ID)
	}
	list, err := m.ListFeedbackByCourse(1)
	if err != nil {
		t.Fatalf("list feedback: %v", err)
	}
	if len(list) != 1 || list[0].Rating != 5 {
		t.Fatalf("list = %+v", list)
	}
}

func TestMemoryStorePublishedAnnouncements(t *testing.T) {
	m := NewMemoryStore()
	now := time.Now()
	if err := m.CreateAnnouncements([]domain.CourseAnnouncement{
		{ID: 1, CourseID: 1, Title: "old", IsActive: true, PublishDate: now.Add(-2 * time.Hour)},
		{ID: 2, CourseID: 1, Title: "new", IsActive: true, PublishDate: now.Add(-time.Hour)},
		{ID: 3, CourseID: 1, Title: "future", IsActive: true, PublishDate: now.Add(time.Hour)},
		{ID: 4, CourseID: 1, Title: "inactive", IsActive: false, PublishDate: now.Add(-time.Hour)},
		{ID: 5, CourseID: 2, Title: "other course", IsActive: true, PublishDate: now.Add(-time.Hour)},
	}); err != nil {
		t.Fatalf("create announcements: %v", err)
	}
	list, err := m.ListPublishedAnnouncements(1, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %+v", list)
	}
	// Newest first.
	if list[0].Title != "new" || list[1].Title != "old" {
		t.Fatalf("order = %q, %q", list[0].Title, list[1].Title)
	}
}

func TestMemoryStoreCompletionsScopedToCourse(t *testing.T) {
	m := NewMemoryStore()
	if err := m.CreateContents([]domain.CourseContent{
		{CourseID: 1, Name: "c1"},
		{CourseID: 2, Name: "c2"},
	}); err != nil {
		t.Fatalf("create contents: %v", err)
	}
	if err := m.CreateCompletions([]domain.ContentCompletion{
		{StudentID: 5, ContentID: 1},
		{StudentID: 5, ContentID: 2},
		{StudentID: 6, ContentID: 1},
	}); err != nil {
		t.Fatalf("create completions: %v", err)
	}
	list, err := m.ListCompletions(5, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ContentID != 1 {
		t.Fatalf("list = %+v", list)
	}
}

func TestMemoryStoreProfileDualKeys(t *testing.T) {
	m := NewMemoryStore()
	if err := m.CreateProfiles([]domain.UserProfile{{ID: 3, UserID: 9, Phone: "555"}}); err != nil {
		t.Fatalf("create profiles: %v", err)
	}
	if ok, _ := m.HasProfile(3); !ok {
		t.Fatal("profile pk 3 should exist")
	}
	if ok, _ := m.HasProfileForUser(9); !ok {
		t.Fatal("user 9 should have a profile")
	}
	p, ok, err := m.GetProfileByUser(9)
	if err != nil || !ok || p.Phone != "555" {
		t.Fatalf("get profile: %+v ok=%v err=%v", p, ok, err)
	}
}
