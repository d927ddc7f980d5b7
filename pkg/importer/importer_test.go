package importer

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"simplelms/pkg/auth"
	"simplelms/pkg/store"
)

const usersCSV = `username,password,email,firstname,lastname
alice,Al1ce#pass,alice@example.com,Alice,Anders
bob,B0b#passwd,bob@example.com,Bob,Berg
cara,C4ra#passw,cara@example.com,Cara,Chen
`

const coursesCSV = `name,price,description,teacher
Go Basics,100,Introduction to Go,1
Web APIs,150,Building REST services,1
`

// The third row repeats the first combination, the fourth references an
// unknown user.
const membersCSV = `course_id,user_id,roles
1,2,std
2,3,std
1,2,ast
1,99,std
`

const contentsJSON = `[
  {"course_id": 1, "video_url": "https://videos.example.com/1", "name": "Lesson 1", "description": "Getting started"},
  {"course_id": 1, "video_url": "https://videos.example.com/2", "name": "Lesson 2", "description": "Types"},
  {"course_id": 2, "video_url": "https://videos.example.com/3", "name": "Lesson 1", "description": "Routing"},
  {"course_id": 99, "video_url": "https://videos.example.com/4", "name": "Orphan", "description": "No course"}
]`

// bob (user 2) is enrolled in course 1, cara (user 3) is not.
const commentsJSON = `[
  {"content_id": 1, "user_id": 2, "comment": "Great lesson"},
  {"content_id": 1, "user_id": 3, "comment": "Not enrolled"}
]`

const dummyJSON = `{
  "course_announcements": [
    {"id": 1, "course": 1, "title": "Welcome", "content": "<p>Hello</p>", "is_active": true,
     "created_at": "2024-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z",
     "teacher": 1, "publish_date": "2024-01-01T00:00:00Z"},
    {"id": 2, "course": 99, "title": "Lost", "content": "orphan", "is_active": true,
     "created_at": "2024-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z",
     "teacher": 1, "publish_date": "2024-01-01T00:00:00Z"}
  ],
  "content_completions": [
    {"id": 1, "student": 2, "content": 1, "completed_at": "2024-02-01T08:00:00Z"},
    {"id": 2, "student": 2, "content": 1, "completed_at": "2024-02-02T08:00:00Z"}
  ],
  "course_feedbacks": [
    {"id": 1, "student": 2, "course": 1, "rating": 5, "feedback_text": "Loved it",
     "created_at": "2024-02-05T00:00:00Z", "updated_at": "2024-02-05T00:00:00Z"}
  ],
  "content_bookmarks": [
    {"id": 1, "student": 2, "content": 2, "created_at": "2024-02-06T00:00:00Z"}
  ],
  "user_profiles": [
    {"id": 1, "user": 2, "phone": "555-0100", "description": "Student",
     "profile_picture": "", "created_at": "2024-02-07T00:00:00Z", "updated_at": "2024-02-07T00:00:00Z"},
    {"id": 2, "user": 2, "phone": "555-0101", "description": "Dup",
     "profile_picture": "", "created_at": "2024-02-07T00:00:00Z", "updated_at": "2024-02-07T00:00:00Z"},
    {"id": 3, "user": 99, "phone": "555-0102", "description": "Ghost",
     "profile_picture": "", "created_at": "2024-02-07T00:00:00Z", "updated_at": "2024-02-07T00:00:00Z"}
  ]
}`

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func writeAllFixtures(t *testing.T, dir string) {
	t.Helper()
	writeFixture(t, dir, userDataFile, usersCSV)
	writeFixture(t, dir, courseDataFile, coursesCSV)
	writeFixture(t, dir, memberDataFile, membersCSV)
	writeFixture(t, dir, contentsFile, contentsJSON)
	writeFixture(t, dir, commentsFile, commentsJSON)
	writeFixture(t, dir, dummyDataFile, dummyJSON)
}

func newTestImporter(st store.Store, dir string, out *bytes.Buffer) *Importer {
	return New(st, Options{
		FixtureDir: dir,
		Out:        out,
		Location:   time.UTC,
		Rand:       rand.New(rand.NewSource(42)),
	})
}

func TestRunFullPipeline(t *testing.T) {
	dir := t.TempDir()
	writeAllFixtures(t, dir)
	st := store.NewMemoryStore()
	var out bytes.Buffer

	if err := newTestImporter(st, dir, &out).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	log := out.String()

	for _, want := range []string{
		"Users imported: 3",
		"Courses imported: 2",
		"Skipping duplicate course-user combination: Course 1, User 2",
		"Skipping member 4: User 99 does not exist",
		"Course Members imported: 2",
		"Skipping content 4: Course 99 does not exist",
		"Course Contents imported: 3",
		"Skipping comment 2: User cara is not a member of course Go Basics",
		"Comments imported: 1",
		"Skipping announcement 2: Course 99 does not exist",
		"Course Announcements imported: 1",
		"Skipping duplicate completion: User 2, Content 1",
		"Content Completions imported: 1",
		"Course Feedbacks imported: 1",
		"Content Bookmarks imported: 1",
		"Skipping duplicate user profile: User 2 already has a profile",
		"Skipping profile 3: User 99 does not exist",
		"User Profiles imported: 1",
		"All imports completed!",
	} {
		if !strings.Contains(log, want) {
			t.Errorf("output missing %q\noutput:\n%s", want, log)
		}
	}

	// Passwords are stored hashed, never verbatim.
	alice, ok, err := st.GetUserByUsername("alice")
	if err != nil || !ok {
		t.Fatalf("alice not imported: ok=%v err=%v", ok, err)
	}
	if alice.PasswordHash == "Al1ce#pass" {
		t.Fatal("password stored in plain text")
	}
	if !auth.CheckPassword("Al1ce#pass", alice.PasswordHash) {
		t.Fatal("stored hash does not verify against fixture password")
	}

	if _, ok, _ := st.GetMember(1, 2); !ok {
		t.Fatal("bob should be a member of course 1")
	}
	if has, _ := st.HasCompletion(2, 1); !has {
		t.Fatal("completion for user 2, content 1 missing")
	}
	if has, _ := st.HasFeedback(2, 1); !has {
		t.Fatal("feedback for user 2, course 1 missing")
	}
	if has, _ := st.HasBookmark(2, 2); !has {
		t.Fatal("bookmark for user 2, content 2 missing")
	}
	profile, ok, _ := st.GetProfileByUser(2)
	if !ok {
		t.Fatal("profile for user 2 missing")
	}
	if profile.Phone != "555-0100" {
		t.Fatalf("duplicate profile won: phone = %q", profile.Phone)
	}

	published, err := st.ListPublishedAnnouncements(1, time.Now())
	if err != nil {
		t.Fatalf("list announcements: %v", err)
	}
	if len(published) != 1 || published[0].Title != "Welcome" {
		t.Fatalf("published announcements = %+v", published)
	}
}

func TestRunTwiceImportsNothingNew(t *testing.T) {
	dir := t.TempDir()
	writeAllFixtures(t, dir)
	st := store.NewMemoryStore()
	var first bytes.Buffer
	if err := newTestImporter(st, dir, &first).Run(); err != nil {
		t.Fatalf("first run: %v", err)
	}

	var second bytes.Buffer
	if err := newTestImporter(st, dir, &second).Run(); err != nil {
		t.Fatalf("second run: %v", err)
	}
	log := second.String()

	for _, want := range []string{
		"Users imported: 0",
		"Courses imported: 0",
		"Course Members imported: 0",
		"Course Contents imported: 0",
		"Comments imported: 0",
		"Course Announcements imported: 0",
		"Content Completions imported: 0",
		"Course Feedbacks imported: 0",
		"Content Bookmarks imported: 0",
		"User Profiles imported: 0",
	} {
		if !strings.Contains(log, want) {
			t.Errorf("second run missing %q\noutput:\n%s", want, log)
		}
	}
}

func TestRunWithoutOptionalDocument(t *testing.T) {
	dir := t.TempDir()
	writeAllFixtures(t, dir)
	if err := os.Remove(filepath.Join(dir, dummyDataFile)); err != nil {
		t.Fatal(err)
	}
	st := store.NewMemoryStore()
	var out bytes.Buffer

	if err := newTestImporter(st, dir, &out).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	log := out.String()

	for _, want := range []string{
		"dummyData.json not found, skipping Course Announcements",
		"dummyData.json not found, skipping Content Completions",
		"dummyData.json not found, skipping Course Feedbacks",
		"dummyData.json not found, skipping Content Bookmarks",
		"paste.txt not found, skipping User Profiles",
		"All imports completed!",
	} {
		if !strings.Contains(log, want) {
			t.Errorf("output missing %q\noutput:\n%s", want, log)
		}
	}
	if has, _ := st.HasCompletion(2, 1); has {
		t.Fatal("no completions should exist without the optional document")
	}
}

func TestRunFailsOnMissingMandatoryFile(t *testing.T) {
	dir := t.TempDir()
	writeAllFixtures(t, dir)
	if err := os.Remove(filepath.Join(dir, courseDataFile)); err != nil {
		t.Fatal(err)
	}
	st := store.NewMemoryStore()
	var out bytes.Buffer

	err := newTestImporter(st, dir, &out).Run()
	if err == nil {
		t.Fatal("expected error when a mandatory fixture is missing")
	}
	if !strings.Contains(err.Error(), "import courses") {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out.String(), "All imports completed!") {
		t.Fatal("run should abort before the completion line")
	}
}

func TestRunAbortsOnMalformedCSVRow(t *testing.T) {
	dir := t.TempDir()
	writeAllFixtures(t, dir)
	// An unterminated quote on the second row must fail the stage, not
	// silently truncate it to the rows before the bad one.
	writeFixture(t, dir, userDataFile, `username,password,email,firstname,lastname
alice,Al1ce#pass,alice@example.com,Alice,Anders
bob,"broken,b@example.com,Bob,Berg
cara,C4ra#passw,cara@example.com,Cara,Chen
`)
	st := store.NewMemoryStore()
	var out bytes.Buffer

	err := newTestImporter(st, dir, &out).Run()
	if err == nil {
		t.Fatal("expected error for malformed csv row")
	}
	if !strings.Contains(err.Error(), "import users") {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out.String(), "Users imported:") {
		t.Fatalf("stage reported a count despite the malformed row:\n%s", out.String())
	}
	if ok, _ := st.HasUsername("alice"); ok {
		t.Fatal("no rows should persist when the stage aborts")
	}
}

// A raw author id above 50 is redrawn into [5, 40] before the author is
// resolved, so with every pool user enrolled the comment must import even
// though user 99 does not exist.
func TestCommentAuthorRedrawnBeforeMembershipLookup(t *testing.T) {
	dir := t.TempDir()

	var users strings.Builder
	users.WriteString("username,password,email,firstname,lastname\n")
	for i := 1; i <= 40; i++ {
		fmt.Fprintf(&users, "user%d,Pass#%04d,user%d@example.com,User,Nr%d\n", i, i, i, i)
	}
	var members strings.Builder
	members.WriteString("course_id,user_id,roles\n")
	for i := 5; i <= 40; i++ {
		fmt.Fprintf(&members, "1,%d,std\n", i)
	}
	writeFixture(t, dir, userDataFile, users.String())
	writeFixture(t, dir, courseDataFile, "name,price,description,teacher\nGo Basics,100,Introduction to Go,1\n")
	writeFixture(t, dir, memberDataFile, members.String())
	writeFixture(t, dir, contentsFile, `[{"course_id": 1, "video_url": "", "name": "Lesson 1", "description": "Getting started"}]`)
	writeFixture(t, dir, commentsFile, `[{"content_id": 1, "user_id": 99, "comment": "From the pool"}]`)

	st := store.NewMemoryStore()
	var out bytes.Buffer
	if err := newTestImporter(st, dir, &out).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	log := out.String()

	if strings.Contains(log, "Skipping comment") {
		t.Fatalf("comment skipped; author id was not redrawn:\n%s", log)
	}
	if !strings.Contains(log, "Comments imported: 1") {
		t.Fatalf("comment not imported under the redrawn author id:\n%s", log)
	}
	if has, _ := st.HasComment(1); !has {
		t.Fatal("comment missing from the store")
	}
}

func TestCorruptOptionalDocumentDegradesPerStage(t *testing.T) {
	dir := t.TempDir()
	writeAllFixtures(t, dir)
	writeFixture(t, dir, dummyDataFile, "{not json")
	st := store.NewMemoryStore()
	var out bytes.Buffer

	if err := newTestImporter(st, dir, &out).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	log := out.String()
	for _, want := range []string{
		"Error importing Course Announcements:",
		"Error importing User Profiles:",
		"All imports completed!",
	} {
		if !strings.Contains(log, want) {
			t.Errorf("output missing %q\noutput:\n%s", want, log)
		}
	}
}
