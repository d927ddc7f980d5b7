package importer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Source file names, fixed by convention inside the fixture directory.
const (
	userDataFile   = "user-data.csv"
	courseDataFile = "course-data.csv"
	memberDataFile = "member-data.csv"
	contentsFile   = "contents.json"
	commentsFile   = "comments.json"
	dummyDataFile  = "dummyData.json"
)

// readCSVRecords reads a headered CSV file into one map per row, keyed by
// the header column names.
func readCSVRecords(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Ragged rows are tolerated; missing cells resolve to "" via the header
	// map below. Malformed rows (bad quoting) are hard errors.
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}

type contentRecord struct {
	CourseID    int    `json:"course_id"`
	VideoURL    string `json:"video_url"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type commentRecord struct {
	ContentID int    `json:"content_id"`
	UserID    int    `json:"user_id"`
	Comment   string `json:"comment"`
}

// dummyData is the shared multi-section document supplying the optional
// stages.
type dummyData struct {
	CourseAnnouncements []announcementRecord `json:"course_announcements"`
	ContentCompletions  []completionRecord   `json:"content_completions"`
	CourseFeedbacks     []feedbackRecord     `json:"course_feedbacks"`
	ContentBookmarks    []bookmarkRecord     `json:"content_bookmarks"`
	UserProfiles        []profileRecord      `json:"user_profiles"`
}

type announcementRecord struct {
	ID          int    `json:"id"`
	Course      int    `json:"course"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	Teacher     int    `json:"teacher"`
	PublishDate string `json:"publish_date"`
}

type completionRecord struct {
	ID          int    `json:"id"`
	Student     int    `json:"student"`
	Content     int    `json:"content"`
	CompletedAt string `json:"completed_at"`
}

type feedbackRecord struct {
	ID           int    `json:"id"`
	Student      int    `json:"student"`
	Course       int    `json:"course"`
	Rating       int    `json:"rating"`
	FeedbackText string `json:"feedback_text"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type bookmarkRecord struct {
	ID        int    `json:"id"`
	Student   int    `json:"student"`
	Content   int    `json:"content"`
	CreatedAt string `json:"created_at"`
}

type profileRecord struct {
	ID             int    `json:"id"`
	User           int    `json:"user"`
	Phone          string `json:"phone"`
	Description    string `json:"description"`
	ProfilePicture string `json:"profile_picture"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}
