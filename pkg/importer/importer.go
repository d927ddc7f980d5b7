package importer

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"simplelms/pkg/auth"
	"simplelms/pkg/domain"
	"simplelms/pkg/store"
)

// Importer bulk-loads fixture files into the entity store. Stages run once,
// in dependency order; each stage accumulates validated candidate records
// and issues a single batch insert. Later stages resolve references against
// entities created by earlier ones.
type Importer struct {
	store store.Store
	dir   string
	out   io.Writer
	loc   *time.Location
	rng   *rand.Rand
}

// Options tunes an import run. Zero values select the conventional fixture
// directory, stdout, UTC and a time-seeded random source.
type Options struct {
	FixtureDir string
	Out        io.Writer
	Location   *time.Location
	Rand       *rand.Rand
}

// New builds an importer over the given store.
func New(st store.Store, opts Options) *Importer {
	if opts.FixtureDir == "" {
		opts.FixtureDir = "./csv_data"
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Importer{
		store: st,
		dir:   opts.FixtureDir,
		out:   opts.Out,
		loc:   opts.Location,
		rng:   opts.Rand,
	}
}

// positionGuard is the duplicate policy for entity types without a natural
// content key: the 1-based row ordinal is assumed to match the persisted pk
// sequence, and a row counts as already imported when that pk exists. This
// is order-dependent; a content-keyed guard can be swapped in here without
// touching stage orchestration.
type positionGuard func(pk uint) (bool, error)

func (g positionGuard) rowExists(rowIndex int) (bool, error) {
	return g(uint(rowIndex) + 1)
}

// Run executes the full pipeline. The five leading stages are mandatory and
// abort the run on error; the stages fed by the shared optional document
// degrade per stage instead.
func (im *Importer) Run() error {
	start := time.Now()

	if err := im.importUsers(); err != nil {
		return fmt.Errorf("import users: %w", err)
	}
	if err := im.importCourses(); err != nil {
		return fmt.Errorf("import courses: %w", err)
	}
	if err := im.importMembers(); err != nil {
		return fmt.Errorf("import course members: %w", err)
	}
	if err := im.importContents(); err != nil {
		return fmt.Errorf("import course contents: %w", err)
	}
	if err := im.importComments(); err != nil {
		return fmt.Errorf("import comments: %w", err)
	}

	im.runOptional("Course Announcements", dummyDataFile, im.importAnnouncements)
	im.runOptional("Content Completions", dummyDataFile, im.importCompletions)
	im.runOptional("Course Feedbacks", dummyDataFile, im.importFeedbacks)
	im.runOptional("Content Bookmarks", dummyDataFile, im.importBookmarks)
	// The original loader reported the wrong filename when the shared
	// document was missing for this stage; kept for log compatibility.
	im.runOptional("User Profiles", "paste.txt", im.importProfiles)

	fmt.Fprintf(im.out, "--- %v seconds ---\n", time.Since(start).Seconds())
	fmt.Fprintln(im.out, "All imports completed!")
	return nil
}

// runOptional re-reads the shared document for each dependent stage; a
// missing file skips only that stage, and any other failure is reported
// without stopping the run.
func (im *Importer) runOptional(stage, missingName string, fn func(*dummyData) error) {
	fmt.Fprintf(im.out, "Importing %s...\n", stage)
	var data dummyData
	if err := readJSON(filepath.Join(im.dir, dummyDataFile), &data); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(im.out, "%s not found, skipping %s\n", missingName, stage)
			return
		}
		fmt.Fprintf(im.out, "Error importing %s: %v\n", stage, err)
		return
	}
	if err := fn(&data); err != nil {
		fmt.Fprintf(im.out, "Error importing %s: %v\n", stage, err)
	}
}

func (im *Importer) importUsers() error {
	fmt.Fprintln(im.out, "Importing Users...")
	rows, err := readCSVRecords(filepath.Join(im.dir, userDataFile))
	if err != nil {
		return err
	}
	batch := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		exists, err := im.store.HasUsername(row["username"])
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		hash, err := auth.HashPassword(row["password"])
		if err != nil {
			return err
		}
		batch = append(batch, domain.User{
			Username:     row["username"],
			PasswordHash: hash,
			Email:        row["email"],
			FirstName:    row["firstname"],
			LastName:     row["lastname"],
		})
	}
	if err := im.store.CreateUsers(batch); err != nil {
		return err
	}
	fmt.Fprintf(im.out, "Users imported: %d\n", len(batch))
	return nil
}

func (im *Importer) importCourses() error {
	fmt.Fprintln(im.out, "Importing Courses...")
	rows, err := readCSVRecords(filepath.Join(im.dir, courseDataFile))
	if err != nil {
		return err
	}
	guard := positionGuard(im.store.HasCourse)
	batch := make([]domain.Course, 0, len(rows))
	for num, row := range rows {
		exists, err := guard.rowExists(num)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		price, err := strconv.Atoi(row["price"])
		if err != nil {
			return fmt.Errorf("course row %d: invalid price %q", num+1, row["price"])
		}
		teacherID, err := strconv.Atoi(row["teacher"])
		if err != nil {
			return fmt.Errorf("course row %d: invalid teacher %q", num+1, row["teacher"])
		}
		// Teacher resolution is deliberately fatal here: courses without a
		// valid owner indicate a broken fixture, not a skippable row.
		teacher, err := im.resolveUser(teacherID)
		if err != nil {
			return err
		}
		batch = append(batch, domain.Course{
			Name:        row["name"],
			Price:       price,
			Description: row["description"],
			TeacherID:   teacher.ID,
		})
	}
	if err := im.store.CreateCourses(batch); err != nil {
		return err
	}
	fmt.Fprintf(im.out, "Courses imported: %d\n", len(batch))
	return nil
}

type memberKey struct {
	courseID uint
	userID   uint
}

func (im *Importer) importMembers() error {
	fmt.Fprintln(im.out, "Importing Course Members...")
	rows, err := readCSVRecords(filepath.Join(im.dir, memberDataFile))
	if err != nil {
		return err
	}
	seen := make(map[memberKey]bool)
	batch := make([]domain.CourseMember, 0, len(rows))
	for num, row := range rows {
		courseID, err := strconv.Atoi(row["course_id"])
		if err != nil {
			return fmt.Errorf("member row %d: invalid course_id %q", num+1, row["course_id"])
		}
		userID, err := strconv.Atoi(row["user_id"])
		if err != nil {
			return fmt.Errorf("member row %d: invalid user_id %q", num+1, row["user_id"])
		}
		key := memberKey{uint(courseID), uint(userID)}

		persisted, err := im.store.HasMember(key.courseID, key.userID)
		if err != nil {
			return err
		}
		if seen[key] || persisted {
			fmt.Fprintf(im.out, "Skipping duplicate course-user combination: Course %d, User %d\n", courseID, userID)
			continue
		}
		course, err := im.resolveCourse(courseID)
		if err != nil {
			fmt.Fprintf(im.out, "Skipping member %d: %v\n", num+1, err)
			continue
		}
		user, err := im.resolveUser(userID)
		if err != nil {
			fmt.Fprintf(im.out, "Skipping member %d: %v\n", num+1, err)
			continue
		}
		batch = append(batch, domain.CourseMember{
			CourseID: course.ID,
			UserID:   user.ID,
			Roles:    domain.MemberRole(row["roles"]),
		})
		seen[key] = true
	}
	if err := im.store.CreateMembers(batch); err != nil {
		return err
	}
	fmt.Fprintf(im.out, "Course Members imported: %d\n", len(batch))
	return nil
}

func (im *Importer) importContents() error {
	fmt.Fprintln(im.out, "Importing Course Contents...")
	var records []contentRecord
	if err := readJSON(filepath.Join(im.dir, contentsFile), &records); err != nil {
		return err
	}
	guard := positionGuard(im.store.HasContent)
	batch := make([]domain.CourseContent, 0, len(records))
	for num, rec := range records {
		exists, err := guard.rowExists(num)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		course, err := im.resolveCourse(rec.CourseID)
		if err != nil {
			fmt.Fprintf(im.out, "Skipping content %d: %v\n", num+1, err)
			continue
		}
		batch = append(batch, domain.CourseContent{
			CourseID:    course.ID,
			VideoURL:    rec.VideoURL,
			Name:        rec.Name,
			Description: rec.Description,
		})
	}
	if err := im.store.CreateContents(batch); err != nil {
		return err
	}
	fmt.Fprintf(im.out, "Course Contents imported: %d\n", len(batch))
	return nil
}

func (im *Importer) importComments() error {
	fmt.Fprintln(im.out, "Importing Comments...")
	var records []commentRecord
	if err := readJSON(filepath.Join(im.dir, commentsFile), &records); err != nil {
		return err
	}
	guard := positionGuard(im.store.HasComment)
	batch := make([]domain.Comment, 0, len(records))
	for num, rec := range records {
		authorID := remapAuthorID(rec.UserID, im.rng)

		exists, err := guard.rowExists(num)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		content, err := im.resolveContent(rec.ContentID)
		if err != nil {
			fmt.Fprintf(im.out, "Skipping comment %d: %v\n", num+1, err)
			continue
		}
		user, err := im.resolveUser(authorID)
		if err != nil {
			fmt.Fprintf(im.out, "Skipping comment %d: %v\n", num+1, err)
			continue
		}
		// Comments hang off course members, so the author must already be
		// enrolled in the course that owns the content.
		member, ok, err := im.store.GetMember(content.CourseID, user.ID)
		if err != nil {
			return err
		}
		if !ok {
			course, err := im.resolveCourse(int(content.CourseID))
			if err != nil {
				return err
			}
			fmt.Fprintf(im.out, "Skipping comment %d: User %s is not a member of course %s\n", num+1, user.Username, course.Name)
			continue
		}
		batch = append(batch, domain.Comment{
			ContentID: content.ID,
			MemberID:  member.ID,
			Comment:   rec.Comment,
		})
	}
	if err := im.store.CreateComments(batch); err != nil {
		return err
	}
	fmt.Fprintf(im.out, "Comments imported: %d\n", len(batch))
	return nil
}

func (im *Importer) importAnnouncements(data *dummyData) error {
	batch := make([]domain.CourseAnnouncement, 0, len(data.CourseAnnouncements))
	for _, rec := range data.CourseAnnouncements {
		exists, err := im.store.HasAnnouncement(uint(rec.ID))
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		course, err := im.resolveCourse(rec.Course)
		if err != nil {
			fmt.Fprintf(im.out, "Skipping announcement %d: %v\n", rec.ID, err)
			continue
		}
		teacher, err := im.resolveUser(rec.Teacher)
		if err != nil {
			fmt.Fprintf(im.out, "Skipping announcement %d: %v\n", rec.ID, err)
			continue
		}
		createdAt, err := parseTimestamp(rec.CreatedAt, im.loc)
		if err != nil {
			return err
		}
		updatedAt, err := parseTimestamp(rec.UpdatedAt, im.loc)
		if err != nil {
			return err
		}
		publishDate, err := parseTimestamp(rec.PublishDate, im.loc)
		if err != nil {
			return err
		}
		batch = append(batch, domain.CourseAnnouncement{
			ID:          uint(rec.ID),
			CourseID:    course.ID,
			TeacherID:   teacher.ID,
			Title:       rec.Title,
			Content:     rec.Content,
			IsActive:    rec.IsActive,
			CreatedAt:   createdAt,
			UpdatedAt:   updatedAt,
			PublishDate: publishDate,
		})
	}
	if err := im.store.CreateAnnouncements(batch); err != nil {
		return err
	}
	fmt.Fprintf(im.out, "Course Announcements imported: %d\n", len(batch))
	return nil
}

type studentContentKey struct {
	studentID uint
	contentID uint
}

func (im *Importer) importCompletions(data *dummyData) error {
	seen := make(map[studentContentKey]bool)
	batch := make([]domain.ContentCompletion, 0, len(data.ContentCompletions))
	for _, rec := range data.ContentCompletions {
		key := studentContentKey{uint(rec.Student), uint(rec.Content)}

		persisted, err := im.store.HasCompletion(key.studentID, key.contentID)
		if err != nil {
			return err
		}
		if seen[key] || persisted {
			fmt.Fprintf(im.out, "Skipping duplicate completion: User %d, Content %d\n", rec.Student, rec.Content)
			continue
		}
		user, err := im.resolveUser(rec.Student)
		if err != nil {
			fmt.Fprintf(im.out, "Skipping completion %d: %v\n", rec.ID, err)
			continue
		}
		content, err := im.resolveContent(rec.Content)
		if err != nil {
			fmt.Fprintf(im.out, "Skipping completion %d: %v\n", rec.ID, err)
			continue
		}
		completedAt, err := parseTimestamp(rec.CompletedAt, im.loc)
		if err != nil {
			return err
		}
		batch = append(batch, domain.ContentCompletion{
			ID:          uint(rec.ID),
			StudentID:   user.ID,
			ContentID:   content.ID,
			CompletedAt: completedAt,
		})
		seen[key] = true
	}
	if err := im.store.CreateCompletions(batch); err != nil {
		return err
	}
	fmt.Fprintf(im.out, "Content Completions imported: %d\n", len(batch))
	return nil
}

type studentCourseKey struct {
	studentID uint
	courseID  uint
}

func (im *Importer) importFeedbacks(data *dummyData) error {
	seen := make(map[studentCourseKey]bool)
	batch := make([]domain.CourseFeedback, 0, len(data.CourseFeedbacks))
	for _, rec := range data.CourseFeedbacks {
		key := studentCourseKey{uint(rec.Student), uint(rec.Course)}

		persisted, err := im.store.HasFeedback(key.studentID, key.courseID)
		if err != nil {
			return err
		}
		if seen[key] || persisted {
			fmt.Fprintf(im.out, "Skipping duplicate feedback: User %d, Course %d\n", rec.Student, rec.Course)
			continue
		}
		user, err := im.resolveUser(rec.Student)
		if err != nil {
			fmt.Fprintf(im.out, "Skipping feedback %d: %v\n", rec.ID, err)
			continue
		}
		course, err := im.resolveCourse(rec.Course)
		if err != nil {
			fmt.Fprintf(im.out, "Skipping feedback %d: %v\n", rec.ID, err)
			continue
		}
		createdAt, err := parseTimestamp(rec.CreatedAt, im.loc)
		if err != nil {
			return err
		}
		updatedAt, err := parseTimestamp(rec.UpdatedAt, im.loc)
		if err != nil {
			return err
		}
		batch = append(batch, domain.CourseFeedback{
			ID:           uint(rec.ID),
			StudentID:    user.ID,
			CourseID:     course.ID,
			Rating:       rec.Rating,
			FeedbackText: rec.FeedbackText,
			CreatedAt:    createdAt,
			UpdatedAt:    updatedAt,
		})
		seen[key] = true
	}
	if err := im.store.CreateFeedbacks(batch); err != nil {
		return err
	}
	fmt.Fprintf(im.out, "Course Feedbacks imported: %d\n", len(batch))
	return nil
}

func (im *Importer) importBookmarks(data *dummyData) error {
	seen := make(map[studentContentKey]bool)
	batch := make([]domain.ContentBookmark, 0, len(data.ContentBookmarks))
	for _, rec := range data.ContentBookmarks {
		key := studentContentKey{uint(rec.Student), uint(rec.Content)}

		persisted, err := im.store.HasBookmark(key.studentID, key.contentID)
		if err != nil {
			return err
		}
		if seen[key] || persisted {
			fmt.Fprintf(im.out, "Skipping duplicate bookmark: User %d, Content %d\n", rec.Student, rec.Content)
			continue
		}
		user, err := im.resolveUser(rec.Student)
		if err != nil {
			fmt.Fprintf(im.out, "Skipping bookmark %d: %v\n", rec.ID, err)
			continue
		}
		content, err := im.resolveContent(rec.Content)
		if err != nil {
			fmt.Fprintf(im.out, "Skipping bookmark %d: %v\n", rec.ID, err)
			continue
		}
		createdAt, err := parseTimestamp(rec.CreatedAt, im.loc)
		if err != nil {
			return err
		}
		batch = append(batch, domain.ContentBookmark{
			ID:        uint(rec.ID),
			StudentID: user.ID,
			ContentID: content.ID,
			CreatedAt: createdAt,
		})
		seen[key] = true
	}
	if err := im.store.CreateBookmarks(batch); err != nil {
		return err
	}
	fmt.Fprintf(im.out, "Content Bookmarks imported: %d\n", len(batch))
	return nil
}

func (im *Importer) importProfiles(data *dummyData) error {
	seenUsers := make(map[uint]bool)
	batch := make([]domain.UserProfile, 0, len(data.UserProfiles))
	for _, rec := range data.UserProfiles {
		userID := uint(rec.User)

		// Profiles are dually keyed: one per user, and the fixture also
		// pre-assigns the profile pk.
		hasForUser, err := im.store.HasProfileForUser(userID)
		if err != nil {
			return err
		}
		hasPK, err := im.store.HasProfile(uint(rec.ID))
		if err != nil {
			return err
		}
		if seenUsers[userID] || hasForUser || hasPK {
			fmt.Fprintf(im.out, "Skipping duplicate user profile: User %d already has a profile\n", rec.User)
			continue
		}
		user, ok, err := im.store.GetUser(userID)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(im.out, "Skipping profile %d: User %d does not exist\n", rec.ID, rec.User)
			continue
		}
		createdAt, err := parseTimestamp(rec.CreatedAt, im.loc)
		if err != nil {
			return err
		}
		updatedAt, err := parseTimestamp(rec.UpdatedAt, im.loc)
		if err != nil {
			return err
		}
		batch = append(batch, domain.UserProfile{
			ID:          uint(rec.ID),
			UserID:      user.ID,
			Phone:       rec.Phone,
			Description: rec.Description,
			PictureKey:  rec.ProfilePicture,
			CreatedAt:   createdAt,
			UpdatedAt:   updatedAt,
		})
		seenUsers[userID] = true
	}
	if err := im.store.CreateProfiles(batch); err != nil {
		return err
	}
	fmt.Fprintf(im.out, "User Profiles imported: %d\n", len(batch))
	return nil
}

func (im *Importer) resolveUser(id int) (domain.User, error) {
	u, ok, err := im.store.GetUser(uint(id))
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, fmt.Errorf("User %d does not exist", id)
	}
	return u, nil
}

func (im *Importer) resolveCourse(id int) (domain.Course, error) {
	c, ok, err := im.store.GetCourse(uint(id))
	if err != nil {
		return domain.Course{}, err
	}
	if !ok {
		return domain.Course{}, fmt.Errorf("Course %d does not exist", id)
	}
	return c, nil
}

func (im *Importer) resolveContent(id int) (domain.CourseContent, error) {
	c, ok, err := im.store.GetContent(uint(id))
	if err != nil {
		return domain.CourseContent{}, err
	}
	if !ok {
		return domain.CourseContent{}, fmt.Errorf("CourseContent %d does not exist", id)
	}
	return c, nil
}
