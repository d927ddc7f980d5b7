package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"simplelms/internal/app"
	"simplelms/internal/ratelimit"
	"simplelms/internal/util"
	"simplelms/pkg/domain"
	"simplelms/pkg/storage"
)

const (
	maxJSONBody     = 1 << 20
	maxUploadBytes  = 5 << 20
	previewMaxRunes = 160
	presignExpiry   = 15 * time.Minute
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
	// Objects is optional; profile picture upload is rejected when nil.
	Objects                 storage.ObjectStore
	RedisAddr               string
	RedisPassword           string
	LoginRateLimitPerMinute int
}

// Server exposes the HTTP API.
type Server struct {
	app          *app.App
	objects      storage.ObjectStore
	loginLimiter *ratelimit.FixedWindowLimiter
	mux          *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	var loginLimiter *ratelimit.FixedWindowLimiter
	if cfg.LoginRateLimitPerMinute > 0 {
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "simplelms:ratelimit:login",
			cfg.LoginRateLimitPerMinute, time.Minute,
		)
		if err != nil {
			return nil, fmt.Errorf("init login limiter: %w", err)
		}
		loginLimiter = limiter
	}
	s := &Server{
		app:          cfg.App,
		objects:      cfg.Objects,
		loginLimiter: loginLimiter,
		mux:          http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with ambient middleware applied.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(
		util.WithRequestLog("lms", util.WithSecurityHeaders(util.WithCORS(s.mux))),
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/auth/login", s.handleLogin)
	s.mux.HandleFunc("/auth/logout", s.handleLogout)
	s.mux.Handle("/auth/me", s.authenticated(s.handleMe))

	// profiles
	s.mux.HandleFunc("/profile/", s.handleProfileByID)
	s.mux.Handle("/profile", s.authenticated(s.handleUpdateProfile))

	// course sub-resources
	s.mux.Handle("/courses/", s.authenticated(s.handleCourseSubresource))

	// announcements
	s.mux.Handle("/announcements/", s.authenticated(s.handleAnnouncementByID))

	// completions
	s.mux.Handle("/content/completion", s.authenticated(s.handleAddCompletion))
	s.mux.Handle("/completions/", s.authenticated(s.handleCompletionByID))

	// feedback
	s.mux.Handle("/feedback", s.authenticated(s.handleAddFeedback))
	s.mux.Handle("/feedback/", s.authenticated(s.handleFeedbackByID))

	// bookmarks
	s.mux.Handle("/bookmark", s.authenticated(s.handleAddBookmark))
	s.mux.Handle("/bookmarks", s.authenticated(s.handleListBookmarks))
	s.mux.Handle("/bookmarks/", s.authenticated(s.handleBookmarkByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.User{}, false
	}
	return s.app.UserFromToken(token)
}

// auth handlers
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "lms.login", "rate_limited")
		return
	}
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.Login(req.Username, req.Password)
	if err != nil {
		s.audit(r, "lms.login", "fail", "reason", err.Error())
		if errors.Is(err, app.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.audit(r, "lms.login", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.app.Logout(token); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// profile handlers
func (s *Server) handleProfileByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	userID, ok := pathID(r.URL.Path, "/profile/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	view, err := s.app.Profile(userID)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.profileResponse(r.Context(), view))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	update, err := s.parseProfileUpdate(r, user)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.app.UpdateProfile(user, update); err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "profile updated"})
}

// parseProfileUpdate accepts either a JSON body or multipart form data with
// an optional profilePicture file part.
func (s *Server) parseProfileUpdate(r *http.Request, user domain.User) (app.ProfileUpdate, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req profileUpdateRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
			return app.ProfileUpdate{}, fmt.Errorf("invalid JSON body")
		}
		return app.ProfileUpdate{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			Phone:       req.Phone,
			Description: req.Description,
		}, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return app.ProfileUpdate{}, fmt.Errorf("invalid multipart body")
	}
	update := app.ProfileUpdate{
		FirstName:   formValue(r, "firstName"),
		LastName:    formValue(r, "lastName"),
		Email:       formValue(r, "email"),
		Phone:       formValue(r, "phone"),
		Description: formValue(r, "description"),
	}
	file, header, err := r.FormFile("profilePicture")
	if err == http.ErrMissingFile {
		return update, nil
	}
	if err != nil {
		return app.ProfileUpdate{}, fmt.Errorf("invalid profile picture")
	}
	defer file.Close()
	if s.objects == nil {
		return app.ProfileUpdate{}, fmt.Errorf("profile picture storage is not configured")
	}
	key := fmt.Sprintf("profiles/%d/%s%s", user.ID, util.NewID(), path.Ext(header.Filename))
	contentType := header.Header.Get("Content-Type")
	if err := s.objects.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		return app.ProfileUpdate{}, fmt.Errorf("store profile picture")
	}
	update.PictureKey = key
	return update, nil
}

func (s *Server) profileResponse(ctx context.Context, view app.ProfileView) profileView {
	out := profileView{
		ID:             view.User.ID,
		Username:       view.User.Username,
		FirstName:      view.User.FirstName,
		LastName:       view.User.LastName,
		Email:          view.User.Email,
		Profile:        view.Profile,
		CoursesCreated: view.CoursesCreated,
		CoursesJoined:  view.CoursesJoined,
	}
	if s.objects != nil && view.Profile.PictureKey != "" {
		url, err := s.objects.PresignGet(ctx, view.Profile.PictureKey, presignExpiry)
		if err != nil {
			slog.Warn("presign profile picture", "err", err)
		} else {
			out.ProfilePictureURL = url
		}
	}
	return out
}

// course sub-resource dispatch: /courses/{id}/announcements, /completions, /feedback
func (s *Server) handleCourseSubresource(w http.ResponseWriter, r *http.Request, user domain.User) {
	rest := strings.TrimPrefix(r.URL.Path, "/courses/")
	idPart, sub, found := strings.Cut(rest, "/")
	if !found || idPart == "" || strings.Contains(sub, "/") {
		http.NotFound(w, r)
		return
	}
	courseID, err := parseID(idPart)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	switch sub {
	case "announcements":
		s.handleCourseAnnouncements(w, r, user, courseID)
	case "completions":
		s.handleCourseCompletions(w, r, user, courseID)
	case "feedback":
		s.handleCourseFeedback(w, r, user, courseID)
	default:
		http.NotFound(w, r)
	}
}

// announcement handlers
func (s *Server) handleCourseAnnouncements(w http.ResponseWriter, r *http.Request, user domain.User, courseID uint) {
	switch r.Method {
	case http.MethodPost:
		var req announcementRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Title == "" || req.Content == "" {
			writeError(w, http.StatusBadRequest, "title and content are required")
			return
		}
		announcement, err := s.app.CreateAnnouncement(user, courseID, app.AnnouncementInput{
			Title:       req.Title,
			Content:     req.Content,
			PublishDate: req.PublishDate,
			IsActive:    req.IsActive,
		})
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, announcementView{CourseAnnouncement: announcement, Preview: preview(announcement.Content)})
	case http.MethodGet:
		announcements, err := s.app.ListAnnouncements(user, courseID)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		items := make([]announcementView, 0, len(announcements))
		for _, a := range announcements {
			items = append(items, announcementView{CourseAnnouncement: a, Preview: preview(a.Content)})
		}
		writeJSON(w, http.StatusOK, items)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleAnnouncementByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	announcementID, ok := pathID(r.URL.Path, "/announcements/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var req announcementUpdateRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		announcement, err := s.app.UpdateAnnouncement(user, announcementID, app.AnnouncementUpdate{
			Title:       req.Title,
			Content:     req.Content,
			PublishDate: req.PublishDate,
			IsActive:    req.IsActive,
		})
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, announcementView{CourseAnnouncement: announcement, Preview: preview(announcement.Content)})
	case http.MethodDelete:
		if err := s.app.DeleteAnnouncement(user, announcementID); err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "announcement deleted"})
	default:
		methodNotAllowed(w)
	}
}

// completion handlers
func (s *Server) handleAddCompletion(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req completionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	completion, err := s.app.AddCompletion(user, req.ContentID)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, completion)
}

func (s *Server) handleCourseCompletions(w http.ResponseWriter, r *http.Request, user domain.User, courseID uint) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	completions, err := s.app.ListCompletions(user, courseID)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, completions)
}

func (s *Server) handleCompletionByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	completionID, ok := pathID(r.URL.Path, "/completions/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := s.app.DeleteCompletion(user, completionID); err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "completion removed"})
}

// feedback handlers
func (s *Server) handleAddFeedback(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req feedbackRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	feedback, err := s.app.SaveFeedback(user, req.CourseID, req.Rating, req.FeedbackText)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedback)
}

func (s *Server) handleCourseFeedback(w http.ResponseWriter, r *http.Request, user domain.User, courseID uint) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	feedback, err := s.app.ListFeedback(user, courseID)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedback)
}

func (s *Server) handleFeedbackByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	feedbackID, ok := pathID(r.URL.Path, "/feedback/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var req feedbackUpdateRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		feedback, err := s.app.UpdateFeedback(user, feedbackID, app.FeedbackUpdate{
			Rating:       req.Rating,
			FeedbackText: req.FeedbackText,
		})
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, feedback)
	case http.MethodDelete:
		if err := s.app.DeleteFeedback(user, feedbackID); err != nil {
			s.writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "feedback removed"})
	default:
		methodNotAllowed(w)
	}
}

// bookmark handlers
func (s *Server) handleAddBookmark(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req bookmarkRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	bookmark, err := s.app.AddBookmark(user, req.ContentID)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookmark)
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	bookmarks, err := s.app.ListBookmarks(user)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarks)
}

func (s *Server) handleBookmarkByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	bookmarkID, ok := pathID(r.URL.Path, "/bookmarks/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := s.app.DeleteBookmark(user, bookmarkID); err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "bookmark removed"})
}

// rate limiting
func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	if limiter == nil {
		return true
	}
	key := r.URL.Path + "|" + util.ClientIP(r, nil)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, nil),
		"request_id", util.RequestIDFromRequest(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, app.ErrNotCourseTeacher),
		errors.Is(err, app.ErrNoCourseAccess),
		errors.Is(err, app.ErrNotCourseMember),
		errors.Is(err, app.ErrNotAnnouncementOwner),
		errors.Is(err, app.ErrNotCompletionOwner),
		errors.Is(err, app.ErrNotFeedbackOwner),
		errors.Is(err, app.ErrNotBookmarkOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrAlreadyCompleted),
		errors.Is(err, app.ErrAlreadyBookmarked),
		errors.Is(err, app.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// request/response payloads
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type profileUpdateRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Description *string `json:"description"`
}

type profileView struct {
	ID                uint                  `json:"id"`
	Username          string                `json:"username"`
	FirstName         string                `json:"firstName"`
	LastName          string                `json:"lastName"`
	Email             string                `json:"email"`
	Profile           domain.UserProfile    `json:"profile"`
	ProfilePictureURL string                `json:"profilePictureUrl,omitempty"`
	CoursesCreated    []domain.Course       `json:"coursesCreated"`
	CoursesJoined     []domain.CourseMember `json:"coursesJoined"`
}

type announcementRequest struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PublishDate time.Time `json:"publishDate"`
	IsActive    bool      `json:"isActive"`
}

type announcementUpdateRequest struct {
	Title       *string    `json:"title"`
	Content     *string    `json:"content"`
	PublishDate *time.Time `json:"publishDate"`
	IsActive    *bool      `json:"isActive"`
}

type announcementView struct {
	domain.CourseAnnouncement
	Preview string `json:"preview"`
}

type completionRequest struct {
	ContentID uint `json:"contentId"`
}

type feedbackRequest struct {
	CourseID     uint   `json:"courseId"`
	Rating       int    `json:"rating"`
	FeedbackText string `json:"feedbackText"`
}

type feedbackUpdateRequest struct {
	Rating       *int    `json:"rating"`
	FeedbackText *string `json:"feedbackText"`
}

type bookmarkRequest struct {
	ContentID uint `json:"contentId"`
}

// preview derives a short plain-text summary from HTML announcement bodies.
func preview(content string) string {
	return util.TruncateText(util.ExtractText(content), previewMaxRunes)
}

func formValue(r *http.Request, name string) *string {
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func pathID(urlPath, prefix string) (uint, bool) {
	rest := strings.TrimPrefix(urlPath, prefix)
	if rest == "" || strings.Contains(rest, "/") {
		return 0, false
	}
	id, err := parseID(rest)
	if err != nil {
		return 0, false
	}
	return id, true
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
