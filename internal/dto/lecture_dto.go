package dto

import (
	"time"

	"github.com/edulens/edulens-api/internal/models"
)

// CreateLectureRequest represents the payload for registering a lecture.
type CreateLectureRequest struct {
	Title           string `json:"title" validate:"required,min=1,max=255"`
	TeacherID       string `json:"teacher_id" validate:"required,max=64"`
	CourseCode      string `json:"course_code" validate:"omitempty,max=64"`
	Date            string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Transcript      string `json:"transcript" validate:"required,min=1"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,gte=0,lte=600"`
	Topics          string `json:"topics" validate:"omitempty,max=2000"`
	Objectives      string `json:"objectives" validate:"omitempty,max=5000"`
	SourceMaterials string `json:"source_materials"`
	SlidesContent   string `json:"slides_content"`
}

// LectureFileResponse describes one stored attachment.
type LectureFileResponse struct {
	ID        uint   `json:"id"`
	Kind      string `json:"kind"`
	FileName  string `json:"file_name"`
	URL       string `json:"url,omitempty"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Warning   string `json:"warning,omitempty"`
}

// LectureResponse represents a lecture to API consumers. The transcript is
// omitted by default because it can run to megabytes.
type LectureResponse struct {
	ID              uint                  `json:"id"`
	Title           string                `json:"title"`
	TeacherID       string                `json:"teacher_id"`
	CourseCode      string                `json:"course_code,omitempty"`
	Date            time.Time             `json:"date"`
	DurationMinutes int                   `json:"duration_minutes"`
	Topics          string                `json:"topics,omitempty"`
	Objectives      string                `json:"objectives,omitempty"`
	WordCount       int                   `json:"word_count"`
	Files           []LectureFileResponse `json:"files,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// NewLectureFileResponse builds a response DTO from a model.
func NewLectureFileResponse(file models.LectureFile) LectureFileResponse {
	return LectureFileResponse{
		ID:        file.ID,
		Kind:      file.Kind,
		FileName:  file.FileName,
		URL:       file.URL,
		MimeType:  file.MimeType,
		SizeBytes: file.SizeBytes,
		Warning:   file.Warning,
	}
}

// NewLectureResponse builds a response DTO from a model.
func NewLectureResponse(lecture models.Lecture, wordCount int) LectureResponse {
	response := LectureResponse{
		ID:              lecture.ID,
		Title:           lecture.Title,
		TeacherID:       lecture.TeacherID,
		CourseCode:      lecture.CourseCode,
		Date:            lecture.Date,
		DurationMinutes: lecture.DurationMinutes,
		Topics:          lecture.Topics,
		Objectives:      lecture.Objectives,
		WordCount:       wordCount,
		CreatedAt:       lecture.CreatedAt,
	}

	if len(lecture.Files) > 0 {
		files := make([]LectureFileResponse, 0, len(lecture.Files))
		for _, file := range lecture.Files {
			files = append(files, NewLectureFileResponse(file))
		}
		response.Files = files
	}

	return response
}
