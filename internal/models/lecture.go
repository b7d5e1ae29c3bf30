package models

import (
	"time"

	"gorm.io/datatypes"
)

// LectureFile kinds.
const (
	LectureFileKindSlides   = "slides"
	LectureFileKindMaterial = "material"
)

// Lecture is one recorded teaching session submitted for evaluation.
type Lecture struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	Title           string              `gorm:"size:255;not null" json:"title"`
	TeacherID       string              `gorm:"size:64;not null;index" json:"teacher_id"`
	CourseCode      string              `gorm:"size:64" json:"course_code"`
	Date            time.Time           `json:"date"`
	Transcript      string              `gorm:"type:text;not null" json:"transcript"`
	DurationMinutes int                 `gorm:"default:0" json:"duration_minutes"`
	Topics          string              `gorm:"type:text" json:"topics"`
	Objectives      string              `gorm:"type:text" json:"objectives"`
	SourceMaterials string              `gorm:"type:text" json:"source_materials"`
	SlidesContent   string              `gorm:"type:text" json:"slides_content"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Files           []LectureFile       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"files,omitempty"`
	Evaluations     []LectureEvaluation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"evaluations,omitempty"`
}

// LectureFile is an uploaded attachment whose extracted text feeds the
// evaluation. Warning records extraction limitations, such as binary formats
// we only accept but cannot read.
type LectureFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LectureID uint      `gorm:"not null;index" json:"lecture_id"`
	Kind      string    `gorm:"size:16;not null" json:"kind"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	URL       string    `gorm:"size:512" json:"url"`
	MimeType  string    `gorm:"size:128" json:"mime_type"`
	SizeBytes int64     `gorm:"default:0" json:"size_bytes"`
	Warning   string    `gorm:"size:512" json:"warning,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LectureEvaluation is one completed scoring run for a lecture. Components and
// Analysis store the full composite breakdown so a report can be rebuilt
// without re-running the pipeline.
type LectureEvaluation struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	LectureID       uint              `gorm:"not null;index" json:"lecture_id"`
	TotalScore      float64           `gorm:"not null" json:"total_score"`
	Grade           string            `gorm:"size:2;not null" json:"grade"`
	Method          string            `gorm:"size:64;not null" json:"method"`
	Components      datatypes.JSONMap `gorm:"type:jsonb" json:"components"`
	Analysis        datatypes.JSONMap `gorm:"type:jsonb" json:"analysis"`
	Recommendations datatypes.JSON    `gorm:"type:jsonb" json:"recommendations"`
	CreatedAt       time.Time         `json:"created_at"`
}
