package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edulens/edulens-api/internal/models"
)

// LectureRepository exposes persistence helpers for lectures and their
// evaluation history.
type LectureRepository interface {
	Create(ctx context.Context, lecture *models.Lecture) error
	Update(ctx context.Context, lecture *models.Lecture) error
	GetByID(ctx context.Context, id uint) (models.Lecture, error)
	AddFile(ctx context.Context, file *models.LectureFile) error
	SaveEvaluation(ctx context.Context, evaluation *models.LectureEvaluation) error
	LatestEvaluation(ctx context.Context, lectureID uint) (models.LectureEvaluation, error)
	ListEvaluationsByTeacher(ctx context.Context, teacherID string) ([]models.LectureEvaluation, error)
}

// NewLectureRepository constructs a lecture repository.
func NewLectureRepository(db *gorm.DB) LectureRepository {
	return &lectureRepository{db: db}
}

type lectureRepository struct {
	db *gorm.DB
}

func (r *lectureRepository) Create(ctx context.Context, lecture *models.Lecture) error {
	return r.db.WithContext(ctx).Create(lecture).Error
}

func (r *lectureRepository) Update(ctx context.Context, lecture *models.Lecture) error {
	return r.db.WithContext(ctx).Save(lecture).Error
}

func (r *lectureRepository) GetByID(ctx context.Context, id uint) (models.Lecture, error) {
	var lecture models.Lecture
	err := r.db.WithContext(ctx).
		Preload("Files").
		First(&lecture, id).Error
	if err != nil {
		return models.Lecture{}, err
	}
	return lecture, nil
}

func (r *lectureRepository) AddFile(ctx context.Context, file *models.LectureFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *lectureRepository) SaveEvaluation(ctx context.Context, evaluation *models.LectureEvaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

func (r *lectureRepository) LatestEvaluation(ctx context.Context, lectureID uint) (models.LectureEvaluation, error) {
	var evaluation models.LectureEvaluation
	err := r.db.WithContext(ctx).
		Where("lecture_id = ?", lectureID).
		Order("created_at DESC").
		First(&evaluation).Error
	if err != nil {
		return models.LectureEvaluation{}, err
	}
	return evaluation, nil
}

func (r *lectureRepository) ListEvaluationsByTeacher(ctx context.Context, teacherID string) ([]models.LectureEvaluation, error) {
	var evaluations []models.LectureEvaluation
	err := r.db.WithContext(ctx).
		Joins("JOIN lectures ON lectures.id = lecture_evaluations.lecture_id").
		Where("lectures.teacher_id = ?", teacherID).
		Order("lecture_evaluations.created_at DESC").
		Find(&evaluations).Error
	if err != nil {
		return nil, err
	}
	return evaluations, nil
}
