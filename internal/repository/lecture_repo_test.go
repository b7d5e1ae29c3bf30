package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edulens/edulens-api/internal/models"
)

func setupLectureTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Lecture{}, &models.LectureFile{}, &models.LectureEvaluation{}))
	return db
}

func TestLectureRepositoryCreateAndGet(t *testing.T) {
	db := setupLectureTestDB(t)
	repo := NewLectureRepository(db)

	lecture := models.Lecture{
		Title:           "Intro to Recursion",
		TeacherID:       "t-100",
		CourseCode:      "CS101",
		Date:            time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Transcript:      "Today we cover recursion.",
		DurationMinutes: 50,
		Topics:          "recursion, call stack",
	}
	require.NoError(t, repo.Create(context.Background(), &lecture))
	require.NotZero(t, lecture.ID)

	file := models.LectureFile{
		LectureID: lecture.ID,
		Kind:      models.LectureFileKindSlides,
		FileName:  "week3.txt",
		MimeType:  "text/plain",
		SizeBytes: 128,
	}
	require.NoError(t, repo.AddFile(context.Background(), &file))

	got, err := repo.GetByID(context.Background(), lecture.ID)
	require.NoError(t, err)
	require.Equal(t, "Intro to Recursion", got.Title)
	require.Len(t, got.Files, 1)
	require.Equal(t, models.LectureFileKindSlides, got.Files[0].Kind)
}

func TestLectureRepositoryGetByIDMissing(t *testing.T) {
	db := setupLectureTestDB(t)
	repo := NewLectureRepository(db)

	_, err := repo.GetByID(context.Background(), 42)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLectureRepositoryLatestEvaluation(t *testing.T) {
	db := setupLectureTestDB(t)
	repo := NewLectureRepository(db)

	lecture := models.Lecture{Title: "L", TeacherID: "t-1", Transcript: "x"}
	require.NoError(t, repo.Create(context.Background(), &lecture))

	older := models.LectureEvaluation{
		LectureID:  lecture.ID,
		TotalScore: 61.5,
		Grade:      "D",
		Method:     "comprehensive_analysis",
		Components: datatypes.JSONMap{"Correctness": 20.0},
		CreatedAt:  time.Now().Add(-time.Hour),
	}
	newer := models.LectureEvaluation{
		LectureID:  lecture.ID,
		TotalScore: 78.25,
		Grade:      "B",
		Method:     "comprehensive_analysis",
		Components: datatypes.JSONMap{"Correctness": 28.0},
		CreatedAt:  time.Now(),
	}
	require.NoError(t, repo.SaveEvaluation(context.Background(), &older))
	require.NoError(t, repo.SaveEvaluation(context.Background(), &newer))

	latest, err := repo.LatestEvaluation(context.Background(), lecture.ID)
	require.NoError(t, err)
	require.InDelta(t, 78.25, latest.TotalScore, 0.001)
	require.Equal(t, "B", latest.Grade)
}

func TestLectureRepositoryListEvaluationsByTeacher(t *testing.T) {
	db := setupLectureTestDB(t)
	repo := NewLectureRepository(db)

	mine := models.Lecture{Title: "Mine", TeacherID: "t-1", Transcript: "x"}
	other := models.Lecture{Title: "Other", TeacherID: "t-2", Transcript: "y"}
	require.NoError(t, repo.Create(context.Background(), &mine))
	require.NoError(t, repo.Create(context.Background(), &other))

	require.NoError(t, repo.SaveEvaluation(context.Background(), &models.LectureEvaluation{
		LectureID: mine.ID, TotalScore: 80, Grade: "B", Method: "comprehensive_analysis",
	}))
	require.NoError(t, repo.SaveEvaluation(context.Background(), &models.LectureEvaluation{
		LectureID: other.ID, TotalScore: 90, Grade: "A", Method: "comprehensive_analysis",
	}))

	evaluations, err := repo.ListEvaluationsByTeacher(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, evaluations, 1)
	require.Equal(t, mine.ID, evaluations[0].LectureID)
}
