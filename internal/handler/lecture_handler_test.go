package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/edulens/edulens-api/internal/dto"
	"github.com/edulens/edulens-api/internal/handler"
	"github.com/edulens/edulens-api/internal/service"
)

type mockLectureService struct {
	createResponse     dto.LectureResponse
	fileResponse       dto.LectureFileResponse
	evaluationResponse dto.EvaluationResponse
	err                error

	lastAttachKind string
	lastAttachData []byte
}

func (m *mockLectureService) Create(_ context.Context, req dto.CreateLectureRequest) (dto.LectureResponse, error) {
	if m.err != nil {
		return dto.LectureResponse{}, m.err
	}
	return m.createResponse, nil
}

func (m *mockLectureService) Get(_ context.Context, id uint) (dto.LectureResponse, error) {
	if m.err != nil {
		return dto.LectureResponse{}, m.err
	}
	return m.createResponse, nil
}

func (m *mockLectureService) AttachFile(_ context.Context, lectureID uint, kind, filename string, data []byte) (dto.LectureFileResponse, error) {
	m.lastAttachKind = kind
	m.lastAttachData = data
	if m.err != nil {
		return dto.LectureFileResponse{}, m.err
	}
	return m.fileResponse, nil
}

func (m *mockLectureService) Evaluate(_ context.Context, lectureID uint) (dto.EvaluationResponse, error) {
	if m.err != nil {
		return dto.EvaluationResponse{}, m.err
	}
	return m.evaluationResponse, nil
}

func (m *mockLectureService) GetEvaluation(_ context.Context, lectureID uint) (dto.EvaluationResponse, error) {
	if m.err != nil {
		return dto.EvaluationResponse{}, m.err
	}
	return m.evaluationResponse, nil
}

func newLectureTestApp(svc service.LectureService) *fiber.App {
	app := fiber.New()
	logger := zerolog.New(io.Discard)
	handler.NewLectureHandler(svc, validator.New(), logger).Register(app.Group("/api/v1/lectures"))
	return app
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestLectureHandlerCreate(t *testing.T) {
	svc := &mockLectureService{createResponse: dto.LectureResponse{ID: 1, Title: "Intro", TeacherID: "t-1", WordCount: 42}}
	app := newLectureTestApp(svc)

	payload := `{"title":"Intro","teacher_id":"t-1","transcript":"Today we cover recursion."}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/lectures", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool                `json:"success"`
		Data    dto.LectureResponse `json:"data"`
		Message string              `json:"message"`
	}
	decodeBody(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "lecture created", response.Message)
	require.Equal(t, uint(1), response.Data.ID)
}

func TestLectureHandlerCreateValidation(t *testing.T) {
	app := newLectureTestApp(&mockLectureService{})

	cases := []struct {
		name    string
		payload string
	}{
		{name: "missing_title", payload: `{"teacher_id":"t-1","transcript":"x"}`},
		{name: "missing_transcript", payload: `{"title":"T","teacher_id":"t-1"}`},
		{name: "bad_date", payload: `{"title":"T","teacher_id":"t-1","transcript":"x","date":"03/01/2026"}`},
		{name: "not_json", payload: `title=T`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/lectures", strings.NewReader(tc.payload))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestLectureHandlerAttachSlides(t *testing.T) {
	svc := &mockLectureService{fileResponse: dto.LectureFileResponse{ID: 3, Kind: "slides", FileName: "week3.txt"}}
	app := newLectureTestApp(svc)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "week3.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("slide text"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lectures/5/slides", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "slides", svc.lastAttachKind)
	require.Equal(t, []byte("slide text"), svc.lastAttachData)
}

func TestLectureHandlerAttachMissingFile(t *testing.T) {
	app := newLectureTestApp(&mockLectureService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lectures/5/materials", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLectureHandlerEvaluate(t *testing.T) {
	svc := &mockLectureService{evaluationResponse: dto.EvaluationResponse{
		LectureID:  5,
		TotalScore: 82.5,
		Grade:      "B",
		Method:     "comprehensive_analysis",
		Components: map[string]interface{}{"Correctness": 30.0},
	}}
	app := newLectureTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lectures/5/evaluate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                   `json:"success"`
		Data    dto.EvaluationResponse `json:"data"`
	}
	decodeBody(t, resp, &response)
	require.True(t, response.Success)
	require.InDelta(t, 82.5, response.Data.TotalScore, 0.001)
	require.Equal(t, "B", response.Data.Grade)
}

func TestLectureHandlerInvalidID(t *testing.T) {
	app := newLectureTestApp(&mockLectureService{})

	for _, path := range []string{
		"/api/v1/lectures/abc/evaluate",
		"/api/v1/lectures/0/evaluation",
	} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if strings.HasSuffix(path, "/evaluation") {
			req = httptest.NewRequest(http.MethodGet, path, nil)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestLectureHandlerServiceErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "not_found", err: service.ErrLectureNotFound, statusCode: fiber.StatusNotFound},
		{name: "no_evaluation", err: service.ErrEvaluationNotFound, statusCode: fiber.StatusNotFound},
		{name: "too_large", err: service.ErrAttachmentTooLarge, statusCode: fiber.StatusRequestEntityTooLarge},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newLectureTestApp(&mockLectureService{err: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/lectures/5/evaluate", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}
