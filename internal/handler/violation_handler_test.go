package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codetrack-go-api/internal/dto"
	"github.com/noah-isme/codetrack-go-api/internal/models"
	"github.com/noah-isme/codetrack-go-api/internal/service"
)

type stubAntiCheatService struct {
	outcome      dto.ViolationOutcome
	recordErr    error
	lastSession  uint
	lastType     models.ViolationType
	lastDetails  map[string]any
}

func (s *stubAntiCheatService) StartSession(_ context.Context, payload dto.SessionCreateRequest) (models.TestSession, error) {
	return models.TestSession{ID: 11, TestID: payload.TestID, UserID: payload.UserID, TeacherID: payload.TeacherID}, nil
}

func (s *stubAntiCheatService) RecordViolation(_ context.Context, sessionID uint, violationType models.ViolationType, details map[string]any) (dto.ViolationOutcome, error) {
	s.lastSession = sessionID
	s.lastType = violationType
	s.lastDetails = details
	return s.outcome, s.recordErr
}

func (s *stubAntiCheatService) SessionViolations(context.Context, uint) (dto.SessionViolationSummary, error) {
	return dto.SessionViolationSummary{}, nil
}

func (s *stubAntiCheatService) TestViolationStats(context.Context, uint) (dto.TestViolationStats, error) {
	return dto.TestViolationStats{}, nil
}

func newViolationApp(stub *stubAntiCheatService) *fiber.App {
	app := fiber.New()
	NewViolationHandler(stub, zerolog.Nop()).Register(app.Group("/api/v1/proctor"))
	return app
}

func TestRecordViolationEndpoint(t *testing.T) {
	stub := &stubAntiCheatService{outcome: dto.ViolationOutcome{
		PenaltyLevel:    models.PenaltyMinor,
		TotalViolations: 3,
		ScoreReduction:  5,
		TimePenalty:     30,
	}}
	app := newViolationApp(stub)

	body, err := json.Marshal(fiber.Map{
		"violation_type": "TAB_SWITCH",
		"details":        fiber.Map{"from": "editor"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/proctor/sessions/11/violations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, uint(11), stub.lastSession)
	require.Equal(t, models.ViolationTabSwitch, stub.lastType)
	require.Equal(t, "editor", stub.lastDetails["from"])

	var payload struct {
		Success bool                 `json:"success"`
		Data    dto.ViolationOutcome `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.True(t, payload.Success)
	require.Equal(t, models.PenaltyMinor, payload.Data.PenaltyLevel)
	require.Equal(t, 3, payload.Data.TotalViolations)
}

func TestRecordViolationEndpointUnknownSession(t *testing.T) {
	stub := &stubAntiCheatService{recordErr: service.ErrSessionNotFound}
	app := newViolationApp(stub)

	body := []byte(`{"violation_type":"TAB_SWITCH"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/proctor/sessions/99/violations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecordViolationEndpointUnknownType(t *testing.T) {
	stub := &stubAntiCheatService{recordErr: service.ErrUnknownViolationType}
	app := newViolationApp(stub)

	body := []byte(`{"violation_type":"MIND_READING"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/proctor/sessions/11/violations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStartSessionEndpoint(t *testing.T) {
	stub := &stubAntiCheatService{}
	app := newViolationApp(stub)

	body := []byte(`{"test_id":7,"user_id":1,"teacher_id":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/proctor/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var payload struct {
		Success bool               `json:"success"`
		Data    models.TestSession `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.True(t, payload.Success)
	require.Equal(t, uint(11), payload.Data.ID)
	require.Equal(t, uint(7), payload.Data.TestID)
}

func TestRecordViolationEndpointBadSessionID(t *testing.T) {
	stub := &stubAntiCheatService{}
	app := newViolationApp(stub)

	body := []byte(`{"violation_type":"TAB_SWITCH"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/proctor/sessions/not-a-number/violations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
