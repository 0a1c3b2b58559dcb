package authorization

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meditrack/authorization-api/internal/middleware"
	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/pkg/errors"
	"github.com/meditrack/authorization-api/pkg/validator"
)

type stubAuthorizationService struct {
	authorization *model.MedicalAuthorization
	list          []*model.MedicalAuthorization
	err           error
}

func (s *stubAuthorizationService) Create(context.Context, uuid.UUID, *model.CreateAuthorizationRequest) (*model.MedicalAuthorization, error) {
	return s.authorization, s.err
}

func (s *stubAuthorizationService) Get(context.Context, uuid.UUID, uuid.UUID) (*model.MedicalAuthorization, error) {
	return s.authorization, s.err
}

func (s *stubAuthorizationService) ListByPatient(context.Context, uuid.UUID, uuid.UUID) ([]*model.MedicalAuthorization, error) {
	return s.list, s.err
}

func (s *stubAuthorizationService) ListPending(context.Context, uuid.UUID) ([]*model.MedicalAuthorization, error) {
	return s.list, s.err
}

func (s *stubAuthorizationService) UpdateStatus(context.Context, uuid.UUID, uuid.UUID, model.AuthorizationStatus) (*model.MedicalAuthorization, error) {
	return s.authorization, s.err
}

func (s *stubAuthorizationService) UpdateDescription(context.Context, uuid.UUID, uuid.UUID, string) (*model.MedicalAuthorization, error) {
	return s.authorization, s.err
}

func (s *stubAuthorizationService) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return s.err
}

type stubEvaluationService struct {
	evaluation *model.CoverageEvaluation
	err        error
}

func (s *stubEvaluationService) Evaluate(context.Context, uuid.UUID, uuid.UUID, decimal.Decimal) (*model.CoverageEvaluation, error) {
	return s.evaluation, s.err
}

func (s *stubEvaluationService) GetByAuthorization(context.Context, uuid.UUID, uuid.UUID) (*model.CoverageEvaluation, error) {
	return s.evaluation, s.err
}

func newTestRouter(t *testing.T, auths *stubAuthorizationService, evals *stubEvaluationService) *gin.Engine {
	t.Helper()
	require.NoError(t, validator.Register())

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uuid.New())
	})
	NewHandler(auths, evals).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func sampleAuthorization(t *testing.T) *model.MedicalAuthorization {
	t.Helper()
	a, err := model.NewMedicalAuthorization(uuid.New(), model.ServiceConsulta,
		"consulta de control anual", uuid.New())
	require.NoError(t, err)
	return a
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestCreateAuthorization(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		a := sampleAuthorization(t)
		engine := newTestRouter(t, &stubAuthorizationService{authorization: a}, &stubEvaluationService{})

		rec := doJSON(t, engine, http.MethodPost, "/api/v1/authorizations", gin.H{
			"patient_id":   a.PatientID.String(),
			"service_type": "CONSULTA",
			"description":  "consulta de control anual",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("binding rejects short description", func(t *testing.T) {
		engine := newTestRouter(t, &stubAuthorizationService{}, &stubEvaluationService{})

		rec := doJSON(t, engine, http.MethodPost, "/api/v1/authorizations", gin.H{
			"patient_id":   uuid.New().String(),
			"service_type": "CONSULTA",
			"description":  "too short",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("business rule maps to 400", func(t *testing.T) {
		engine := newTestRouter(t, &stubAuthorizationService{
			err: errors.BusinessRule("patient is not active"),
		}, &stubEvaluationService{})

		rec := doJSON(t, engine, http.MethodPost, "/api/v1/authorizations", gin.H{
			"patient_id":   uuid.New().String(),
			"service_type": "CONSULTA",
			"description":  "consulta de control anual",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestErrorMapping(t *testing.T) {
	id := uuid.New().String()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errors.NotFound("authorization", id), http.StatusNotFound},
		{"conflict", errors.Conflict("already evaluated"), http.StatusConflict},
		{"unauthorized", errors.Unauthorized("no permission"), http.StatusForbidden},
		{"external service", errors.ExternalService("insurance validation service", nil), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestRouter(t, &stubAuthorizationService{err: tc.err}, &stubEvaluationService{err: tc.err})

			rec := doJSON(t, engine, http.MethodGet, "/api/v1/authorizations/"+id, nil)
			assert.Equal(t, tc.want, rec.Code)

			rec = doJSON(t, engine, http.MethodPost, "/api/v1/authorizations/"+id+"/evaluate", gin.H{
				"estimated_cost": "150000",
			})
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestUpdateStatusBinding(t *testing.T) {
	a := sampleAuthorization(t)
	engine := newTestRouter(t, &stubAuthorizationService{authorization: a}, &stubEvaluationService{})

	t.Run("valid status", func(t *testing.T) {
		rec := doJSON(t, engine, http.MethodPatch, "/api/v1/authorizations/"+a.ID.String()+"/status", gin.H{
			"status": "APROBADA",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		rec := doJSON(t, engine, http.MethodPatch, "/api/v1/authorizations/"+a.ID.String()+"/status", gin.H{
			"status": "CANCELADA",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		rec := doJSON(t, engine, http.MethodPatch, "/api/v1/authorizations/not-a-uuid/status", gin.H{
			"status": "APROBADA",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestEvaluate(t *testing.T) {
	a := sampleAuthorization(t)
	ev, err := model.NewCoverageEvaluation(a.ID, 80, decimal.NewFromInt(30000), true,
		`{"approved":true}`)
	require.NoError(t, err)

	engine := newTestRouter(t, &stubAuthorizationService{authorization: a},
		&stubEvaluationService{evaluation: ev})

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/authorizations/"+a.ID.String()+"/evaluate", gin.H{
		"estimated_cost": "150000",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			CoveragePercentage int  `json:"coverage_percentage"`
			Approved           bool `json:"approved"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.Approved)
	assert.Equal(t, 80, resp.Data.CoveragePercentage)
}
