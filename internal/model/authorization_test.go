package model

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meditrack/authorization-api/pkg/errors"
)

func newPendingAuthorization(t *testing.T) *MedicalAuthorization {
	t.Helper()
	auth, err := NewMedicalAuthorization(uuid.New(), ServiceConsulta, "general consultation", uuid.New())
	require.NoError(t, err)
	return auth
}

func TestNewMedicalAuthorization(t *testing.T) {
	patientID := uuid.New()
	requestedBy := uuid.New()

	auth, err := NewMedicalAuthorization(patientID, ServiceProcedimiento, "  knee arthroscopy procedure  ", requestedBy)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, auth.ID)
	assert.Equal(t, patientID, auth.PatientID)
	assert.Equal(t, StatusPendiente, auth.Status)
	assert.Equal(t, "knee arthroscopy procedure", auth.Description)
	assert.Equal(t, requestedBy, auth.RequestedBy)
	assert.False(t, auth.Deleted)
}

func TestNewMedicalAuthorizationValidation(t *testing.T) {
	requestedBy := uuid.New()

	_, err := NewMedicalAuthorization(uuid.Nil, ServiceConsulta, "valid description", requestedBy)
	assert.True(t, errors.IsKind(err, errors.KindValidation))

	_, err = NewMedicalAuthorization(uuid.New(), ServiceType("VACUNA"), "valid description", requestedBy)
	assert.True(t, errors.IsKind(err, errors.KindValidation))

	_, err = NewMedicalAuthorization(uuid.New(), ServiceConsulta, "valid description", uuid.Nil)
	assert.True(t, errors.IsKind(err, errors.KindValidation))
}

func TestDescriptionBounds(t *testing.T) {
	// 9 characters is rejected, 10 is accepted
	_, err := NewMedicalAuthorization(uuid.New(), ServiceConsulta, "123456789", uuid.New())
	assert.True(t, errors.IsKind(err, errors.KindValidation))

	auth, err := NewMedicalAuthorization(uuid.New(), ServiceConsulta, "1234567890", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "1234567890", auth.Description)

	_, err = NewMedicalAuthorization(uuid.New(), ServiceConsulta, strings.Repeat("x", 501), uuid.New())
	assert.True(t, errors.IsKind(err, errors.KindValidation))

	// bounds count characters, not bytes
	_, err = NewMedicalAuthorization(uuid.New(), ServiceCirugia, "cirugías!", uuid.New())
	assert.True(t, errors.IsKind(err, errors.KindValidation))

	_, err = NewMedicalAuthorization(uuid.New(), ServiceCirugia, "cirugías!!", uuid.New())
	require.NoError(t, err)

	_, err = NewMedicalAuthorization(uuid.New(), ServiceConsulta, strings.Repeat("á", 500), uuid.New())
	require.NoError(t, err)
}

func TestApproveTransitions(t *testing.T) {
	auth := newPendingAuthorization(t)

	require.NoError(t, auth.Approve())
	assert.Equal(t, StatusAprobada, auth.Status)

	// approving twice fails
	err := auth.Approve()
	assert.True(t, errors.IsKind(err, errors.KindConflict))

	// an approved authorization cannot be rejected
	err = auth.Reject()
	assert.True(t, errors.IsKind(err, errors.KindConflict))
}

func TestRejectTransitions(t *testing.T) {
	auth := newPendingAuthorization(t)

	require.NoError(t, auth.Reject())
	assert.Equal(t, StatusRechazada, auth.Status)

	err := auth.Reject()
	assert.True(t, errors.IsKind(err, errors.KindConflict))

	// a rejected authorization cannot be approved
	err = auth.Approve()
	assert.True(t, errors.IsKind(err, errors.KindConflict))
}

func TestMarkUnderReview(t *testing.T) {
	auth := newPendingAuthorization(t)

	require.NoError(t, auth.MarkUnderReview())
	assert.Equal(t, StatusEnRevision, auth.Status)

	// only PENDIENTE can move to EN_REVISION
	err := auth.MarkUnderReview()
	assert.True(t, errors.IsKind(err, errors.KindConflict))

	require.NoError(t, auth.Approve())
	err = auth.MarkUnderReview()
	assert.True(t, errors.IsKind(err, errors.KindConflict))
}

func TestUnderReviewCanBeFinalized(t *testing.T) {
	auth := newPendingAuthorization(t)
	require.NoError(t, auth.MarkUnderReview())
	require.NoError(t, auth.Approve())
	assert.Equal(t, StatusAprobada, auth.Status)

	other := newPendingAuthorization(t)
	require.NoError(t, other.MarkUnderReview())
	require.NoError(t, other.Reject())
	assert.Equal(t, StatusRechazada, other.Status)
}

func TestSoftDelete(t *testing.T) {
	auth := newPendingAuthorization(t)
	require.NoError(t, auth.Delete())
	assert.True(t, auth.Deleted)
	assert.Equal(t, StatusPendiente, auth.Status)

	err := auth.Delete()
	assert.True(t, errors.IsKind(err, errors.KindConflict))

	// deleted authorizations refuse transitions
	assert.True(t, errors.IsKind(auth.Approve(), errors.KindConflict))
	assert.True(t, errors.IsKind(auth.Reject(), errors.KindConflict))
	assert.True(t, errors.IsKind(auth.MarkUnderReview(), errors.KindConflict))
}

func TestDeleteGuards(t *testing.T) {
	approved := newPendingAuthorization(t)
	require.NoError(t, approved.Approve())
	assert.True(t, errors.IsKind(approved.Delete(), errors.KindConflict))

	underReview := newPendingAuthorization(t)
	require.NoError(t, underReview.MarkUnderReview())
	assert.True(t, errors.IsKind(underReview.Delete(), errors.KindConflict))

	rejected := newPendingAuthorization(t)
	require.NoError(t, rejected.Reject())
	assert.NoError(t, rejected.Delete())
}

func TestUpdateDescription(t *testing.T) {
	auth := newPendingAuthorization(t)

	require.NoError(t, auth.UpdateDescription("an updated description"))
	assert.Equal(t, "an updated description", auth.Description)

	err := auth.UpdateDescription("too short")
	assert.True(t, errors.IsKind(err, errors.KindValidation))

	require.NoError(t, auth.Approve())
	err = auth.UpdateDescription("another valid description")
	assert.True(t, errors.IsKind(err, errors.KindConflict))
}

func TestMinimumCoverageRequired(t *testing.T) {
	cases := map[ServiceType]int{
		ServiceConsulta:      70,
		ServiceProcedimiento: 80,
		ServiceCirugia:       90,
	}
	for serviceType, want := range cases {
		auth, err := NewMedicalAuthorization(uuid.New(), serviceType, "some valid description", uuid.New())
		require.NoError(t, err)
		assert.Equal(t, want, auth.MinimumCoverageRequired())
	}
}

func TestBelongsToPatient(t *testing.T) {
	patientID := uuid.New()
	auth, err := NewMedicalAuthorization(patientID, ServiceCirugia, "cardiac surgery request", uuid.New())
	require.NoError(t, err)

	assert.True(t, auth.BelongsToPatient(patientID))
	assert.False(t, auth.BelongsToPatient(uuid.New()))
}
