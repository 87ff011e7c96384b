package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

func TestMedicalHistoryClient_Conditions(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.login(t)
	b.handle("/medical-history/conditions", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)

		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"count":   1,
				"data": []map[string]interface{}{
					{"id": "c-1", "name": "Asthma", "diagnosedDate": "2019-04-02", "status": "chronic"},
				},
			})
		case http.MethodPost:
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "2024-01-10", body["diagnosedDate"])

			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"success": true,
				"message": "Medical condition added successfully",
				"data":    map[string]interface{}{"id": "c-2", "name": body["name"], "status": "active"},
			})
		}
	})

	ctx := context.Background()

	conditions, err := b.client.MedicalHistory().Conditions(ctx)
	require.NoError(t, err)
	require.Len(t, conditions, 1)
	assert.Equal(t, "2019-04-02", conditions[0].DiagnosedDate)
	assert.Equal(t, carepoint.ConditionChronic, conditions[0].Status)

	created, err := b.client.MedicalHistory().CreateCondition(ctx, &carepoint.MedicalConditionRequest{
		Name:          "Migraine",
		DiagnosedDate: "2024-01-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "c-2", created.ID)
	assert.Equal(t, "Migraine", created.Name)
}

func TestMedicalHistoryClient_DetailRoutes(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.login(t)

	var deletes int32

	b.handle("/medical-history/surgeries/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		case http.MethodPatch:
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]string{"hospital": "St Mary's"}, body)

			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data":    map[string]interface{}{"id": "s-1", "name": "Appendectomy", "hospital": "St Mary's"},
			})
		case http.MethodDelete:
			atomic.AddInt32(&deletes, 1)
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Surgery deleted successfully"})
		}
	})
	b.handle("/medical-history/allergies/{id}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	}).Methods(http.MethodDelete)

	ctx := context.Background()
	history := b.client.MedicalHistory()

	missing, err := history.Surgery(ctx, "s-9")
	require.NoError(t, err)
	assert.Nil(t, missing)

	updated, err := history.UpdateSurgery(ctx, "s-1", &carepoint.SurgeryRequest{Hospital: "St Mary's"})
	require.NoError(t, err)
	assert.Equal(t, "St Mary's", updated.Hospital)

	require.NoError(t, history.DeleteSurgery(ctx, "s-1"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&deletes))

	err = history.DeleteAllergy(ctx, "a-1")
	require.Error(t, err)
	assert.True(t, carepoint.IsNotFound(err))
}

func TestMedicalHistoryClient_WithoutSession(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	ctx := context.Background()

	allergies, err := b.client.MedicalHistory().Allergies(ctx)
	require.NoError(t, err)
	assert.NotNil(t, allergies)
	assert.Empty(t, allergies)

	_, err = b.client.MedicalHistory().CreateAllergy(ctx, &carepoint.AllergyRequest{Allergen: "Peanuts", Reaction: "Hives"})
	require.Error(t, err)
	assert.True(t, carepoint.IsAuthenticationRequired(err))

	assert.ErrorIs(t, b.client.MedicalHistory().DeleteCondition(ctx, ""), constants.ErrIDRequired)

	_, err = b.client.MedicalHistory().UpdateAllergy(ctx, "", &carepoint.AllergyRequest{})
	assert.ErrorIs(t, err, constants.ErrIDRequired)
}
