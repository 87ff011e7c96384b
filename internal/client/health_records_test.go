package client

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

func TestHealthRecordsClient_CreateMultipart(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.login(t)
	b.handle("/health-records/", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		assert.Equal(t, "Blood panel", r.FormValue("title"))
		assert.Equal(t, "lab_result", r.FormValue("type"))
		_, hasNotes := r.MultipartForm.Value["notes"]
		assert.False(t, hasNotes, "empty fields are not sent")

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}

		defer func() { _ = file.Close() }()

		assert.Equal(t, carepoint.DefaultAttachmentName, header.Filename)
		assert.Equal(t, carepoint.DefaultAttachmentContentType, header.Header.Get("Content-Type"))

		data, _ := io.ReadAll(file)
		assert.Equal(t, "jpeg-bytes", string(data))

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"id": "hr-1", "title": "Blood panel", "file_name": header.Filename,
		})
	}).Methods(http.MethodPost)

	record, err := b.client.HealthRecords().Create(context.Background(),
		&carepoint.HealthRecordRequest{Title: "Blood panel", Type: "lab_result", Date: "2026-10-01"},
		&carepoint.Attachment{Reader: strings.NewReader("jpeg-bytes")},
	)
	require.NoError(t, err)
	assert.Equal(t, "hr-1", record.ID)
	assert.Equal(t, carepoint.DefaultAttachmentName, record.FileName)
}

func TestHealthRecordsClient_UpdateWithoutFile(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.login(t)
	b.handle("/health-records/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		assert.Equal(t, "Updated", r.FormValue("title"))
		assert.Empty(t, r.MultipartForm.File)

		writeJSON(w, http.StatusOK, map[string]interface{}{"id": "hr-1", "title": "Updated"})
	}).Methods(http.MethodPatch)

	record, err := b.client.HealthRecords().Update(context.Background(), "hr-1",
		&carepoint.HealthRecordRequest{Title: "Updated"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Updated", record.Title)
}

func TestHealthRecordsClient_ListAndDelete(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.login(t)
	b.handle("/health-records/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lab_result", r.URL.Query().Get("type"))
		writeJSON(w, http.StatusOK, []map[string]interface{}{{"id": "hr-1"}})
	}).Methods(http.MethodGet)
	b.handle("/health-records/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	ctx := context.Background()

	records, err := b.client.HealthRecords().List(ctx, &carepoint.HealthRecordFilter{Type: "lab_result"})
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NoError(t, b.client.HealthRecords().Delete(ctx, "hr-1"))
}
