package callflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsJSON(t *testing.T) {
	var got CallPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"queued","execution_id":"abc"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	resp, err := client.Send(context.Background(), CallPayload{ID: "c-1", Name: "Jane Doe", Phone: "555-1111", ContactListID: "l-1"})

	require.NoError(t, err)
	assert.Equal(t, "queued", resp["message"])
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, "l-1", got.ContactListID)
}

func TestSendNonJSONBodyDefaultsToSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Workflow was started"))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, time.Second).Send(context.Background(), CallPayload{ID: "c-1"})

	require.NoError(t, err)
	assert.Equal(t, CallResponse{"message": "Success"}, resp)
}

func TestSendServerErrorIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Send(context.Background(), CallPayload{ID: "c-1"})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "boom")
}

func TestSendNotConfigured(t *testing.T) {
	client := NewClient("   ", time.Second)

	assert.False(t, client.Configured())
	_, err := client.Send(context.Background(), CallPayload{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPayloadOmitsEmptyOptionalFields(t *testing.T) {
	body, err := json.Marshal(CallPayload{ID: "c-1", Name: "Jane", Phone: "555"})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(body, &fields))

	for _, key := range []string{"id", "name", "phone", "email", "company"} {
		assert.Contains(t, fields, key)
	}
	for _, key := range []string{"job_posting_url", "city_state", "salary_range", "decision_maker_name", "contact_list_id"} {
		assert.NotContains(t, fields, key)
	}
}
