package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records requests and answers with canned statuses.
type fakeAPI struct {
	requests []assignmentRequest
	status   int
	members  string
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()

	record := func(w http.ResponseWriter, req *http.Request) {
		var body assignmentRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.requests = append(f.requests, body)
		w.WriteHeader(f.status)
	}
	r.HandleFunc("/initiate-assignment", record).Methods(http.MethodPost)
	r.HandleFunc("/verify-otp", record).Methods(http.MethodPost)
	r.HandleFunc("/members", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if q.Get("meter_id") == "" || q.Get("hhid") == "" {
			http.Error(w, "missing query", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(f.members))
	}).Methods(http.MethodGet)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestInitiateAssignment(t *testing.T) {
	api := &fakeAPI{status: http.StatusOK}
	c := New(api.server(t).URL+"/", time.Second)

	require.NoError(t, c.InitiateAssignment(context.Background(), "DEV1", "1234"))
	require.Len(t, api.requests, 1)
	assert.Equal(t, assignmentRequest{MeterID: "DEV1", HHID: "1234"}, api.requests[0])
}

func TestVerifyOTP_StatusError(t *testing.T) {
	api := &fakeAPI{status: http.StatusUnauthorized}
	c := New(api.server(t).URL, time.Second)

	err := c.VerifyOTP(context.Background(), "DEV1", "1234", "9999")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "verify", se.Op)
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Equal(t, "verify failed: 401 Unauthorized", err.Error())
	assert.Equal(t, "9999", api.requests[0].OTP)
}

func TestMembers(t *testing.T) {
	api := &fakeAPI{members: `{"members":[{"member_code":"M1","dob":"1990-01-01","gender":"Male","created_at":"2025-01-01T00:00:00Z"}]}`}
	c := New(api.server(t).URL, time.Second)

	members, err := c.Members(context.Background(), "DEV1", "1234")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "M1", members[0].MemberCode)
	assert.Equal(t, "1990-01-01", members[0].DOB)
}

func TestMembers_MissingArray(t *testing.T) {
	api := &fakeAPI{members: `{}`}
	c := New(api.server(t).URL, time.Second)

	_, err := c.Members(context.Background(), "DEV1", "1234")
	assert.Error(t, err)
}

func TestNotConfigured(t *testing.T) {
	c := New("", time.Second)
	assert.ErrorIs(t, c.InitiateAssignment(context.Background(), "a", "b"), ErrNotConfigured)
	_, err := c.Members(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestContextCancelled(t *testing.T) {
	api := &fakeAPI{status: http.StatusOK}
	c := New(api.server(t).URL, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.InitiateAssignment(ctx, "DEV1", "1234"))
	assert.Empty(t, api.requests)
}
