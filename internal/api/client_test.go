package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_AttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"id":"u1","email":"a@b.com","name":"A"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	c.SetToken("tok-123")

	user, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.Equal(t, "Bearer tok-123", gotAuth)
	require.NotEmpty(t, gotRequestID)
}

func TestClient_ClearTokenDetachesCredential(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	c.SetToken("tok")
	c.ClearToken()

	_, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestClient_NormalizesDetailFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Incorrect email or password","message":"ignored"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "x"})

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.True(t, apiErr.HasResponse)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Incorrect email or password", apiErr.Detail)
	require.Equal(t, "Incorrect email or password", apiErr.Message)
}

func TestClient_NormalizesMessageWhenNoDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"bad input"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "x"})

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "bad input", apiErr.Detail)
}

func TestClient_NormalizesEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Me(context.Background())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.True(t, apiErr.HasResponse)
	require.Empty(t, apiErr.Detail)
	require.Equal(t, "request failed with status 500", apiErr.Message)
}

func TestClient_TransportFailureHasNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	c := NewClient(srv.URL, time.Second)
	_, err := c.Me(context.Background())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.False(t, apiErr.HasResponse)
	require.Zero(t, apiErr.Status)
	require.NotEmpty(t, apiErr.Message)
}

func TestClient_SearchPropertiesEncodesFilters(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"properties":[{"id":"p1","title":"Flat"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	recs, err := c.SearchProperties(context.Background(), Filters{Location: "Mumbai", Bedrooms: "2"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Contains(t, gotQuery, "location=Mumbai")
	require.Contains(t, gotQuery, "bedrooms=2")
	require.NotContains(t, gotQuery, "budget")
}

func TestClient_UnsaveEscapesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	require.NoError(t, c.UnsaveProperty(context.Background(), "p/1"))
	require.Equal(t, "/user/saved/p%2F1", gotPath)
}
