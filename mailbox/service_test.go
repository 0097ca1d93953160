package mailbox_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voyago/voyago-go/httpclient"
	"github.com/voyago/voyago-go/mailbox"
)

func TestCreateEmail(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/mailbox", r.URL.Path)
		body, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"success":true,"message":"ok"}`))
	}))
	t.Cleanup(server.Close)

	service := mailbox.NewService(httpclient.New(server.URL))

	err := service.CreateEmail(context.Background(), "Price drop for Lisbon", "Flights fell below your budget.")
	require.NoError(t, err)

	// The mailbox endpoint takes its body unwrapped, without a data envelope.
	require.JSONEq(t, `{"subject":"Price drop for Lisbon","content":"Flights fell below your budget."}`, string(body))
}

func TestCreateEmailRequiresSubject(t *testing.T) {
	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(server.Close)

	service := mailbox.NewService(httpclient.New(server.URL))

	require.Error(t, service.CreateEmail(context.Background(), "", "body"))
	require.False(t, called)
}
