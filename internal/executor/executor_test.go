package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"goblin_bot/internal/models"
)

func TestExecute_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/execute" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["account"] != "GoBLiN" {
			t.Errorf("account not forwarded: %v", body["account"])
		}
		w.Write([]byte(`{"status":"submitted","signature":"5xyz"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.Execute(context.Background(), "GoBLiN", models.SanitizedAction{Verb: models.VerbStake})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Signature != "5xyz" {
		t.Errorf("signature not parsed: %+v", res)
	}
}

func TestExecute_SidecarError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","error":"insufficient funds"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Execute(context.Background(), "GoBLiN", models.SanitizedAction{Verb: models.VerbSwap}); err == nil {
		t.Fatal("expected error for error status")
	}
}
