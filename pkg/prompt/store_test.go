package prompt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSplitDotprompt(t *testing.T) {
	cases := []struct {
		name       string
		content    string
		wantHeader string
		wantBody   string
	}{
		{
			name:       "header and body",
			content:    "---\nmodel: gpt-4o\n---\nYou are a reviewer.",
			wantHeader: "model: gpt-4o",
			wantBody:   "You are a reviewer.",
		},
		{
			name:     "no header",
			content:  "You are a reviewer.\n",
			wantBody: "You are a reviewer.",
		},
		{
			name:     "unclosed header",
			content:  "---\nmodel: gpt-4o\nYou are a reviewer.",
			wantBody: "---\nmodel: gpt-4o\nYou are a reviewer.",
		},
		{
			name:       "delimiter inside body kept",
			content:    "---\nmodel: x\n---\nfirst\n---\nsecond",
			wantHeader: "model: x",
			wantBody:   "first\n---\nsecond",
		},
	}
	for _, tc := range cases {
		header, body := splitDotprompt(tc.content)
		if header != tc.wantHeader {
			t.Errorf("%s: header %q, want %q", tc.name, header, tc.wantHeader)
		}
		if body != tc.wantBody {
			t.Errorf("%s: body %q, want %q", tc.name, body, tc.wantBody)
		}
	}
}

func TestSubstitute(t *testing.T) {
	vars := map[string]string{"name": "Bob", "team": "infra"}
	got := Substitute("Hello {name} from {team}, {unknown} stays.", vars)
	want := "Hello Bob from infra, {unknown} stays."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := Substitute("no placeholders", vars); got != "no placeholders" {
		t.Errorf("unexpected rewrite: %q", got)
	}
	if got := Substitute("{name}", nil); got != "{name}" {
		t.Errorf("empty vars should leave text untouched, got %q", got)
	}
}

func TestStoreFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/prompts/review/info" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"prompt_spec":{"litellm_params":{"dotprompt_content":"---\nmodel: gpt-4o\n---\nReview the code for {name}."}}}`))
	}))
	defer srv.Close()

	client := NewStoreClient(srv.URL, "sk-test")
	got, err := client.Fetch(context.Background(), "review")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got.Body != "Review the code for {name}." {
		t.Errorf("unexpected body %q", got.Body)
	}
	if got.Model != "gpt-4o" {
		t.Errorf("header model lost, got %q", got.Model)
	}
}

func TestStoreFetchWithoutHeaderModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prompt_spec":{"litellm_params":{"dotprompt_content":"Plain body."}}}`))
	}))
	defer srv.Close()

	got, err := NewStoreClient(srv.URL, "sk-test").Fetch(context.Background(), "plain")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got.Body != "Plain body." || got.Model != "" {
		t.Errorf("got %+v", got)
	}
}

func TestStoreFetchDeclines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/prompts/missing/info":
			http.NotFound(w, r)
		case "/prompts/empty/info":
			w.Write([]byte(`{"prompt_spec":{"litellm_params":{"dotprompt_content":""}}}`))
		}
	}))
	defer srv.Close()

	client := NewStoreClient(srv.URL, "sk-test")
	if _, err := client.Fetch(context.Background(), "missing"); err == nil {
		t.Error("expected error for missing prompt")
	}
	if _, err := client.Fetch(context.Background(), "empty"); err == nil {
		t.Error("expected error for empty prompt")
	}

	var nilClient *StoreClient
	if _, err := nilClient.Fetch(context.Background(), "x"); err == nil {
		t.Error("expected error from nil client")
	}
	noToken := NewStoreClient(srv.URL, "")
	if _, err := noToken.Fetch(context.Background(), "x"); err == nil {
		t.Error("expected error without a token")
	}
}
