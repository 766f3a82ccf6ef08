package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boardwalklabs/boardwalk/internal/store"
)

type fakeRepoStore struct {
	known map[string]bool
	err   error
}

func (f fakeRepoStore) RepositoryKnown(ctx context.Context, repository string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.known[repository], nil
}

func TestStoreBacked(t *testing.T) {
	p := StoreBacked(fakeRepoStore{known: map[string]bool{"acme/web": true}})

	known, err := p.Known(context.Background(), "acme/web")
	if err != nil || !known {
		t.Errorf("known = %v, err = %v", known, err)
	}
	known, err = p.Known(context.Background(), "acme/ghost")
	if err != nil || known {
		t.Errorf("known = %v, err = %v", known, err)
	}
}

func TestStoreBacked_LegacySchemaMeansUnknown(t *testing.T) {
	p := StoreBacked(fakeRepoStore{err: store.ErrLegacySchema})
	known, err := p.Known(context.Background(), "acme/web")
	if err != nil {
		t.Fatalf("legacy schema should not be an error: %v", err)
	}
	if known {
		t.Error("a legacy store cannot vouch for repositories")
	}
}

func TestGitHub(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/repos/acme/web":
			w.WriteHeader(http.StatusOK)
		case "/repos/acme/ghost":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	p := NewGitHub(srv.URL, "tok", time.Second)

	known, err := p.Known(context.Background(), "acme/web")
	if err != nil || !known {
		t.Errorf("existing repo: known = %v, err = %v", known, err)
	}
	if gotPath != "/repos/acme/web" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("auth = %q", gotAuth)
	}

	known, err = p.Known(context.Background(), "acme/ghost")
	if err != nil || known {
		t.Errorf("missing repo: known = %v, err = %v", known, err)
	}

	// Anything but 200/404 is an error, never a guess.
	if _, err = p.Known(context.Background(), "acme/limited"); err == nil {
		t.Error("expected an error for status 403")
	}
}

type staticProbe struct {
	known bool
	err   error
}

func (p staticProbe) Known(ctx context.Context, repository string) (bool, error) {
	return p.known, p.err
}

func TestMulti(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		probes    Multi
		wantKnown bool
		wantErr   error
	}{
		{"first yes wins", Multi{staticProbe{known: true}, staticProbe{err: boom}}, true, nil},
		{"falls through to yes", Multi{staticProbe{}, staticProbe{known: true}}, true, nil},
		{"error skipped when a later probe says yes", Multi{staticProbe{err: boom}, staticProbe{known: true}}, true, nil},
		{"all no", Multi{staticProbe{}, staticProbe{}}, false, nil},
		{"all no with error surfaces it", Multi{staticProbe{err: boom}, staticProbe{}}, false, boom},
		{"empty", Multi{}, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			known, err := tt.probes.Known(context.Background(), "acme/web")
			if known != tt.wantKnown {
				t.Errorf("known = %v, want %v", known, tt.wantKnown)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
