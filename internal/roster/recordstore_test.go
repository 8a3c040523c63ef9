package roster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/config"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/domain"
)

func newRecordStore(t *testing.T, handler http.HandlerFunc) (*RecordStoreResolver, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	resolver := NewRecordStoreResolver(config.RosterConfig{
		BaseURL:        server.URL,
		Token:          "roster-token",
		CollectionID:   "tblParticipants",
		TimeoutSeconds: 5,
	}, zap.NewNop())
	return resolver, server
}

func TestRecordStoreResolveSuccess(t *testing.T) {
	var gotPath, gotAuth, gotFormula, gotMax string

	resolver, _ := newRecordStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotFormula = r.URL.Query().Get("filterByFormula")
		gotMax = r.URL.Query().Get("maxRecords")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
            "records": [
                {
                    "id": "recXYZ",
                    "fields": {
                        "UUID": "user-abc-123456",
                        "Role": 1,
                        "ZoomEmail": " host@example.com ",
                        "AllowedMeetings": ["111", "222"]
                    }
                }
            ]
        }`))
	})

	p, err := resolver.Resolve(context.Background(), "user-abc-123456")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p == nil {
		t.Fatal("expected a participant")
	}
	if p.Role != domain.RoleHost {
		t.Errorf("role = %v, want host", p.Role)
	}
	if p.ZoomEmail != "host@example.com" {
		t.Errorf("zoom email = %q", p.ZoomEmail)
	}
	if len(p.AllowedMeetings) != 2 {
		t.Errorf("allowed meetings = %v", p.AllowedMeetings)
	}

	if gotPath != "/tblParticipants" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer roster-token" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotMax != "1" {
		t.Errorf("maxRecords = %q", gotMax)
	}
	if !strings.Contains(gotFormula, "{UUID}='user-abc-123456'") {
		t.Errorf("formula = %q", gotFormula)
	}
}

func TestRecordStoreResolveNoRecords(t *testing.T) {
	resolver, _ := newRecordStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"records": []}`))
	})

	p, err := resolver.Resolve(context.Background(), "user-abc-123456")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil participant, got %+v", p)
	}
}

func TestRecordStoreResolveNonSuccessStatus(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError} {
		resolver, _ := newRecordStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		p, err := resolver.Resolve(context.Background(), "user-abc-123456")
		if err != nil {
			t.Fatalf("status %d: expected unknown identity, got error %v", status, err)
		}
		if p != nil {
			t.Errorf("status %d: expected nil participant", status)
		}
	}
}

func TestRecordStoreResolveMalformedBody(t *testing.T) {
	resolver, _ := newRecordStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"records": [`))
	})

	if _, err := resolver.Resolve(context.Background(), "user-abc-123456"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRecordStoreResolveTransportError(t *testing.T) {
	resolver, server := newRecordStore(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	if _, err := resolver.Resolve(context.Background(), "user-abc-123456"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestRecordStoreEscapesFormulaQuotes(t *testing.T) {
	var gotFormula string
	resolver, _ := newRecordStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotFormula = r.URL.Query().Get("filterByFormula")
		w.Write([]byte(`{"records": []}`))
	})

	if _, err := resolver.Resolve(context.Background(), "user-o'brien-99"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !strings.Contains(gotFormula, `\'`) {
		t.Errorf("quote not escaped in formula %q", gotFormula)
	}
}
