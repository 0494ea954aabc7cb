package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"ledgerbook/internal/log"
	"ledgerbook/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets is a minimal Sheets API recording every call.
type fakeSheets struct {
	mu     sync.Mutex
	titles []string
	calls  []string
	values [][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "addSheet")
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.titles = append(f.titles, rq.AddSheet.Properties.Title)
			}
		}
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		f.calls = append(f.calls, "update")
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.values = vr.Values
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRange": "Summary!A1:D5"})
	case r.Method == http.MethodGet:
		f.calls = append(f.calls, "get")
		sp := gsheet.Spreadsheet{}
		for _, title := range f.titles {
			sp.Sheets = append(sp.Sheets, &gsheet.Sheet{Properties: &gsheet.SheetProperties{Title: title}})
		}
		_ = json.NewEncoder(w).Encode(sp)
	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func newFakeClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return newClient(svc, Options{SpreadsheetID: "sheet-1", SheetName: "Summary", Logger: log.Discard()})
}

func TestWriteSummaryCreatesTabOnce(t *testing.T) {
	fake := &fakeSheets{}
	c := newFakeClient(t, fake)
	ctx := context.Background()

	ref, err := c.WriteSummary(ctx, sheets.Summary{Owner: "u1"})
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	if ref != "Summary!A1:D5" {
		t.Errorf("ref = %q", ref)
	}
	if _, err := c.WriteSummary(ctx, sheets.Summary{Owner: "u1"}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	want := []string{"get", "addSheet", "clear", "update", "clear", "update"}
	if strings.Join(fake.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", fake.calls, want)
	}
	if len(fake.titles) != 1 || fake.titles[0] != "Summary u1" {
		t.Fatalf("titles = %v", fake.titles)
	}
	if len(fake.values) != 5 {
		t.Fatalf("written rows = %d", len(fake.values))
	}
}

func TestWriteSummaryReusesExistingTab(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Summary u2"}}
	c := newFakeClient(t, fake)
	if _, err := c.WriteSummary(context.Background(), sheets.Summary{Owner: "u2"}); err != nil {
		t.Fatal(err)
	}
	for _, call := range fake.calls {
		if call == "addSheet" {
			t.Fatal("existing tab must not be added again")
		}
	}
}

func TestWriteSummaryGuards(t *testing.T) {
	if _, err := (&Client{}).WriteSummary(context.Background(), sheets.Summary{Owner: "u1"}); err == nil {
		t.Fatal("expected error without service")
	}
	c := newFakeClient(t, &fakeSheets{})
	if _, err := c.WriteSummary(context.Background(), sheets.Summary{Owner: " "}); err == nil {
		t.Fatal("expected error for blank owner")
	}
}

func TestLoadCredentials(t *testing.T) {
	if _, err := loadCredentials(Options{}); err == nil {
		t.Fatal("expected error without credentials")
	}
	got, err := loadCredentials(Options{CredentialsJSON: ` {"type":"service_account"} `, CredentialsFile: "/nope"})
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Fatalf("inline credentials: %q %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"k":1}`), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = loadCredentials(Options{CredentialsFile: path})
	if err != nil || string(got) != `{"k":1}` {
		t.Fatalf("file credentials: %q %v", got, err)
	}
	if _, err := loadCredentials(Options{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Options{CredentialsJSON: "{}"}); err == nil {
		t.Fatal("expected error without spreadsheet id")
	}
}
