// Package google writes owner summaries to a Google spreadsheet, one tab
// per owner.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"ledgerbook/internal/log"
	ports "ledgerbook/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger

	mu sync.Mutex
	// tabs known to exist, so the spreadsheet is only inspected once per owner.
	tabs map[string]struct{}
}

var _ ports.SummaryWriter = (*Client)(nil)

// Options configures New. Inline JSON credentials win over the file.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	Logger          *log.Logger
}

// New creates a client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	creds, err := loadCredentials(opts)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newClient(svc, opts), nil
}

func newClient(svc *gsheet.Service, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	name := strings.TrimSpace(opts.SheetName)
	if name == "" {
		name = "Summary"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     name,
		logger:        logger.WithComponent(log.ComponentSheets),
		tabs:          make(map[string]struct{}),
	}
}

func loadCredentials(opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// WriteSummary clears the owner's tab and writes the summary from A1.
func (c *Client) WriteSummary(ctx context.Context, s ports.Summary) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(s.Owner) == "" {
		return "", errors.New("summary owner is required")
	}

	tab := tabTitle(c.sheetName, s.Owner)
	if err := c.ensureTab(ctx, tab); err != nil {
		return "", err
	}

	clearRange := a1Range(tab, summaryColumns)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear %s: %w", clearRange, err)
	}

	values := summaryValues(s)
	rng := a1Range(tab, fmt.Sprintf("A1:D%d", len(values)))
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", rng, err)
	}

	ref := rng
	if resp != nil && resp.UpdatedRange != "" {
		ref = resp.UpdatedRange
	}
	c.logger.InfoContext(ctx, "Summary exported",
		log.FieldOwner, s.Owner,
		log.FieldMonths, len(s.Rows),
		"range", ref)
	return ref, nil
}

// ensureTab adds the tab when the spreadsheet does not have it yet.
func (c *Client) ensureTab(ctx context.Context, tab string) error {
	c.mu.Lock()
	_, known := c.tabs[tab]
	c.mu.Unlock()
	if known {
		return nil
	}

	sp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}
	exists := false
	for _, sh := range sp.Sheets {
		if sh.Properties != nil && sh.Properties.Title == tab {
			exists = true
			break
		}
	}

	if !exists {
		req := &gsheet.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheet.Request{{
				AddSheet: &gsheet.AddSheetRequest{
					Properties: &gsheet.SheetProperties{Title: tab},
				},
			}},
		}
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("add sheet %q: %w", tab, err)
		}
		c.logger.InfoContext(ctx, "Summary sheet created", "sheet", tab)
	}

	c.mu.Lock()
	c.tabs[tab] = struct{}{}
	c.mu.Unlock()
	return nil
}
