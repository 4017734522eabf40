package infra

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ── Google Sheets ─────────────────────────────────────────────────────────────
// The spreadsheet is the business-facing copy of products, purchases and
// transactions. Values are written RAW so numbers keep full precision.

// ValueRange is a block of rows anchored at an A1 range ("Purchases!A7").
type ValueRange struct {
	Range  string
	Values [][]interface{}
}

// SheetsClient reads and writes one spreadsheet.
type SheetsClient struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsClient authenticates with a service account, preferring inline
// JSON credentials over a credentials file.
func NewSheetsClient(ctx context.Context, spreadsheetID, credentialsFile, credentialsJSON string) (*SheetsClient, error) {
	if spreadsheetID == "" {
		return nil, errors.New("sheets: spreadsheet id is empty")
	}
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	switch {
	case credentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	default:
		return nil, errors.New("sheets: no credentials configured")
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return &SheetsClient{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Read returns every non-empty row of a tab, header included.
func (c *SheetsClient) Read(ctx context.Context, tab string) ([][]interface{}, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, tab).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: read %s: %w", tab, err)
	}
	return resp.Values, nil
}

// Update overwrites several ranges in one request.
func (c *SheetsClient) Update(ctx context.Context, ranges []ValueRange) error {
	if len(ranges) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, 0, len(ranges))
	for _, r := range ranges {
		data = append(data, &sheets.ValueRange{Range: r.Range, Values: r.Values})
	}
	_, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: batch update: %w", err)
	}
	return nil
}

// Append adds rows after the last non-empty row of a tab.
func (c *SheetsClient) Append(ctx context.Context, tab string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, tab, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: append %s: %w", tab, err)
	}
	return nil
}
