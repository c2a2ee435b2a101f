// Package sheets implements the submission store on Google Sheets.
package sheets

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"StandupBot/standup"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	scope            = "https://www.googleapis.com/auth/spreadsheets"
	valueInputOption = "RAW"
)

type Store struct {
	srv           *sheets.Service
	spreadsheetID string
	readRange     string
}

// NewHTTPClient authenticates with a service-account key file, or with the
// application default credentials when credentialsFile is empty.
func NewHTTPClient(ctx context.Context, credentialsFile string) (*http.Client, error) {
	if credentialsFile == "" {
		client, err := google.DefaultClient(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("NewHTTPClient: failed to create default client: %w", err)
		}
		return client, nil
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("NewHTTPClient: failed to read credentials %s: %w", credentialsFile, err)
	}
	conf, err := google.JWTConfigFromJSON(data, scope)
	if err != nil {
		return nil, fmt.Errorf("NewHTTPClient: failed to parse credentials: %w", err)
	}
	return conf.Client(ctx), nil
}

// New builds a store for the given spreadsheet and A1 range (e.g. "A:F").
// Extra client options are appended, which lets tests point at a fake
// endpoint.
func New(ctx context.Context, client *http.Client, spreadsheetID, readRange string, opts ...option.ClientOption) (*Store, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("New: failed to create sheets service: %w", err)
	}
	return &Store{srv: srv, spreadsheetID: spreadsheetID, readRange: readRange}, nil
}

// Rows reads every row of the range, header included. Cells are returned
// as their formatted string values.
func (s *Store) Rows(ctx context.Context) ([][]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("Rows: failed to read %s: %w", s.readRange, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, values := range resp.Values {
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Store) Append(ctx context.Context, row []string) error {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{values}}

	_, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, s.readRange, vr).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("Append: failed to append row to %s: %w", s.readRange, err)
	}
	return nil
}

// EnsureHeader writes the header row when the range is empty.
func EnsureHeader(ctx context.Context, store standup.Store) (bool, error) {
	rows, err := store.Rows(ctx)
	if err != nil {
		return false, fmt.Errorf("EnsureHeader: %w", err)
	}
	if len(rows) > 0 {
		return false, nil
	}
	if err := store.Append(ctx, standup.Header); err != nil {
		return false, fmt.Errorf("EnsureHeader: %w", err)
	}
	return true, nil
}
