// Package sheets wraps the Google Sheets v4 API as the upstream document
// service: sheet enumeration and per-sheet cell grids. All calls share one
// rate limiter so a multi-source batch cannot exceed the upstream quota.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
)

// valueRange bounds the fetched grid the same way the publishing units size
// their sheets.
const valueRange = "A1:Z1000"

// Client fetches document metadata and sheet values.
type Client struct {
	svc     *sheetsapi.Service
	limiter *rate.Limiter
}

// NewClient builds a sheets client authenticated by API key. Extra options
// let tests point the client at a local server.
func NewClient(ctx context.Context, apiKey string, rps float64, opts ...option.ClientOption) (*Client, error) {
	if rps <= 0 {
		rps = 1
	}

	clientOpts := make([]option.ClientOption, 0, len(opts)+1)
	if apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(apiKey))
	} else {
		// Without a key the service still boots; per-source credential
		// checks reject requests before they reach the API.
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheetsapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// ListSheets returns the ordered tab listing of a document. A failure here
// leaves no way to continue processing the document.
func (c *Client) ListSheets(ctx context.Context, documentID string) ([]models.SheetInfo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	doc, err := c.svc.Spreadsheets.Get(documentID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, acquisitionError("list sheets", documentID, err)
	}
	if len(doc.Sheets) == 0 {
		return nil, appErrors.Clone(appErrors.ErrAcquisition, fmt.Sprintf("document %s has no sheets", documentID))
	}

	infos := make([]models.SheetInfo, 0, len(doc.Sheets))
	for _, sheet := range doc.Sheets {
		if sheet.Properties == nil {
			continue
		}
		infos = append(infos, models.SheetInfo{
			ID:     sheet.Properties.SheetId,
			Title:  sheet.Properties.Title,
			Hidden: sheet.Properties.Hidden,
			Index:  sheet.Properties.Index,
		})
	}
	return infos, nil
}

// SheetValues fetches the raw cell grid of one tab by title. Cells come back
// as strings; rows are ragged exactly as the API delivers them.
func (c *Client) SheetValues(ctx context.Context, documentID, title string) ([][]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	rangeRef := fmt.Sprintf("'%s'!%s", strings.ReplaceAll(title, "'", "''"), valueRange)
	resp, err := c.svc.Spreadsheets.Values.Get(documentID, rangeRef).
		Context(ctx).
		Do()
	if err != nil {
		return nil, acquisitionError("get values", title, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// acquisitionError maps upstream failures onto the typed taxonomy so the
// pipeline can tell an inaccessible sheet from a malformed response.
func acquisitionError(op, subject string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := fmt.Sprintf("%s %q: upstream status %d", op, subject, gerr.Code)
		status := http.StatusBadGateway
		if gerr.Code == http.StatusNotFound {
			status = http.StatusNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrAcquisition.Code, status, msg)
	}
	return appErrors.Wrap(err, appErrors.ErrAcquisition.Code, appErrors.ErrAcquisition.Status,
		fmt.Sprintf("%s %q: %v", op, subject, err))
}
