// Package appsource reads the accepted-applications snapshot from the
// marketplace's realtime application database over its REST export endpoint.
package appsource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openlancer/payments-backend/internal/apperrors"
	"github.com/openlancer/payments-backend/internal/core/domain"
	portsint "github.com/openlancer/payments-backend/internal/core/ports/integrations"
)

const acceptedApplicationsPath = "/accepted_applications.json"

// Client fetches accepted applications from the realtime database export.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient initializes a client against the given database base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ portsint.ApplicationSource = (*Client)(nil)

// rawApplication mirrors the remote document shape. Client identifiers are
// optional in older records.
type rawApplication struct {
	ApplicantUserUID string        `json:"applicant_userUID"`
	JobTitle         string        `json:"jobTitle"`
	ClientName       string        `json:"clientName"`
	ClientUserUID    string        `json:"client_userUID"`
	JobMilestones    rawMilestones `json:"job_milestones"`
}

type rawMilestone struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	DueDate     string          `json:"dueDate"`
}

// rawMilestones accepts both shapes the export emits for milestone lists: a
// plain JSON array, or the index-keyed object the realtime database produces
// for sparse arrays. Map entries are ordered by their numeric key.
type rawMilestones []rawMilestone

func (m *rawMilestones) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*m = nil
		return nil
	}

	if trimmed[0] == '[' {
		var arr []rawMilestone
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return err
		}
		*m = arr
		return nil
	}

	var keyed map[string]rawMilestone
	if err := json.Unmarshal(trimmed, &keyed); err != nil {
		return err
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(keys[i])
		b, bErr := strconv.Atoi(keys[j])
		if aErr == nil && bErr == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})

	out := make(rawMilestones, 0, len(keyed))
	for _, k := range keys {
		out = append(out, keyed[k])
	}
	*m = out
	return nil
}

// FetchAccepted returns every accepted application of the given applicant.
// The export nests applications two levels deep: a parent grouping key, then
// the job key each application hangs off.
func (c *Client) FetchAccepted(ctx context.Context, applicantUserID string) ([]domain.AcceptedApplication, error) {
	url := c.baseURL + acceptedApplicationsPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", apperrors.ErrRemoteFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, fmt.Errorf("%w: fetching %s: %v", apperrors.ErrTimeout, url, err)
		}
		return nil, fmt.Errorf("%w: fetching %s: %v", apperrors.ErrRemoteFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d from %s", apperrors.ErrRemoteFetch, resp.StatusCode, url)
	}

	// The endpoint returns null for an empty collection.
	var snapshot map[string]map[string]rawApplication
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("%w: decoding snapshot: %v", apperrors.ErrRemoteFetch, err)
	}

	var apps []domain.AcceptedApplication
	for _, group := range snapshot {
		for jobID, raw := range group {
			if raw.ApplicantUserUID != applicantUserID || len(raw.JobMilestones) == 0 {
				continue
			}
			app := domain.AcceptedApplication{
				JobID:           jobID,
				JobTitle:        raw.JobTitle,
				ClientName:      raw.ClientName,
				ClientUserID:    raw.ClientUserUID,
				ApplicantUserID: raw.ApplicantUserUID,
			}
			for _, ms := range raw.JobMilestones {
				app.Milestones = append(app.Milestones, domain.JobMilestone{
					Description: ms.Description,
					Amount:      ms.Amount,
					Status:      ms.Status,
					DueDate:     ms.DueDate,
				})
			}
			apps = append(apps, app)
		}
	}

	// Map iteration order is random; keep imports deterministic.
	sort.Slice(apps, func(i, j int) bool { return apps[i].JobID < apps[j].JobID })
	return apps, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
