package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	calendardomain "meeting-portal-backend/internal/calendar/domain"

	"github.com/goccy/go-json"
)

const (
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	// Graph dateTime values carry no offset; the zone comes from the Prefer header
	graphTimeFormat = "2006-01-02T15:04:05"

	eventFields = "id,subject,start,end,isAllDay,onlineMeeting,onlineMeetingUrl"
)

// StatusError is returned for non-2xx Graph responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("graph request failed with status %d: %s", e.StatusCode, e.Body)
}

// IsUnauthorized reports whether err is a 401 from Graph
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

// Client reads a user's Outlook calendar through Microsoft Graph
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphEvent struct {
	ID            string         `json:"id"`
	Subject       string         `json:"subject"`
	Start         *graphDateTime `json:"start"`
	End           *graphDateTime `json:"end"`
	IsAllDay      bool           `json:"isAllDay"`
	OnlineMeeting *struct {
		JoinURL string `json:"joinUrl"`
	} `json:"onlineMeeting"`
	OnlineMeetingURL string `json:"onlineMeetingUrl"`
}

// ListUpcomingEvents returns events starting at or after from, ordered by start time, at most top of them.
func (c *Client) ListUpcomingEvents(ctx context.Context, accessToken string, from time.Time, top int) (*calendardomain.FetchResult, error) {
	params := url.Values{}
	params.Set("$filter", fmt.Sprintf("start/dateTime ge '%s'", from.UTC().Format(graphTimeFormat)))
	params.Set("$orderby", "start/dateTime")
	params.Set("$select", eventFields)
	if top > 0 {
		params.Set("$top", strconv.Itoa(top))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me/calendar/events?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		Value []graphEvent `json:"value"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	events := make([]*calendardomain.RemoteEvent, 0, len(result.Value))
	for i := range result.Value {
		events = append(events, convertEvent(&result.Value[i]))
	}

	return &calendardomain.FetchResult{
		Events:     events,
		TotalFound: len(events),
	}, nil
}

func convertEvent(ev *graphEvent) *calendardomain.RemoteEvent {
	out := &calendardomain.RemoteEvent{
		RemoteID:  ev.ID,
		Subject:   ev.Subject,
		IsAllDay:  ev.IsAllDay,
		StartTime: parseGraphTime(ev.Start),
		EndTime:   parseGraphTime(ev.End),
	}
	if ev.OnlineMeeting != nil && ev.OnlineMeeting.JoinURL != "" {
		out.OnlineMeetingURL = ev.OnlineMeeting.JoinURL
	} else {
		out.OnlineMeetingURL = ev.OnlineMeetingURL
	}
	return out
}

// parseGraphTime returns nil for absent or unparseable values
func parseGraphTime(dt *graphDateTime) *time.Time {
	if dt == nil || dt.DateTime == "" {
		return nil
	}
	loc := time.UTC
	if dt.TimeZone != "" && dt.TimeZone != "UTC" {
		if l, err := time.LoadLocation(dt.TimeZone); err == nil {
			loc = l
		}
	}
	// fractional seconds (".0000000") are accepted without being in the layout
	t, err := time.ParseInLocation(graphTimeFormat, dt.DateTime, loc)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
