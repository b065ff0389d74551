package client

import (
	"crewcall/pkg/model"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type EventClient struct {
	httpClient *HttpClient
}

func NewEventClient(baseUrl string) *EventClient {
	return &EventClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *EventClient) SetClientID(id string) {
	c.httpClient.SetClientID(id)
}

func (c *EventClient) Create(body any, force bool) (*Response, error) {
	path := "/api/v1/events"
	if force {
		path += "?force=true"
	}
	return c.httpClient.POST(path, body)
}

func (c *EventClient) GetAll(projectID string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if projectID != "" {
		q.Set("project_id", projectID)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GETWithQuery("/api/v1/events", q)
}

func (c *EventClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/events/id/" + url.PathEscape(id))
}

func (c *EventClient) Update(id string, body any, force bool) (*Response, error) {
	path := "/api/v1/events/id/" + url.PathEscape(id)
	if force {
		path += "?force=true"
	}
	return c.httpClient.PATCH(path, body)
}

func (c *EventClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/events/id/" + url.PathEscape(id))
}

func (c *EventClient) Conflicts(start, end time.Time, attendees []string, excludeEventID string) (*Response, error) {
	q := url.Values{}
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	q.Set("attendees", strings.Join(attendees, ","))
	if excludeEventID != "" {
		q.Set("exclude_event_id", excludeEventID)
	}
	return c.httpClient.GETWithQuery("/api/v1/events/conflicts", q)
}

func (c *EventClient) DecodeEvent(resp *Response) (*model.Event, error) {
	return decodeData[*model.Event](resp)
}

func (c *EventClient) DecodeEvents(resp *Response) ([]*model.Event, *Metadata, error) {
	return decodePage[*model.Event](resp)
}

func (c *EventClient) DecodeConflicts(resp *Response) ([]*model.Event, error) {
	return decodeData[[]*model.Event](resp)
}
