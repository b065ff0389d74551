package client

import (
	"crewcall/pkg/model"
	"fmt"
	"net/url"
	"strings"
)

type AvailabilityClient struct {
	httpClient *HttpClient
}

func NewAvailabilityClient(baseUrl string) *AvailabilityClient {
	return &AvailabilityClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *AvailabilityClient) SetClientID(id string) {
	c.httpClient.SetClientID(id)
}

func (c *AvailabilityClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/availability", body)
}

func (c *AvailabilityClient) BulkUpsert(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/availability/bulk", body)
}

func (c *AvailabilityClient) BulkUpsertIdempotent(body any, key string) (*Response, error) {
	return c.httpClient.POSTIdempotent("/api/v1/availability/bulk", body, key)
}

func (c *AvailabilityClient) List(subjectID, from, to string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if subjectID != "" {
		q.Set("subject_id", subjectID)
	}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GETWithQuery("/api/v1/availability", q)
}

func (c *AvailabilityClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/availability/id/" + url.PathEscape(id))
}

func (c *AvailabilityClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/availability/id/"+url.PathEscape(id), body)
}

func (c *AvailabilityClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/availability/id/" + url.PathEscape(id))
}

func (c *AvailabilityClient) Check(subjectID, start, end string) (*Response, error) {
	q := url.Values{}
	q.Set("subject_id", subjectID)
	q.Set("start", start)
	q.Set("end", end)
	return c.httpClient.GETWithQuery("/api/v1/availability/check", q)
}

func (c *AvailabilityClient) AvailableSubjects(start, end string, roster []string, excludeStatuses []string) (*Response, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	if len(roster) > 0 {
		q.Set("roster", strings.Join(roster, ","))
	}
	if len(excludeStatuses) > 0 {
		q.Set("exclude_statuses", strings.Join(excludeStatuses, ","))
	}
	return c.httpClient.GETWithQuery("/api/v1/availability/available-subjects", q)
}

func (c *AvailabilityClient) DecodeRecord(resp *Response) (*model.AvailabilityRecord, error) {
	return decodeData[*model.AvailabilityRecord](resp)
}

func (c *AvailabilityClient) DecodeRecords(resp *Response) ([]*model.AvailabilityRecord, *Metadata, error) {
	return decodePage[*model.AvailabilityRecord](resp)
}

func (c *AvailabilityClient) DecodeResult(resp *Response) (*model.AvailabilityResult, error) {
	return decodeData[*model.AvailabilityResult](resp)
}

func (c *AvailabilityClient) DecodeSubjects(resp *Response) ([]string, error) {
	return decodeData[[]string](resp)
}
