package client

import (
	"crewcall/pkg/model"
	"fmt"
	"net/url"
)

type CrewClient struct {
	httpClient *HttpClient
}

func NewCrewClient(baseUrl string) *CrewClient {
	return &CrewClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *CrewClient) SetClientID(id string) {
	c.httpClient.SetClientID(id)
}

func (c *CrewClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/crew", body)
}

func (c *CrewClient) GetAll(limit int, offset int64) (*Response, error) {
	return c.httpClient.GET(fmt.Sprintf("/api/v1/crew?limit=%d&offset=%d", limit, offset))
}

func (c *CrewClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/crew/id/" + url.PathEscape(id))
}

func (c *CrewClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/crew/id/"+url.PathEscape(id), body)
}

func (c *CrewClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/crew/id/" + url.PathEscape(id))
}

func (c *CrewClient) DecodeCrewMember(resp *Response) (*model.CrewMember, error) {
	return decodeData[*model.CrewMember](resp)
}

func (c *CrewClient) DecodeCrewMembers(resp *Response) ([]*model.CrewMember, *Metadata, error) {
	return decodePage[*model.CrewMember](resp)
}
