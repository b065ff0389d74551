package client

import (
	"crewcall/pkg/model"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type EquipmentBookingClient struct {
	httpClient *HttpClient
}

func NewEquipmentBookingClient(baseUrl string) *EquipmentBookingClient {
	return &EquipmentBookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *EquipmentBookingClient) SetClientID(id string) {
	c.httpClient.SetClientID(id)
}

func (c *EquipmentBookingClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/equipment-bookings", body)
}

func (c *EquipmentBookingClient) GetAll(equipmentID string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if equipmentID != "" {
		q.Set("equipment_id", equipmentID)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GETWithQuery("/api/v1/equipment-bookings", q)
}

func (c *EquipmentBookingClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/equipment-bookings/id/" + url.PathEscape(id))
}

func (c *EquipmentBookingClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/equipment-bookings/id/"+url.PathEscape(id), body)
}

func (c *EquipmentBookingClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/equipment-bookings/id/" + url.PathEscape(id))
}

func (c *EquipmentBookingClient) Conflicts(equipmentID string, start, end time.Time, excludeBookingID string) (*Response, error) {
	q := url.Values{}
	q.Set("equipment_id", equipmentID)
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	if excludeBookingID != "" {
		q.Set("exclude_booking_id", excludeBookingID)
	}
	return c.httpClient.GETWithQuery("/api/v1/equipment-bookings/conflicts", q)
}

func (c *EquipmentBookingClient) Available(start, end time.Time, equipmentIDs []string) (*Response, error) {
	q := url.Values{}
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	q.Set("equipment_ids", strings.Join(equipmentIDs, ","))
	return c.httpClient.GETWithQuery("/api/v1/equipment-bookings/available", q)
}

func (c *EquipmentBookingClient) DecodeBooking(resp *Response) (*model.EquipmentBooking, error) {
	return decodeData[*model.EquipmentBooking](resp)
}

func (c *EquipmentBookingClient) DecodeBookings(resp *Response) ([]*model.EquipmentBooking, *Metadata, error) {
	return decodePage[*model.EquipmentBooking](resp)
}

func (c *EquipmentBookingClient) DecodeConflicts(resp *Response) ([]*model.EquipmentBooking, error) {
	return decodeData[[]*model.EquipmentBooking](resp)
}

func (c *EquipmentBookingClient) DecodeEquipmentIDs(resp *Response) ([]string, error) {
	return decodeData[[]string](resp)
}
