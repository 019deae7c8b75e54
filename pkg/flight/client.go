package flight

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client looks up flight status by flight number. Callers control the
// timeout through the request context; lookups are user-cancellable.
type Client struct {
	accessKey  string
	httpClient *http.Client
	baseURL    string
}

type Flight struct {
	FlightNumber  string     `json:"flight_number"`
	Airline       string     `json:"airline"`
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
	Status        string     `json:"status"`
}

func NewClient(accessKey string) *Client {
	return &Client{
		accessKey:  accessKey,
		httpClient: &http.Client{},
		baseURL:    "https://api.aviationstack.com/v1",
	}
}

func (c *Client) Lookup(ctx context.Context, flightNumber string) (*Flight, error) {
	apiURL := fmt.Sprintf("%s/flights?access_key=%s&flight_iata=%s&limit=1",
		c.baseURL, url.QueryEscape(c.accessKey), url.QueryEscape(flightNumber))

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flight API error: %s", string(body))
	}

	var apiResp struct {
		Data []struct {
			FlightStatus string `json:"flight_status"`
			Airline      struct {
				Name string `json:"name"`
			} `json:"airline"`
			Flight struct {
				IATA string `json:"iata"`
			} `json:"flight"`
			Departure struct {
				Airport   string `json:"airport"`
				Scheduled string `json:"scheduled"`
			} `json:"departure"`
			Arrival struct {
				Airport string `json:"airport"`
			} `json:"arrival"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(apiResp.Data) == 0 {
		return nil, fmt.Errorf("flight %s not found", flightNumber)
	}

	entry := apiResp.Data[0]
	flight := &Flight{
		FlightNumber: entry.Flight.IATA,
		Airline:      entry.Airline.Name,
		Origin:       entry.Departure.Airport,
		Destination:  entry.Arrival.Airport,
		Status:       entry.FlightStatus,
	}

	if entry.Departure.Scheduled != "" {
		if t, err := time.Parse(time.RFC3339, entry.Departure.Scheduled); err == nil {
			flight.ScheduledTime = &t
		}
	}

	return flight, nil
}
