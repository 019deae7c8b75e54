package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

const (
	metersPerKM   = 1000.0
	metersPerMile = 1609.344
)

type GoogleMapsProvider struct {
	client *maps.Client
}

func NewGoogleMapsProvider(apiKey string) (*GoogleMapsProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return &GoogleMapsProvider{
		client: client,
	}, nil
}

func (g *GoogleMapsProvider) Geocode(ctx context.Context, address string) (*GeocodeResponse, error) {
	req := &maps.GeocodingRequest{
		Address: address,
	}

	resp, err := g.client.Geocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}

	return convertGeocodeResults(resp), nil
}

func (g *GoogleMapsProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResponse, error) {
	req := &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	}

	resp, err := g.client.ReverseGeocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding failed: %w", err)
	}

	return convertGeocodeResults(resp), nil
}

// CalculateDistance uses the distance matrix for the direct case and falls
// back to a directions request when via-points are present, summing the legs.
func (g *GoogleMapsProvider) CalculateDistance(ctx context.Context, request *DistanceRequest) (*DistanceResponse, error) {
	if len(request.Waypoints) > 0 {
		return g.distanceViaDirections(ctx, request)
	}

	req := &maps.DistanceMatrixRequest{
		Origins:      []string{latLngString(request.Origin)},
		Destinations: []string{latLngString(request.Destination)},
		Mode:         maps.TravelModeDriving,
	}

	resp, err := g.client.DistanceMatrix(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("distance matrix request failed: %w", err)
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return nil, fmt.Errorf("distance matrix returned no elements")
	}

	element := resp.Rows[0].Elements[0]
	if element.Status != "OK" {
		return nil, fmt.Errorf("distance matrix element status: %s", element.Status)
	}

	return distanceResponse(float64(element.Distance.Meters), int(element.Duration.Minutes())), nil
}

func (g *GoogleMapsProvider) distanceViaDirections(ctx context.Context, request *DistanceRequest) (*DistanceResponse, error) {
	waypoints := make([]string, len(request.Waypoints))
	for i, wp := range request.Waypoints {
		waypoints[i] = latLngString(wp)
	}

	req := &maps.DirectionsRequest{
		Origin:      latLngString(request.Origin),
		Destination: latLngString(request.Destination),
		Waypoints:   waypoints,
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := g.client.Directions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}

	if len(routes) == 0 {
		return nil, fmt.Errorf("directions returned no routes")
	}

	var meters float64
	var minutes int
	for _, leg := range routes[0].Legs {
		meters += float64(leg.Distance.Meters)
		minutes += int(leg.Duration.Minutes())
	}

	return distanceResponse(meters, minutes), nil
}

func convertGeocodeResults(resp []maps.GeocodingResult) *GeocodeResponse {
	results := make([]GeocodeResult, len(resp))
	for i, result := range resp {
		results[i] = GeocodeResult{
			PlaceID: result.PlaceID,
			Address: result.FormattedAddress,
			Coordinates: Location{
				Latitude:  result.Geometry.Location.Lat,
				Longitude: result.Geometry.Location.Lng,
			},
			Types: result.Types,
		}
	}

	return &GeocodeResponse{Results: results}
}

func latLngString(l Location) string {
	return fmt.Sprintf("%f,%f", l.Latitude, l.Longitude)
}

func distanceResponse(meters float64, minutes int) *DistanceResponse {
	return &DistanceResponse{
		DistanceMeters:  meters,
		DistanceKM:      meters / metersPerKM,
		DistanceMiles:   meters / metersPerMile,
		DurationMinutes: minutes,
	}
}
