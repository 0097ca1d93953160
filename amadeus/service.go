// Package amadeus wraps the backend's /amadeus endpoints, which proxy the
// travel-data provider. The provider protocol itself lives server-side; the
// client only sees typed offers.
package amadeus

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"github.com/voyago/voyago-go/httpclient"
)

const basePath = "/api/v1/amadeus"

// CityCode is an airport/city lookup result.
type CityCode struct {
	Name     string `json:"name"`
	IataCode string `json:"iataCode"`
	Country  string `json:"country,omitempty"`
}

// FlightOffer is a single flight proposal within budget.
type FlightOffer struct {
	ID            string `json:"id"`
	Carrier       string `json:"carrier"`
	DepartureAt   string `json:"departureAt"`
	ArrivalAt     string `json:"arrivalAt"`
	Duration      string `json:"duration"` // ISO-8601, e.g. PT7H30M
	Price         string `json:"price"`
	Currency      string `json:"currency"`
	NumberOfStops int    `json:"numberOfStops"`
}

// HotelOffer is a single hotel proposal within budget.
type HotelOffer struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     string  `json:"price"`
	Currency  string  `json:"currency"`
	Rating    float64 `json:"rating,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// TripOffers is the combined search result for a trip.
type TripOffers struct {
	Flights []FlightOffer `json:"flights"`
	Hotels  []HotelOffer  `json:"hotels"`
}

// OfferQuery parametrizes an offer search for a trip.
type OfferQuery struct {
	TripID              string
	OriginCityCode      string
	DestinationCityCode string
	StartDate           string // YYYY-MM-DD
	EndDate             string // YYYY-MM-DD
	Budget              string
}

type cityCodesEnvelope struct {
	Data struct {
		Cities []CityCode `json:"cities"`
	} `json:"data"`
}

type offersEnvelope struct {
	Data TripOffers `json:"data"`
}

type Service struct {
	client *httpclient.Client
}

func NewService(client *httpclient.Client) *Service {
	return &Service{client: client}
}

// CityCodes resolves a free-text keyword to IATA city codes.
func (s *Service) CityCodes(ctx context.Context, keyword string) ([]CityCode, error) {
	if keyword == "" {
		return nil, errors.New("[Service.CityCodes] keyword is required")
	}
	query := url.Values{"keyword": {keyword}}

	var envelope cityCodesEnvelope
	if err := s.client.Get(ctx, basePath+"/city-code", query, &envelope); err != nil {
		return nil, errors.Wrap(err, "[Service.CityCodes]")
	}
	return envelope.Data.Cities, nil
}

// TripOffers searches flight and hotel offers for a trip within its budget.
func (s *Service) TripOffers(ctx context.Context, q OfferQuery) (*TripOffers, error) {
	if q.TripID == "" {
		return nil, errors.New("[Service.TripOffers] trip ID is required")
	}
	if q.OriginCityCode == "" || q.DestinationCityCode == "" {
		return nil, errors.New("[Service.TripOffers] origin and destination city codes are required")
	}

	query := url.Values{
		"tripId":              {q.TripID},
		"originCityCode":      {q.OriginCityCode},
		"destinationCityCode": {q.DestinationCityCode},
		"startDate":           {q.StartDate},
		"endDate":             {q.EndDate},
		"budget":              {q.Budget},
	}

	var envelope offersEnvelope
	if err := s.client.Get(ctx, basePath+"/search", query, &envelope); err != nil {
		return nil, errors.Wrap(err, "[Service.TripOffers]")
	}
	return &envelope.Data, nil
}
