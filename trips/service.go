// Package trips wraps the backend's /trips endpoints.
package trips

import (
	"context"

	"github.com/pkg/errors"

	"github.com/voyago/voyago-go/httpclient"
)

const basePath = "/api/v1/trips"

// Trip is a planned journey as the backend stores it.
type Trip struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	StartDate   string   `json:"startDate"` // YYYY-MM-DD
	EndDate     string   `json:"endDate"`   // YYYY-MM-DD
	Budget      string   `json:"budget"`
	Preferences []string `json:"preferences,omitempty"`
}

// CreateTrip is the creation request; the backend assigns the ID.
type CreateTrip struct {
	Title       string   `json:"title"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Budget      string   `json:"budget"`
	Preferences []string `json:"preferences,omitempty"`
}

type listEnvelope struct {
	Data struct {
		Trips []Trip `json:"trips"`
	} `json:"data"`
}

type tripEnvelope struct {
	Data struct {
		Trip *Trip `json:"trip"`
	} `json:"data"`
}

type Service struct {
	client *httpclient.Client
}

func NewService(client *httpclient.Client) *Service {
	return &Service{client: client}
}

// List returns all trips of the authenticated user.
func (s *Service) List(ctx context.Context) ([]Trip, error) {
	var envelope listEnvelope
	if err := s.client.Get(ctx, basePath, nil, &envelope); err != nil {
		return nil, errors.Wrap(err, "[Service.List]")
	}
	return envelope.Data.Trips, nil
}

// Get returns a single trip by ID.
func (s *Service) Get(ctx context.Context, tripID string) (*Trip, error) {
	if tripID == "" {
		return nil, errors.New("[Service.Get] trip ID is required")
	}
	var envelope tripEnvelope
	if err := s.client.Get(ctx, basePath+"/"+tripID, nil, &envelope); err != nil {
		return nil, errors.Wrap(err, "[Service.Get]")
	}
	if envelope.Data.Trip == nil {
		return nil, errors.New("[Service.Get] response carried no trip")
	}
	return envelope.Data.Trip, nil
}

// Create stores a new trip and returns it with its assigned ID.
func (s *Service) Create(ctx context.Context, trip CreateTrip) (*Trip, error) {
	var envelope tripEnvelope
	if err := s.client.Post(ctx, basePath, trip, &envelope); err != nil {
		return nil, errors.Wrap(err, "[Service.Create]")
	}
	if envelope.Data.Trip == nil {
		return nil, errors.New("[Service.Create] response carried no trip")
	}
	return envelope.Data.Trip, nil
}
