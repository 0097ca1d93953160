// Package pdfexport wraps the backend's itinerary PDF export endpoint.
package pdfexport

import (
	"context"

	"github.com/pkg/errors"

	"github.com/voyago/voyago-go/httpclient"
)

const basePath = "/api/v1/pdf"

type Service struct {
	client *httpclient.Client
}

func NewService(client *httpclient.Client) *Service {
	return &Service{client: client}
}

// ExportTrip renders the trip itinerary server-side and returns the raw PDF
// bytes.
func (s *Service) ExportTrip(ctx context.Context, tripID string) ([]byte, error) {
	if tripID == "" {
		return nil, errors.New("[Service.ExportTrip] trip ID is required")
	}
	blob, err := s.client.DownloadBlob(ctx, basePath+"/export/"+tripID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.ExportTrip]")
	}
	return blob, nil
}
