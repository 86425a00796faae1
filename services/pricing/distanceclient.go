package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const distanceMatrixTimeout = 5 * time.Second

// DistanceResult is the per-element outcome of a single-origin,
// single-destination distance-matrix query.
type DistanceResult struct {
	Status         string
	ElementStatus  string
	DistanceMeters int64
}

//go:generate mockgen -source=distanceclient.go -package pricing -destination distanceclient_mock.go DistanceMatrixAPI
type DistanceMatrixAPI interface {
	QueryDistance(c context.Context, origin string, destination string) (DistanceResult, error)
}

type googleMapsClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewGoogleMapsClient(apiKey string) DistanceMatrixAPI {
	return &googleMapsClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: distanceMatrixTimeout,
		},
	}
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int64 `json:"value"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

func (g *googleMapsClient) QueryDistance(c context.Context, origin string, destination string) (DistanceResult, error) {
	params := url.Values{}
	params.Set("origins", origin)
	params.Set("destinations", destination)
	params.Set("key", g.apiKey)
	requestURL := "https://maps.googleapis.com/maps/api/distancematrix/json?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(c, http.MethodGet, requestURL, nil)
	if err != nil {
		return DistanceResult{}, fmt.Errorf("error creating distance-matrix request: %s", err)
	}

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return DistanceResult{}, fmt.Errorf("error calling distance-matrix api: %s", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return DistanceResult{}, fmt.Errorf("distance-matrix api returned http-status %d", httpResp.StatusCode)
	}

	resp := distanceMatrixResponse{}
	err = json.NewDecoder(httpResp.Body).Decode(&resp)
	if err != nil {
		return DistanceResult{}, fmt.Errorf("error parsing distance-matrix response: %s", err)
	}

	result := DistanceResult{
		Status: resp.Status,
	}
	if len(resp.Rows) > 0 && len(resp.Rows[0].Elements) > 0 {
		element := resp.Rows[0].Elements[0]
		result.ElementStatus = element.Status
		result.DistanceMeters = element.Distance.Value
	}

	return result, nil
}
