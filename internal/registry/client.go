// Package registry provides a client for the provider-metrics registry, the
// upstream collaborator that measures and stores per-provider service
// metrics each epoch.
package registry

import (
	"fmt"
	"math"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/animica-labs/poies/internal/config"
)

type RegistryInterface interface {
	FetchEpochMetrics(epoch uint64) (EpochMetrics, error)
	SubmitSnapshot(headers AuthHeaders, snapshot MetricSnapshot) (Response[string], error)
}

// Client is a REST client wrapper for the registry service.
type Client struct {
	cfg    *config.RegistryEnvConfig
	client *resty.Client
}

func NewClient(cfg *config.RegistryEnvConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("registry env configuration cannot be nil")
	}

	client := resty.New().
		SetBaseURL(cfg.RegistryURL).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetTimeout(cfg.RegistryTimeout)

	return &Client{
		cfg:    cfg,
		client: client,
	}, nil
}

func getJSON[T any](client *resty.Client, path string) (Response[T], error) {
	var result Response[T]
	resp, err := client.R().
		SetResult(&result).
		Get(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("get request failed")
		return Response[T]{}, fmt.Errorf("get %s: %w", path, err)
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("body", resp.String()).Str("path", path).Msg("get non-2xx")
		return Response[T]{}, fmt.Errorf("request returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if result.Error != nil {
		log.Error().Interface("error", result.Error).Str("path", path).Msg("response contains error")
		return Response[T]{}, fmt.Errorf("response error: %v", result.Error)
	}
	return result, nil
}

// FetchEpochMetrics retrieves every provider snapshot recorded for an epoch.
func (c *Client) FetchEpochMetrics(epoch uint64) (EpochMetrics, error) {
	path := fmt.Sprintf("/registry/epochs/%d/metrics", epoch)
	result, err := getJSON[EpochMetrics](c.client, path)
	if err != nil {
		return EpochMetrics{}, err
	}
	return result.Data, nil
}

// SubmitSnapshot pushes a signed provider snapshot to the registry.
func (c *Client) SubmitSnapshot(headers AuthHeaders, snapshot MetricSnapshot) (Response[string], error) {
	var result Response[string]
	resp, err := c.client.R().
		SetHeader("X-Provider", headers.ProviderID).
		SetHeader("X-Signature", headers.Signature).
		SetHeader("X-Message", headers.Message).
		SetBody(snapshot).
		SetResult(&result).
		Post("/registry/snapshots")
	if err != nil {
		return Response[string]{}, fmt.Errorf("submit snapshot: %w", err)
	}
	if resp.IsError() {
		return Response[string]{}, fmt.Errorf("submit snapshot returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if result.Error != nil {
		return Response[string]{}, fmt.Errorf("response error: %v", result.Error)
	}
	return result, nil
}

// BuildMatrix assembles the engine input from provider snapshots, with one
// column per policy metric in policy order. A metric missing from a snapshot
// becomes NaN so the normalizer's non-finite policy decides its fate.
func BuildMatrix(snapshots []MetricSnapshot, metricNames []string) (*mat.Dense, []string, error) {
	if len(snapshots) == 0 {
		return &mat.Dense{}, []string{}, nil
	}
	if len(metricNames) == 0 {
		return nil, nil, fmt.Errorf("metric order cannot be empty")
	}

	providers := make([]string, len(snapshots))
	data := make([]float64, 0, len(snapshots)*len(metricNames))
	for i, snapshot := range snapshots {
		providers[i] = snapshot.Provider
		for _, name := range metricNames {
			value, ok := snapshot.Metrics[name]
			if !ok {
				value = math.NaN()
			}
			data = append(data, value)
		}
	}

	return mat.NewDense(len(snapshots), len(metricNames), data), providers, nil
}
