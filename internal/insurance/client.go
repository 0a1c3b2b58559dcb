package insurance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/meditrack/authorization-api/internal/config"
	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/pkg/errors"
	"github.com/meditrack/authorization-api/pkg/logger"
	"github.com/meditrack/authorization-api/pkg/metrics"
)

const serviceName = "insurance validation service"

// ValidationResult is the insurer's verdict for a coverage request.
type ValidationResult struct {
	Approved           bool            `json:"approved"`
	CoveragePercentage int             `json:"coveragePercentage"`
	CopayAmount        decimal.Decimal `json:"copayAmount"`
	CoveredAmount      decimal.Decimal `json:"coveredAmount"`
	AuthorizationCode  string          `json:"authorizationCode"`
	Message            string          `json:"message"`
}

// Validator is the port consumed by the evaluation use case.
type Validator interface {
	ValidateCoverage(ctx context.Context, documentNumber string,
		affiliationType model.AffiliationType, serviceType model.ServiceType,
		estimatedCost decimal.Decimal) (*ValidationResult, error)
}

type validationRequest struct {
	DocumentNumber  string          `json:"documentNumber"`
	AffiliationType string          `json:"affiliationType"`
	ServiceType     string          `json:"serviceType"`
	EstimatedCost   decimal.Decimal `json:"estimatedCost"`
}

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewClient builds an HTTP validator with bounded connect/read timeouts and
// a circuit breaker so a dead upstream fails fast instead of queueing.
func NewClient(cfg config.InsuranceConfig, log *logger.Logger, m *metrics.Metrics) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		ResponseHeaderTimeout: cfg.ReadTimeout,
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "insurance-validation",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.ConnectTimeout + cfg.ReadTimeout,
		},
		breaker: breaker,
		log:     log,
		metrics: m,
	}
}

func (c *Client) ValidateCoverage(ctx context.Context, documentNumber string,
	affiliationType model.AffiliationType, serviceType model.ServiceType,
	estimatedCost decimal.Decimal) (*ValidationResult, error) {

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.call(ctx, validationRequest{
			DocumentNumber:  documentNumber,
			AffiliationType: string(affiliationType),
			ServiceType:     string(serviceType),
			EstimatedCost:   estimatedCost,
		})
	})
	c.metrics.InsuranceLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.InsuranceCalls.WithLabelValues("error").Inc()
		c.log.Error(err, "insurance validation call failed")
		return nil, errors.ExternalService(serviceName, err)
	}

	verdict := result.(*ValidationResult)
	c.metrics.InsuranceCalls.WithLabelValues("ok").Inc()
	c.log.Info("insurance validation completed",
		"approved", verdict.Approved,
		"coverage", verdict.CoveragePercentage,
	)
	return verdict, nil
}

func (c *Client) call(ctx context.Context, payload validationRequest) (*ValidationResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/api/insurance/validate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var result ValidationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}
