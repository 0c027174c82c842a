package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SVG-campus/ContractKit/config"
)

// IPLookupService resolves the server's public IP via ipify. The signing
// flow records it as a best-effort audit detail; failures never block a
// signature.
type IPLookupService struct {
	config     *config.IPLookupConfig
	httpClient *http.Client
}

func NewIPLookupService(cfg *config.IPLookupConfig) *IPLookupService {
	return &IPLookupService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// LookupIP returns the public IP as plain text.
func (s *IPLookupService) LookupIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.config.APIURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ip lookup error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return strings.TrimSpace(string(body)), nil
}
