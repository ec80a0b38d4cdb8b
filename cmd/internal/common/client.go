package common

import (
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/dsh2dsh/edinet/client"
)

// Every request must complete within this timeout. A stuck upstream is a
// transient per-attempt failure, never a hang.
const requestTimeout = 30 * time.Second

func NewClient() (*client.Client, error) {
	cfg := struct {
		APIKey string `env:"EDINET_API_KEY,notEmpty"`
	}{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse edinet envs: %w", err)
	}

	httpClient := &http.Client{Timeout: requestTimeout}
	return client.New(client.WithHttpClient(httpClient)).
		WithAPIKey(cfg.APIKey), nil
}
