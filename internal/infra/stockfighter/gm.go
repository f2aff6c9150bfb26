package stockfighter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/romanlevin/stockfighter/internal/infra"
	"github.com/romanlevin/stockfighter/pkg/quant"
)

// GMClient talks to the game-master instance endpoint: run status, the
// client's price ceiling (delivered as flash text), and the out-of-band
// abort signal. It is polled opportunistically after fills, never on the
// hot path.
type GMClient struct {
	baseURL    string
	apiKey     string
	instanceID int64
	httpClient *http.Client
}

// InstanceStatus is the GM's view of a running level instance.
type InstanceStatus struct {
	OK    bool   `json:"ok"`
	Done  bool   `json:"done"`
	ID    int64  `json:"id"`
	State string `json:"state"`
	Flash struct {
		Info string `json:"info"`
	} `json:"flash"`
	Details struct {
		TradingDay       int `json:"tradingDay"`
		EndOfTheWorldDay int `json:"endOfTheWorldDay"`
	} `json:"details"`
}

// NewGMClient creates a GM client for one instance.
func NewGMClient(cfg *infra.Config) *GMClient {
	return &GMClient{
		baseURL:    cfg.GM.BaseURL,
		apiKey:     cfg.Venue.APIKey,
		instanceID: cfg.GM.InstanceID,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (g *GMClient) instanceURL() string {
	return fmt.Sprintf("%s/instances/%d", g.baseURL, g.instanceID)
}

// InstanceStatus fetches the current instance state.
func (g *GMClient) InstanceStatus(ctx context.Context) (InstanceStatus, error) {
	return g.get(ctx, g.instanceURL())
}

// StopInstance tears the instance down.
func (g *GMClient) StopInstance(ctx context.Context) error {
	_, err := g.post(ctx, g.instanceURL()+"/stop")
	return err
}

// ResumeInstance resumes a paused instance.
func (g *GMClient) ResumeInstance(ctx context.Context) error {
	_, err := g.post(ctx, g.instanceURL()+"/resume")
	return err
}

// RestartInstance restarts the instance from scratch.
func (g *GMClient) RestartInstance(ctx context.Context) error {
	_, err := g.post(ctx, g.instanceURL()+"/restart")
	return err
}

func (g *GMClient) get(ctx context.Context, url string) (InstanceStatus, error) {
	return g.roundTrip(ctx, http.MethodGet, url)
}

func (g *GMClient) post(ctx context.Context, url string) (InstanceStatus, error) {
	return g.roundTrip(ctx, http.MethodPost, url)
}

func (g *GMClient) roundTrip(ctx context.Context, method, url string) (InstanceStatus, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return InstanceStatus{}, err
	}
	req.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		req.Header.Set(authHeader, g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return InstanceStatus{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return InstanceStatus{}, err
	}

	var status InstanceStatus
	if err := json.Unmarshal(data, &status); err != nil {
		if resp.StatusCode >= 400 {
			return InstanceStatus{}, &APIError{StatusCode: resp.StatusCode}
		}
		return InstanceStatus{}, fmt.Errorf("could not parse GM response: %w", err)
	}
	if !status.OK || resp.StatusCode >= 400 {
		return InstanceStatus{}, &APIError{StatusCode: resp.StatusCode}
	}
	return status, nil
}

// Aborted reports whether the instance has been terminated out-of-band.
func (s InstanceStatus) Aborted() bool {
	return s.Done
}

var dollarAmount = regexp.MustCompile(`\$([0-9]+(?:\.[0-9]{1,2})?)`)

// ClientsCeiling extracts the client's price limit from the GM flash text,
// e.g. "... your client would prefer not to pay more than $24.50 ...".
// The last dollar amount in the message wins.
func (s InstanceStatus) ClientsCeiling() (quant.Cents, bool) {
	matches := dollarAmount.FindAllStringSubmatch(s.Flash.Info, -1)
	if len(matches) == 0 {
		return 0, false
	}

	cents, err := quant.ParseCentsStr(matches[len(matches)-1][1])
	if err != nil || cents <= 0 {
		return 0, false
	}
	return cents, true
}
