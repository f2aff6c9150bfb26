package stockfighter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/romanlevin/stockfighter/internal/domain"
	"github.com/romanlevin/stockfighter/internal/infra"
)

const authHeader = "X-Starfighter-Authorization"

// Client talks to the venue's order book API: quotes, order entry, order
// status. Every request has a bounded wait; order entry additionally sits
// behind the shared order rate limiter.
type Client struct {
	baseURL string
	apiKey  string
	account string
	venue   string
	stock   string

	httpClient    *http.Client
	orderLimiter  *infra.RateLimiter
	marketLimiter *infra.RateLimiter
}

// NewClient creates a venue client for one (account, venue, stock) triple.
func NewClient(cfg *infra.Config) *Client {
	return &Client{
		baseURL: cfg.Venue.BaseURL,
		apiKey:  cfg.Venue.APIKey,
		account: cfg.Venue.Account,
		venue:   cfg.Venue.Venue,
		stock:   cfg.Venue.Stock,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		orderLimiter:  infra.OrderLimiter(),
		marketLimiter: infra.MarketLimiter(),
	}
}

func (c *Client) stockURL() string {
	return fmt.Sprintf("%s/venues/%s/stocks/%s", c.baseURL, c.venue, c.stock)
}

// Quote fetches a one-shot quote snapshot.
func (c *Client) Quote(ctx context.Context) (domain.Quote, error) {
	c.marketLimiter.Wait()

	var resp quoteResponse
	if err := c.do(ctx, http.MethodGet, c.stockURL()+"/quote", nil, &resp); err != nil {
		return domain.Quote{}, err
	}
	return resp.toDomain(), nil
}

// PlaceOrder submits an order and returns its immediate state, including any
// instant fills.
func (c *Client) PlaceOrder(ctx context.Context, intent domain.OrderIntent) (OrderResult, error) {
	c.orderLimiter.Wait()

	body := orderRequest{
		Account:   c.account,
		Venue:     c.venue,
		Symbol:    c.stock,
		Qty:       int64(intent.Quantity),
		Direction: string(intent.Direction),
		OrderType: string(domain.TypeLimit),
		Price:     int64(intent.LimitPrice),
	}

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, c.stockURL()+"/orders", body, &resp); err != nil {
		return OrderResult{}, fmt.Errorf("order placement failed: %w", err)
	}
	return resp.toResult(), nil
}

// CancelOrder cancels any open remainder and returns the order's final
// state, including the cumulative fill.
func (c *Client) CancelOrder(ctx context.Context, orderID int64) (OrderResult, error) {
	c.orderLimiter.Wait()

	url := fmt.Sprintf("%s/orders/%d", c.stockURL(), orderID)
	var resp orderResponse
	if err := c.do(ctx, http.MethodDelete, url, nil, &resp); err != nil {
		return OrderResult{}, fmt.Errorf("cancel of order %d failed: %w", orderID, err)
	}
	return resp.toResult(), nil
}

// OrderStatus queries the current state of an order.
func (c *Client) OrderStatus(ctx context.Context, orderID int64) (OrderResult, error) {
	c.marketLimiter.Wait()

	url := fmt.Sprintf("%s/orders/%d", c.stockURL(), orderID)
	var resp orderResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return OrderResult{}, fmt.Errorf("status of order %d failed: %w", orderID, err)
	}
	return resp.toResult(), nil
}

// do runs one request and unwraps the {ok, error} envelope. out must embed
// envelope (or at least carry ok/error fields).
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(authHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("could not parse venue response: %w", err)
	}
	if !env.OK {
		return &APIError{Msg: env.Error, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode >= 400 {
		return &APIError{Msg: env.Error, StatusCode: resp.StatusCode}
	}

	return json.Unmarshal(data, out)
}
