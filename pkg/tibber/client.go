package tibber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nergy-se/tibbernobo/pkg/schedule"
	"github.com/nergy-se/tibbernobo/pkg/version"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var httpClient = &http.Client{
	Timeout: time.Second * 30,
}

var ErrUnexpectedResponse = errors.New("unexpected response structure")

type Client struct {
	url    string
	homeID string
	client *http.Client
}

// New returns a client authenticating with the personal access token as bearer.
func New(url, token, homeID string) *Client {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	return &Client{
		url:    url,
		homeID: homeID,
		client: oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		})),
	}
}

// Tomorrow fetches the price intervals for the next day. The list is empty
// until the prices have been published.
func (c *Client) Tomorrow(ctx context.Context) ([]schedule.PriceInterval, error) {
	body, err := json.Marshal(&request{
		Query:     tomorrowQuery,
		Variables: map[string]any{"homeId": c.homeID},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "tibbernobo/"+version.Commit())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("tibber api error StatusCode: %d body: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	response := &response{}
	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return nil, fmt.Errorf("error decoding tibber response: %w", err)
	}

	if len(response.Errors) > 0 {
		msgs := make([]string, len(response.Errors))
		for i, e := range response.Errors {
			msgs[i] = e.Message
		}
		return nil, fmt.Errorf("tibber api error: %s", strings.Join(msgs, "; "))
	}

	home := response.Data.Viewer.Home
	if home == nil || home.CurrentSubscription == nil || home.CurrentSubscription.PriceInfo == nil {
		return nil, fmt.Errorf("%w: missing priceInfo for home %s", ErrUnexpectedResponse, c.homeID)
	}

	prices := home.CurrentSubscription.PriceInfo.Tomorrow
	logrus.WithField("intervals", len(prices)).Debug("fetched tomorrows prices")
	return prices, nil
}
