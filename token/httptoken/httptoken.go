// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package httptoken talks to an external asset service over HTTP. Transfers
// are posted to /transfers and balances read from /accounts/{address}/balance;
// amounts travel as hex or decimal quantity strings.
package httptoken

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/lineax/stakeline/stakeline"
	"github.com/lineax/stakeline/token"
)

var ErrNot200Status = errors.New("not 200 status code")

var _ token.Transferor = (*Client)(nil)

// Client is the HTTP client for an external asset service. Payouts via
// MoveTo are sent from the account the client was created with.
type Client struct {
	url     string
	account stakeline.Address
	c       *http.Client
}

// New creates a new Client against the given service URL. Every request is
// bounded by timeout on top of whatever deadline the caller's context carries.
func New(url string, account stakeline.Address, timeout time.Duration) *Client {
	return NewWithHTTP(url, account, &http.Client{Timeout: timeout})
}

func NewWithHTTP(url string, account stakeline.Address, c *http.Client) *Client {
	return &Client{
		url:     url,
		account: account,
		c:       c,
	}
}

type transferRequest struct {
	From   stakeline.Address     `json:"from"`
	To     stakeline.Address     `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type transferResult struct {
	Ok bool `json:"ok"`
}

type balanceResult struct {
	Balance *math.HexOrDecimal256 `json:"balance"`
}

// MoveFrom asks the asset service to move amount between the two accounts.
func (c *Client) MoveFrom(ctx context.Context, from, to stakeline.Address, amount *big.Int) (bool, error) {
	req := &transferRequest{
		From:   from,
		To:     to,
		Amount: (*math.HexOrDecimal256)(amount),
	}
	body, err := c.httpPOST(ctx, c.url+"/transfers", req)
	if err != nil {
		return false, fmt.Errorf("unable to request transfer - %w", err)
	}

	var res transferResult
	if err = json.Unmarshal(body, &res); err != nil {
		return false, fmt.Errorf("unable to unmarshal transfer result - %w", err)
	}
	return res.Ok, nil
}

// MoveTo pays amount from the client's own account to the given account.
func (c *Client) MoveTo(ctx context.Context, to stakeline.Address, amount *big.Int) (bool, error) {
	return c.MoveFrom(ctx, c.account, to, amount)
}

// BalanceOf retrieves the account's balance from the asset service.
func (c *Client) BalanceOf(ctx context.Context, account stakeline.Address) (*big.Int, error) {
	body, err := c.httpGET(ctx, c.url+"/accounts/"+account.String()+"/balance")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve balance - %w", err)
	}

	var res balanceResult
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal balance - %w", err)
	}
	if res.Balance == nil {
		return nil, fmt.Errorf("balance missing in response")
	}
	return (*big.Int)(res.Balance), nil
}

func (c *Client) httpRequest(ctx context.Context, method, url string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if method == "POST" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error - Status Code %d - %s - %w", resp.StatusCode, responseBody, ErrNot200Status)
	}
	return responseBody, nil
}

func (c *Client) httpGET(ctx context.Context, url string) ([]byte, error) {
	return c.httpRequest(ctx, "GET", url, nil)
}

func (c *Client) httpPOST(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal payload - %w", err)
	}
	return c.httpRequest(ctx, "POST", url, bytes.NewBuffer(data))
}
