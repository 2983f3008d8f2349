// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package client provides an HTTP client to interact with a stakeline node.
// It offers methods to stake, withdraw and claim rewards, and to read pool,
// account and event data through HTTP requests.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/lineax/stakeline/api/events"
	"github.com/lineax/stakeline/eventdb"
	"github.com/lineax/stakeline/stakeline"
	"github.com/lineax/stakeline/staking"

	stakingAPI "github.com/lineax/stakeline/api/staking"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNot200Status = errors.New("not 200 status code")
)

// Client talks to the REST API of a stakeline node.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: strings.TrimSuffix(url, "/"),
		c:   c,
	}
}

// Stake deposits amount of the stake token into the pool for caller.
func (c *Client) Stake(caller stakeline.Address, amount *big.Int) error {
	req := &stakingAPI.StakeRequest{
		Caller: caller,
		Amount: (*math.HexOrDecimal256)(amount),
	}
	if _, err := c.httpPOST(c.url+"/staking/stakes", req); err != nil {
		return fmt.Errorf("unable to stake - %w", err)
	}
	return nil
}

// Withdraw moves amount of staked tokens back to caller.
func (c *Client) Withdraw(caller stakeline.Address, amount *big.Int) error {
	req := &stakingAPI.StakeRequest{
		Caller: caller,
		Amount: (*math.HexOrDecimal256)(amount),
	}
	if _, err := c.httpPOST(c.url+"/staking/withdrawals", req); err != nil {
		return fmt.Errorf("unable to withdraw - %w", err)
	}
	return nil
}

// ClaimRewards pays out the rewards accrued by caller and returns the
// amount that was paid.
func (c *Client) ClaimRewards(caller stakeline.Address) (*big.Int, error) {
	body, err := c.httpPOST(c.url+"/staking/claims", &stakingAPI.ClaimRequest{Caller: caller})
	if err != nil {
		return nil, fmt.Errorf("unable to claim rewards - %w", err)
	}

	var result stakingAPI.ClaimResult
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unable to unmarshal claim result - %w", err)
	}

	return (*big.Int)(result.Amount), nil
}

// Account retrieves the staking state of the given address.
func (c *Client) Account(addr stakeline.Address) (*stakingAPI.Account, error) {
	body, err := c.httpGET(c.url + "/staking/accounts/" + addr.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve account - %w", err)
	}

	if len(body) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return nil, ErrNotFound
	}

	var account stakingAPI.Account
	if err = json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("unable to unmarshal account - %w", err)
	}

	return &account, nil
}

// Balance retrieves the token balance of the given address through the
// node's asset backends. An empty asset reads the stake token.
func (c *Client) Balance(addr stakeline.Address, asset staking.Asset) (*big.Int, error) {
	url := c.url + "/staking/accounts/" + addr.String() + "/balance"
	if asset != "" {
		url += "?asset=" + string(asset)
	}

	body, err := c.httpGET(url)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve balance - %w", err)
	}

	if len(body) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return nil, ErrNotFound
	}

	var balance stakingAPI.Balance
	if err = json.Unmarshal(body, &balance); err != nil {
		return nil, fmt.Errorf("unable to unmarshal balance - %w", err)
	}

	return (*big.Int)(&balance.Balance), nil
}

// Pool retrieves the pool-wide staking state.
func (c *Client) Pool() (*stakingAPI.Pool, error) {
	body, err := c.httpGET(c.url + "/staking/pool")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve pool - %w", err)
	}

	var pool stakingAPI.Pool
	if err = json.Unmarshal(body, &pool); err != nil {
		return nil, fmt.Errorf("unable to unmarshal pool - %w", err)
	}

	return &pool, nil
}

// EventsQuery narrows an event history request. Zero fields are left out of
// the query, so the zero value asks for the first page with node defaults.
type EventsQuery struct {
	Kind    eventdb.Kind       // staked, withdrawn or claimed; all when empty
	Account *stakeline.Address // all accounts when nil
	Unit    eventdb.RangeType  // unit of From and To, sequence when empty
	From    uint64
	To      uint64
	Order   eventdb.Order // asc when empty
	Offset  uint64
	Limit   uint64 // node default when zero
}

func (q *EventsQuery) params() []string {
	params := []string{}
	if q == nil {
		return params
	}
	if q.Kind != "" {
		params = append(params, "kind="+string(q.Kind))
	}
	if q.Account != nil {
		params = append(params, "account="+q.Account.String())
	}
	if q.Unit != "" {
		params = append(params, "unit="+string(q.Unit))
	}
	if q.From != 0 {
		params = append(params, "from="+strconv.FormatUint(q.From, 10))
	}
	if q.To != 0 {
		params = append(params, "to="+strconv.FormatUint(q.To, 10))
	}
	if q.Order != "" {
		params = append(params, "order="+string(q.Order))
	}
	if q.Offset != 0 {
		params = append(params, "offset="+strconv.FormatUint(q.Offset, 10))
	}
	if q.Limit != 0 {
		params = append(params, "limit="+strconv.FormatUint(q.Limit, 10))
	}
	return params
}

// Events retrieves the recorded staking operations matching the query.
func (c *Client) Events(query *EventsQuery) ([]*events.FilteredEvent, error) {
	url := c.url + "/events"
	if params := query.params(); len(params) > 0 {
		url += "?" + strings.Join(params, "&")
	}

	body, err := c.httpGET(url)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events - %w", err)
	}

	var filtered []*events.FilteredEvent
	if err = json.Unmarshal(body, &filtered); err != nil {
		return nil, fmt.Errorf("unable to unmarshal events - %w", err)
	}

	return filtered, nil
}
