// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking exposes the pool engine over REST. Mutations carry the
// caller address in the body; the engine decides, this layer only maps
// outcomes to status codes.
package staking

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/lineax/stakeline/api/restutil"
	"github.com/lineax/stakeline/stakeline"
	"github.com/lineax/stakeline/staking"
	"github.com/lineax/stakeline/staking/reverts"
)

type Staking struct {
	engine *staking.Staking
}

func New(engine *staking.Staking) *Staking {
	return &Staking{engine}
}

func (s *Staking) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.engine.Stake(req.Context(), body.Caller, amountOrNil(body.Amount)); err != nil {
		return convertEngineError(err)
	}
	w.WriteHeader(http.StatusOK)
	return nil
}

func (s *Staking) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.engine.Withdraw(req.Context(), body.Caller, amountOrNil(body.Amount)); err != nil {
		return convertEngineError(err)
	}
	w.WriteHeader(http.StatusOK)
	return nil
}

func (s *Staking) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	paid, err := s.engine.ClaimRewards(req.Context(), body.Caller)
	if err != nil {
		return convertEngineError(err)
	}
	return restutil.WriteJSON(w, &ClaimResult{Amount: (*math.HexOrDecimal256)(paid)})
}

func (s *Staking) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := stakeline.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	acc, err := s.engine.Account(*addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertAccount(acc))
}

func (s *Staking) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := stakeline.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	asset := req.URL.Query().Get("asset")
	if asset == "" {
		asset = string(staking.AssetStake)
	}
	switch staking.Asset(asset) {
	case staking.AssetStake, staking.AssetReward:
	default:
		return restutil.BadRequest(errors.New("asset: unknown"))
	}
	balance, err := s.engine.AssetBalance(req.Context(), staking.Asset(asset), *addr)
	if err != nil {
		return restutil.HTTPError(errors.WithMessage(err, "asset backend"), http.StatusBadGateway)
	}
	return restutil.WriteJSON(w, &Balance{Balance: math.HexOrDecimal256(*balance)})
}

func (s *Staking) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	status, err := s.engine.Status()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertPool(status))
}

// convertEngineError maps engine rejections onto HTTP statuses. Malformed
// requests are the client's fault, rule rejections are forbidden, settlement
// failures surface as a bad gateway, anything else is internal.
func convertEngineError(err error) error {
	switch {
	case errors.Is(err, reverts.ErrInvalidAmount):
		return restutil.BadRequest(err)
	case errors.Is(err, reverts.ErrInsufficientStake), errors.Is(err, reverts.ErrNothingToClaim):
		return restutil.Forbidden(err)
	case errors.Is(err, reverts.ErrTransferFailed):
		return restutil.BadGateway(err)
	default:
		return err
	}
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/stakes").
		Methods(http.MethodPost).
		Name("POST /staking/stakes").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleStake))
	sub.Path("/withdrawals").
		Methods(http.MethodPost).
		Name("POST /staking/withdrawals").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleWithdraw))
	sub.Path("/claims").
		Methods(http.MethodPost).
		Name("POST /staking/claims").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleClaim))
	sub.Path("/accounts/{address}").
		Methods(http.MethodGet).
		Name("GET /staking/accounts/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetAccount))
	sub.Path("/accounts/{address}/balance").
		Methods(http.MethodGet).
		Name("GET /staking/accounts/{address}/balance").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetBalance))
	sub.Path("/pool").
		Methods(http.MethodGet).
		Name("GET /staking/pool").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetPool))
}
