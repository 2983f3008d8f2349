// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking orchestrates the stake ledger, reward accrual and claim
// bookkeeping behind a single serialized facade. Every mutation settles the
// asset transfer before the state commit, and the whole write set of an
// operation reverts if any step of it fails.
package staking

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/lineax/stakeline/co"
	"github.com/lineax/stakeline/eventdb"
	"github.com/lineax/stakeline/log"
	"github.com/lineax/stakeline/stakeline"
	"github.com/lineax/stakeline/staking/claims"
	"github.com/lineax/stakeline/staking/ledger"
	"github.com/lineax/stakeline/staking/reverts"
	"github.com/lineax/stakeline/staking/rewards"
	"github.com/lineax/stakeline/state"
	"github.com/lineax/stakeline/token"
)

var logger = log.WithContext("pkg", "staking")

// Clock supplies the engine's notion of now, as a unix timestamp.
type Clock interface {
	Now() uint64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current unix timestamp.
func (SystemClock) Now() uint64 { return uint64(time.Now().Unix()) }

// Asset names one of the two asset backends the engine settles against.
type Asset string

const (
	// AssetStake is the asset accounts lock into the pool.
	AssetStake Asset = "stake"
	// AssetReward is the asset claims pay out in.
	AssetReward Asset = "reward"
)

// Config carries the reward parameters of the pool.
type Config struct {
	// BaseAPY is the flat annual reward rate, in whole percent.
	BaseAPY uint64
	// SecondsPerYear scales elapsed seconds to years.
	SecondsPerYear uint64
	// RewardsPrecision is the fixed-point scale reserved for the pool's
	// per-token reward accumulator. Nothing advances the accumulator yet;
	// the scale is carried so stored values keep their meaning once
	// something does.
	RewardsPrecision *big.Int
}

// DefaultConfig returns the production reward parameters.
func DefaultConfig() Config {
	return Config{
		BaseAPY:          stakeline.InitialBaseAPY,
		SecondsPerYear:   stakeline.SecondsPerYear,
		RewardsPrecision: stakeline.InitialRewardsPrecision,
	}
}

// Status is a snapshot of pool-wide state.
type Status struct {
	TotalStaked        *big.Int
	LastUpdateTime     uint64
	AccRewardsPerToken *big.Int
	BaseAPY            uint64
}

// AccountStatus is a snapshot of a single account's staking state.
type AccountStatus struct {
	Staked    *big.Int
	StakeTime uint64
	Pending   *big.Int
	Claimed   *big.Int
}

// Staking is the pool engine. All operations on it are safe for concurrent
// use; mutations are fully serialized.
type Staking struct {
	mu sync.RWMutex

	account stakeline.Address
	state   *state.State
	config  Config

	ledger  *ledger.Service
	rewards *rewards.Service
	claims  *claims.Service

	stakeToken  token.Transferor
	rewardToken token.Transferor
	events      *eventdb.EventDB
	clock       Clock
	tick        co.Signal
}

// New creates the engine on top of the given state. The account is the
// pool's own address, used as the destination of incoming stakes. The
// events sink may be nil, in which case no history is recorded. A nil
// clock defaults to the system clock.
func New(
	account stakeline.Address,
	st *state.State,
	config Config,
	stakeToken token.Transferor,
	rewardToken token.Transferor,
	events *eventdb.EventDB,
	clock Clock,
) *Staking {
	if clock == nil {
		clock = SystemClock{}
	}
	led := ledger.New(st)
	return &Staking{
		account:     account,
		state:       st,
		config:      config,
		ledger:      led,
		rewards:     rewards.New(led, config.BaseAPY, config.SecondsPerYear),
		claims:      claims.New(st),
		stakeToken:  stakeToken,
		rewardToken: rewardToken,
		events:      events,
		clock:       clock,
	}
}

// PoolAccount is the pool's own address.
func (s *Staking) PoolAccount() stakeline.Address {
	return s.account
}

// NewTicker creates a signal Waiter to receive event that history grew.
func (s *Staking) NewTicker() co.Waiter {
	return s.tick.NewWaiter()
}

// Stake locks amount of the caller's stake asset into the pool. The
// position's stake timestamp moves to now, so any rewards accrued on the
// prior balance and not yet claimed are forfeited; callers wanting to keep
// them must claim first.
func (s *Staking) Stake(ctx context.Context, caller stakeline.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer observeOp("stake", time.Now())

	logger.Debug("staking", "caller", caller, "amount", amount)

	if amount == nil {
		return s.reverted("stake", caller, reverts.ErrInvalidAmount)
	}

	checkpoint := s.state.NewCheckpoint()
	now := s.clock.Now()

	if err := s.rewards.Reconcile(now); err != nil {
		s.state.RevertTo(checkpoint)
		return s.failed("stake", caller, err)
	}
	if err := s.ledger.Increase(caller, amount, now); err != nil {
		s.state.RevertTo(checkpoint)
		return s.reverted("stake", caller, err)
	}

	ok, err := s.stakeToken.MoveFrom(ctx, caller, s.account, amount)
	if err != nil || !ok {
		s.state.RevertTo(checkpoint)
		logger.Info("stake transfer failed", "caller", caller, "amount", amount, "error", err)
		metricOpCounter().AddWithLabel(1, map[string]string{"op": "stake", "status": "reverted"})
		return transferFailed(err)
	}

	if err := s.state.Commit(); err != nil {
		s.state.RevertTo(checkpoint)
		logger.Error("stake settled but commit failed", "caller", caller, "amount", amount, "error", err)
		metricOpCounter().AddWithLabel(1, map[string]string{"op": "stake", "status": "failed"})
		return err
	}

	s.appendEvent(eventdb.Staked, caller, amount, now)
	s.refreshTotalGauge()
	metricOpCounter().AddWithLabel(1, map[string]string{"op": "stake", "status": "ok"})
	logger.Info("staked", "caller", caller, "amount", amount)
	return nil
}

// Withdraw releases amount of the caller's staked asset back to them. The
// stake timestamp is left untouched, so accrual keeps running on whatever
// remains, and a position drained to zero stays on record.
func (s *Staking) Withdraw(ctx context.Context, caller stakeline.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer observeOp("withdraw", time.Now())

	logger.Debug("withdrawing", "caller", caller, "amount", amount)

	if amount == nil {
		return s.reverted("withdraw", caller, reverts.ErrInvalidAmount)
	}

	checkpoint := s.state.NewCheckpoint()
	now := s.clock.Now()

	if err := s.rewards.Reconcile(now); err != nil {
		s.state.RevertTo(checkpoint)
		return s.failed("withdraw", caller, err)
	}
	if err := s.ledger.Decrease(caller, amount); err != nil {
		s.state.RevertTo(checkpoint)
		return s.reverted("withdraw", caller, err)
	}

	ok, err := s.stakeToken.MoveTo(ctx, caller, amount)
	if err != nil || !ok {
		s.state.RevertTo(checkpoint)
		logger.Info("withdraw transfer failed", "caller", caller, "amount", amount, "error", err)
		metricOpCounter().AddWithLabel(1, map[string]string{"op": "withdraw", "status": "reverted"})
		return transferFailed(err)
	}

	if err := s.state.Commit(); err != nil {
		s.state.RevertTo(checkpoint)
		logger.Error("withdraw settled but commit failed", "caller", caller, "amount", amount, "error", err)
		metricOpCounter().AddWithLabel(1, map[string]string{"op": "withdraw", "status": "failed"})
		return err
	}

	s.appendEvent(eventdb.Withdrawn, caller, amount, now)
	s.refreshTotalGauge()
	metricOpCounter().AddWithLabel(1, map[string]string{"op": "withdraw", "status": "ok"})
	logger.Info("withdrawn", "caller", caller, "amount", amount)
	return nil
}

// ClaimRewards pays out everything the caller has accrued and not yet
// claimed, in the reward asset, and returns the amount paid.
func (s *Staking) ClaimRewards(ctx context.Context, caller stakeline.Address) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer observeOp("claim", time.Now())

	logger.Debug("claiming rewards", "caller", caller)

	checkpoint := s.state.NewCheckpoint()
	now := s.clock.Now()

	if err := s.rewards.Reconcile(now); err != nil {
		s.state.RevertTo(checkpoint)
		return nil, s.failed("claim", caller, err)
	}

	pos, err := s.ledger.Get(caller)
	if err != nil {
		s.state.RevertTo(checkpoint)
		return nil, s.failed("claim", caller, err)
	}
	claimed, err := s.claims.Claimed(caller)
	if err != nil {
		s.state.RevertTo(checkpoint)
		return nil, s.failed("claim", caller, err)
	}

	pending := s.rewards.Pending(pos, claimed, now)
	if pending.Sign() == 0 {
		s.state.RevertTo(checkpoint)
		return nil, s.reverted("claim", caller, reverts.ErrNothingToClaim)
	}

	if err := s.claims.Record(caller, pending); err != nil {
		s.state.RevertTo(checkpoint)
		return nil, s.reverted("claim", caller, err)
	}

	ok, err := s.rewardToken.MoveTo(ctx, caller, pending)
	if err != nil || !ok {
		s.state.RevertTo(checkpoint)
		logger.Info("claim transfer failed", "caller", caller, "amount", pending, "error", err)
		metricOpCounter().AddWithLabel(1, map[string]string{"op": "claim", "status": "reverted"})
		return nil, transferFailed(err)
	}

	if err := s.state.Commit(); err != nil {
		s.state.RevertTo(checkpoint)
		logger.Error("claim settled but commit failed", "caller", caller, "amount", pending, "error", err)
		metricOpCounter().AddWithLabel(1, map[string]string{"op": "claim", "status": "failed"})
		return nil, err
	}

	s.appendEvent(eventdb.Claimed, caller, pending, now)
	metricOpCounter().AddWithLabel(1, map[string]string{"op": "claim", "status": "ok"})
	logger.Info("claimed rewards", "caller", caller, "amount", pending)
	return pending, nil
}

// StakedAmount returns the account's currently staked amount.
func (s *Staking) StakedAmount(account stakeline.Address) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, err := s.ledger.Get(account)
	if err != nil {
		return nil, err
	}
	return pos.Amount, nil
}

// PendingRewards returns the rewards the account could claim right now,
// computed against the live clock without touching state.
func (s *Staking) PendingRewards(account stakeline.Address) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pending(account, s.clock.Now())
}

// Account returns a full snapshot of the account's staking state.
func (s *Staking) Account(account stakeline.Address) (*AccountStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, err := s.ledger.Get(account)
	if err != nil {
		return nil, err
	}
	claimed, err := s.claims.Claimed(account)
	if err != nil {
		return nil, err
	}
	return &AccountStatus{
		Staked:    pos.Amount,
		StakeTime: pos.StakeTime,
		Pending:   s.rewards.Pending(pos, claimed, s.clock.Now()),
		Claimed:   claimed,
	}, nil
}

// Status returns a snapshot of pool-wide state.
func (s *Staking) Status() (*Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool, err := s.ledger.Pool()
	if err != nil {
		return nil, err
	}
	return &Status{
		TotalStaked:        pool.TotalStaked,
		LastUpdateTime:     pool.LastUpdateTime,
		AccRewardsPerToken: pool.AccRewardsPerToken,
		BaseAPY:            s.config.BaseAPY,
	}, nil
}

// RefreshGauges republishes pool-wide metrics. Mutations keep them current
// on their own; housekeeping calls this to cover restarts.
func (s *Staking) RefreshGauges() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.refreshTotalGauge()
}

// AssetBalance reads an account balance from one of the asset backends.
func (s *Staking) AssetBalance(ctx context.Context, asset Asset, account stakeline.Address) (*big.Int, error) {
	switch asset {
	case AssetStake:
		return s.stakeToken.BalanceOf(ctx, account)
	case AssetReward:
		return s.rewardToken.BalanceOf(ctx, account)
	default:
		return nil, errors.Errorf("unknown asset %q", asset)
	}
}

func (s *Staking) pending(account stakeline.Address, now uint64) (*big.Int, error) {
	pos, err := s.ledger.Get(account)
	if err != nil {
		return nil, err
	}
	claimed, err := s.claims.Claimed(account)
	if err != nil {
		return nil, err
	}
	return s.rewards.Pending(pos, claimed, now), nil
}

// transferFailed keeps the transport cause visible when there is one.
// Refusals carry no cause and surface the bare rule error.
func transferFailed(err error) error {
	if err != nil {
		return errors.WithMessage(reverts.ErrTransferFailed, err.Error())
	}
	return reverts.ErrTransferFailed
}

// reverted records a business-rule rejection and hands the error back.
func (s *Staking) reverted(op string, caller stakeline.Address, err error) error {
	logger.Info(op+" failed", "caller", caller, "error", err)
	metricOpCounter().AddWithLabel(1, map[string]string{"op": op, "status": "reverted"})
	return err
}

// failed records an internal error and hands it back.
func (s *Staking) failed(op string, caller stakeline.Address, err error) error {
	logger.Error(op+" failed", "caller", caller, "error", err)
	metricOpCounter().AddWithLabel(1, map[string]string{"op": op, "status": "failed"})
	return err
}

// appendEvent records history after the ledger has committed. Failures are
// logged and counted; history never unwinds settled state.
func (s *Staking) appendEvent(kind eventdb.Kind, account stakeline.Address, amount *big.Int, now uint64) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(&eventdb.Event{
		Time:    now,
		Kind:    kind,
		Account: account,
		Amount:  amount,
	}); err != nil {
		logger.Warn("failed to append event", "kind", kind, "account", account, "error", err)
		metricEventDropCounter().AddWithLabel(1, map[string]string{"kind": string(kind)})
		return
	}
	s.tick.Broadcast()
}

func (s *Staking) refreshTotalGauge() {
	total, err := s.ledger.Total()
	if err != nil {
		return
	}
	if total.IsInt64() {
		metricTotalStakedGauge().Set(total.Int64())
	}
}
