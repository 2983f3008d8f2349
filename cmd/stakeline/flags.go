// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/lineax/stakeline/log"
	"github.com/lineax/stakeline/stakeline"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger and event databases",
	}
	cacheFlag = cli.Uint64Flag{
		Name:  "cache",
		Usage: "megabytes of ram allocated to the ledger database cache",
		Value: 512,
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiEventsLimitFlag = cli.Uint64Flag{
		Name:  "api-events-limit",
		Value: 1000,
		Usage: "limit the number of events returned by /events API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	apiLogsSlowQueryFlag = cli.Uint64Flag{
		Name:  "api-logs-slow-query",
		Value: 0,
		Usage: "log API requests slower than the given threshold in milliseconds, even when request logging is off (0 to disable)",
	}
	apiLogs5xxFlag = cli.BoolFlag{
		Name:  "api-logs-5xx",
		Usage: "log API requests answered with a 5xx status, even when request logging is off",
	}
	stakeTokenURLFlag = cli.StringFlag{
		Name:  "stake-token-url",
		Usage: "base URL of the stake asset transfer service",
	}
	rewardTokenURLFlag = cli.StringFlag{
		Name:  "reward-token-url",
		Usage: "base URL of the reward asset transfer service",
	}
	tokenTimeoutFlag = cli.Uint64Flag{
		Name:  "token-timeout",
		Value: 5000,
		Usage: "token service request timeout value in milliseconds",
	}
	engineAccountFlag = cli.StringFlag{
		Name:  "engine-account",
		Value: stakeline.EngineAddress.String(),
		Usage: "address the engine escrows stakes under and pays rewards from",
	}
	baseAPYFlag = cli.Uint64Flag{
		Name:  "base-apy",
		Value: stakeline.InitialBaseAPY,
		Usage: "annual reward rate, in whole percent of the staked amount",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}

	// solo mode only flags
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "ledger data storage option, if set data will be saved to disk",
	}
	allocationFlag = cli.StringFlag{
		Name:  "allocation",
		Usage: "path to allocation file, if not set, the default devnet allocation will be used",
	}
)
