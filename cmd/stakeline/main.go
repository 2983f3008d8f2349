// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/lineax/stakeline/api"
	"github.com/lineax/stakeline/cmd/stakeline/httpserver"
	"github.com/lineax/stakeline/cmd/stakeline/node"
	"github.com/lineax/stakeline/eventdb"
	"github.com/lineax/stakeline/genesis"
	"github.com/lineax/stakeline/health"
	"github.com/lineax/stakeline/log"
	"github.com/lineax/stakeline/lvldb"
	"github.com/lineax/stakeline/metrics"
	"github.com/lineax/stakeline/staking"
	"github.com/lineax/stakeline/state"
	"github.com/lineax/stakeline/token/httptoken"
	"github.com/lineax/stakeline/token/memtoken"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

// account record cache of the ledger state, in entries
const stateCacheSize = 8192

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Stakeline",
		Usage:     "Node of the Stakeline staking pool",
		Copyright: "2025 The Stakeline developers",
		Flags: []cli.Flag{
			dataDirFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiEventsLimitFlag,
			enableAPILogsFlag,
			apiLogsSlowQueryFlag,
			apiLogs5xxFlag,
			stakeTokenURLFlag,
			rewardTokenURLFlag,
			tokenTimeoutFlag,
			engineAccountFlag,
			baseAPYFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "Stakeline client for test & dev",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					apiEventsLimitFlag,
					enableAPILogsFlag,
					apiLogsSlowQueryFlag,
					apiLogs5xxFlag,
					engineAccountFlag,
					baseAPYFlag,
					verbosityFlag,
					jsonLogsFlag,
					pprofFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					enableAdminFlag,
					adminAddrFlag,
					persistFlag,
					allocationFlag,
				},
				Action: soloAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse verbosity flag")
	}
	logLevel := initLogger(lvl, ctx.Bool(jsonLogsFlag.Name))

	stakeURL := ctx.String(stakeTokenURLFlag.Name)
	rewardURL := ctx.String(rewardTokenURLFlag.Name)
	if stakeURL == "" || rewardURL == "" {
		cli.ShowAppHelp(ctx)
		fmt.Println("token service URLs not specified")
		os.Exit(1)
	}

	// enable metrics as soon as possible
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		log.Info("metrics server started", "url", url)
		defer closeFunc()
	}

	engineAcct := engineAccount(ctx)
	config := stakingConfig(ctx)
	dataDir := makeDataDir(ctx)

	mainDB := openMainDB(ctx, dataDir)
	defer func() { log.Info("closing ledger database..."); mainDB.Close() }()

	eventDB := openEventDB(dataDir)
	defer func() { log.Info("closing event database..."); eventDB.Close() }()

	st, err := state.New(mainDB, stateCacheSize)
	if err != nil {
		return errors.Wrap(err, "create ledger state")
	}

	tokenTimeout := time.Duration(ctx.Uint64(tokenTimeoutFlag.Name)) * time.Millisecond
	stakeToken := httptoken.New(stakeURL, engineAcct, tokenTimeout)
	rewardToken := httptoken.New(rewardURL, engineAcct, tokenTimeout)

	engine := staking.New(engineAcct, st, config, stakeToken, rewardToken, eventDB, nil)

	healthStatus := health.New()

	logAPIRequests := atomic.Bool{}
	logAPIRequests.Store(ctx.Bool(enableAPILogsFlag.Name))
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(
			ctx.String(adminAddrFlag.Name),
			logLevel,
			healthStatus,
			&logAPIRequests,
		)
		if err != nil {
			return fmt.Errorf("unable to start admin server - %w", err)
		}
		log.Info("admin server started", "url", url)
		defer closeFunc()
	}

	apiHandler, closeAPI := api.New(engine, eventDB, api.Options{
		AllowedOrigins:     ctx.String(apiCorsFlag.Name),
		EventsLimit:        ctx.Uint64(apiEventsLimitFlag.Name),
		PprofOn:            ctx.Bool(pprofFlag.Name),
		EnableMetrics:      ctx.Bool(enableMetricsFlag.Name),
		LogAPIRequests:     &logAPIRequests,
		SlowQueryThreshold: time.Duration(ctx.Uint64(apiLogsSlowQueryFlag.Name)) * time.Millisecond,
		Log5xxErrors:       ctx.Bool(apiLogs5xxFlag.Name),
	})
	defer func() { log.Info("closing API..."); closeAPI() }()

	apiURL, srvCloser, err := httpserver.StartAPIServer(
		ctx.String(apiAddrFlag.Name),
		apiHandler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return fmt.Errorf("unable to start API server - %w", err)
	}
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	printStartupMessage(engineAcct, config, dataDir, apiURL)

	return node.New(engine, eventDB, healthStatus).Run(handleExitSignal())
}

func soloAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse verbosity flag")
	}
	logLevel := initLogger(lvl, ctx.Bool(jsonLogsFlag.Name))

	// enable metrics as soon as possible
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		log.Info("metrics server started", "url", url)
		defer closeFunc()
	}

	var alloc *genesis.Allocation
	if path := ctx.String(allocationFlag.Name); path != "" {
		if alloc, err = genesis.Load(path); err != nil {
			fatalf("load allocation [%v]: %v", path, err)
		}
	} else {
		alloc = genesis.NewDevnet()
	}

	engineAcct := engineAccount(ctx)
	config := stakingConfig(ctx)

	var mainDB *lvldb.LevelDB
	var eventDB *eventdb.EventDB
	var dataDir string

	if ctx.Bool(persistFlag.Name) {
		dataDir = makeDataDir(ctx)
		mainDB = openMainDB(ctx, dataDir)
		eventDB = openEventDB(dataDir)
	} else {
		dataDir = "Memory"
		mainDB = openMemMainDB()
		eventDB = openMemEventDB()
	}

	defer func() { log.Info("closing ledger database..."); mainDB.Close() }()
	defer func() { log.Info("closing event database..."); eventDB.Close() }()

	st, err := state.New(mainDB, stateCacheSize)
	if err != nil {
		return errors.Wrap(err, "create ledger state")
	}

	stakeToken := memtoken.New(engineAcct)
	rewardToken := memtoken.New(engineAcct)
	alloc.Seed(engineAcct, stakeToken, rewardToken)

	engine := staking.New(engineAcct, st, config, stakeToken, rewardToken, eventDB, nil)

	// The token ledgers live in process memory, so a persisted data dir comes
	// back with positions whose escrow vanished with the last process. Mint it
	// again or withdrawals bounce.
	status, err := engine.Status()
	if err != nil {
		return errors.Wrap(err, "read pool status")
	}
	if status.TotalStaked.Sign() > 0 {
		stakeToken.Mint(engineAcct, status.TotalStaked)
	}

	healthStatus := health.New()

	logAPIRequests := atomic.Bool{}
	logAPIRequests.Store(ctx.Bool(enableAPILogsFlag.Name))
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(
			ctx.String(adminAddrFlag.Name),
			logLevel,
			healthStatus,
			&logAPIRequests,
		)
		if err != nil {
			return fmt.Errorf("unable to start admin server - %w", err)
		}
		log.Info("admin server started", "url", url)
		defer closeFunc()
	}

	apiHandler, closeAPI := api.New(engine, eventDB, api.Options{
		AllowedOrigins:     ctx.String(apiCorsFlag.Name),
		EventsLimit:        ctx.Uint64(apiEventsLimitFlag.Name),
		PprofOn:            ctx.Bool(pprofFlag.Name),
		EnableMetrics:      ctx.Bool(enableMetricsFlag.Name),
		LogAPIRequests:     &logAPIRequests,
		SlowQueryThreshold: time.Duration(ctx.Uint64(apiLogsSlowQueryFlag.Name)) * time.Millisecond,
		Log5xxErrors:       ctx.Bool(apiLogs5xxFlag.Name),
	})
	defer func() { log.Info("closing API..."); closeAPI() }()

	apiURL, srvCloser, err := httpserver.StartAPIServer(
		ctx.String(apiAddrFlag.Name),
		apiHandler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return fmt.Errorf("unable to start API server - %w", err)
	}
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	printSoloStartupMessage(alloc, engineAcct, dataDir, apiURL)

	return node.New(engine, eventDB, healthStatus).Run(handleExitSignal())
}
