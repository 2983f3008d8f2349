// Copyright (c) 2025 The Stakeline developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/lineax/stakeline/eventdb"
	"github.com/lineax/stakeline/genesis"
	"github.com/lineax/stakeline/log"
	"github.com/lineax/stakeline/lvldb"
	"github.com/lineax/stakeline/staking"
	"github.com/lineax/stakeline/stakeline"
)

func fatal(args ...interface{}) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func fatalf(format string, args ...interface{}) {
	fatal(fmt.Sprintf(format, args...))
}

func readIntFromUInt64Flag(val uint64) (int, error) {
	i := int(val)
	if i < 0 {
		return 0, fmt.Errorf("invalid value %d ", val)
	}

	return i, nil
}

func initLogger(lvl int, jsonLogs bool) *slog.LevelVar {
	logLevel := log.FromLegacyLevel(lvl)
	verbosity := &slog.LevelVar{}
	verbosity.Set(logLevel)

	output := io.Writer(os.Stdout)
	var handler slog.Handler
	if jsonLogs {
		handler = log.JSONHandlerWithLevel(output, verbosity)
	} else {
		useColor := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		handler = log.NewTerminalHandlerWithLevel(output, verbosity, useColor)
	}
	log.SetDefault(log.NewLogger(handler))

	return verbosity
}

// handleExitSignal process exit signal.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()

	return ctx
}

// copy from go-ethereum
func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "org.lineax.stakeline")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "org.lineax.stakeline")
		} else {
			return filepath.Join(home, ".org.lineax.stakeline")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatalf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fatalf("create data dir [%v]: %v", dataDir, err)
	}
	return dataDir
}

func engineAccount(ctx *cli.Context) stakeline.Address {
	value := ctx.String(engineAccountFlag.Name)
	addr, err := stakeline.ParseAddress(value)
	if err != nil {
		fatal("invalid engine account:", err)
	}
	return *addr
}

func stakingConfig(ctx *cli.Context) staking.Config {
	config := staking.DefaultConfig()
	config.BaseAPY = ctx.Uint64(baseAPYFlag.Name)
	return config
}

func openMainDB(ctx *cli.Context, dataDir string) *lvldb.LevelDB {
	cacheMB := normalizeCacheSize(int(ctx.Uint64(cacheFlag.Name)))
	log.Debug("cache size(MB)", "size", cacheMB)

	// go-ethereum stuff
	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))

	log.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	log.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: fdCache,
		PointCacheSize:         cacheMB / 4,
	})
	if err != nil {
		fatalf("open ledger database [%v]: %v", dir, err)
	}
	return db
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		fatal("failed to get fd limit:", err)
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func openEventDB(dataDir string) *eventdb.EventDB {
	dir := filepath.Join(dataDir, "events.db")
	db, err := eventdb.New(dir)
	if err != nil {
		fatalf("open event database [%v]: %v", dir, err)
	}
	return db
}

func openMemMainDB() *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	if err != nil {
		fatalf("open ledger database: %v", err)
	}
	return db
}

func openMemEventDB() *eventdb.EventDB {
	db, err := eventdb.NewMem()
	if err != nil {
		fatalf("open event database: %v", err)
	}
	return db
}

func printStartupMessage(
	engineAcct stakeline.Address,
	config staking.Config,
	dataDir string,
	apiURL string,
) {
	fmt.Printf(`Starting %v
    Engine account [ %v ]
    Base APY       [ %v%% ]
    Data dir       [ %v ]
    API portal     [ %v ]
`,
		common.MakeName("Stakeline", fullVersion()),
		engineAcct,
		config.BaseAPY,
		dataDir,
		apiURL)
}

func printSoloStartupMessage(
	alloc *genesis.Allocation,
	engineAcct stakeline.Address,
	dataDir string,
	apiURL string,
) {
	tableHead := `
┌────────────────────────────────────────────┬──────────────────────────────────┬──────────────────────────────────┐
│                   Address                  │               Stake              │              Reward              │`
	tableContent := `
├────────────────────────────────────────────┼──────────────────────────────────┼──────────────────────────────────┤
│ %-42v │ %32v │ %32v │`
	tableEnd := `
└────────────────────────────────────────────┴──────────────────────────────────┴──────────────────────────────────┘`

	info := fmt.Sprintf(`Starting %v
    Allocation     [ %v ]
    Engine account [ %v ]
    Data dir       [ %v ]
    API portal     [ %v ]`,
		common.MakeName("Stakeline solo", fullVersion()),
		alloc.Name,
		engineAcct,
		dataDir,
		apiURL)

	info += tableHead

	for _, a := range alloc.Accounts {
		info += fmt.Sprintf(tableContent,
			stakeline.Address(a.Address),
			displayAmount(a.Stake),
			displayAmount(a.Reward),
		)
	}
	info += tableEnd + "\r\n"

	fmt.Print(info)
}

func displayAmount(a *genesis.Amount) string {
	if a == nil {
		return "0"
	}
	return a.Big().String()
}
