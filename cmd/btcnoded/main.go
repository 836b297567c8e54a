// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command btcnoded runs the full-node daemon: it loads its configuration,
// resolves an initial peer set, and drives the controller through
// header-first sync, block download, and steady-state relay.
package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/btcnode/node/chaincfg"
	"github.com/btcnode/node/config"
	"github.com/btcnode/node/event"
	"github.com/btcnode/node/headerstore"
	"github.com/btcnode/node/node"
	"github.com/btcnode/node/notify"
	"github.com/btcnode/node/txlog"
	"github.com/decred/slog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	params, err := selectParams(cfg.Network)
	if err != nil {
		return &config.ConfigError{Option: "network", Desc: err.Error()}
	}

	logDir := cfg.LogDir
	if logDir == "" {
		logDir = filepath.Join(cfg.DataDir, "logs")
	}
	logs, err := txlog.New(logDir, 10)
	if err != nil {
		return err
	}
	defer logs.Close()
	log := logs.Logger("BTCD")

	addrs, err := resolveAddrs(cfg, params)
	if err != nil {
		return err
	}
	log.Infof("resolved %d candidate peer addresses", len(addrs))

	ctrl, err := node.New(cfg, params, addrs, 100000)
	if err != nil {
		return err
	}

	headers, err := headerstore.Open(filepath.Join(cfg.DataDir, cfg.HeadersFile))
	if err != nil {
		return err
	}
	defer headers.Close()

	if cfg.ReadHeadersFromDisk {
		persisted, err := headers.Load()
		if err != nil {
			return err
		}
		if err := ctrl.Chain.ReplayPrefix(persisted); err != nil {
			log.Warnf("discarding persisted headers store: %v", err)
		} else {
			log.Infof("replayed %d persisted headers", len(persisted))
		}
	}

	sub := ctrl.Bus.Subscribe()
	go logEvents(log, logs, sub)

	if cfg.NotifyListen != "" {
		srv := notify.New(ctrl.Bus)
		notifySub := ctrl.Bus.Subscribe()
		go srv.Run(notifySub)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/ws", srv)
			if err := http.ListenAndServe(cfg.NotifyListen, mux); err != nil {
				log.Errorf("notify server: %v", err)
			}
		}()
		defer srv.Close()
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		log.Info("received interrupt, shutting down")
		persistHeaders(ctrl, headers, cfg, log)
		ctrl.Shutdown()
		os.Exit(0)
	}()

	log.Infof("starting btcnoded on network %q", params.Name)
	return ctrl.Run()
}

// persistHeaders writes the configured number of headers back to the
// headers store, best-effort, on shutdown.
func persistHeaders(ctrl *node.Controller, headers *headerstore.Store, cfg *config.Config, log slog.Logger) {
	prefix := ctrl.Chain.PersistablePrefix(cfg.AmountOfHeadersToStore)
	if err := headers.Save(prefix); err != nil {
		log.Errorf("persist headers: %v", err)
		return
	}
	log.Infof("persisted %d headers", len(prefix))
}

// resolveAddrs turns the configured address source into a concrete
// "host:port" list: either a resolved DNS seed or the static IP list,
// never both (config.Load already enforced that invariant).
func resolveAddrs(cfg *config.Config, params *chaincfg.Params) ([]string, error) {
	port := cfg.NetPort
	if port == "" {
		port = params.DefaultPort
	}

	if cfg.ConnectToDNS {
		ips, err := net.LookupHost(cfg.DNSSeed)
		if err != nil {
			return nil, fmt.Errorf("resolve dns_seed %q: %w", cfg.DNSSeed, err)
		}
		addrs := make([]string, 0, len(ips))
		for _, ip := range ips {
			addrs = append(addrs, net.JoinHostPort(ip, port))
		}
		return addrs, nil
	}

	var addrs []string
	for _, ip := range strings.Split(cfg.CustomNodeIPs, ",") {
		ip = strings.TrimSpace(ip)
		if ip == "" {
			continue
		}
		addrs = append(addrs, net.JoinHostPort(ip, port))
	}
	return addrs, nil
}

// logEvents drains the controller's event bus onto the info log (and the
// dedicated error log for ErrorEvent), until the subscription's channel is
// closed.
func logEvents(log slog.Logger, logs *txlog.Manager, sub *event.Subscription) {
	for ev := range sub.C {
		switch ev.Kind {
		case event.HeaderSyncProgress:
			log.Infof("header chain height now %d", ev.Height)
		case event.BlockDownloaded:
			log.Infof("applied block %s at height %d", ev.Hash, ev.Height)
		case event.PendingTx:
			log.Infof("pending tx %s touches %d tracked script(s)", ev.TxID, len(ev.Scripts))
		case event.ConfirmedTx:
			log.Infof("tx %s confirmed in block %s", ev.TxID, ev.Hash)
		case event.ErrorEvent:
			logs.LogError(ev.ErrKind, "%s", ev.Detail)
			log.Errorf("%s: %s", ev.ErrKind, ev.Detail)
		case event.Lagged:
			log.Warnf("event subscriber missed %d events", ev.Missed)
		}
	}
}
