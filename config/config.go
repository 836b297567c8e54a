// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config defines the node's configuration record: the option
// table consumed from a config file and the command line, parsed with
// go-flags the way the rest of the corpus parses its daemon options.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
)

// ErrKind identifies a configuration-time error, which is always fatal
// before the controller starts.
const ErrKind = "Config"

// ConfigError wraps a malformed or missing option.
type ConfigError struct {
	Option string
	Desc   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrKind, e.Option, e.Desc)
}

// Config is the full set of options recognized from the environment
// (config file plus command line overrides), per the external interfaces
// option table.
type Config struct {
	NumberOfNodes int    `long:"number_of_nodes" description:"Target count of concurrent peers" default:"8"`
	DNSSeed       string `long:"dns_seed" description:"Hostname used to discover peers"`
	ConnectToDNS  bool   `long:"connect_to_dns_nodes" description:"If true, resolve dns_seed; else use custom_nodes_ips"`
	CustomNodeIPs string `long:"custom_nodes_ips" description:"Comma-separated IPv4 list; empty means none"`

	Network         string `long:"network" description:"Selects the chain parameters: mainnet, testnet3 or regnet" default:"mainnet"`
	NetPort         string `long:"net_port" description:"Peer TCP port"`
	StartString     string `long:"start_string" description:"4-byte network magic, hex-encoded; overrides the network default when set"`
	ProtocolVersion uint32 `long:"protocol_version" description:"Announced in version" default:"70015"`
	UserAgent       string `long:"user_agent" description:"Announced in version" default:"/btcnode:0.1.0/"`

	NThreads       int `long:"n_threads" description:"Worker thread count" default:"4"`
	ConnectTimeout int `long:"connect_timeout" description:"Seconds for connect and handshake" default:"5"`
	MaxConnections int `long:"max_connections" description:"Inbound connection cap" default:"125"`

	BlocksDownloadPerNode int    `long:"blocks_download_per_node" description:"Shard size for IBD" default:"16"`
	DateFirstBlock        string `long:"date_first_block_to_download" description:"First block by header timestamp"`
	DateFormat            string `long:"date_format" description:"Parse format for date_first_block_to_download" default:"2006-01-02"`
	HeightFirstBlock      int64  `long:"height_first_block_to_download" description:"Override of the date-based lookup" default:"-1"`

	AmountOfHeadersToStore  int    `long:"amount_of_headers_to_store_in_disk" description:"Persisted prefix length" default:"50000"`
	ReadHeadersFromDisk     bool   `long:"read_headers_from_disk" description:"Replay persisted headers at startup"`
	HeadersFile             string `long:"headers_file" description:"Path of the persisted headers file" default:"headers.dat"`
	DownloadFromSingleNode  bool   `long:"download_full_blockchain_from_single_node" description:"Pin IBD to one peer"`

	Proxy         string `long:"proxy" description:"SOCKS5 proxy for outbound dials, host:port; empty means dial directly"`
	ProxyUser     string `long:"proxyuser" description:"SOCKS5 proxy username"`
	ProxyPass     string `long:"proxypass" description:"SOCKS5 proxy password"`
	NotifyListen  string `long:"notify_listen" description:"Address for the websocket event-bus mirror; empty disables it"`

	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir    string `short:"b" long:"datadir" description:"Directory to store data" default:"~/.btcnode"`
	LogDir     string `long:"logdir" description:"Directory to log output"`
}

// defaultConfigFile returns the default location for a config file under
// datadir.
func defaultConfigFile(datadir string) string {
	return filepath.Join(datadir, "btcnode.conf")
}

// Load parses args (typically os.Args[1:]) against a default Config,
// optionally reading an INI-style config file first, the way the rest of
// the corpus layers a file default under command-line overrides.
func Load(args []string) (*Config, error) {
	cfg := Config{DataDir: "~/.btcnode"}

	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.Default)
	if _, err := preParser.ParseArgs(args); err != nil {
		return nil, err
	}
	if preCfg.ConfigFile == "" {
		preCfg.ConfigFile = defaultConfigFile(preCfg.DataDir)
	}

	if _, err := os.Stat(preCfg.ConfigFile); err == nil {
		fileParser := flags.NewParser(&cfg, flags.Default)
		if err := flags.NewIniParser(fileParser).ParseFile(preCfg.ConfigFile); err != nil {
			return nil, &ConfigError{Option: "configfile", Desc: err.Error()}
		}
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate enforces the cross-field invariants the option table implies:
// exactly one address source (a dns_seed when connect_to_dns_nodes is set,
// otherwise custom_nodes_ips), a resolvable first-download position, and a
// positive shard size.
func (cfg *Config) validate() error {
	if cfg.ConnectToDNS && cfg.DNSSeed == "" {
		return &ConfigError{Option: "dns_seed", Desc: "connect_to_dns_nodes is set but dns_seed is empty"}
	}
	if cfg.ConnectToDNS && cfg.CustomNodeIPs != "" {
		return &ConfigError{Option: "custom_nodes_ips", Desc: "at most one address source may be configured"}
	}
	if !cfg.ConnectToDNS && cfg.CustomNodeIPs == "" {
		return &ConfigError{Option: "custom_nodes_ips", Desc: "no address source configured: set connect_to_dns_nodes or custom_nodes_ips"}
	}
	if cfg.HeightFirstBlock < 0 && cfg.DateFirstBlock == "" {
		return &ConfigError{Option: "date_first_block_to_download", Desc: "neither a date nor a height override was supplied"}
	}
	if cfg.BlocksDownloadPerNode <= 0 {
		return &ConfigError{Option: "blocks_download_per_node", Desc: "must be positive"}
	}
	return nil
}

// FirstBlockDate parses DateFirstBlock using DateFormat, for callers that
// need a concrete time.Time rather than the raw string.
func (cfg *Config) FirstBlockDate() (time.Time, error) {
	if cfg.DateFirstBlock == "" {
		return time.Time{}, &ConfigError{Option: "date_first_block_to_download", Desc: "not set"}
	}
	t, err := time.Parse(cfg.DateFormat, cfg.DateFirstBlock)
	if err != nil {
		return time.Time{}, &ConfigError{Option: "date_first_block_to_download", Desc: err.Error()}
	}
	return t, nil
}
