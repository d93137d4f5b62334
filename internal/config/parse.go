package config

import (
	"log"
	"net"
	"os"
	"time"

	// Third party YAML builder and parser
	"github.com/goccy/go-yaml"

	"github.com/RenSan888/compnetproject/pkg/gbn"
)

// The two sides watch for a stalled peer with different patience, the
// server keeps serving other clients afterwards and can afford to wait.
const (
	clientIdleDefault = 3 * time.Second
	serverIdleDefault = 5 * time.Second
)

func LoadClientYaml(cfgPath string) ReadyClientConfig {
	data := readConfigFile(cfgPath)

	var rawCfg RawClientConfig
	parseYAML(data, &rawCfg)

	return ReadyClientConfig{
		resolveUDPAddr(rawCfg.Server.Addr),
		rawCfg.Client.DownloadDir,
		toTransfer(rawCfg.Transfer, clientIdleDefault),
	}
}

func LoadServerYaml(cfgPath string) ReadyServerConfig {
	data := readConfigFile(cfgPath)

	var rawCfg RawServerConfig
	parseYAML(data, &rawCfg)

	return ReadyServerConfig{
		resolveUDPAddr(rawCfg.Server.Addr),
		rawCfg.Server.RootDir,
		toTransfer(rawCfg.Transfer, serverIdleDefault),
	}
}

func toTransfer(raw TransferConfig, idleDefault time.Duration) gbn.Config {
	cfg := gbn.Config{
		WindowSize:        raw.Window,
		ChunkSize:         raw.ChunkSize,
		RetransmitTimeout: parseDuration(raw.RetransmitTimeout),
		IdleTimeout:       parseDuration(raw.IdleTimeout),
		MaxRetries:        raw.MaxRetries,
	}

	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = idleDefault
	}

	return cfg.WithDefaults()
}

func readConfigFile(path string) []byte {
	data, err := os.ReadFile(path)

	if err != nil {
		log.Panicf("Error reading configuration file on %s. %s\n", path, err)
	}

	return data
}

func parseYAML(data []byte, cfg any) {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Panicf("Error parsing YAML. %s\n", err)
	}
}

func parseDuration(str string) time.Duration {
	if str == "" {
		return 0
	}

	dur, err := time.ParseDuration(str)

	if err != nil {
		log.Panicf("Error parsing duration %q. %s\n", str, err)
	}

	return dur
}

func resolveUDPAddr(address string) *net.UDPAddr {
	addr, err := net.ResolveUDPAddr("udp", address)

	if err != nil {
		log.Fatalf("Error resolving UDP address %q: %v", address, err)
	}

	return addr
}
