package config

import (
	"net"

	"github.com/RenSan888/compnetproject/pkg/gbn"
)

// The struct that matches the "client" section in the client.yaml file
type ClientConfig struct {
	DownloadDir string `yaml:"download_dir"`
}

// The struct that matches the "server" section in the client.yaml
// and server.yaml
type ServerConfig struct {
	Addr    string `yaml:"address"`
	RootDir string `yaml:"root_dir"`
}

// The struct that matches the "transfer" section in both files.
// Durations are strings in time.ParseDuration form ("1s", "500ms").
type TransferConfig struct {
	Window            int    `yaml:"window"`
	ChunkSize         int    `yaml:"chunk_size"`
	RetransmitTimeout string `yaml:"retransmit_timeout"`
	IdleTimeout       string `yaml:"idle_timeout"`
	MaxRetries        int    `yaml:"max_retries"`
}

// The struct structurally represents the client.yaml
type RawClientConfig struct {
	Client   ClientConfig
	Server   ServerConfig
	Transfer TransferConfig
}

// The struct structurally represents the server.yaml
type RawServerConfig struct {
	Server   ServerConfig
	Transfer TransferConfig
}

// Ready to use client side config
type ReadyClientConfig struct {
	RemoteAddr  *net.UDPAddr
	DownloadDir string
	Transfer    gbn.Config
}

// Ready to use server side config
type ReadyServerConfig struct {
	Addr     *net.UDPAddr
	RootDir  string
	Transfer gbn.Config
}
