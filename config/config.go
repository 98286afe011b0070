// Package config reads the client settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/milos-ethernal/go-solana-movie-review/address"
	"github.com/milos-ethernal/go-solana-movie-review/node"
)

// DefaultProgramID is the movie review program deployed on devnet.
const DefaultProgramID = "CenYq6bDRB7p73EjsPEpiYN7uveyPUTdXkDkgUduboaN"

const (
	EnvRPCURL           = "SOLANA_RPC_URL"
	EnvProgramID        = "MOVIE_REVIEW_PROGRAM_ID"
	EnvWalletKeypair    = "WALLET_KEYPAIR"
	EnvWalletMnemonic   = "WALLET_MNEMONIC"
	EnvWalletPassphrase = "WALLET_PASSPHRASE"
	EnvRPCTimeout       = "RPC_TIMEOUT"
	EnvLogLevel         = "LOG_LEVEL"
	EnvHTTPAddr         = "HTTP_ADDR"
)

const (
	defaultHTTPAddr = ":8080"
	defaultLogLevel = "info"
)

type Config struct {
	RPCURL     string
	ProgramID  address.PublicKey
	RPCTimeout time.Duration
	LogLevel   string
	HTTPAddr   string

	WalletKeypair    string
	WalletMnemonic   string
	WalletPassphrase string
}

// Load reads files (".env" when none are given) into the environment, then
// builds the Config. Missing env files are not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	return FromEnv()
}

// FromEnv builds the Config from the current environment only.
func FromEnv() (*Config, error) {
	programID, err := address.NewPublicKey(getEnv(EnvProgramID, DefaultProgramID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvProgramID, err)
	}

	timeout := node.DefaultTimeout
	if v := os.Getenv(EnvRPCTimeout); v != "" {
		timeout, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvRPCTimeout, err)
		}
	}

	return &Config{
		RPCURL:           getEnv(EnvRPCURL, node.DefaultEndpoint),
		ProgramID:        programID,
		RPCTimeout:       timeout,
		LogLevel:         getEnv(EnvLogLevel, defaultLogLevel),
		HTTPAddr:         getEnv(EnvHTTPAddr, defaultHTTPAddr),
		WalletKeypair:    os.Getenv(EnvWalletKeypair),
		WalletMnemonic:   os.Getenv(EnvWalletMnemonic),
		WalletPassphrase: os.Getenv(EnvWalletPassphrase),
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}
