package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/milos-ethernal/go-solana-movie-review/address"
	"github.com/milos-ethernal/go-solana-movie-review/components/submission"
	"github.com/milos-ethernal/go-solana-movie-review/config"
	"github.com/milos-ethernal/go-solana-movie-review/logging"
	"github.com/milos-ethernal/go-solana-movie-review/node"
	"github.com/milos-ethernal/go-solana-movie-review/wallet"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "moviereview",
		Usage: "submit and read movie reviews on a Solana cluster",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional dotenv file"},
			&cli.StringFlag{Name: "rpc-url", Usage: "cluster RPC endpoint", EnvVars: []string{config.EnvRPCURL}},
			&cli.StringFlag{Name: "program-id", Usage: "movie review program id", EnvVars: []string{config.EnvProgramID}},
			&cli.StringFlag{Name: "keypair", Usage: "solana-keygen keypair file", EnvVars: []string{config.EnvWalletKeypair}},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error", EnvVars: []string{config.EnvLogLevel}},
		},
		Commands: []*cli.Command{
			{
				Name:  "submit",
				Usage: "submit a review with the configured wallet",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.UintFlag{Name: "rating", Required: true, Usage: "1 to 5 stars"},
					&cli.StringFlag{Name: "description", Required: true},
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "sign without asking"},
				},
				Action: submitAction,
			},
			{
				Name:  "address",
				Usage: "print the account a review is stored at",
				Flags: reviewLookupFlags(),
				Action: func(c *cli.Context) error {
					return withClient(c, false, func(e *env) error {
						submitter, err := e.submitter(c.String("submitter"))
						if err != nil {
							return err
						}

						pda, bump, err := e.client.ReviewAddress(submitter, c.String("title"))
						if err != nil {
							return err
						}

						fmt.Fprintf(c.App.Writer, "%s (bump %d)\n", pda, bump)

						return nil
					})
				},
			},
			{
				Name:  "show",
				Usage: "fetch and print a stored review",
				Flags: reviewLookupFlags(),
				Action: func(c *cli.Context) error {
					return withClient(c, false, func(e *env) error {
						submitter, err := e.submitter(c.String("submitter"))
						if err != nil {
							return err
						}

						state, err := e.client.FetchReview(c.Context, submitter, c.String("title"))
						if err != nil {
							return err
						}

						fmt.Fprintf(c.App.Writer, "%s\n%d/5\n%s\n", state.Title, state.Rating, state.Description)

						return nil
					})
				},
			},
			{
				Name:  "serve",
				Usage: "serve the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address", EnvVars: []string{config.EnvHTTPAddr}},
				},
				Action: serveAction,
			},
		},
	}
}

func reviewLookupFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Required: true},
		&cli.StringFlag{Name: "submitter", Usage: "reviewer public key, defaults to the configured wallet"},
	}
}

type env struct {
	cfg    *config.Config
	logger *zap.Logger
	rpc    *node.RPCClient
	client *submission.Client
	wallet wallet.Wallet
}

// submitter resolves an explicit public key or falls back to the wallet identity.
func (e *env) submitter(flag string) (address.PublicKey, error) {
	if flag != "" {
		return address.NewPublicKey(flag)
	}

	pk, ok := e.wallet.Identity()
	if !ok {
		return address.PublicKey{}, errors.New("pass --submitter or configure a wallet")
	}

	return pk, nil
}

func withClient(c *cli.Context, interactive bool, fn func(*env) error) error {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return err
	}

	if v := c.String("rpc-url"); v != "" {
		cfg.RPCURL = v
	}
	if v := c.String("program-id"); v != "" {
		if cfg.ProgramID, err = address.NewPublicKey(v); err != nil {
			return fmt.Errorf("program id: %w", err)
		}
	}
	if v := c.String("keypair"); v != "" {
		cfg.WalletKeypair = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	var opts []wallet.KeypairOption
	if interactive {
		opts = append(opts, wallet.WithApproval(wallet.PromptApproval(os.Stdin, c.App.Writer)))
	}

	w, err := wallet.Open(cfg.WalletKeypair, cfg.WalletMnemonic, cfg.WalletPassphrase, opts...)
	if err != nil {
		return err
	}

	rpc := node.NewRPCClient(cfg.RPCURL, node.WithTimeout(cfg.RPCTimeout))

	return fn(&env{
		cfg:    cfg,
		logger: logger,
		rpc:    rpc,
		client: submission.NewClient(cfg.ProgramID, rpc, logger),
		wallet: w,
	})
}

func submitAction(c *cli.Context) error {
	rating := c.Uint("rating")
	if rating > 255 {
		return fmt.Errorf("%w: rating must be between 1 and 5", submission.ErrInvalidReview)
	}

	return withClient(c, !c.Bool("yes"), func(e *env) error {
		form := submission.NewForm(e.client)
		form.SetTitle(c.String("title"))
		form.SetDescription(c.String("description"))
		form.SelectRating(uint8(rating))

		signature, err := form.Submit(c.Context, e.wallet)
		if errors.Is(err, submission.ErrMissingWallet) {
			return cli.Exit("Connect your wallet first", 2)
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(c.App.Writer, signature)

		return nil
	})
}

func serveAction(c *cli.Context) error {
	return withClient(c, false, func(e *env) error {
		addr := e.cfg.HTTPAddr
		if v := c.String("addr"); v != "" {
			addr = v
		}

		if _, ok := e.wallet.Identity(); !ok {
			e.logger.Warn("no wallet configured, submissions will be refused")
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           newRouter(e.client, e.wallet, e.logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			e.logger.Info("server listening", zap.String("addr", addr), zap.String("rpc", e.rpc.Endpoint()))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})
}
