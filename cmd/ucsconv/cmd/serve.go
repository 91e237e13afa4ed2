package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fung04/ucsconv/pkg/api"
	"github.com/fung04/ucsconv/pkg/convert"
	"github.com/fung04/ucsconv/pkg/store"
)

var (
	serveAddr    string
	serveAPIKeys []string
	serveUsers   []string
)

var serveCmd = &cobra.Command{
	Use:   "serve [archive.ucs|file.conf ...]",
	Short: "Run the HTTP conversion API",
	Long: `Serve starts an HTTP server exposing the conversion pipeline.

Any archives or conf files given as arguments are converted at startup
and preloaded into the document store. Further documents can be added
through POST /api/v1/convert.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address")
	serveCmd.Flags().StringSliceVar(&serveAPIKeys, "api-key", nil, "accepted API key (repeatable; enables auth)")
	serveCmd.Flags().StringSliceVar(&serveUsers, "user", nil, "accepted user:password pair (repeatable; enables auth)")
}

func runServe(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}
	log := slog.Default()

	st := store.New()
	conv := convert.New(opts, log)
	for _, path := range args {
		res, err := conv.ConvertPath(path)
		if err != nil {
			return fmt.Errorf("preload %s: %w", path, err)
		}
		st.PutResult(res)
		log.Info("preloaded document", "name", res.Name,
			"objects", len(res.Tree.Objects), "failures", len(res.Failures))
	}

	auth, err := authConfig()
	if err != nil {
		return err
	}

	srv := api.NewServer(api.Config{
		Addr:    serveAddr,
		Auth:    auth,
		Store:   st,
		Options: opts,
		Log:     log,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

// authConfig builds the API auth settings from the --api-key and --user
// flags. Returns nil when neither is given, disabling authentication.
func authConfig() (*api.AuthConfig, error) {
	if len(serveAPIKeys) == 0 && len(serveUsers) == 0 {
		return nil, nil
	}
	cfg := &api.AuthConfig{
		Users:   make(map[string]string),
		APIKeys: make(map[string]bool),
	}
	for _, key := range serveAPIKeys {
		cfg.APIKeys[key] = true
	}
	for _, pair := range serveUsers {
		user, pass, ok := strings.Cut(pair, ":")
		if !ok || user == "" || pass == "" {
			return nil, fmt.Errorf("malformed --user %q, want user:password", pair)
		}
		cfg.Users[user] = pass
	}
	return cfg, nil
}
