package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketmine/internal/server"
	"github.com/blackwell-systems/basketmine/internal/store"
)

var (
	serveAddr      string
	serveCacheSize int
	serveTimeout   time.Duration
	serveNoHistory bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mining API over HTTP",
	Long: `Serve the mining engine and the run history as a JSON API.

Endpoints:
  GET    /health
  GET    /strategies
  POST   /mine               {"transactions": [["bread","milk"], ...],
                              "min_support": 20, "min_confidence": 0.6,
                              "strategies": ["all"], "persist": true}
  GET    /runs?dataset=&limit=
  GET    /runs/{id}
  GET    /runs/{id}/itemsets
  GET    /runs/{id}/rules
  DELETE /runs/{id}

Identical mining requests are answered from an in-memory LRU cache.`,
	Example: `  basketmine serve
  basketmine serve --addr :9090 --cache-size 512 --timeout 2m
  basketmine serve --no-history`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config: 127.0.0.1:8080)")
	serveCmd.Flags().IntVar(&serveCacheSize, "cache-size", -1, "cached mining reports, 0 disables (default from config: 128)")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 0, "cancel a mining request after this long (0 = config)")
	serveCmd.Flags().BoolVar(&serveNoHistory, "no-history", false, "serve without the run history database")

	RootCmd.AddCommand(serveCmd)
}

// serverConfig merges serve flags over the loaded configuration.
func serverConfig() server.Config {
	c := appConfig()
	sc := server.Config{Addr: c.Addr, CacheSize: c.CacheSize, Timeout: c.Timeout}
	if serveAddr != "" {
		sc.Addr = serveAddr
	}
	if serveCacheSize >= 0 {
		sc.CacheSize = serveCacheSize
	}
	if serveTimeout > 0 {
		sc.Timeout = serveTimeout
	}
	return sc
}

func runServe(cmd *cobra.Command, args []string) error {
	var st *store.Store
	if !serveNoHistory {
		var err error
		if st, err = openStore(); err != nil {
			return err
		}
		defer st.Close()
	}

	sc := serverConfig()
	srv, err := server.New(st, sc)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving basketmine API on http://%s (press Ctrl+C to stop)\n", sc.Addr)
	return srv.ListenAndServe(ctx)
}
