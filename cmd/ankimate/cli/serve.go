package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ankimate/ankimate/internal/server"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API for local frontends",
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(true)
		if err != nil {
			fail("%v", err)
		}
		defer a.close()

		addr := listenAddr
		if addr == "" {
			addr = a.cfg.Server.Addr
		}

		srv := server.New(a.coord, a.browser, a.completer, a.store, a.client, a.obs, providerName(a.cfg))
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		fmt.Printf("Listening on http://%s\n", addr)
		a.obs.Log().Info().Str("addr", addr).Msg("http server starting")
		if err := httpServer.ListenAndServe(); err != nil {
			fail("server stopped: %v", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8460)")
}
