package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"

	"chatd/internal/protocol"
	"chatd/internal/push"
	"chatd/internal/registry"
	"chatd/internal/rpcserver"
	"chatd/internal/store"
	"chatd/internal/tcpserver"
)

var rootCmd = &cobra.Command{
	Use:   "chatd",
	Short: "chatd serves the chat backend over TCP text protocols and gRPC",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging(viper.GetString("log-level"))
		if err := run(); err != nil {
			jww.FATAL.Printf("%v", err)
			os.Exit(1)
		}
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.String("tcp-addr", ":5050", "listen address for the text protocols")
	flags.String("grpc-addr", ":5051", "listen address for the gRPC service")
	flags.String("ops-addr", ":8080", "listen address for health and status endpoints")
	flags.String("db-dsn", "", "postgres DSN; empty runs the in-memory store")
	flags.String("log-level", "info", "log threshold: trace, debug, info, warn, error")

	viper.BindPFlags(flags) //nolint:errcheck
	viper.SetEnvPrefix("chatd")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func setupLogging(level string) {
	threshold := jww.LevelInfo
	switch strings.ToLower(level) {
	case "trace":
		threshold = jww.LevelTrace
	case "debug":
		threshold = jww.LevelDebug
	case "info":
		threshold = jww.LevelInfo
	case "warn":
		threshold = jww.LevelWarn
	case "error":
		threshold = jww.LevelError
	}
	jww.SetStdoutThreshold(threshold)
}

func run() error {
	st, err := openStore(viper.GetString("db-dsn"))
	if err != nil {
		return err
	}

	reg := registry.New()
	disp := push.NewDispatcher(reg)
	handler := protocol.NewHandler(st, reg, disp)

	tcpSrv := tcpserver.New(protocol.NewDispatcher(handler), reg)
	if err := tcpSrv.Listen(viper.GetString("tcp-addr")); err != nil {
		return err
	}

	rpcSrv := rpcserver.NewServer(rpcserver.NewService(handler, reg))
	if err := rpcSrv.Listen(viper.GetString("grpc-addr")); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 3)
	go func() { errc <- tcpSrv.Serve(ctx) }()
	go func() { errc <- rpcSrv.Serve() }()
	go func() { errc <- serveOps(viper.GetString("ops-addr"), reg, tcpSrv) }()

	select {
	case <-ctx.Done():
		jww.INFO.Println("shutting down")
	case err := <-errc:
		if err != nil {
			jww.ERROR.Printf("server error: %v", err)
		}
	}

	rpcSrv.Close()
	tcpSrv.Close()
	return nil
}

func openStore(dsn string) (store.Store, error) {
	if dsn == "" {
		jww.WARN.Println("no db-dsn configured; messages will not survive a restart")
		return store.NewMemory(), nil
	}
	pg, err := store.OpenPostgres(dsn)
	if err != nil {
		return nil, err
	}
	if err := pg.AutoMigrate(); err != nil {
		return nil, err
	}
	jww.INFO.Println("connected to postgres")
	return pg, nil
}

func serveOps(addr string, reg *registry.Registry, tcpSrv *tcpserver.Server) error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	r.Get("/statusz", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "sessions: %d\nconnections: %d\n", reg.Count(), tcpSrv.ConnCount())
	})

	jww.INFO.Printf("ops endpoints on %s", addr)
	return http.ListenAndServe(addr, r)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
