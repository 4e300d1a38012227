// Command ircd runs the IRC server described in SPEC_FULL.md,
// wiring configuration, the registry, the dispatch core, and the
// optional admin HTTP surface, in the style of
// _examples/presbrey-pkg/irc/ircd/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/klaxonwire/goircd/internal/bot"
	"github.com/klaxonwire/goircd/internal/config"
	"github.com/klaxonwire/goircd/internal/metrics"
	"github.com/klaxonwire/goircd/internal/registry"
	"github.com/klaxonwire/goircd/internal/server"

	"github.com/klaxonwire/goircd/internal/admin"
)

func main() {
	adminAddr := flag.String("admin-addr", "", "admin HTTP bind address (empty disables it)")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: ircd [--admin-addr host:port] <port> <password>")
		os.Exit(2)
	}

	cfg, err := config.Load(args[0], args[1], *adminAddr)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	reg := registry.New(cfg.Hostname, cfg.Password)

	var rec metrics.Recorder = metrics.NoOp{}
	var adminSrv *admin.Server
	if cfg.AdminAddr != "" {
		prom := metrics.NewPrometheus()
		rec = prom
		adminSrv = admin.New(prom)
	}

	srv := server.New(reg, bot.Echo{}, rec)

	listenAddr := fmt.Sprintf(":%d", cfg.Port)
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", listenAddr, err)
	}

	log.Printf("goircd listening on %s as %s", listenAddr, cfg.Hostname)
	go func() {
		if err := srv.Serve(listener); err != nil {
			log.Printf("serve error: %v", err)
		}
	}()

	if adminSrv != nil {
		go func() {
			log.Printf("admin HTTP surface listening on %s", cfg.AdminAddr)
			if err := adminSrv.Start(cfg.AdminAddr); err != nil {
				log.Printf("admin server error: %v", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("shutdown signal received, stopping server")

	if adminSrv != nil {
		adminSrv.MarkUnhealthy()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := adminSrv.Shutdown(ctx); err != nil {
			log.Printf("admin shutdown error: %v", err)
		}
	}

	if err := srv.Close(); err != nil {
		log.Printf("server close error: %v", err)
	}
}
