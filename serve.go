package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/OpenPeeDeeP/xdg"
	"github.com/vipnode/jsonrpc/internal/arith"
	"github.com/vipnode/jsonrpc/internal/echo"
	"github.com/vipnode/jsonrpc/internal/kvstore"
	"github.com/vipnode/jsonrpc/jsonrpc2"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws/gobwas"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws/gorilla"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 5 * time.Second

// findDataDir returns a valid data dir, will create it if it doesn't
// exist.
func findDataDir(overridePath string) (string, error) {
	path := overridePath
	if path == "" {
		path = xdg.New("vipnode", "jsonrpc").DataHome()
	}
	err := os.MkdirAll(path, 0700)
	return path, err
}

func openStore(driver string, dataDir string) (kvstore.Store, error) {
	if driver == "memory" {
		return kvstore.Open(driver, "")
	}
	dir, err := findDataDir(dataDir)
	if err != nil {
		return nil, err
	}
	store, err := kvstore.Open(driver, dir)
	if err != nil {
		return nil, ErrExplain{err, fmt.Sprintf(`Failed to open the database in %q. Is another server using it?`, dir)}
	}
	logger.Infof("Persistent store using badger backend: %s", dir)
	return store, nil
}

func findUpgrader(name string) (ws.Upgrader, error) {
	switch name {
	case "gorilla":
		return &gorilla.Upgrader{}, nil
	case "gobwas":
		return &gobwas.Upgrader{}, nil
	}
	return nil, ErrExplain{
		fmt.Errorf("unknown websocket implementation: %q", name),
		`Use --ws=gorilla or --ws=gobwas.`,
	}
}

// registerServices adds the demo methods: arithmetic for both versions,
// echoes and the key-value store for version 2.0.
func registerServices(srv *jsonrpc2.Server, store kvstore.Store) error {
	if err := arith.Register(srv); err != nil {
		return err
	}
	if err := echo.Register(srv); err != nil {
		return err
	}
	return kvstore.Register(srv, store)
}

func runServe(options Options) error {
	store, err := openStore(options.Serve.Store, options.Serve.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	upgrader, err := findUpgrader(options.Serve.WebSocket)
	if err != nil {
		return err
	}

	handler := newServer(upgrader)
	handler.HideErrors = options.Serve.HideErrors
	handler.BatchLimit = options.Serve.BatchLimit
	handler.MaxContentLength = options.Serve.MaxContentLength
	if r := options.Serve.Rate; r > 0 {
		handler.Limiter = rate.NewLimiter(rate.Limit(r), int(math.Ceil(r)))
	}
	if options.Serve.AllowOrigin != "" {
		handler.header.Set("Access-Control-Allow-Origin", options.Serve.AllowOrigin)
	}

	if err := registerServices(&handler.Server, store); err != nil {
		return err
	}
	for _, m := range handler.Methods() {
		logger.Debugf("Registered method: %s (version %s)", m.Name, m.Version)
	}

	httpServer := &http.Server{
		Addr:    options.Serve.Bind,
		Handler: handler,
	}

	// Shut down gracefully on ctrl+c signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; !ok {
			return
		}
		logger.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Warningf("Shutdown error: %s", err)
		}
	}()

	logger.Infof("Starting server (version %s), listening on: http://%s", Version, options.Serve.Bind)
	err = httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil && strings.HasSuffix(err.Error(), "bind: permission denied") {
		err = ErrExplain{err, "Binding to low-numbered ports requires the CAP_NET_BIND_SERVICE capability. Try a --bind port above 1024."}
	}
	return err
}
