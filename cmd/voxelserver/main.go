// Command voxelserver hosts the server-side voxel world core: it loads
// a voxel-kind catalog, opens the persisted chunk cache, and accepts
// TCP connections that stream chunk vertex data per each client's
// landscape window.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/leterax/voxelcore/pkg/catalog"
	"github.com/leterax/voxelcore/pkg/protocol"
	"github.com/leterax/voxelcore/pkg/provider"
	"github.com/leterax/voxelcore/pkg/scheduler"
	"github.com/leterax/voxelcore/pkg/server"
	"github.com/leterax/voxelcore/pkg/world"
	"github.com/leterax/voxelcore/pkg/worldgen"
)

const (
	exitOK             = 0
	exitListenFailure  = 1
	exitCatalogFailure = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	listen := flag.String("listen", "127.0.0.1:11223", "TCP address to accept client connections on")
	catalogPath := flag.String("catalog", "catalog.csv", "path to the voxel-kind catalog")
	cacheDir := flag.String("cache", "chunk-cache", "path to the persisted chunk cache directory")
	seed := flag.Int64("seed", 1, "world generation seed")
	tickMs := flag.Int("tick-ms", scheduler.DefaultTickMs, "scheduler tick period in milliseconds")
	meshTickMs := flag.Int("mesh-tick-ms", 0, "meshing throttle period in milliseconds (0 meshes every tick)")
	maxMessageSize := flag.Int("max-message-size", server.DefaultMaxMessageSize, "maximum frame payload size in bytes")
	flag.Parse()

	logger := log.New(os.Stderr, "voxelserver: ", log.LstdFlags)

	cat, err := loadCatalog(*catalogPath)
	if err != nil {
		logger.Printf("failed to load catalog: %v", err)
		return exitCatalogFailure
	}

	prov, err := provider.Open(cat, worldgen.New(*seed), *cacheDir, 0, logger)
	if err != nil {
		logger.Printf("failed to open chunk cache: %v", err)
		return exitCatalogFailure
	}

	table := protocol.NewClientTable()
	pipeline := world.NewPipeline(cat, prov, table, *meshTickMs, logger)

	srv := server.New(table, uint32(*maxMessageSize), logger, func(c *server.Conn) {
		pipeline.RegisterClient(c.ID, c)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listenErr := make(chan error, 1)
	go func() { listenErr <- srv.Listen(*listen) }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	host := scheduler.New(pipeline, *tickMs, logger, prov)
	hostDone := make(chan struct{})
	go func() { host.Run(ctx); close(hostDone) }()

	select {
	case err := <-listenErr:
		logger.Printf("listener failed: %v", err)
		cancel()
		<-hostDone
		return exitListenFailure
	case <-sig:
		logger.Printf("shutting down")
		cancel()
		<-hostDone
		return exitOK
	}
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return catalog.Load(f)
}
