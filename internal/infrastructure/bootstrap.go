package infrastructure

import (
	"context"

	"packpay/internal/config"
	"packpay/internal/repository"
	"packpay/internal/service"
	transportGRPC "packpay/internal/transport/grpc"
	transportHTTP "packpay/internal/transport/http"
	transportNATS "packpay/internal/transport/nats"
	"packpay/internal/worker"
)

// Bootstrap initialises all dependencies from config and wires up the
// application. Returns the App, a cleanup function, or an error.
func Bootstrap(ctx context.Context) (*App, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}

	db, err := connectPostgres(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}

	rdb, err := connectRedis(cfg.RedisAddr())
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	var cleanupFns []func()
	cleanupFns = append(cleanupFns, func() {
		db.Close()
		_ = rdb.Close()
	})

	var bus repository.MessageBus
	var servers []Server

	switch cfg.BusProvider {
	case "nats":
		nc, err := connectNats(cfg.NatsAddr())
		if err != nil {
			return nil, runCleanup(cleanupFns), err
		}
		bus = transportNATS.NewBus(nc)
		cleanupFns = append(cleanupFns, nc.Close)

		repo := repository.NewLedgerRepo(rdb, db, bus, repository.NewTokenGateway())
		var svc service.LedgerService = repo

		if cfg.WorkerProvider == "nats" {
			servers = append(servers, worker.NewPurchaseWorker(svc, nc))
		}
		// NATS also carries purchase commands
		servers = append(servers, transportNATS.NewHandler(svc, nc))

		servers = append(servers, transportGRPC.NewServer(":50051", svc))
		if addr, apiErr := cfg.ApiAddr(); apiErr == nil {
			servers = append(servers, transportHTTP.NewServer(addr, svc))
		}

	case "grpc":
		grpcBus, cleanup, err := transportGRPC.NewBusFromAddr(cfg.GRPCAddr(), cfg.BusBufferSize)
		if err != nil {
			return nil, runCleanup(cleanupFns), err
		}
		bus = grpcBus
		cleanupFns = append(cleanupFns, cleanup)

		repo := repository.NewLedgerRepo(rdb, db, bus, repository.NewTokenGateway())
		var svc service.LedgerService = repo

		// The gRPC server doubles as the worker when WorkerProvider is
		// "grpc": committed-purchase events arrive via its Publish method.
		servers = append(servers, transportGRPC.NewServer(":50051", svc))

		if addr, apiErr := cfg.ApiAddr(); apiErr == nil {
			servers = append(servers, transportHTTP.NewServer(addr, svc))
		}
	}

	return NewApp(servers), runCleanup(cleanupFns), nil
}

// runCleanup returns a single function that calls all cleanup functions in
// reverse order.
func runCleanup(fns []func()) func() {
	return func() {
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	}
}
