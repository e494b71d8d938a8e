// Package server composes the governance process: SQLite store, engine,
// block clock, journal relay, and the HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/signoria/signoria/internal/platform/timeouts"
	"github.com/signoria/signoria/internal/services/governance/api"
	"github.com/signoria/signoria/internal/services/governance/chain"
	"github.com/signoria/signoria/internal/services/governance/domain"
	"github.com/signoria/signoria/internal/services/governance/metrics"
	"github.com/signoria/signoria/internal/services/governance/notify"
	"github.com/signoria/signoria/internal/services/governance/render"
	"github.com/signoria/signoria/internal/services/governance/storage"
	governancesqlite "github.com/signoria/signoria/internal/services/governance/storage/sqlite"
)

// Config defines the inputs for the governance process.
type Config struct {
	HTTPAddr     string
	DatabasePath string

	// GenesisAuthorities seed an empty store together with GenesisQuorum
	// and GenesisHeight. A store that already holds state ignores them.
	GenesisAuthorities []string
	GenesisQuorum      uint64
	GenesisHeight      uint64

	// Locale sets the fallback language for session descriptions. Callers
	// still pick their own language per request via Accept-Language.
	Locale string

	BlockInterval  time.Duration
	RelayInterval  time.Duration
	StreamInterval time.Duration

	// NATSURL points the journal relay at an external broker. Empty leaves
	// the relay off unless NATSEmbedded is set.
	NATSURL string
	// NATSEmbedded runs an in-process JetStream broker instead of dialing
	// NATSURL. NATSStoreDir keeps the stream on disk across restarts.
	NATSEmbedded bool
	NATSStoreDir string

	// Grants verifies operator grants on mutating routes. A zero Key falls
	// back to the SIGNORIA_GRANT_* environment.
	Grants api.GrantConfig

	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the governance HTTP process and its background loops.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	store           *governancesqlite.Store
	natsConn        *nats.Conn
	natsServer      *natsserver.Server
	clockStop       context.CancelFunc
	clockDone       chan struct{}
	relayStop       context.CancelFunc
	relayDone       chan struct{}
}

// meteredPublisher counts confirmed publishes so relay progress is visible
// on /metrics.
type meteredPublisher struct {
	inner  notify.Publisher
	meters *metrics.Metrics
}

func (p meteredPublisher) Publish(ctx context.Context, event notify.Event) error {
	if err := p.inner.Publish(ctx, event); err != nil {
		return err
	}
	p.meters.EventPublished()
	return nil
}

// NewServer builds a configured governance server.
func NewServer(config Config) (*Server, error) {
	return NewServerWithContext(context.Background(), config)
}

// NewServerWithContext builds a configured governance server with an
// explicit context. The context bounds startup work only; the run loops get
// their own lifecycle through Close.
func NewServerWithContext(ctx context.Context, config Config) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	databasePath := strings.TrimSpace(config.DatabasePath)
	if databasePath == "" {
		return nil, errors.New("database path is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	grantConfig := config.Grants
	if len(grantConfig.Key) == 0 {
		loaded, err := api.LoadGrantConfigFromEnv(nil)
		if err != nil {
			return nil, fmt.Errorf("load grant config: %w", err)
		}
		grantConfig = loaded
	}
	verifier, err := api.NewGrantVerifier(grantConfig)
	if err != nil {
		return nil, fmt.Errorf("init grant verifier: %w", err)
	}

	s := &Server{httpAddr: httpAddr, shutdownTimeout: config.ShutdownTimeout}

	store, err := governancesqlite.Open(databasePath)
	if err != nil {
		return nil, fmt.Errorf("open governance store: %w", err)
	}
	s.store = store

	if err := seedIfEmpty(ctx, store, config); err != nil {
		s.Close()
		return nil, err
	}

	meters := metrics.New()
	height, err := store.Height(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("read block height: %w", err)
	}
	meters.SetBlockHeight(height)

	service := domain.NewService(store, render.NewDescriber(render.Match(config.Locale)), time.Now)

	clock := chain.NewClock(store, config.BlockInterval, chain.WithOnTick(meters.SetBlockHeight))
	s.clockStop, s.clockDone = clock.Start()

	if err := s.startRelay(ctx, config, meters); err != nil {
		s.Close()
		return nil, err
	}

	s.httpServer = &http.Server{
		Addr: httpAddr,
		Handler: api.NewServer(api.Config{
			Service:        service,
			Grants:         verifier,
			Metrics:        meters,
			StreamInterval: config.StreamInterval,
		}),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}
	return s, nil
}

// Run creates and serves a governance server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServerWithContext(ctx, config)
	if err != nil {
		return fmt.Errorf("init governance server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve governance: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return errors.New("governance server is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("governance server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close stops the run loops and releases broker and store resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.relayStop != nil {
		s.relayStop()
	}
	if s.relayDone != nil {
		<-s.relayDone
	}
	if s.clockStop != nil {
		s.clockStop()
	}
	if s.clockDone != nil {
		<-s.clockDone
	}
	if s.natsConn != nil {
		if err := s.natsConn.Drain(); err != nil {
			log.Printf("drain nats connection: %v", err)
		}
		s.natsConn.Close()
	}
	if s.natsServer != nil {
		s.natsServer.Shutdown()
		s.natsServer.WaitForShutdown()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close governance store: %v", err)
		}
	}
}

// startRelay connects the journal relay to a broker when one is configured.
func (s *Server) startRelay(ctx context.Context, config Config, meters *metrics.Metrics) error {
	var url string
	switch {
	case config.NATSEmbedded:
		ns, err := notify.StartEmbeddedServer(config.NATSStoreDir)
		if err != nil {
			return fmt.Errorf("start embedded nats: %w", err)
		}
		s.natsServer = ns
		url = ns.ClientURL()
	case strings.TrimSpace(config.NATSURL) != "":
		url = strings.TrimSpace(config.NATSURL)
	default:
		log.Printf("journal relay disabled, no nats broker configured")
		return nil
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return fmt.Errorf("connect nats at %s: %w", url, err)
	}
	s.natsConn = conn

	publisher, err := notify.NewJetStreamPublisher(ctx, conn)
	if err != nil {
		return fmt.Errorf("init jetstream publisher: %w", err)
	}

	relay := notify.NewRelay(s.store, meteredPublisher{inner: publisher, meters: meters}, config.RelayInterval)
	s.relayStop, s.relayDone = relay.Start()
	log.Printf("journal relay publishing to %s", url)
	return nil
}

// seedIfEmpty writes the configured genesis into a store that has never
// held governance state.
func seedIfEmpty(ctx context.Context, store *governancesqlite.Store, config Config) error {
	seeded, err := store.Seeded(ctx)
	if err != nil {
		return fmt.Errorf("check governance state: %w", err)
	}
	if seeded {
		return nil
	}
	if len(config.GenesisAuthorities) == 0 {
		return errors.New("store is empty and no genesis authorities are configured")
	}

	genesis := storage.Genesis{
		RequireAccept: config.GenesisQuorum,
		Height:        config.GenesisHeight,
	}
	if genesis.Height == 0 {
		genesis.Height = 1
	}
	for _, raw := range config.GenesisAuthorities {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		address, err := domain.ParseAddress(raw)
		if err != nil {
			return fmt.Errorf("genesis authority %q: %w", raw, err)
		}
		genesis.Authorities = append(genesis.Authorities, address)
	}
	if err := store.SeedGenesis(ctx, genesis); err != nil {
		return fmt.Errorf("seed genesis: %w", err)
	}
	log.Printf("governance genesis seeded: %d authorities, quorum %d, height %d", len(genesis.Authorities), genesis.RequireAccept, genesis.Height)
	return nil
}
