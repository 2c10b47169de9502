package neo4j

import (
	"context"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/turtacn/patent2rag/internal/config"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/errors"
)

const (
	defaultDatabase       = "neo4j"
	defaultPoolSize       = 16
	defaultConnectTimeout = 15 * time.Second
)

// Result is the part of a query result the claim graph reads.
type Result interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
	Consume(ctx context.Context) (neo4j.ResultSummary, error)
}

// Transaction runs Cypher inside a managed transaction.
type Transaction interface {
	Run(ctx context.Context, cypher string, params map[string]any) (Result, error)
}

// bolt is the connection pool behind a Driver. Tests replace it.
type bolt interface {
	VerifyConnectivity(ctx context.Context) error
	NewSession(ctx context.Context, cfg neo4j.SessionConfig) session
	Close(ctx context.Context) error
}

type session interface {
	ExecuteRead(ctx context.Context, work func(Transaction) (any, error)) (any, error)
	ExecuteWrite(ctx context.Context, work func(Transaction) (any, error)) (any, error)
	Close(ctx context.Context) error
}

type boltPool struct{ d neo4j.DriverWithContext }

func (p boltPool) VerifyConnectivity(ctx context.Context) error { return p.d.VerifyConnectivity(ctx) }
func (p boltPool) Close(ctx context.Context) error              { return p.d.Close(ctx) }

func (p boltPool) NewSession(ctx context.Context, cfg neo4j.SessionConfig) session {
	return boltSession{s: p.d.NewSession(ctx, cfg)}
}

type boltSession struct{ s neo4j.SessionWithContext }

func (s boltSession) ExecuteRead(ctx context.Context, work func(Transaction) (any, error)) (any, error) {
	return s.s.ExecuteRead(ctx, managed(work))
}

func (s boltSession) ExecuteWrite(ctx context.Context, work func(Transaction) (any, error)) (any, error) {
	return s.s.ExecuteWrite(ctx, managed(work))
}

func (s boltSession) Close(ctx context.Context) error { return s.s.Close(ctx) }

func managed(work func(Transaction) (any, error)) neo4j.ManagedTransactionWork {
	return func(tx neo4j.ManagedTransaction) (any, error) {
		return work(boltTx{tx: tx})
	}
}

type boltTx struct{ tx neo4j.ManagedTransaction }

func (t boltTx) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return t.tx.Run(ctx, cypher, params)
}

// Driver opens one session per claim-graph transaction against the
// configured database.
type Driver struct {
	pool      bolt
	database  string
	logger    logging.Logger
	closeOnce sync.Once
}

// poolOptions maps Neo4jConfig onto the driver's pool settings.
func poolOptions(cfg config.Neo4jConfig) func(*neo4j.Config) {
	return func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = defaultPoolSize
		if cfg.MaxConnectionPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
		}
		timeout := defaultConnectTimeout
		if cfg.ConnectionTimeout > 0 {
			timeout = cfg.ConnectionTimeout
		}
		c.ConnectionAcquisitionTimeout = timeout
		c.SocketConnectTimeout = timeout
		c.MaxConnectionLifetime = time.Hour
	}
}

// NewDriver connects to the claim-graph database and verifies it answers.
func NewDriver(cfg config.Neo4jConfig, log logging.Logger) (*Driver, error) {
	d, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""), poolOptions(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphError, "create neo4j driver")
	}
	drv := newDriver(boltPool{d: d}, cfg.Database, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := drv.pool.VerifyConnectivity(ctx); err != nil {
		_ = d.Close(ctx)
		return nil, errors.Wrapf(err, errors.ErrCodeGraphError, "connect to neo4j at %s", cfg.URI)
	}
	drv.logger.Info("Claim graph connected", logging.String("uri", cfg.URI))
	return drv, nil
}

func newDriver(pool bolt, database string, log logging.Logger) *Driver {
	if database == "" {
		database = defaultDatabase
	}
	return &Driver{
		pool:     pool,
		database: database,
		logger:   logging.OrNop(log).With(logging.String("database", database)),
	}
}

// ExecuteRead runs work in a read transaction.
func (d *Driver) ExecuteRead(ctx context.Context, work func(Transaction) (interface{}, error)) (interface{}, error) {
	return d.execute(ctx, neo4j.AccessModeRead, work)
}

// ExecuteWrite runs work in a write transaction. The driver retries it on
// transient errors, so work must be safe to repeat.
func (d *Driver) ExecuteWrite(ctx context.Context, work func(Transaction) (interface{}, error)) (interface{}, error) {
	return d.execute(ctx, neo4j.AccessModeWrite, work)
}

func (d *Driver) execute(ctx context.Context, mode neo4j.AccessMode, work func(Transaction) (interface{}, error)) (interface{}, error) {
	s := d.pool.NewSession(ctx, neo4j.SessionConfig{DatabaseName: d.database, AccessMode: mode})
	defer s.Close(ctx)

	var (
		out interface{}
		err error
		op  = "read"
	)
	if mode == neo4j.AccessModeWrite {
		op = "write"
		out, err = s.ExecuteWrite(ctx, work)
	} else {
		out, err = s.ExecuteRead(ctx, work)
	}
	if err != nil {
		d.logger.Error("Claim graph transaction failed", logging.String("mode", op), logging.Err(err))
		return nil, errors.Wrapf(err, errors.ErrCodeGraphError, "neo4j %s transaction", op)
	}
	return out, nil
}

// HealthCheck verifies connectivity and that the database answers a query.
func (d *Driver) HealthCheck(ctx context.Context) error {
	if err := d.pool.VerifyConnectivity(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeGraphError, "neo4j unreachable")
	}
	_, err := d.ExecuteRead(ctx, func(tx Transaction) (interface{}, error) {
		return nil, run(ctx, tx, "RETURN 1 AS ok", nil)
	})
	return err
}

// Close releases the pool. Calls after the first are no-ops.
func (d *Driver) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if err = d.pool.Close(context.Background()); err != nil {
			d.logger.Error("Failed to close claim graph driver", logging.Err(err))
		}
	})
	return err
}

//Personal.AI order the ending
