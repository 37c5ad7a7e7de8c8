// Package export loads call graphs into external graph databases.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ziadkadry99/callscope/internal/graph"
	"github.com/ziadkadry99/callscope/internal/progress"
)

// DefaultBatchSize is the number of rows sent per UNWIND statement.
const DefaultBatchSize = 500

// Neo4jConfig locates the target database.
type Neo4jConfig struct {
	URI       string
	Username  string
	Password  string
	Database  string
	BatchSize int
}

// Options control a single export.
type Options struct {
	// Delimiter splits ids into namespace segments.
	Delimiter string
	// Clean removes previously exported functions first.
	Clean    bool
	Reporter progress.Reporter
}

// Stats counts what an export wrote.
type Stats struct {
	Functions int
	Calls     int
	Batches   int
}

// runner executes one Cypher statement.
type runner interface {
	run(ctx context.Context, cypher string, params map[string]any) error
}

// Neo4jExporter writes Function nodes and CALLS relationships.
type Neo4jExporter struct {
	driver    neo4j.DriverWithContext
	runner    runner
	batchSize int
}

// NewNeo4jExporter connects to Neo4j and checks the connection.
func NewNeo4jExporter(ctx context.Context, cfg Neo4jConfig) (*Neo4jExporter, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connecting to neo4j at %s: %w", cfg.URI, err)
	}
	return &Neo4jExporter{
		driver:    driver,
		runner:    driverRunner{driver: driver, database: cfg.Database},
		batchSize: cfg.BatchSize,
	}, nil
}

// Close releases the driver.
func (e *Neo4jExporter) Close(ctx context.Context) error {
	if e.driver == nil {
		return nil
	}
	return e.driver.Close(ctx)
}

type driverRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

func (r driverRunner) run(ctx context.Context, cypher string, params map[string]any) error {
	var opts []neo4j.ExecuteQueryConfigurationOption
	if r.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(r.database))
	}
	_, err := neo4j.ExecuteQuery(ctx, r.driver, cypher, params, neo4j.EagerResultTransformer, opts...)
	return err
}

const (
	cleanCypher = `MATCH (n:Function) DETACH DELETE n`
	indexCypher = `CREATE INDEX function_id IF NOT EXISTS FOR (n:Function) ON (n.id)`

	functionsCypher = `UNWIND $batch AS row
MERGE (n:Function {id: row.id})
SET n.label = row.label, n.namespace = row.namespace,
    n.incoming = row.incoming, n.outgoing = row.outgoing`

	callsCypher = `UNWIND $batch AS row
MERGE (caller:Function {id: row.source})
MERGE (callee:Function {id: row.target})
MERGE (caller)-[r:CALLS]->(callee)
SET r.count = row.count`
)

// Export writes every node of g and one CALLS relationship per distinct
// caller/callee pair.
func (e *Neo4jExporter) Export(ctx context.Context, g *graph.Graph, opts Options) (Stats, error) {
	rep := opts.Reporter
	if rep == nil {
		rep = progress.Discard{}
	}
	size := e.batchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	functions := Batches(FunctionRows(g, opts.Delimiter), size)
	calls := Batches(CallRows(g), size)

	var stats Stats
	if opts.Clean {
		if err := e.runner.run(ctx, cleanCypher, nil); err != nil {
			return stats, fmt.Errorf("cleaning functions: %w", err)
		}
	}
	if err := e.runner.run(ctx, indexCypher, nil); err != nil {
		return stats, fmt.Errorf("creating index: %w", err)
	}

	rep.Start(len(functions) + len(calls))
	defer rep.Finish()

	for _, batch := range functions {
		if err := e.runner.run(ctx, functionsCypher, map[string]any{"batch": batch}); err != nil {
			return stats, fmt.Errorf("loading functions: %w", err)
		}
		stats.Functions += len(batch)
		stats.Batches++
		rep.Update(stats.Batches, "functions")
	}
	for _, batch := range calls {
		if err := e.runner.run(ctx, callsCypher, map[string]any{"batch": batch}); err != nil {
			return stats, fmt.Errorf("loading calls: %w", err)
		}
		stats.Calls += len(batch)
		stats.Batches++
		rep.Update(stats.Batches, "calls")
	}

	slog.Info("neo4j export complete", "functions", stats.Functions, "calls", stats.Calls, "batches", stats.Batches)
	return stats, nil
}

// FunctionRows builds one row per node id, in degree-map order. Call
// endpoints missing from the node list are included.
func FunctionRows(g *graph.Graph, delim string) []map[string]any {
	if delim == "" {
		delim = graph.DefaultDelimiter
	}
	index := g.Index()
	degrees := g.Degrees()
	rows := make([]map[string]any, 0, degrees.Len())
	for _, id := range degrees.IDs() {
		d, _ := degrees.Get(id)
		label := id
		if n, ok := index[id]; ok {
			label = n.DisplayName()
		}
		rows = append(rows, map[string]any{
			"id":        id,
			"label":     label,
			"namespace": namespace(id, delim),
			"incoming":  d.Incoming,
			"outgoing":  d.Outgoing,
		})
	}
	return rows
}

func namespace(id, delim string) string {
	if i := strings.LastIndex(id, delim); i > 0 {
		return id[:i]
	}
	return ""
}

// CallRows collapses repeated edges into one row with a count, in order of
// first occurrence.
func CallRows(g *graph.Graph) []map[string]any {
	type pair struct{ source, target string }
	counts := make(map[pair]int)
	var order []pair
	for _, e := range g.Links {
		if !e.Valid() {
			continue
		}
		p := pair{e.Source, e.Target}
		if counts[p] == 0 {
			order = append(order, p)
		}
		counts[p]++
	}
	rows := make([]map[string]any, len(order))
	for i, p := range order {
		rows[i] = map[string]any{"source": p.source, "target": p.target, "count": counts[p]}
	}
	return rows
}

// Batches splits rows into chunks of at most size.
func Batches(rows []map[string]any, size int) [][]map[string]any {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]map[string]any
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, rows[start:end])
	}
	return out
}
