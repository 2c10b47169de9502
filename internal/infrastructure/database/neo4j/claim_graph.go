package neo4j

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// Executor runs managed transactions. *Driver satisfies it.
type Executor interface {
	ExecuteRead(ctx context.Context, work func(Transaction) (interface{}, error)) (interface{}, error)
	ExecuteWrite(ctx context.Context, work func(Transaction) (interface{}, error)) (interface{}, error)
}

var schemaStatements = []string{
	`CREATE CONSTRAINT document_doc_id IF NOT EXISTS FOR (d:Document) REQUIRE d.doc_id IS UNIQUE`,
	`CREATE CONSTRAINT claim_key IF NOT EXISTS FOR (c:Claim) REQUIRE (c.doc_id, c.num) IS UNIQUE`,
	`CREATE INDEX document_publication_number IF NOT EXISTS FOR (d:Document) ON (d.publication_number)`,
}

const (
	cypherUpsertDocument = `
MERGE (d:Document {doc_id: $doc_id})
SET d.file_name = $file_name,
    d.publication_number = $publication_number,
    d.jurisdiction = $jurisdiction,
    d.title = $title,
    d.assignee = $assignee,
    d.ipc_codes = $ipc_codes,
    d.num_claims = $num_claims`

	cypherDropClaims = `
MATCH (:Document {doc_id: $doc_id})-[:HAS_CLAIM]->(c:Claim)
DETACH DELETE c`

	cypherCreateClaims = `
MATCH (d:Document {doc_id: $doc_id})
UNWIND $claims AS cl
CREATE (c:Claim {doc_id: $doc_id, num: cl.num, text: cl.text, independent: cl.independent})
CREATE (d)-[:HAS_CLAIM]->(c)`

	cypherLinkDependencies = `
UNWIND $edges AS e
MATCH (a:Claim {doc_id: $doc_id, num: e.from})
MATCH (b:Claim {doc_id: $doc_id, num: e.to})
MERGE (a)-[:DEPENDS_ON]->(b)`

	cypherAncestors = `
MATCH (:Claim {doc_id: $doc_id, num: $num})-[:DEPENDS_ON*1..]->(p:Claim)
RETURN DISTINCT p.num AS num ORDER BY num`

	cypherIndependent = `
MATCH (:Document {doc_id: $doc_id})-[:HAS_CLAIM]->(c:Claim {independent: true})
RETURN c.num AS num ORDER BY num`
)

// ClaimGraph stores claim dependency trees: a Document node with HAS_CLAIM
// edges to its Claim nodes and DEPENDS_ON edges between claims.
type ClaimGraph struct {
	exec   Executor
	logger logging.Logger
}

// NewClaimGraph creates a ClaimGraph.
func NewClaimGraph(exec Executor, log logging.Logger) *ClaimGraph {
	return &ClaimGraph{exec: exec, logger: logging.OrNop(log)}
}

// Name identifies the sink.
func (g *ClaimGraph) Name() string { return "neo4j" }

// EnsureSchema creates constraints and indexes.
func (g *ClaimGraph) EnsureSchema(ctx context.Context) error {
	_, err := g.exec.ExecuteWrite(ctx, func(tx Transaction) (interface{}, error) {
		for _, stmt := range schemaStatements {
			if err := run(ctx, tx, stmt, nil); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// Write replaces the claim tree of doc. Chunks are not stored in the graph.
func (g *ClaimGraph) Write(ctx context.Context, doc *patent.Document, _ []patent.Chunk) error {
	docParams := map[string]any{
		"doc_id":             doc.DocID,
		"file_name":          doc.FileName,
		"publication_number": doc.Metadata.PublicationNumber,
		"jurisdiction":       string(doc.Metadata.Jurisdiction),
		"title":              doc.Metadata.Title,
		"assignee":           doc.Metadata.Assignee,
		"ipc_codes":          stringsAny(doc.Metadata.IPCCodes),
		"num_claims":         int64(doc.NumClaims),
	}
	claims, edges := claimParams(doc.Claims)
	keyed := map[string]any{"doc_id": doc.DocID}

	_, err := g.exec.ExecuteWrite(ctx, func(tx Transaction) (interface{}, error) {
		if err := run(ctx, tx, cypherUpsertDocument, docParams); err != nil {
			return nil, err
		}
		if err := run(ctx, tx, cypherDropClaims, keyed); err != nil {
			return nil, err
		}
		if len(claims) == 0 {
			return nil, nil
		}
		if err := run(ctx, tx, cypherCreateClaims, map[string]any{"doc_id": doc.DocID, "claims": claims}); err != nil {
			return nil, err
		}
		if len(edges) == 0 {
			return nil, nil
		}
		return nil, run(ctx, tx, cypherLinkDependencies, map[string]any{"doc_id": doc.DocID, "edges": edges})
	})
	if err != nil {
		return err
	}

	g.logger.Debug("Claim graph stored",
		logging.String("doc_id", doc.DocID),
		logging.Int("claims", len(claims)),
		logging.Int("edges", len(edges)))
	return nil
}

// Ancestors returns every claim num reachable from num over DEPENDS_ON.
func (g *ClaimGraph) Ancestors(ctx context.Context, docID string, num int) ([]int, error) {
	return g.readNums(ctx, cypherAncestors, map[string]any{"doc_id": docID, "num": int64(num)})
}

// IndependentClaims returns the claims of docID that depend on no other.
func (g *ClaimGraph) IndependentClaims(ctx context.Context, docID string) ([]int, error) {
	return g.readNums(ctx, cypherIndependent, map[string]any{"doc_id": docID})
}

func (g *ClaimGraph) readNums(ctx context.Context, cypher string, params map[string]any) ([]int, error) {
	out, err := g.exec.ExecuteRead(ctx, func(tx Transaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		nums := []int{}
		for result.Next(ctx) {
			n, _, err := neo4j.GetRecordValue[int64](result.Record(), "num")
			if err != nil {
				return nil, err
			}
			nums = append(nums, int(n))
		}
		return nums, result.Err()
	})
	if err != nil {
		return nil, err
	}
	nums, _ := out.([]int)
	if nums == nil {
		nums = []int{}
	}
	return nums, nil
}

func run(ctx context.Context, tx Transaction, cypher string, params map[string]any) error {
	result, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

func claimParams(claims []patent.Claim) (nodes, edges []any) {
	nodes = make([]any, 0, len(claims))
	for _, c := range claims {
		nodes = append(nodes, map[string]any{
			"num":         int64(c.Num),
			"text":        c.Text,
			"independent": c.IsIndependent(),
		})
		for _, dep := range c.Dependencies {
			edges = append(edges, map[string]any{"from": int64(c.Num), "to": int64(dep)})
		}
	}
	return nodes, edges
}

func stringsAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

//Personal.AI order the ending
