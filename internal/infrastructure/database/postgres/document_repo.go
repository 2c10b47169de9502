package postgres

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// DB is the subset of *pgxpool.Pool used by the repository.
type DB interface {
	TxBeginner
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var chunkColumns = []string{
	"doc_id", "chunk_id", "position", "section_type", "text", "tokens_est", "lang", "weight",
	"claim_nums", "citation_page", "page_start", "page_end", "tags", "norm_numbers",
}

// DocumentRepository stores converted documents and their chunks. Writing a
// document replaces any earlier version of it, chunks included.
type DocumentRepository struct {
	db     DB
	logger logging.Logger
}

// NewDocumentRepository creates a DocumentRepository.
func NewDocumentRepository(db DB, log logging.Logger) *DocumentRepository {
	return &DocumentRepository{db: db, logger: logging.OrNop(log)}
}

// Name identifies the sink.
func (r *DocumentRepository) Name() string { return "postgres" }

// Write upserts doc and replaces its chunks in one transaction.
func (r *DocumentRepository) Write(ctx context.Context, doc *patent.Document, chunks []patent.Chunk) error {
	docArgs, err := documentArgs(doc)
	if err != nil {
		return err
	}
	rows, err := chunkRows(doc.DocID, chunks)
	if err != nil {
		return err
	}

	err = WithTransaction(ctx, r.db, func(tx pgx.Tx, txCtx context.Context) error {
		if _, err := tx.Exec(txCtx, `
			INSERT INTO documents (doc_id, file_name, publication_number, jurisdiction, num_sections,
				num_claims, metadata, structure, sections, claims, acquisition)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (doc_id) DO UPDATE SET
				file_name = EXCLUDED.file_name,
				publication_number = EXCLUDED.publication_number,
				jurisdiction = EXCLUDED.jurisdiction,
				num_sections = EXCLUDED.num_sections,
				num_claims = EXCLUDED.num_claims,
				metadata = EXCLUDED.metadata,
				structure = EXCLUDED.structure,
				sections = EXCLUDED.sections,
				claims = EXCLUDED.claims,
				acquisition = EXCLUDED.acquisition,
				updated_at = now()`, docArgs...); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert document")
		}
		if _, err := tx.Exec(txCtx, `DELETE FROM chunks WHERE doc_id = $1`, doc.DocID); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to clear chunks")
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.CopyFrom(txCtx, pgx.Identifier{"chunks"}, chunkColumns, pgx.CopyFromRows(rows)); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to copy chunks")
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("Document stored",
		logging.String("doc_id", doc.DocID),
		logging.Int("chunks", len(chunks)))
	return nil
}

// GetDocument loads a stored document.
func (r *DocumentRepository) GetDocument(ctx context.Context, docID string) (*patent.Document, error) {
	var (
		doc                                       patent.Document
		metadata, structure, sections, claims, aq []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT doc_id, file_name, num_sections, num_claims, metadata, structure, sections, claims, acquisition
		FROM documents WHERE doc_id = $1`, docID).
		Scan(&doc.DocID, &doc.FileName, &doc.NumSections, &doc.NumClaims, &metadata, &structure, &sections, &claims, &aq)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("document not found").WithDetail(docID)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load document")
	}

	for _, f := range []struct {
		raw  []byte
		dest interface{}
	}{
		{metadata, &doc.Metadata},
		{structure, &doc.Structure},
		{sections, &doc.Sections},
		{claims, &doc.Claims},
	} {
		if err := json.Unmarshal(f.raw, f.dest); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode document column")
		}
	}
	if len(aq) > 0 {
		doc.Acquisition = &patent.Acquisition{}
		if err := json.Unmarshal(aq, doc.Acquisition); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode acquisition")
		}
	}
	return &doc, nil
}

// ListChunks returns the chunks of docID in emission order.
func (r *DocumentRepository) ListChunks(ctx context.Context, docID string) ([]patent.Chunk, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.chunk_id, c.section_type, c.text, c.tokens_est, c.lang, c.weight, c.claim_nums,
			c.citation_page, c.page_start, c.page_end, c.tags, c.norm_numbers,
			COALESCE(d.publication_number, d.doc_id)
		FROM chunks c JOIN documents d ON d.doc_id = c.doc_id
		WHERE c.doc_id = $1 ORDER BY c.position`, docID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query chunks")
	}
	defer rows.Close()

	out := make([]patent.Chunk, 0)
	for rows.Next() {
		var (
			c                    patent.Chunk
			sectionType          string
			claimNums            []int32
			citation, start, end *int32
			tags, numbers        []byte
		)
		if err := rows.Scan(&c.ChunkID, &sectionType, &c.Text, &c.TokensEst, &c.Lang, &c.Weight,
			&claimNums, &citation, &start, &end, &tags, &numbers, &c.DocumentID); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan chunk")
		}
		c.SectionType = patent.SectionType(sectionType)
		c.DocID = docID
		c.Context = c.Text
		c.ClaimNums = make([]int, len(claimNums))
		for i, n := range claimNums {
			c.ClaimNums[i] = int(n)
		}
		if citation != nil {
			p := int(*citation)
			c.CitationPage = &p
		}
		if start != nil && end != nil {
			c.PageRange = &patent.PageRange{int(*start), int(*end)}
		}
		if err := json.Unmarshal(tags, &c.Tags); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode tags")
		}
		if err := json.Unmarshal(numbers, &c.NormNumbers); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode numbers")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read chunks")
	}
	return out, nil
}

// DeleteDocument removes a document; its chunks cascade.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, docID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE doc_id = $1`, docID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete document")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("document not found").WithDetail(docID)
	}
	return nil
}

func documentArgs(doc *patent.Document) ([]interface{}, error) {
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode metadata")
	}
	structure, err := json.Marshal(doc.Structure)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode structure")
	}
	sections, err := json.Marshal(nonNil(doc.Sections))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode sections")
	}
	claims, err := json.Marshal(nonNil(doc.Claims))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode claims")
	}
	var acquisition []byte
	if doc.Acquisition != nil {
		if acquisition, err = json.Marshal(doc.Acquisition); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode acquisition")
		}
	}
	return []interface{}{
		doc.DocID, doc.FileName, nullString(doc.Metadata.PublicationNumber),
		nullString(string(doc.Metadata.Jurisdiction)), doc.NumSections, doc.NumClaims,
		metadata, structure, sections, claims, acquisition,
	}, nil
}

func chunkRows(docID string, chunks []patent.Chunk) ([][]interface{}, error) {
	rows := make([][]interface{}, 0, len(chunks))
	for i, c := range chunks {
		tags, err := json.Marshal(c.Tags)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode tags")
		}
		numbers, err := json.Marshal(nonNil(c.NormNumbers))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode numbers")
		}
		claimNums := make([]int32, len(c.ClaimNums))
		for j, n := range c.ClaimNums {
			claimNums[j] = int32(n)
		}
		var citation, start, end *int32
		if c.CitationPage != nil {
			v := int32(*c.CitationPage)
			citation = &v
		}
		if c.PageRange != nil {
			s, e := int32(c.PageRange[0]), int32(c.PageRange[1])
			start, end = &s, &e
		}
		rows = append(rows, []interface{}{
			docID, c.ChunkID, int32(i), string(c.SectionType), c.Text, int32(c.TokensEst), c.Lang,
			c.Weight, claimNums, citation, start, end, tags, numbers,
		})
	}
	return rows, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

//Personal.AI order the ending
