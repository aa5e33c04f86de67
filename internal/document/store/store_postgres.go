package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"driverhub/internal/document"
	"driverhub/pkg/domain"
	"driverhub/pkg/platform/sentinel"
)

// PostgresStore persists document metadata in PostgreSQL. Save runs the
// supersede and the insert in one transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const documentColumns = `id, driver_id, doc_type, storage_ref, content_type, size_bytes,
	checksum, verified, superseded, uploaded_at`

func (s *PostgresStore) Save(ctx context.Context, doc document.Document) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return infraErr("begin save document", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		UPDATE driver_documents SET superseded = true
		WHERE driver_id = $1 AND doc_type = $2 AND NOT superseded`,
		doc.DriverID.String(), doc.Type.String())
	if err != nil {
		return infraErr("supersede document", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO driver_documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		doc.ID.String(), doc.DriverID.String(), doc.Type.String(),
		doc.StorageRef, doc.ContentType, doc.SizeBytes,
		doc.Checksum, doc.Verified, doc.Superseded, doc.UploadedAt,
	)
	if err != nil {
		return infraErr("insert document", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return infraErr("commit save document", err)
	}
	return nil
}

func (s *PostgresStore) ListCurrent(ctx context.Context, driverID domain.DriverID) ([]document.Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+documentColumns+` FROM driver_documents
		WHERE driver_id = $1 AND NOT superseded
		ORDER BY uploaded_at`,
		driverID.String())
	if err != nil {
		return nil, infraErr("list documents", err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, infraErr("list documents", err)
	}
	return docs, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, driverID domain.DriverID, docID domain.DocumentID) (document.Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+documentColumns+` FROM driver_documents
		WHERE driver_id = $1 AND id = $2`,
		driverID.String(), docID.String())
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.Document{}, sentinel.ErrNotFound
		}
		return document.Document{}, err
	}
	return doc, nil
}

func (s *PostgresStore) MarkVerified(ctx context.Context, driverID domain.DriverID, docID domain.DocumentID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE driver_documents SET verified = true
		WHERE driver_id = $1 AND id = $2 AND NOT superseded`,
		driverID.String(), docID.String())
	if err != nil {
		return infraErr("mark document verified", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.FindByID(ctx, driverID, docID); err != nil {
			return err
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresStore) MarkAllVerified(ctx context.Context, driverID domain.DriverID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE driver_documents SET verified = true
		WHERE driver_id = $1 AND NOT superseded`,
		driverID.String())
	if err != nil {
		return infraErr("mark documents verified", err)
	}
	return nil
}

func scanDocument(row pgx.Row) (document.Document, error) {
	var doc document.Document
	var docID, driverID, docType string
	err := row.Scan(&docID, &driverID, &docType, &doc.StorageRef, &doc.ContentType,
		&doc.SizeBytes, &doc.Checksum, &doc.Verified, &doc.Superseded, &doc.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.Document{}, pgx.ErrNoRows
		}
		return document.Document{}, infraErr("scan document", err)
	}
	if doc.ID, err = domain.ParseDocumentID(docID); err != nil {
		return document.Document{}, fmt.Errorf("corrupt document id: %w", err)
	}
	if doc.DriverID, err = domain.ParseDriverID(driverID); err != nil {
		return document.Document{}, fmt.Errorf("corrupt driver id: %w", err)
	}
	if doc.Type, err = domain.ParseDocumentType(docType); err != nil {
		return document.Document{}, fmt.Errorf("corrupt document type: %w", err)
	}
	return doc, nil
}

func infraErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
