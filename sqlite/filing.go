package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/ebarkan/edgarseg"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ edgarseg.FilingStore = (*FilingStore)(nil)

// FilingStore implements edgarseg.FilingStore using SQLite.
type FilingStore struct {
	db *DB
}

// NewFilingStore creates a new FilingStore.
func NewFilingStore(db *DB) *FilingStore {
	return &FilingStore{db: db}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, xxhash.Sum64String(content))
	return hex.EncodeToString(b)
}

// fingerprint hashes everything about a record except the extraction
// timestamp, so re-running an extraction that produced identical output
// yields an identical hash.
func fingerprint(rec *edgarseg.FilingRecord) (string, error) {
	clone := *rec
	clone.ExtractedAt = time.Time{}
	b, err := json.Marshal(&clone)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint record: %w", err)
	}
	return hashContent(string(b)), nil
}

// CreateFilingRecord stores a record, replacing any earlier record for the
// same accession. A re-save whose content is unchanged leaves the stored
// row untouched, original extraction timestamp included.
func (s *FilingStore) CreateFilingRecord(ctx context.Context, rec *edgarseg.FilingRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	hash, err := fingerprint(rec)
	if err != nil {
		return err
	}

	var existing string
	err = s.db.QueryRowContext(ctx, `
		SELECT content_hash FROM filings WHERE accession = ?
	`, rec.Accession).Scan(&existing)
	if err == nil && existing == hash {
		return nil
	}
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Sections and segments cascade.
	if _, err := tx.ExecContext(ctx, "DELETE FROM filings WHERE accession = ?", rec.Accession); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO filings (accession, cik, company_name, form_type, filed_date, period_of_report,
			primary_document, schema_version, content_hash, run_id, extracted_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Accession, rec.CIK, rec.CompanyName, string(rec.FormType), rec.FiledDate, rec.PeriodOfReport,
		rec.PrimaryDocument, rec.SchemaVersion, hash, uuid.New().String(),
		rec.ExtractedAt.UTC().Format(time.RFC3339), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	for pos := range rec.Sections {
		sec := &rec.Sections[pos]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sections (accession, position, item_id, heading)
			VALUES (?, ?, ?, ?)
		`, rec.Accession, pos, sec.ItemID, sec.Heading)
		if err != nil {
			return err
		}

		for i := range sec.Segments {
			seg := &sec.Segments[i]
			ancestors, err := json.Marshal(seg.Ancestors)
			if err != nil {
				return fmt.Errorf("failed to encode ancestors: %w", err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO segments (accession, section_position, idx, text, word_count, char_count,
					parent_subsection, ancestors, is_cross_ref, cross_ref_target)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, rec.Accession, pos, seg.Index, seg.Text, seg.WordCount, seg.CharCount,
				seg.ParentSubsection, string(ancestors), seg.IsCrossRef, seg.CrossRefTarget)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// FindFilingRecordByAccession retrieves a record by accession number.
func (s *FilingStore) FindFilingRecordByAccession(ctx context.Context, accession string) (*edgarseg.FilingRecord, error) {
	rec, err := s.scanFilingRow(s.db.QueryRowContext(ctx, `
		SELECT accession, cik, company_name, form_type, filed_date, period_of_report,
			primary_document, schema_version, extracted_at
		FROM filings
		WHERE accession = ?
	`, accession))
	if err == sql.ErrNoRows {
		return nil, edgarseg.Errorf(edgarseg.ENOTFOUND, "Filing record not found.")
	}
	if err != nil {
		return nil, err
	}

	rec.Sections, err = s.loadSections(ctx, accession)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// FindFilingRecords retrieves records matching the filter, sorted by filed
// date with the newest first, together with the total match count.
func (s *FilingStore) FindFilingRecords(ctx context.Context, filter edgarseg.RecordFilter) ([]*edgarseg.FilingRecord, int, error) {
	var where strings.Builder
	var args []any

	where.WriteString(" WHERE 1=1")

	if filter.Accession != nil {
		where.WriteString(" AND accession = ?")
		args = append(args, *filter.Accession)
	}
	if filter.CIK != nil {
		where.WriteString(" AND cik = ?")
		args = append(args, *filter.CIK)
	}
	if filter.FormType != nil {
		where.WriteString(" AND form_type = ?")
		args = append(args, string(*filter.FormType))
	}
	if filter.ItemID != nil {
		where.WriteString(" AND EXISTS (SELECT 1 FROM sections WHERE sections.accession = filings.accession AND sections.item_id = ?)")
		args = append(args, *filter.ItemID)
	}

	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM filings"+where.String(), args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	var query strings.Builder
	query.WriteString(`SELECT accession, cik, company_name, form_type, filed_date, period_of_report,
		primary_document, schema_version, extracted_at FROM filings`)
	query.WriteString(where.String())
	query.WriteString(" ORDER BY filed_date DESC, accession ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, 0, err
	}

	var recs []*edgarseg.FilingRecord
	for rows.Next() {
		rec, err := s.scanFilingRow(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, 0, err
	}
	rows.Close()

	// The pool is capped at one connection, so the filing rows above must
	// be fully drained before the section queries run.
	for _, rec := range recs {
		rec.Sections, err = s.loadSections(ctx, rec.Accession)
		if err != nil {
			return nil, 0, err
		}
	}

	return recs, total, nil
}

// DeleteFilingRecord removes a record and its sections. Deleting a missing
// record is not an error.
func (s *FilingStore) DeleteFilingRecord(ctx context.Context, accession string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM filings WHERE accession = ?", accession)
	return err
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *FilingStore) scanFilingRow(row rowScanner) (*edgarseg.FilingRecord, error) {
	var rec edgarseg.FilingRecord
	var formType, extractedAt string

	err := row.Scan(&rec.Accession, &rec.CIK, &rec.CompanyName, &formType, &rec.FiledDate,
		&rec.PeriodOfReport, &rec.PrimaryDocument, &rec.SchemaVersion, &extractedAt)
	if err != nil {
		return nil, err
	}

	rec.FormType = edgarseg.FormType(formType)
	rec.ExtractedAt, err = parseTime("extracted_at", extractedAt)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// loadSections rebuilds the section slice of one record. Each result set is
// drained before the next query runs to keep the single connection free.
func (s *FilingStore) loadSections(ctx context.Context, accession string) ([]edgarseg.Section, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, heading
		FROM sections
		WHERE accession = ?
		ORDER BY position ASC
	`, accession)
	if err != nil {
		return nil, err
	}

	var sections []edgarseg.Section
	for rows.Next() {
		var sec edgarseg.Section
		if err := rows.Scan(&sec.ItemID, &sec.Heading); err != nil {
			rows.Close()
			return nil, err
		}
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT section_position, idx, text, word_count, char_count,
			parent_subsection, ancestors, is_cross_ref, cross_ref_target
		FROM segments
		WHERE accession = ?
		ORDER BY section_position ASC, idx ASC
	`, accession)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var pos int
		var seg edgarseg.Segment
		var ancestors string

		if err := rows.Scan(&pos, &seg.Index, &seg.Text, &seg.WordCount, &seg.CharCount,
			&seg.ParentSubsection, &ancestors, &seg.IsCrossRef, &seg.CrossRefTarget); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ancestors), &seg.Ancestors); err != nil {
			return nil, fmt.Errorf("failed to decode ancestors: %w", err)
		}
		if seg.Ancestors == nil {
			seg.Ancestors = []string{}
		}
		if pos < 0 || pos >= len(sections) {
			return nil, fmt.Errorf("segment references unknown section position %d", pos)
		}

		sections[pos].Segments = append(sections[pos].Segments, seg)
	}

	return sections, rows.Err()
}

// parseTime converts a stored RFC3339 string back into a time.Time.
func parseTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", field, err)
	}
	return t, nil
}

// appendPagination adds LIMIT and OFFSET clauses. SQLite accepts OFFSET
// only after a LIMIT, so an offset on its own gets the unlimited LIMIT -1.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	} else if offset > 0 {
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
