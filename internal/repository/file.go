package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/templui/securedocs/internal/model"
)

type FileRepository interface {
	Files(documentID string) ([]model.FileRef, error)
	ReplaceFiles(documentID string, files []model.FileRef) error
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) *fileRepository {
	return &fileRepository{db: db}
}

// Files returns the document's files ordered by position.
func (r *fileRepository) Files(documentID string) ([]model.FileRef, error) {
	var files []model.FileRef
	query := `SELECT document_id, position, url, name FROM document_files WHERE document_id = $1 ORDER BY position`

	err := r.db.Select(&files, query, documentID)
	if err != nil {
		return nil, err
	}

	// Positions are renumbered densely so index always matches the slice offset
	for i := range files {
		files[i].Index = i
	}

	return files, nil
}

func (r *fileRepository) ReplaceFiles(documentID string, files []model.FileRef) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	err = replaceFiles(tx, documentID, files)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func replaceFiles(tx *sqlx.Tx, documentID string, files []model.FileRef) error {
	_, err := tx.Exec(`DELETE FROM document_files WHERE document_id = $1`, documentID)
	if err != nil {
		return err
	}

	query := `INSERT INTO document_files (document_id, position, url, name) VALUES ($1, $2, $3, $4)`
	for i, f := range files {
		_, err = tx.Exec(query, documentID, i, f.URL, f.Name)
		if err != nil {
			return err
		}
	}

	return nil
}
