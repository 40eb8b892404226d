package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/securedocs/internal/model"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
)

// DocumentRepository is the read side the access engine relies on.
// Create exists for seeding and tests; document CRUD lives elsewhere.
type DocumentRepository interface {
	Create(doc *model.Document) error
	ByID(id string) (*model.Document, error)
	Listed() ([]*model.Document, error)
	AssignedUsers(documentID string) (model.UserSet, error)
}

type documentRepository struct {
	db    *sqlx.DB
	files *fileRepository
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &documentRepository{db: db, files: NewFileRepository(db)}
}

func (r *documentRepository) Create(doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Status == "" {
		doc.Status = model.DocumentStatusDone
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO documents (id, title, content, status, published, private, password_protected, password_hash, legacy_file_url, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = tx.Exec(query,
		doc.ID,
		doc.Title,
		doc.Content,
		doc.Status,
		doc.Published,
		doc.Private,
		doc.PasswordProtected,
		doc.PasswordHash,
		doc.LegacyFileURL,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return err
	}

	err = replaceFiles(tx, doc.ID, doc.Files)
	if err != nil {
		return err
	}

	for _, userID := range doc.AssignedUsers.Slice() {
		_, err = tx.Exec(`INSERT INTO document_assignments (document_id, user_id) VALUES ($1, $2)`, doc.ID, userID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ByID loads a document with its files and assigned users.
func (r *documentRepository) ByID(id string) (*model.Document, error) {
	doc := &model.Document{}
	query := `SELECT * FROM documents WHERE id = $1`

	err := r.db.Get(doc, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}

	doc.Files, err = r.files.Files(id)
	if err != nil {
		return nil, err
	}

	doc.AssignedUsers, err = r.AssignedUsers(id)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Listed returns published documents that carry no access restriction.
func (r *documentRepository) Listed() ([]*model.Document, error) {
	var docs []*model.Document
	query := `
		SELECT d.* FROM documents d
		WHERE d.published = $1
		  AND d.private = $2
		  AND d.password_protected = $2
		  AND d.status <> $3
		  AND NOT EXISTS (SELECT 1 FROM document_assignments a WHERE a.document_id = d.id)
		ORDER BY d.updated_at DESC
	`

	err := r.db.Select(&docs, query, true, false, model.DocumentStatusArchived)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

func (r *documentRepository) AssignedUsers(documentID string) (model.UserSet, error) {
	var ids []string
	query := `SELECT user_id FROM document_assignments WHERE document_id = $1`

	err := r.db.Select(&ids, query, documentID)
	if err != nil {
		return nil, err
	}

	return model.NewUserSet(ids...), nil
}
