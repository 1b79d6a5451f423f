package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/clematis-labs/justify-server/internal/application/port"
	"github.com/clematis-labs/justify-server/internal/domain/entity"
	"github.com/clematis-labs/justify-server/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// OrganizationRepository implements port.OrganizationRepository
type OrganizationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *sql.DB, logger *zap.Logger) port.OrganizationRepository {
	return &OrganizationRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new organization record
func (r *OrganizationRepository) Create(ctx context.Context, org *entity.Organization) error {
	query := `
		INSERT INTO organizations (id, name, subdomain, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	now := time.Now()
	if org.CreatedAt.IsZero() {
		org.CreatedAt = now
	}
	org.UpdatedAt = now

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		org.ID, org.Name, org.Subdomain, org.CreatedAt, org.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create organization", zap.Error(err))
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

// GetByID retrieves an organization by ID, nil when absent.
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	return r.getOne(ctx, `SELECT id, name, subdomain, created_at, updated_at FROM organizations WHERE id = ?`, id)
}

// GetBySubdomain retrieves an organization by its unique subdomain,
// nil when absent.
func (r *OrganizationRepository) GetBySubdomain(ctx context.Context, subdomain string) (*entity.Organization, error) {
	return r.getOne(ctx, `SELECT id, name, subdomain, created_at, updated_at FROM organizations WHERE subdomain = ?`, subdomain)
}

// Delete removes an organization. Dependent rows cascade via foreign keys.
func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete organization", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) getOne(ctx context.Context, query string, arg interface{}) (*entity.Organization, error) {
	var org entity.Organization
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, arg).Scan(
		&org.ID, &org.Name, &org.Subdomain, &org.CreatedAt, &org.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get organization", zap.Error(err))
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

// Verify interface compliance
var _ port.OrganizationRepository = (*OrganizationRepository)(nil)
