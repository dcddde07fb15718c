package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// MaintenanceRepository вызывает процедуры обслуживания, которые живут в базе
// и принадлежат другим сервисам.
type MaintenanceRepository interface {
	CleanupExpiredSubscriptions(ctx context.Context) error
}

type postgresMaintenanceRepository struct {
	db *sql.DB
}

func NewPostgresMaintenanceRepository(db *sql.DB) MaintenanceRepository {
	return &postgresMaintenanceRepository{db: db}
}

func (r *postgresMaintenanceRepository) CleanupExpiredSubscriptions(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `SELECT cleanup_expired_subscriptions()`); err != nil {
		return fmt.Errorf("failed to run cleanup_expired_subscriptions: %w", err)
	}
	return nil
}
