package providers

import (
	"context"
	"errors"

	"evalboard/internal/domains"
	"evalboard/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MetricsProvider reads the objective-score configuration and readings the
// external HR systems feed into the database.
type MetricsProvider struct {
	db *pgxpool.Pool
}

func NewMetricsProvider(db *pgxpool.Pool) *MetricsProvider {
	return &MetricsProvider{
		db: db,
	}
}

// GetDepartmentWeights returns the department-level weight override for the
// owner's company. ErrNotFound means the company-wide defaults apply.
func (s *MetricsProvider) GetDepartmentWeights(ctx context.Context, ownerID int64, department string) (domains.MetricWeights, error) {
	rows, err := s.db.Query(ctx,
		`SELECT manager, tasks, attendance
         FROM metric_weights
         WHERE owner_id = $1 AND department = $2`, ownerID, department)
	if err != nil {
		return domains.MetricWeights{}, err
	}
	defer rows.Close()

	weights, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.MetricWeights])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.MetricWeights{}, storage.ErrNotFound
		}
		return domains.MetricWeights{}, err
	}
	return weights, nil
}

func (s *MetricsProvider) SaveDepartmentWeights(ctx context.Context, ownerID int64, department string, weights domains.MetricWeights) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO metric_weights (owner_id, department, manager, tasks, attendance)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (owner_id, department) DO UPDATE
            SET manager = EXCLUDED.manager,
                tasks = EXCLUDED.tasks,
                attendance = EXCLUDED.attendance`,
		ownerID, department, weights.Manager, weights.Tasks, weights.Attendance)
	return err
}

// GetTargetReadings returns the latest manager/tasks/attendance percents for
// one target user. ErrNotFound means the form score stands alone.
func (s *MetricsProvider) GetTargetReadings(ctx context.Context, targetUser string) (domains.MetricReadings, error) {
	rows, err := s.db.Query(ctx,
		`SELECT manager, tasks, attendance
         FROM metric_readings
         WHERE target_user = $1
         ORDER BY measured_at DESC
         LIMIT 1`, targetUser)
	if err != nil {
		return domains.MetricReadings{}, err
	}
	defer rows.Close()

	readings, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.MetricReadings])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.MetricReadings{}, storage.ErrNotFound
		}
		return domains.MetricReadings{}, err
	}
	return readings, nil
}
