package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"rescue-coordination-system/internal/domain"
)

// PostgresCampaignRepository імплементує CampaignRepository для PostgreSQL.
// Вкладені структури кампанії (вузли, журнал статусів, нотатки) зберігаються
// в JSONB-колонках: кампанія читається й пишеться як єдиний агрегат.
type PostgresCampaignRepository struct {
	db *sql.DB
}

// NewPostgresCampaignRepository створює новий екземпляр PostgresCampaignRepository
func NewPostgresCampaignRepository(db *sql.DB) *PostgresCampaignRepository {
	return &PostgresCampaignRepository{
		db: db,
	}
}

const campaignColumns = `id, name, description, status, alert_ids, assigned_rescuer_ids,
        node_assignments, total_survivors_found, latitude, longitude, status_history, notes,
        created_at, updated_at, resolved_at`

func (r *PostgresCampaignRepository) Save(ctx context.Context, campaign *domain.Campaign) error {
	query := `
        INSERT INTO campaigns (` + campaignColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `

	cols, err := marshalCampaignColumns(campaign)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(
		ctx,
		query,
		campaign.ID,
		campaign.Name,
		campaign.Description,
		campaign.Status,
		cols.alertIDs,
		cols.rescuerIDs,
		cols.nodes,
		campaign.TotalSurvivorsFound,
		campaign.Location.Latitude,
		campaign.Location.Longitude,
		cols.history,
		cols.notes,
		campaign.CreatedAt,
		campaign.UpdatedAt,
		campaign.ResolvedAt,
	)

	return err
}

func (r *PostgresCampaignRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	campaign, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: campaign %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	return campaign, nil
}

func (r *PostgresCampaignRepository) FindAll(ctx context.Context) ([]*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC`
	return r.queryCampaigns(ctx, query)
}

func (r *PostgresCampaignRepository) FindByStatus(ctx context.Context, status domain.CampaignStatus) ([]*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE status = $1 ORDER BY created_at DESC`
	return r.queryCampaigns(ctx, query, status)
}

// FindByRescuer шукає кампанії, до яких призначений рятувальник.
// Множина рятувальників лежить у JSONB, тому фільтрація виконується
// після читання; обсяг кампаній польової системи це дозволяє.
func (r *PostgresCampaignRepository) FindByRescuer(ctx context.Context, rescuerID string) ([]*domain.Campaign, error) {
	campaigns, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*domain.Campaign
	for _, c := range campaigns {
		if c.HasRescuer(rescuerID) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (r *PostgresCampaignRepository) Update(ctx context.Context, campaign *domain.Campaign) error {
	query := `
        UPDATE campaigns
        SET name = $1, description = $2, status = $3, alert_ids = $4, assigned_rescuer_ids = $5,
            node_assignments = $6, total_survivors_found = $7, latitude = $8, longitude = $9,
            status_history = $10, notes = $11, updated_at = $12, resolved_at = $13
        WHERE id = $14
    `

	cols, err := marshalCampaignColumns(campaign)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(
		ctx,
		query,
		campaign.Name,
		campaign.Description,
		campaign.Status,
		cols.alertIDs,
		cols.rescuerIDs,
		cols.nodes,
		campaign.TotalSurvivorsFound,
		campaign.Location.Latitude,
		campaign.Location.Longitude,
		cols.history,
		cols.notes,
		campaign.UpdatedAt,
		campaign.ResolvedAt,
		campaign.ID,
	)

	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: campaign %s", domain.ErrNotFound, campaign.ID)
	}

	return nil
}

func (r *PostgresCampaignRepository) queryCampaigns(ctx context.Context, query string, args ...interface{}) ([]*domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []*domain.Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return campaigns, nil
}

type campaignJSONColumns struct {
	alertIDs   []byte
	rescuerIDs []byte
	nodes      []byte
	history    []byte
	notes      []byte
}

func marshalCampaignColumns(campaign *domain.Campaign) (*campaignJSONColumns, error) {
	alertIDs, err := json.Marshal(campaign.AlertIDs)
	if err != nil {
		return nil, err
	}
	rescuerIDs, err := json.Marshal(campaign.AssignedRescuerIDs)
	if err != nil {
		return nil, err
	}
	nodes, err := json.Marshal(campaign.NodeAssignments)
	if err != nil {
		return nil, err
	}
	history, err := json.Marshal(campaign.StatusHistory)
	if err != nil {
		return nil, err
	}
	notes, err := json.Marshal(campaign.Notes)
	if err != nil {
		return nil, err
	}
	return &campaignJSONColumns{
		alertIDs:   alertIDs,
		rescuerIDs: rescuerIDs,
		nodes:      nodes,
		history:    history,
		notes:      notes,
	}, nil
}

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	var campaign domain.Campaign
	var alertIDs, rescuerIDs, nodes, history, notes []byte

	err := row.Scan(
		&campaign.ID,
		&campaign.Name,
		&campaign.Description,
		&campaign.Status,
		&alertIDs,
		&rescuerIDs,
		&nodes,
		&campaign.TotalSurvivorsFound,
		&campaign.Location.Latitude,
		&campaign.Location.Longitude,
		&history,
		&notes,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
		&campaign.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(alertIDs, &campaign.AlertIDs); err != nil {
		return nil, fmt.Errorf("failed to decode alert_ids for campaign %s: %w", campaign.ID, err)
	}
	if err := json.Unmarshal(rescuerIDs, &campaign.AssignedRescuerIDs); err != nil {
		return nil, fmt.Errorf("failed to decode assigned_rescuer_ids for campaign %s: %w", campaign.ID, err)
	}
	if err := json.Unmarshal(nodes, &campaign.NodeAssignments); err != nil {
		return nil, fmt.Errorf("failed to decode node_assignments for campaign %s: %w", campaign.ID, err)
	}
	if err := json.Unmarshal(history, &campaign.StatusHistory); err != nil {
		return nil, fmt.Errorf("failed to decode status_history for campaign %s: %w", campaign.ID, err)
	}
	if err := json.Unmarshal(notes, &campaign.Notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes for campaign %s: %w", campaign.ID, err)
	}

	return &campaign, nil
}
