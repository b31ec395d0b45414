package activity

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ApplyCheckin records a squad check-in for one of the profile's activities
// and adds the activity to the squad and member totals. It expects to run on
// the transaction that persists the check-in message.
func ApplyCheckin(ctx context.Context, db bun.IDB, checkin types.Checkin) (*types.Checkin, error) {
	if checkin.ID == uuid.Nil {
		return nil, errors.New("activity: checkin id required")
	}

	var source Record
	err := db.NewSelect().
		Model(&source).
		Where("id = ?", checkin.ActivityID).
		Where("profile_id = ?", checkin.ProfileID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrActivityNotFound
		}
		return nil, err
	}

	taken, err := db.NewSelect().
		Model((*CheckinRecord)(nil)).
		Where("squad_id = ?", checkin.SquadID).
		Where("activity_id = ?", checkin.ActivityID).
		Exists(ctx)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, types.ErrActivityAlreadyCheckedIn
	}

	rec := &CheckinRecord{
		ID:         checkin.ID,
		SquadID:    checkin.SquadID,
		ActivityID: checkin.ActivityID,
		ProfileID:  checkin.ProfileID,
		MessageID:  checkin.MessageID,
		CreatedAt:  checkin.CreatedAt,
	}
	if _, err := db.NewInsert().Model(rec).Exec(ctx); err != nil {
		if apperr.IsUniqueViolation(err) {
			return nil, types.ErrActivityAlreadyCheckedIn
		}
		return nil, err
	}

	res, err := db.NewUpdate().
		Table("squads").
		Set("total_distance_km = total_distance_km + ?", source.DistanceKm).
		Set("total_activities = total_activities + 1").
		Set("updated_at = ?", checkin.CreatedAt).
		Where("id = ?", checkin.SquadID).
		Exec(ctx)
	if err := expectRow(res, err, types.ErrSquadNotFound); err != nil {
		return nil, err
	}

	res, err = db.NewUpdate().
		Table("squad_members").
		Set("total_distance_km = total_distance_km + ?", source.DistanceKm).
		Set("total_activities = total_activities + 1").
		Set("last_activity_at = ?", checkin.CreatedAt).
		Where("squad_id = ?", checkin.SquadID).
		Where("profile_id = ?", checkin.ProfileID).
		Exec(ctx)
	if err := expectRow(res, err, types.ErrNotMember); err != nil {
		return nil, err
	}

	out := checkin
	out.DistanceKm = source.DistanceKm
	return &out, nil
}

func expectRow(res sql.Result, err error, missing error) error {
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return missing
	}
	return nil
}
