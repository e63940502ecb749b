package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/landdesk/api/internal/database"
)

// LinkageRepository maintains the parcel↔property association. Both sides of
// a link are written inside a single transaction so a caller can never
// observe a property pointing at a parcel that does not list it, or vice
// versa.
type LinkageRepository interface {
	// Link appends propertyID to the parcel's linked list and sets the
	// property's plot_id/plot_number back-pointers. If the property is
	// currently linked to a different parcel, it is removed from that
	// parcel's list in the same transaction.
	// Returns ErrParcelNotFound, ErrPropertyNotFound, or ErrAlreadyLinked.
	Link(ctx context.Context, parcelID, propertyID uuid.UUID) error

	// Unlink removes propertyID from the parcel's list and clears the
	// property's back-pointers. Unlinking a property that is not in the
	// list is a no-op, not an error.
	// Returns ErrParcelNotFound or ErrPropertyNotFound.
	Unlink(ctx context.Context, parcelID, propertyID uuid.UUID) error
}

// linkageRepository is the concrete implementation of LinkageRepository.
type linkageRepository struct {
	db *database.Database
}

// NewLinkageRepository creates a new instance of LinkageRepository.
func NewLinkageRepository(db *database.Database) LinkageRepository {
	return &linkageRepository{
		db: db,
	}
}

// Link associates a property with a parcel.
//
// The list mutation is a field-level atomic array_append guarded by a NOT
// ANY predicate, never a read-modify-write of the whole row: two concurrent
// links of different properties against the same parcel both land. The
// property row is locked first so concurrent links of the same property
// serialize and the steal-from-previous-parcel step stays consistent.
func (r *linkageRepository) Link(ctx context.Context, parcelID, propertyID uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var currentPlot *uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT plot_id FROM properties WHERE id = $1 FOR UPDATE`,
			propertyID,
		).Scan(&currentPlot)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPropertyNotFound
			}
			return fmt.Errorf("failed to lock property %s: %w", propertyID, err)
		}

		if currentPlot != nil {
			if *currentPlot == parcelID {
				return ErrAlreadyLinked
			}
			// No property may appear in two parcels' lists simultaneously.
			_, err := tx.Exec(ctx,
				`UPDATE parcels
				 SET linked_property_ids = array_remove(linked_property_ids, $2),
				     updated_at = now()
				 WHERE id = $1`,
				*currentPlot, propertyID,
			)
			if err != nil {
				return fmt.Errorf("failed to unlink property %s from parcel %s: %w",
					propertyID, *currentPlot, err)
			}
		}

		var number string
		err = tx.QueryRow(ctx,
			`UPDATE parcels
			 SET linked_property_ids = array_append(linked_property_ids, $2),
			     updated_at = now()
			 WHERE id = $1 AND NOT ($2 = ANY(linked_property_ids))
			 RETURNING number`,
			parcelID, propertyID,
		).Scan(&number)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Either the parcel is missing or the id is already in its
				// list despite the property's back-pointer saying otherwise.
				var exists bool
				if err := tx.QueryRow(ctx,
					`SELECT EXISTS (SELECT 1 FROM parcels WHERE id = $1)`,
					parcelID,
				).Scan(&exists); err != nil {
					return fmt.Errorf("failed to check parcel %s: %w", parcelID, err)
				}
				if !exists {
					return ErrParcelNotFound
				}
				return ErrAlreadyLinked
			}
			return fmt.Errorf("failed to append link to parcel %s: %w", parcelID, err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE properties
			 SET plot_id = $1, plot_number = $2, updated_at = now()
			 WHERE id = $3`,
			parcelID, number, propertyID,
		)
		if err != nil {
			return fmt.Errorf("failed to set property back-pointer %s: %w", propertyID, err)
		}

		return nil
	})
}

// Unlink removes the association between a parcel and a property.
func (r *linkageRepository) Unlink(ctx context.Context, parcelID, propertyID uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)`,
			propertyID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check property %s: %w", propertyID, err)
		}
		if !exists {
			return ErrPropertyNotFound
		}

		// array_remove of an absent element still matches the row, so zero
		// rows affected means the parcel itself is missing.
		tag, err := tx.Exec(ctx,
			`UPDATE parcels
			 SET linked_property_ids = array_remove(linked_property_ids, $2),
			     updated_at = now()
			 WHERE id = $1`,
			parcelID, propertyID,
		)
		if err != nil {
			return fmt.Errorf("failed to remove link from parcel %s: %w", parcelID, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrParcelNotFound
		}

		// Clear back-pointers only if they point at this parcel; unlinking
		// an id that was never linked must not touch the property.
		_, err = tx.Exec(ctx,
			`UPDATE properties
			 SET plot_id = NULL, plot_number = NULL, updated_at = now()
			 WHERE id = $2 AND plot_id = $1`,
			parcelID, propertyID,
		)
		if err != nil {
			return fmt.Errorf("failed to clear property back-pointer %s: %w", propertyID, err)
		}

		return nil
	})
}
