package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/velioglu/pazar/internal/domain"
	"github.com/velioglu/pazar/internal/events"
	"github.com/velioglu/pazar/internal/repository"
	"github.com/velioglu/pazar/internal/telemetry"
)

// addressService implements domain.AddressService.
//
// The "exactly one default among active addresses" invariant is enforced
// procedurally: every mutation that can affect the flag runs its reads and
// writes inside one ExecTx unit of work. A partial unique index on
// (user_id) WHERE is_default AND is_active backstops the invariant in storage.
type addressService struct {
	store     repository.Store
	logger    *slog.Logger
	metrics   *telemetry.BusinessMetrics
	publisher events.Publisher
	validate  *validator.Validate
}

var _ domain.AddressService = (*addressService)(nil)

// NewAddressService creates the address book manager.
func NewAddressService(store repository.Store, logger *slog.Logger, metrics *telemetry.BusinessMetrics, publisher events.Publisher) domain.AddressService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &addressService{
		store:     store,
		logger:    logger,
		metrics:   metrics,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// List returns the user's active addresses, default first.
func (s *addressService) List(ctx context.Context, userID pgtype.UUID) ([]domain.UserAddress, error) {
	rows, err := s.store.ListActiveAddresses(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, "address.list", "failed to list addresses")
	}

	addrs := make([]domain.UserAddress, len(rows))
	for i, row := range rows {
		addrs[i] = mapAddress(row)
	}
	return addrs, nil
}

// GetDefault returns the user's default address.
func (s *addressService) GetDefault(ctx context.Context, userID pgtype.UUID) (*domain.UserAddress, error) {
	row, err := s.store.GetDefaultAddress(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, domain.Internal(err, "address.get_default", "failed to get default address")
	}

	addr := mapAddress(row)
	return &addr, nil
}

// Add inserts a new active address. Whether it becomes the default is decided
// by re-checking "does the user have any active address" inside the same
// transaction, immediately before the insert, so two concurrent first adds
// cannot both promote.
func (s *addressService) Add(ctx context.Context, params domain.AddAddressParams) (*domain.UserAddress, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, invalidParams("address.add", err)
	}

	var created repository.UserAddress
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		count, err := q.CountActiveAddresses(ctx, params.UserID)
		if err != nil {
			return domain.Internal(err, "address.add", "failed to count addresses")
		}

		created, err = q.CreateAddress(ctx, repository.CreateAddressParams{
			UserID:      params.UserID,
			Title:       params.Title,
			FullAddress: params.FullAddress,
			City:        params.City,
			District:    params.District,
			Latitude:    pgtype.Float8{Float64: params.Latitude, Valid: true},
			Longitude:   pgtype.Float8{Float64: params.Longitude, Valid: true},
			IsDefault:   count == 0,
		})
		if err != nil {
			return domain.Internal(err, "address.add", "failed to create address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAddressCreated()

	addr := mapAddress(created)
	return &addr, nil
}

// Update changes address fields on an owned address; it never touches the
// default flag.
func (s *addressService) Update(ctx context.Context, params domain.UpdateAddressParams) (*domain.UserAddress, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, invalidParams("address.update", err)
	}

	row, err := s.store.UpdateAddress(ctx, repository.UpdateAddressParams{
		ID:          params.AddressID,
		UserID:      params.UserID,
		Title:       params.Title,
		FullAddress: params.FullAddress,
		City:        params.City,
		District:    params.District,
		Latitude:    pgtype.Float8{Float64: params.Latitude, Valid: true},
		Longitude:   pgtype.Float8{Float64: params.Longitude, Valid: true},
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, domain.Internal(err, "address.update", "failed to update address")
	}

	addr := mapAddress(row)
	return &addr, nil
}

// Delete soft-deletes an owned address. If it was the default, a remaining
// active address is promoted in the same transaction; a user left with no
// active addresses has no default, which is a valid terminal state.
func (s *addressService) Delete(ctx context.Context, userID, addressID pgtype.UUID) error {
	var reassigned pgtype.UUID

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		target, err := q.GetActiveAddress(ctx, repository.GetActiveAddressParams{
			ID:     addressID,
			UserID: userID,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrAddressNotFound
			}
			return domain.Internal(err, "address.delete", "failed to get address")
		}

		if err := q.DeactivateAddress(ctx, repository.DeactivateAddressParams{
			ID:     target.ID,
			UserID: userID,
		}); err != nil {
			return domain.Internal(err, "address.delete", "failed to deactivate address")
		}

		if !target.IsDefault {
			return nil
		}

		replacement, err := q.GetOldestActiveAddress(ctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil // no active address left; no default is valid
			}
			return domain.Internal(err, "address.delete", "failed to pick replacement default")
		}

		promoted, err := q.PromoteAddressToDefault(ctx, repository.PromoteAddressToDefaultParams{
			ID:     replacement.ID,
			UserID: userID,
		})
		if err != nil {
			return domain.Internal(err, "address.delete", "failed to promote replacement default")
		}
		reassigned = promoted.ID
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordAddressDeleted()
	if reassigned.Valid {
		s.metrics.RecordDefaultReassigned()
		s.publishEvent(ctx, uuidString(userID), events.NewEnvelope(events.TypeAddressDefaultChanged, events.AddressDefaultChanged{
			UserID:    uuidString(userID),
			AddressID: uuidString(reassigned),
		}))
	}
	return nil
}

// SetDefault demotes every other default and promotes the target in one
// commit. The demote step is written to clear any number of stray defaults.
func (s *addressService) SetDefault(ctx context.Context, userID, addressID pgtype.UUID) error {
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		if _, err := q.GetActiveAddress(ctx, repository.GetActiveAddressParams{
			ID:     addressID,
			UserID: userID,
		}); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrAddressNotFound
			}
			return domain.Internal(err, "address.set_default", "failed to get address")
		}

		if err := q.DemoteDefaultAddresses(ctx, userID); err != nil {
			return domain.Internal(err, "address.set_default", "failed to demote defaults")
		}

		if _, err := q.PromoteAddressToDefault(ctx, repository.PromoteAddressToDefaultParams{
			ID:     addressID,
			UserID: userID,
		}); err != nil {
			return domain.Internal(err, "address.set_default", "failed to promote address")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordDefaultReassigned()
	s.publishEvent(ctx, uuidString(userID), events.NewEnvelope(events.TypeAddressDefaultChanged, events.AddressDefaultChanged{
		UserID:    uuidString(userID),
		AddressID: uuidString(addressID),
	}))
	return nil
}

func (s *addressService) publishEvent(ctx context.Context, key string, env events.Envelope) {
	if err := s.publisher.Publish(ctx, key, env); err != nil {
		s.logger.Warn("failed to publish event", "type", env.Type, "error", err)
	}
}

func mapAddress(a repository.UserAddress) domain.UserAddress {
	return domain.UserAddress{
		ID:          a.ID,
		UserID:      a.UserID,
		Title:       a.Title,
		FullAddress: a.FullAddress,
		City:        a.City,
		District:    a.District,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
		IsDefault:   a.IsDefault,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
