// Package repository defines the pick store boundary and its errors. The
// document store's historically inconsistent shapes are normalized here so
// the aggregation core never branches on storage representation.
package repository

import (
	"context"

	"github.com/backmarker/backmarker/internal/domain/model"
)

// Store provides read access to users, race records and the driver
// directory. All methods honor ctx for cancellation and surface upstream
// failures wrapped in ErrUnavailable.
type Store interface {
	// FindUsersBySeason returns every user who opted into the season.
	FindUsersBySeason(ctx context.Context, season int) ([]model.User, error)

	// FindRacesByMeetingKeys batch-fetches race records for the given
	// meeting keys within a season. Keys without a race record yet are
	// simply absent from the result; that is not an error.
	FindRacesByMeetingKeys(ctx context.Context, meetingKeys []string, season int) ([]model.RaceRecord, error)

	// FindDriversByNumbers batch-fetches driver directory entries for a
	// season. Unknown numbers are absent from the result.
	FindDriversByNumbers(ctx context.Context, driverNumbers []int, season int) ([]model.DriverInfo, error)
}

// Seeder is implemented by stores that support loading data, used by the
// simulation harness and local development. The engine itself never writes.
type Seeder interface {
	InsertUsers(ctx context.Context, users []model.User) error
	InsertRaces(ctx context.Context, races []model.RaceRecord) error
	InsertDrivers(ctx context.Context, drivers []model.DriverInfo) error
}
