package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/backmarker/backmarker/internal/domain/model"
	"github.com/backmarker/backmarker/pkg/metrics"
)

// Collection names in the pick store.
const (
	usersCollection   = "users"
	racesCollection   = "races"
	driversCollection = "drivers"
)

const defaultQueryTimeout = 5 * time.Second

// Option applies a configuration option to the MongoStore.
type Option func(*MongoStore)

// WithQueryTimeout bounds each query against the store.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(s *MongoStore) {
		if timeout > 0 {
			s.queryTimeout = timeout
		}
	}
}

// MongoStore implements Store backed by the MongoDB document store.
type MongoStore struct {
	db           *mongo.Database
	queryTimeout time.Duration
}

// NewMongoStore creates a store over an established database handle.
func NewMongoStore(db *mongo.Database, opts ...Option) *MongoStore {
	s := &MongoStore{
		db:           db,
		queryTimeout: defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// userDoc decodes a user document with picks left raw for normalization.
type userDoc struct {
	Username  string `bson:"username"`
	FirstName string `bson:"first_name"`
	Seasons   []int  `bson:"seasons"`
	Picks     bson.M `bson:"picks"`
}

// raceDoc decodes a race document with the historically unstable fields
// left raw for normalization.
type raceDoc struct {
	MeetingKey        any    `bson:"meeting_key"`
	MeetingName       string `bson:"meeting_name"`
	CountryName       string `bson:"country_name"`
	Year              int    `bson:"year"`
	QualifyingResults any    `bson:"qualifying_results"`
	RaceResults       any    `bson:"race_results"`
	DNFs              int    `bson:"dnfs"`
}

// FindUsersBySeason returns every user who opted into the season, with
// pick structures normalized to the canonical shape.
func (s *MongoStore) FindUsersBySeason(ctx context.Context, season int) ([]model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()
	cur, err := s.db.Collection(usersCollection).Find(ctx, bson.M{"seasons": season})
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("%w: find users for season %d: %w", ErrUnavailable, season, err)
	}
	defer cur.Close(ctx)

	var users []model.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("%w: decode user: %w", ErrUnavailable, err)
		}
		users = append(users, normalizeUser(doc))
	}
	if err := cur.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("%w: iterate users: %w", ErrUnavailable, err)
	}
	metrics.RecordStoreQueryLatency("users_by_season", float64(time.Since(start).Milliseconds()))
	return users, nil
}

func normalizeUser(doc userDoc) model.User {
	user := model.User{
		Username:  doc.Username,
		FirstName: doc.FirstName,
		Seasons:   doc.Seasons,
	}
	if len(doc.Picks) > 0 {
		user.Picks = make(map[string]model.SeasonPicks, len(doc.Picks))
		for seasonKey, rawSeason := range doc.Picks {
			if picks := NormalizeSeasonPicks(rawSeason); picks != nil {
				user.Picks[seasonKey] = picks
			}
		}
	}
	return user
}

// FindRacesByMeetingKeys batch-fetches race records. Meeting keys were
// stored as strings in some revisions and numbers in others, so the
// filter matches both forms.
func (s *MongoStore) FindRacesByMeetingKeys(ctx context.Context, meetingKeys []string, season int) ([]model.RaceRecord, error) {
	if len(meetingKeys) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	keys := make([]any, 0, len(meetingKeys)*2)
	for _, key := range meetingKeys {
		keys = append(keys, key)
		if n, err := strconv.Atoi(key); err == nil {
			keys = append(keys, n)
		}
	}

	start := time.Now()
	filter := bson.M{"meeting_key": bson.M{"$in": keys}, "year": season}
	cur, err := s.db.Collection(racesCollection).Find(ctx, filter)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("%w: find races for season %d: %w", ErrUnavailable, season, err)
	}
	defer cur.Close(ctx)

	var races []model.RaceRecord
	for cur.Next(ctx) {
		var doc raceDoc
		if err := cur.Decode(&doc); err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("%w: decode race: %w", ErrUnavailable, err)
		}
		races = append(races, model.RaceRecord{
			MeetingKey:        NormalizeMeetingKey(doc.MeetingKey),
			MeetingName:       doc.MeetingName,
			CountryName:       doc.CountryName,
			Year:              doc.Year,
			QualifyingResults: NormalizeResults(doc.QualifyingResults),
			RaceResults:       NormalizeResults(doc.RaceResults),
			DNFs:              doc.DNFs,
		})
	}
	if err := cur.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("%w: iterate races: %w", ErrUnavailable, err)
	}
	metrics.RecordStoreQueryLatency("races_by_meeting_keys", float64(time.Since(start).Milliseconds()))
	return races, nil
}

// FindDriversByNumbers batch-fetches driver directory entries for a season.
func (s *MongoStore) FindDriversByNumbers(ctx context.Context, driverNumbers []int, season int) ([]model.DriverInfo, error) {
	if len(driverNumbers) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()
	filter := bson.M{"driver_number": bson.M{"$in": driverNumbers}, "year": season}
	cur, err := s.db.Collection(driversCollection).Find(ctx, filter)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("%w: find drivers for season %d: %w", ErrUnavailable, season, err)
	}
	defer cur.Close(ctx)

	var drivers []model.DriverInfo
	if err := cur.All(ctx, &drivers); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("%w: decode drivers: %w", ErrUnavailable, err)
	}
	metrics.RecordStoreQueryLatency("drivers_by_numbers", float64(time.Since(start).Milliseconds()))
	return drivers, nil
}

// InsertUsers loads user documents; simulation and development only.
func (s *MongoStore) InsertUsers(ctx context.Context, users []model.User) error {
	return s.insert(ctx, usersCollection, toAnySlice(users))
}

// InsertRaces loads race documents; simulation and development only.
func (s *MongoStore) InsertRaces(ctx context.Context, races []model.RaceRecord) error {
	return s.insert(ctx, racesCollection, toAnySlice(races))
}

// InsertDrivers loads driver documents; simulation and development only.
func (s *MongoStore) InsertDrivers(ctx context.Context, drivers []model.DriverInfo) error {
	return s.insert(ctx, driversCollection, toAnySlice(drivers))
}

func (s *MongoStore) insert(ctx context.Context, collection string, docs []any) error {
	if len(docs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if _, err := s.db.Collection(collection).InsertMany(ctx, docs); err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("%w: insert into %s: %w", ErrUnavailable, collection, err)
	}
	return nil
}

func toAnySlice[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
