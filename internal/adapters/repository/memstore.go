package repository

import (
	"context"
	"strconv"
	"sync"

	"github.com/backmarker/backmarker/internal/domain/model"
)

// MemStore implements Store and Seeder in memory. It backs the simulation
// harness and tests; behavior mirrors the Mongo-backed store, including
// shape normalization when raw documents are loaded.
type MemStore struct {
	mu      sync.RWMutex
	users   []model.User
	races   map[string]model.RaceRecord // keyed meetingKey|season
	drivers map[string]model.DriverInfo // keyed driverNumber|season
	failure error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		races:   make(map[string]model.RaceRecord),
		drivers: make(map[string]model.DriverInfo),
	}
}

// FailWith makes every subsequent call return err; nil restores normal
// operation. Used to exercise upstream-failure paths.
func (s *MemStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// FindUsersBySeason returns users who opted into the season.
func (s *MemStore) FindUsersBySeason(ctx context.Context, season int) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failure != nil {
		return nil, s.failure
	}

	var out []model.User
	for _, u := range s.users {
		for _, y := range u.Seasons {
			if y == season {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

// FindRacesByMeetingKeys batch-fetches race records for a season.
func (s *MemStore) FindRacesByMeetingKeys(ctx context.Context, meetingKeys []string, season int) ([]model.RaceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failure != nil {
		return nil, s.failure
	}

	var out []model.RaceRecord
	for _, key := range meetingKeys {
		if race, ok := s.races[raceKey(key, season)]; ok {
			out = append(out, race)
		}
	}
	return out, nil
}

// FindDriversByNumbers batch-fetches driver directory entries for a season.
func (s *MemStore) FindDriversByNumbers(ctx context.Context, driverNumbers []int, season int) ([]model.DriverInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failure != nil {
		return nil, s.failure
	}

	var out []model.DriverInfo
	for _, num := range driverNumbers {
		if info, ok := s.drivers[driverKey(num, season)]; ok {
			out = append(out, info)
		}
	}
	return out, nil
}

// InsertUsers loads users into the store.
func (s *MemStore) InsertUsers(ctx context.Context, users []model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	s.users = append(s.users, users...)
	return nil
}

// InsertRaces loads race records into the store.
func (s *MemStore) InsertRaces(ctx context.Context, races []model.RaceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	for _, race := range races {
		s.races[raceKey(race.MeetingKey, race.Year)] = race
	}
	return nil
}

// InsertDrivers loads driver directory entries into the store.
func (s *MemStore) InsertDrivers(ctx context.Context, drivers []model.DriverInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	for _, d := range drivers {
		s.drivers[driverKey(d.DriverNumber, d.Year)] = d
	}
	return nil
}

func raceKey(meetingKey string, season int) string {
	return meetingKey + "|" + strconv.Itoa(season)
}

func driverKey(driverNumber, season int) string {
	return strconv.Itoa(driverNumber) + "|" + strconv.Itoa(season)
}
