package store

import (
	"context"

	"github.com/amishk599/jobmerge/internal/model"
)

// NopStore is used when no persisted store is configured. Find always
// returns an empty result.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Find(_ context.Context, _ model.StoreFilter) ([]model.Job, error) {
	return []model.Job{}, nil
}
func (s *NopStore) Insert(_ context.Context, _ []model.Job) error { return nil }
func (s *NopStore) Ping(_ context.Context) error                  { return nil }
func (s *NopStore) Close() error                                  { return nil }
