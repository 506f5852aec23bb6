// Package store is the data layer over the hosted Supabase project. Every
// table the dashboard uses is reached through the PostgREST query builder;
// there is no local database.
package store

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// Store wraps the Supabase client with typed per-table queries.
type Store struct {
	client *supabase.Client
}

// New connects to the hosted project with the service-role key.
func New(url, serviceKey string) (*Store, error) {
	client, err := supabase.NewClient(url, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("store: create supabase client: %w", err)
	}
	return &Store{client: client}, nil
}

// Client exposes the underlying Supabase client for the storage API.
func (s *Store) Client() *supabase.Client {
	return s.client
}
