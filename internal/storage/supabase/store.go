package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	neturl "net/url"
	"time"

	"github.com/google/uuid"

	"github.com/makersimpulse/layoutengine/internal/layout"
	"github.com/makersimpulse/layoutengine/internal/storage"
)

// Store implements storage.LayoutStore over the PostgREST transport.
//
// PostgREST exposes no multi-statement transactions, so ActivateLayout runs
// as read, bulk-deactivate, activate: a crash between the last two steps can
// leave a slot with zero active records. EnsureLayout is likewise
// check-then-act; concurrent seeders can double-insert until the next
// ActivateLayout call restores exclusivity.
type Store struct {
	client *Client
	table  string
}

var _ storage.LayoutStore = (*Store)(nil)

// NewStore creates a layout store on the given client.
func NewStore(client *Client) *Store {
	return &Store{client: client, table: "layout_skeletons"}
}

// record is the PostgREST wire shape of a skeleton row.
type record struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Type        layout.Kind     `json:"type"`
	Scope       layout.Scope    `json:"scope"`
	Description string          `json:"description,omitempty"`
	LayoutJSON  json.RawMessage `json:"layout_json"`
	IsActive    bool            `json:"is_active"`
	IsLocked    bool            `json:"is_locked"`
	Version     int             `json:"version"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

func (s *Store) CreateLayout(ctx context.Context, skel layout.Skeleton) (layout.Skeleton, error) {
	if skel.ID == "" {
		skel.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	skel.CreatedAt = now
	skel.UpdatedAt = now

	rec, err := toRecord(skel)
	if err != nil {
		return layout.Skeleton{}, err
	}
	data, err := s.client.request(ctx, "POST", s.table, rec, "")
	if err != nil {
		return layout.Skeleton{}, fmt.Errorf("create layout: %w", err)
	}
	return s.decodeOne(data, skel.ID)
}

func (s *Store) UpdateLayout(ctx context.Context, skel layout.Skeleton) (layout.Skeleton, error) {
	skel.UpdatedAt = time.Now().UTC()
	rec, err := toRecord(skel)
	if err != nil {
		return layout.Skeleton{}, err
	}
	rec.CreatedAt = nil // created_at is owned by the insert

	query := "id=eq." + neturl.QueryEscape(skel.ID)
	data, err := s.client.request(ctx, "PATCH", s.table, rec, query)
	if err != nil {
		return layout.Skeleton{}, fmt.Errorf("update layout: %w", err)
	}
	return s.decodeOne(data, skel.ID)
}

func (s *Store) GetLayout(ctx context.Context, id string) (layout.Skeleton, error) {
	query := "id=eq." + neturl.QueryEscape(id) + "&limit=1"
	data, err := s.client.request(ctx, "GET", s.table, nil, query)
	if err != nil {
		return layout.Skeleton{}, fmt.Errorf("get layout: %w", err)
	}
	return s.decodeOne(data, id)
}

func (s *Store) ListLayouts(ctx context.Context) ([]layout.Skeleton, error) {
	data, err := s.client.request(ctx, "GET", s.table, nil, "order=created_at.asc")
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	return decodeRecords(data)
}

func (s *Store) DeleteLayout(ctx context.Context, id string) error {
	query := "id=eq." + neturl.QueryEscape(id)
	data, err := s.client.request(ctx, "DELETE", s.table, nil, query)
	if err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	deleted, err := decodeRecords(data)
	if err != nil {
		return err
	}
	if len(deleted) == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

func (s *Store) GetActiveLayout(ctx context.Context, kind layout.Kind, scope layout.Scope) (layout.Skeleton, error) {
	query := fmt.Sprintf("type=eq.%s&scope=eq.%s&is_active=eq.true&order=created_at.desc&limit=1",
		neturl.QueryEscape(string(kind)), neturl.QueryEscape(string(scope)))
	data, err := s.client.request(ctx, "GET", s.table, nil, query)
	if err != nil {
		return layout.Skeleton{}, fmt.Errorf("get active layout: %w", err)
	}
	records, err := decodeRecords(data)
	if err != nil {
		return layout.Skeleton{}, err
	}
	if len(records) == 0 {
		return layout.Skeleton{}, fmt.Errorf("%w: %s/%s", storage.ErrNoActiveLayout, kind, scope)
	}
	return records[0], nil
}

func (s *Store) ActivateLayout(ctx context.Context, id string) (layout.Skeleton, error) {
	target, err := s.GetLayout(ctx, id)
	if err != nil {
		return layout.Skeleton{}, err
	}

	deactivate := fmt.Sprintf("type=eq.%s&scope=eq.%s&is_active=eq.true&id=neq.%s",
		neturl.QueryEscape(string(target.Type)), neturl.QueryEscape(string(target.Scope)),
		neturl.QueryEscape(id))
	if _, err := s.client.request(ctx, "PATCH", s.table,
		map[string]interface{}{"is_active": false, "updated_at": time.Now().UTC()}, deactivate); err != nil {
		return layout.Skeleton{}, fmt.Errorf("deactivate slot: %w", err)
	}

	activate := "id=eq." + neturl.QueryEscape(id)
	data, err := s.client.request(ctx, "PATCH", s.table,
		map[string]interface{}{"is_active": true, "updated_at": time.Now().UTC()}, activate)
	if err != nil {
		return layout.Skeleton{}, fmt.Errorf("activate layout: %w", err)
	}
	return s.decodeOne(data, id)
}

func (s *Store) EnsureLayout(ctx context.Context, skel layout.Skeleton) (layout.Skeleton, bool, error) {
	existing, err := s.GetActiveLayout(ctx, skel.Type, skel.Scope)
	if err == nil {
		return existing, false, nil
	}
	if !isNoActive(err) {
		return layout.Skeleton{}, false, err
	}

	skel.IsActive = true
	created, err := s.CreateLayout(ctx, skel)
	if err != nil {
		return layout.Skeleton{}, false, err
	}
	return created, true, nil
}

func isNoActive(err error) bool {
	return errors.Is(err, storage.ErrNoActiveLayout)
}

func (s *Store) decodeOne(data []byte, id string) (layout.Skeleton, error) {
	records, err := decodeRecords(data)
	if err != nil {
		return layout.Skeleton{}, err
	}
	if len(records) == 0 {
		return layout.Skeleton{}, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return records[0], nil
}

func decodeRecords(data []byte) ([]layout.Skeleton, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal layouts: %w", err)
	}
	out := make([]layout.Skeleton, 0, len(records))
	for _, rec := range records {
		payload, err := layout.DecodeTreePayload(rec.LayoutJSON)
		if err != nil {
			return nil, fmt.Errorf("layout %s: %w", rec.ID, err)
		}
		skel := layout.Skeleton{
			ID:          rec.ID,
			Name:        rec.Name,
			Type:        rec.Type,
			Scope:       rec.Scope,
			Description: rec.Description,
			LayoutJSON:  payload,
			IsActive:    rec.IsActive,
			IsLocked:    rec.IsLocked,
			Version:     rec.Version,
		}
		if rec.CreatedAt != nil {
			skel.CreatedAt = *rec.CreatedAt
		}
		if rec.UpdatedAt != nil {
			skel.UpdatedAt = *rec.UpdatedAt
		}
		out = append(out, skel)
	}
	return out, nil
}

func toRecord(skel layout.Skeleton) (record, error) {
	payload, err := layout.EncodeTreePayload(skel.LayoutJSON)
	if err != nil {
		return record{}, err
	}
	rec := record{
		ID:          skel.ID,
		Name:        skel.Name,
		Type:        skel.Type,
		Scope:       skel.Scope,
		Description: skel.Description,
		LayoutJSON:  payload,
		IsActive:    skel.IsActive,
		IsLocked:    skel.IsLocked,
		Version:     skel.Version,
	}
	if !skel.CreatedAt.IsZero() {
		created := skel.CreatedAt
		rec.CreatedAt = &created
	}
	if !skel.UpdatedAt.IsZero() {
		updated := skel.UpdatedAt
		rec.UpdatedAt = &updated
	}
	return rec, nil
}
