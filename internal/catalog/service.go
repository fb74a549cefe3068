package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"anistream/internal/gateway"
	"anistream/internal/notify"
	"anistream/pkg/models"
)

// Service is the catalog query layer: it shapes gateway rows for the
// views and pushes admin mutations straight back to the gateway.
type Service struct {
	GW  *gateway.Client
	Hub *notify.Hub
}

func NewService(gw *gateway.Client, hub *notify.Hub) *Service {
	return &Service{GW: gw, Hub: hub}
}

func (s *Service) List(ctx context.Context, q gateway.TitleQuery) ([]models.Title, error) {
	return s.GW.ListTitles(ctx, q)
}

// Get returns the title with its download links attached, or nil when the
// id is unknown.
func (s *Service) Get(ctx context.Context, id string) (*models.Title, error) {
	t, err := s.GW.GetTitle(ctx, id)
	if err != nil || t == nil {
		return t, err
	}

	links, err := s.GW.ListLinks(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Links = links
	return t, nil
}

func (s *Service) Featured(ctx context.Context, limit int) ([]models.Title, error) {
	yes := true
	return s.GW.ListTitles(ctx, gateway.TitleQuery{Popular: &yes, Limit: limit})
}

func (s *Service) NewArrivals(ctx context.Context, limit int) ([]models.Title, error) {
	yes := true
	return s.GW.ListTitles(ctx, gateway.TitleQuery{New: &yes, Limit: limit})
}

func (s *Service) Banners(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	return s.GW.ListBanners(ctx, activeOnly)
}

// SaveTitle creates or updates. New titles get a minted id; genres are
// deduplicated preserving first occurrence.
func (s *Service) SaveTitle(ctx context.Context, t models.Title) (models.Title, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return t, fmt.Errorf("save title: title required")
	}
	t.Genres = dedupGenres(t.Genres)

	var err error
	if t.ID == "" {
		t.ID = uuid.NewString()
		err = s.GW.InsertTitle(ctx, t)
	} else {
		err = s.GW.UpdateTitle(ctx, t)
	}
	if err != nil {
		return t, err
	}

	s.Hub.Publish(notify.Event{Type: notify.EventTitleSaved, ID: t.ID})
	return t, nil
}

func (s *Service) DeleteTitle(ctx context.Context, id string) error {
	if err := s.GW.DeleteTitle(ctx, id); err != nil {
		return err
	}
	s.Hub.Publish(notify.Event{Type: notify.EventTitleDeleted, ID: id})
	return nil
}

func (s *Service) SaveBanner(ctx context.Context, b models.Banner) (models.Banner, error) {
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		return b, fmt.Errorf("save banner: title required")
	}

	var err error
	if b.ID == "" {
		b.ID = uuid.NewString()
		err = s.GW.InsertBanner(ctx, b)
	} else {
		err = s.GW.UpdateBanner(ctx, b)
	}
	if err != nil {
		return b, err
	}

	s.Hub.Publish(notify.Event{Type: notify.EventBannerSaved, ID: b.ID})
	return b, nil
}

func (s *Service) DeleteBanner(ctx context.Context, id string) error {
	if err := s.GW.DeleteBanner(ctx, id); err != nil {
		return err
	}
	s.Hub.Publish(notify.Event{Type: notify.EventBannerDeleted, ID: id})
	return nil
}

// ReplaceLinks swaps a title's download links. Missing link ids are
// minted; episode numbers at or below zero are left for the grouping
// default to handle on read.
func (s *Service) ReplaceLinks(ctx context.Context, titleID string, links []models.DownloadLink) ([]models.DownloadLink, error) {
	for i := range links {
		if links[i].ID == "" {
			links[i].ID = uuid.NewString()
		}
		links[i].TitleID = titleID
	}

	if err := s.GW.ReplaceLinks(ctx, titleID, links); err != nil {
		return nil, err
	}

	s.Hub.Publish(notify.Event{Type: notify.EventLinksReplaced, ID: titleID})
	return links, nil
}

func dedupGenres(genres []string) []string {
	seen := make(map[string]struct{}, len(genres))
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		key := strings.ToLower(g)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, g)
	}
	return out
}
