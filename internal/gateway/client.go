package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"anistream/pkg/models"
	"anistream/pkg/utils"
)

// Client talks to the managed backend: row-oriented REST tables under
// /rest/v1 plus the auth sub-service under /auth/v1. It holds no state
// beyond connection settings; sessions belong to the caller.
type Client struct {
	http      *resty.Client
	realtime  string
	jwtSecret []byte
}

func New(cfg utils.GatewayConfig) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(cfg.URL, "/")).
			SetTimeout(cfg.Timeout()).
			SetHeader("apikey", cfg.APIKey),
		realtime:  cfg.RealtimeURL,
		jwtSecret: []byte(cfg.JWTSecret),
	}
}

// TitleQuery mirrors the catalog browse controls. Sort is one of "title",
// "year", "episodes" (anything else falls back to title).
type TitleQuery struct {
	Search  string
	Genre   string
	Sort    string
	Popular *bool
	New     *bool
	Limit   int
	Offset  int
}

func (c *Client) ListTitles(ctx context.Context, q TitleQuery) ([]models.Title, error) {
	req := c.http.R().SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", orderParam(q.Sort))

	if s := strings.TrimSpace(q.Search); s != "" {
		req.SetQueryParam("or", fmt.Sprintf("(title.ilike.*%s*,description.ilike.*%s*)", s, s))
	}
	if g := strings.TrimSpace(q.Genre); g != "" {
		req.SetQueryParam("genres", "cs.{"+g+"}")
	}
	if q.Popular != nil {
		req.SetQueryParam("is_popular", fmt.Sprintf("is.%t", *q.Popular))
	}
	if q.New != nil {
		req.SetQueryParam("is_new", fmt.Sprintf("is.%t", *q.New))
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	req.SetQueryParam("limit", fmt.Sprintf("%d", limit))
	req.SetQueryParam("offset", fmt.Sprintf("%d", offset))

	var rows []titleRow
	resp, err := req.SetResult(&rows).Get("/rest/v1/titles")
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	if resp.IsError() {
		return nil, restError("list titles", resp)
	}

	out := make([]models.Title, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (c *Client) GetTitle(ctx context.Context, id string) (*models.Title, error) {
	var rows []titleRow
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("id", "eq."+id).
		SetResult(&rows).
		Get("/rest/v1/titles")
	if err != nil {
		return nil, fmt.Errorf("get title: %w", err)
	}
	if resp.IsError() {
		return nil, restError("get title", resp)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	t := rows[0].toModel()
	return &t, nil
}

func (c *Client) InsertTitle(ctx context.Context, t models.Title) error {
	resp, err := c.http.R().SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(titleToRow(t)).
		Post("/rest/v1/titles")
	if err != nil {
		return fmt.Errorf("insert title: %w", err)
	}
	if resp.IsError() {
		return restError("insert title", resp)
	}
	return nil
}

func (c *Client) UpdateTitle(ctx context.Context, t models.Title) error {
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("id", "eq."+t.ID).
		SetBody(titleToRow(t)).
		Patch("/rest/v1/titles")
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	if resp.IsError() {
		return restError("update title", resp)
	}
	return nil
}

func (c *Client) DeleteTitle(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("id", "eq."+id).
		Delete("/rest/v1/titles")
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}
	if resp.IsError() {
		return restError("delete title", resp)
	}
	return nil
}

func (c *Client) ListLinks(ctx context.Context, titleID string) ([]models.DownloadLink, error) {
	var rows []linkRow
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("title_id", "eq."+titleID).
		SetQueryParam("order", "episode_number.asc").
		SetResult(&rows).
		Get("/rest/v1/download_links")
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	if resp.IsError() {
		return nil, restError("list links", resp)
	}

	out := make([]models.DownloadLink, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// ReplaceLinks swaps a title's whole download-link set: delete by title,
// then insert the new batch. Not transactional; the admin panel is the
// only writer.
func (c *Client) ReplaceLinks(ctx context.Context, titleID string, links []models.DownloadLink) error {
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("title_id", "eq."+titleID).
		Delete("/rest/v1/download_links")
	if err != nil {
		return fmt.Errorf("clear links: %w", err)
	}
	if resp.IsError() {
		return restError("clear links", resp)
	}

	if len(links) == 0 {
		return nil
	}

	rows := make([]linkRow, 0, len(links))
	for _, l := range links {
		l.TitleID = titleID
		rows = append(rows, linkToRow(l))
	}

	resp, err = c.http.R().SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(rows).
		Post("/rest/v1/download_links")
	if err != nil {
		return fmt.Errorf("insert links: %w", err)
	}
	if resp.IsError() {
		return restError("insert links", resp)
	}
	return nil
}

// ListBanners returns banners in the backend's display order. Ties on
// display_order keep whatever order the gateway chose.
func (c *Client) ListBanners(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	req := c.http.R().SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", "display_order.asc")
	if activeOnly {
		req.SetQueryParam("is_active", "is.true")
	}

	var rows []bannerRow
	resp, err := req.SetResult(&rows).Get("/rest/v1/banners")
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	if resp.IsError() {
		return nil, restError("list banners", resp)
	}

	out := make([]models.Banner, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (c *Client) InsertBanner(ctx context.Context, b models.Banner) error {
	resp, err := c.http.R().SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(bannerToRow(b)).
		Post("/rest/v1/banners")
	if err != nil {
		return fmt.Errorf("insert banner: %w", err)
	}
	if resp.IsError() {
		return restError("insert banner", resp)
	}
	return nil
}

func (c *Client) UpdateBanner(ctx context.Context, b models.Banner) error {
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("id", "eq."+b.ID).
		SetBody(bannerToRow(b)).
		Patch("/rest/v1/banners")
	if err != nil {
		return fmt.Errorf("update banner: %w", err)
	}
	if resp.IsError() {
		return restError("update banner", resp)
	}
	return nil
}

func (c *Client) DeleteBanner(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("id", "eq."+id).
		Delete("/rest/v1/banners")
	if err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}
	if resp.IsError() {
		return restError("delete banner", resp)
	}
	return nil
}

func orderParam(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "year":
		return "release_year.desc"
	case "episodes":
		return "episode_count.desc"
	default:
		return "title.asc"
	}
}

func restError(op string, resp *resty.Response) error {
	body := strings.TrimSpace(string(resp.Body()))
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Errorf("%s: gateway returned %s: %s", op, resp.Status(), body)
}
