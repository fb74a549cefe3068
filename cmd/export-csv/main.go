package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"anistream/internal/gateway"
	"anistream/pkg/models"
	"anistream/pkg/utils"
)

func main() {
	var (
		titlesOut = flag.String("titles", "data/titles.csv", "output CSV path for titles")
		linksOut  = flag.String("links", "data/links.csv", "output CSV path for download links")
		limit     = flag.Int("limit", 500, "max titles to export")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg, err := utils.Load("")
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	gw := gateway.New(cfg.Gateway)

	titles, err := fetchTitles(ctx, gw, *limit)
	if err != nil {
		log.Fatalf("fetch titles failed: %v", err)
	}

	if err := exportTitles(titles, *titlesOut); err != nil {
		log.Fatalf("export titles failed: %v", err)
	}
	if err := exportLinks(ctx, gw, titles, *linksOut); err != nil {
		log.Fatalf("export links failed: %v", err)
	}

	log.Printf("✅ exported %d titles to %s and links to %s", len(titles), *titlesOut, *linksOut)
}

func fetchTitles(ctx context.Context, gw *gateway.Client, limit int) ([]models.Title, error) {
	var out []models.Title
	offset := 0
	for len(out) < limit {
		pageSize := 50
		if remaining := limit - len(out); remaining < pageSize {
			pageSize = remaining
		}
		page, err := gw.ListTitles(ctx, gateway.TitleQuery{
			Sort:   "title",
			Limit:  pageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		out = append(out, page...)
		offset += len(page)
	}
	return out, nil
}

func exportTitles(titles []models.Title, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id", "title", "year", "episodes", "genres", "popular", "new", "description", "image", "cover",
	}); err != nil {
		return err
	}

	for _, t := range titles {
		if err := w.Write([]string{
			t.ID,
			t.Title,
			strconv.Itoa(t.Year),
			strconv.Itoa(t.Episodes),
			strings.Join(t.Genres, ","),
			strconv.FormatBool(t.Popular),
			strconv.FormatBool(t.IsNew),
			t.Description,
			t.Image,
			t.Cover,
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func exportLinks(ctx context.Context, gw *gateway.Client, titles []models.Title, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id", "title_id", "episode", "quality", "url", "streamable", "thumbnail",
	}); err != nil {
		return err
	}

	for _, t := range titles {
		links, err := gw.ListLinks(ctx, t.ID)
		if err != nil {
			// skip the broken title, keep the export going
			log.Printf("list links for %s: %v", t.ID, err)
			continue
		}
		for _, l := range links {
			if err := w.Write([]string{
				l.ID,
				t.ID,
				strconv.Itoa(l.Episode),
				l.Quality,
				l.URL,
				strconv.FormatBool(l.Streamable),
				l.Thumbnail,
			}); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}
