package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"anistream/internal/gateway"
	"anistream/pkg/models"
	"anistream/pkg/utils"
)

func main() {
	var (
		titlesIn = flag.String("titles", "data/titles.csv", "input CSV path for titles")
		linksIn  = flag.String("links", "data/links.csv", "input CSV path for download links")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg, err := utils.Load("")
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	gw := gateway.New(cfg.Gateway)

	imported, failed, err := importTitles(ctx, gw, *titlesIn)
	if err != nil {
		log.Fatalf("import titles failed: %v", err)
	}
	log.Printf("titles: %d imported, %d failed", imported, failed)

	replaced, skipped, err := importLinks(ctx, gw, *linksIn)
	if err != nil {
		log.Fatalf("import links failed: %v", err)
	}
	log.Printf("links: %d titles updated, %d rows skipped", replaced, skipped)

	log.Printf("✅ imported titles from %s and links from %s", *titlesIn, *linksIn)
}

func importTitles(ctx context.Context, gw *gateway.Client, path string) (imported, failed int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, 0, err
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, failed, err
		}
		if len(row) == 0 {
			continue
		}

		name := valueAt(header, row, "title")
		if name == "" {
			failed++
			continue
		}

		t := models.Title{
			ID:          valueAt(header, row, "id"),
			Title:       name,
			Year:        parseIntField(valueAt(header, row, "year")),
			Episodes:    parseIntField(valueAt(header, row, "episodes")),
			Genres:      splitGenres(valueAt(header, row, "genres")),
			Popular:     valueAt(header, row, "popular") == "true",
			IsNew:       valueAt(header, row, "new") == "true",
			Description: valueAt(header, row, "description"),
			Image:       valueAt(header, row, "image"),
			Cover:       valueAt(header, row, "cover"),
		}

		if t.ID == "" {
			t.ID = uuid.NewString()
		}

		if err := upsertTitle(ctx, gw, t); err != nil {
			log.Printf("import title %q: %v", t.Title, err)
			failed++
			continue
		}
		imported++
	}

	return imported, failed, nil
}

func upsertTitle(ctx context.Context, gw *gateway.Client, t models.Title) error {
	existing, err := gw.GetTitle(ctx, t.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return gw.InsertTitle(ctx, t)
	}
	return gw.UpdateTitle(ctx, t)
}

func importLinks(ctx context.Context, gw *gateway.Client, path string) (replaced, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, 0, err
	}

	// links replace wholesale per title, so group rows first
	byTitle := make(map[string][]models.DownloadLink)
	var order []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, skipped, err
		}
		if len(row) == 0 {
			continue
		}

		titleID := valueAt(header, row, "title_id")
		linkURL := valueAt(header, row, "url")
		quality := valueAt(header, row, "quality")
		if titleID == "" || linkURL == "" || quality == "" {
			skipped++
			continue
		}

		id := valueAt(header, row, "id")
		if id == "" {
			id = uuid.NewString()
		}

		if _, seen := byTitle[titleID]; !seen {
			order = append(order, titleID)
		}
		byTitle[titleID] = append(byTitle[titleID], models.DownloadLink{
			ID:         id,
			TitleID:    titleID,
			Episode:    parseIntField(valueAt(header, row, "episode")),
			Quality:    quality,
			URL:        linkURL,
			Streamable: valueAt(header, row, "streamable") == "true",
			Thumbnail:  valueAt(header, row, "thumbnail"),
		})
	}

	for _, titleID := range order {
		if err := gw.ReplaceLinks(ctx, titleID, byTitle[titleID]); err != nil {
			log.Printf("replace links for %s: %v", titleID, err)
			skipped += len(byTitle[titleID])
			continue
		}
		replaced++
	}

	return replaced, skipped, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseIntField(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func splitGenres(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
