package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"anistream/internal/episodes"
	"anistream/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type titleListResponse struct {
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Items  []models.Title `json:"items"`
}

func main() {
	global := flag.NewFlagSet("anistream", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch cmd {
	case "auth":
		handleAuth(ctx, client, *baseURL, sub, args[2:])
	case "titles":
		handleTitles(ctx, client, *baseURL, sub, args[2:])
	case "links":
		handleLinks(ctx, client, *baseURL, sub, args[2:])
	case "recent":
		handleRecent(ctx, client, *baseURL, sub)
	case "progress":
		handleProgress(ctx, client, *baseURL, sub, args[2:])
	case "events":
		handleEvents(*baseURL, sub, args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}

		payload := map[string]string{"email": *email, "password": *password}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/login", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		fmt.Println("✅ logged in")
	case "admin-login":
		fs := flag.NewFlagSet("auth admin-login", flag.ExitOnError)
		username := fs.String("username", "", "admin username")
		password := fs.String("password", "", "admin password")
		_ = fs.Parse(args)

		if *username == "" || *password == "" {
			log.Fatal("username and password are required")
		}

		payload := map[string]string{"username": *username, "password": *password}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/admin-login", payload, &resp); err != nil {
			log.Fatalf("admin login failed: %v", err)
		}
		fmt.Println("✅ admin session active")
	case "logout":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/logout", nil, &resp); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("✅ logged out")
	case "state":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/auth/state", nil, &resp); err != nil {
			log.Fatalf("state failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: anistream auth <login|admin-login|logout|state>")
	}
}

func handleTitles(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "search":
		fs := flag.NewFlagSet("titles search", flag.ExitOnError)
		query := fs.String("q", "", "search query")
		genre := fs.String("genre", "", "genre filter")
		sort := fs.String("sort", "", "sort order (title|year|popular|new)")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/titles")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		qv := u.Query()
		if *query != "" {
			qv.Set("search", *query)
		}
		if *genre != "" {
			qv.Set("genre", *genre)
		}
		if *sort != "" {
			qv.Set("sort", *sort)
		}
		qv.Set("limit", fmt.Sprintf("%d", *limit))
		qv.Set("offset", fmt.Sprintf("%d", *offset))
		u.RawQuery = qv.Encode()

		var resp titleListResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), nil, &resp); err != nil {
			log.Fatalf("search failed: %v", err)
		}
		printJSON(resp)
	case "show":
		fs := flag.NewFlagSet("titles show", flag.ExitOnError)
		id := fs.String("id", "", "title id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("title id is required")
		}

		var resp models.Title
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/titles/"+url.PathEscape(*id), nil, &resp); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(resp)
	case "save":
		fs := flag.NewFlagSet("titles save", flag.ExitOnError)
		file := fs.String("file", "", "JSON file with the title (- for stdin)")
		_ = fs.Parse(args)
		if *file == "" {
			log.Fatal("file is required")
		}

		var data []byte
		var err error
		if *file == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(*file)
		}
		if err != nil {
			log.Fatalf("read title: %v", err)
		}

		var t models.Title
		if err := json.Unmarshal(data, &t); err != nil {
			log.Fatalf("parse title: %v", err)
		}

		method := http.MethodPost
		endpoint := baseURL + "/admin/titles"
		if t.ID != "" {
			method = http.MethodPut
			endpoint += "/" + url.PathEscape(t.ID)
		}

		var resp models.Title
		if err := doJSON(ctx, client, method, endpoint, t, &resp); err != nil {
			log.Fatalf("save failed (admin login required): %v", err)
		}
		printJSON(resp)
	case "delete":
		fs := flag.NewFlagSet("titles delete", flag.ExitOnError)
		id := fs.String("id", "", "title id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("title id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/admin/titles/"+url.PathEscape(*id), nil, &resp); err != nil {
			log.Fatalf("delete failed (admin login required): %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: anistream titles <search|show|save|delete>")
	}
}

func handleLinks(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "browse":
		fs := flag.NewFlagSet("links browse", flag.ExitOnError)
		id := fs.String("id", "", "title id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("title id is required")
		}
		if err := runBrowser(ctx, client, baseURL, *id); err != nil {
			log.Fatalf("browse failed: %v", err)
		}
	default:
		log.Fatal("usage: anistream links browse -id <title-id>")
	}
}

// browser is the interactive episode list: filter, pagination, and a
// single expandable row, driven by stdin commands. Reloads are tagged
// with a generation number; a response that comes back after a newer
// reload started is dropped instead of overwriting fresher data.
type browser struct {
	mu    sync.Mutex
	gen   int
	title models.Title
	state *episodes.ListState
}

func runBrowser(ctx context.Context, client *http.Client, baseURL, id string) error {
	b := &browser{state: episodes.NewListState()}
	if err := b.reload(ctx, client, baseURL, id, false); err != nil {
		return err
	}
	b.render()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println(`commands: q <text> | page <n> | size <n> | <episode> | open <episode> <quality> | reload | quit`)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "q":
			query := ""
			if len(fields) > 1 {
				query = strings.Join(fields[1:], " ")
			}
			b.state.SetQuery(query)
		case "page":
			if len(fields) > 1 {
				if n, err := strconv.Atoi(fields[1]); err == nil {
					b.state.SetPage(n)
				}
			}
		case "size":
			if len(fields) > 1 {
				if n, err := strconv.Atoi(fields[1]); err == nil {
					b.state.SetPageSize(n)
				}
			}
		case "open":
			if len(fields) < 2 {
				fmt.Println("usage: open <episode> [quality]")
				continue
			}
			ep, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("episode must be a number")
				continue
			}
			quality := ""
			if len(fields) > 2 {
				quality = fields[2]
			}
			b.open(ctx, client, baseURL, ep, quality)
		case "reload":
			go func() {
				if err := b.reload(ctx, client, baseURL, id, true); err != nil {
					log.Printf("[browse] reload: %v", err)
				}
				b.render()
			}()
			continue
		default:
			if ep, err := strconv.Atoi(fields[0]); err == nil {
				b.state.Select(ep)
			} else {
				fmt.Println("unknown command:", fields[0])
			}
		}
		b.render()
	}
	return scanner.Err()
}

func (b *browser) reload(ctx context.Context, client *http.Client, baseURL, id string, keepView bool) error {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.mu.Unlock()

	b.state.BeginLoading()

	var t models.Title
	err := doJSON(ctx, client, http.MethodGet, baseURL+"/titles/"+url.PathEscape(id), nil, &t)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		// a newer reload superseded this one
		return nil
	}
	if err != nil {
		b.state.FinishLoading()
		return err
	}

	b.title = t
	if !keepView {
		b.state.SetLinks(t.Links)
	} else {
		page, _, size, _ := b.state.PageInfo()
		b.state.SetLinks(t.Links)
		b.state.SetPageSize(size)
		b.state.SetPage(page)
	}
	b.state.FinishLoading()
	return nil
}

func (b *browser) render() {
	b.mu.Lock()
	title := b.title.Title
	b.mu.Unlock()

	loading, timedOut := b.state.Loading()
	if loading {
		fmt.Println("loading...")
		return
	}
	if timedOut {
		fmt.Println("⚠ load timed out")
	}

	page, pageCount, size, total := b.state.PageInfo()
	fmt.Printf("\n%s — %d episodes (page %d/%d, size %d)\n", title, total, page, pageCount, size)

	expanded, hasExpanded := b.state.Expanded()
	for _, g := range b.state.Page() {
		marker := " "
		if hasExpanded && g.Episode == expanded {
			marker = "▾"
		}
		fmt.Printf("%s episode %d (%d links)\n", marker, g.Episode, len(g.Links))
		if hasExpanded && g.Episode == expanded {
			for _, l := range g.Links {
				fmt.Printf("    [%s] %s\n", l.Quality, l.URL)
			}
		}
	}
}

// open prints the download URL for one episode/quality and records the
// pick in the recent list. Recording failures are logged, not fatal.
func (b *browser) open(ctx context.Context, client *http.Client, baseURL string, episode int, quality string) {
	b.mu.Lock()
	title := b.title
	b.mu.Unlock()

	var picked *models.DownloadLink
	for i := range title.Links {
		l := title.Links[i]
		ep := l.Episode
		if ep <= 0 {
			ep = episodes.DefaultEpisode
		}
		if ep != episode {
			continue
		}
		if quality == "" || strings.EqualFold(l.Quality, quality) {
			picked = &l
			break
		}
	}
	if picked == nil {
		fmt.Println("no link for that episode/quality")
		return
	}

	fmt.Printf("▶ %s episode %d [%s]\n  %s\n", title.Title, episode, picked.Quality, picked.URL)

	payload := map[string]any{
		"title":   title.Title,
		"episode": episode,
		"quality": picked.Quality,
	}
	var resp map[string]any
	if err := doJSON(ctx, client, http.MethodPost, baseURL+"/client/recent", payload, &resp); err != nil {
		log.Printf("[browse] record recent: %v", err)
	}
}

func handleRecent(ctx context.Context, client *http.Client, baseURL, sub string) {
	switch sub {
	case "list", "":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/client/recent", nil, &resp); err != nil {
			log.Fatalf("recent failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: anistream recent list")
	}
}

func handleProgress(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "show":
		fs := flag.NewFlagSet("progress show", flag.ExitOnError)
		id := fs.String("id", "", "title id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("title id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/client/progress/"+url.PathEscape(*id), nil, &resp); err != nil {
			log.Fatalf("progress failed: %v", err)
		}
		printJSON(resp)
	case "set":
		fs := flag.NewFlagSet("progress set", flag.ExitOnError)
		id := fs.String("id", "", "title id")
		episode := fs.Int("episode", 1, "episode number")
		seconds := fs.Float64("seconds", 0, "watched seconds")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("title id is required")
		}

		payload := map[string]any{
			"title_id": *id,
			"episode":  *episode,
			"seconds":  *seconds,
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/client/progress", payload, &resp); err != nil {
			log.Fatalf("progress set failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: anistream progress <show|set>")
	}
}

func handleEvents(baseURL, sub string, args []string) {
	switch sub {
	case "listen":
		fs := flag.NewFlagSet("events listen", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:7070", "TCP notify server address")
		pretty := fs.Bool("pretty", true, "pretty print JSON events")
		_ = fs.Parse(args)
		for {
			if err := runEventTCP(*addr, *pretty); err != nil {
				log.Printf("[events] disconnected: %v", err)
			}
			time.Sleep(1 * time.Second)
		}
	case "subscribe":
		fs := flag.NewFlagSet("events subscribe", flag.ExitOnError)
		wsURL := fs.String("ws", "", "WebSocket URL (defaults to /ws on API host)")
		_ = fs.Parse(args)

		endpoint := *wsURL
		if endpoint == "" {
			var err error
			endpoint, err = websocketURL(baseURL, "/ws")
			if err != nil {
				log.Fatalf("ws url: %v", err)
			}
		}
		if err := runEventWebSocket(endpoint); err != nil {
			log.Fatalf("subscribe failed: %v", err)
		}
	default:
		log.Fatal("usage: anistream events <listen|subscribe>")
	}
}

func runEventTCP(addr string, pretty bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[events] connected to %s", addr)
	reader := bufio.NewScanner(conn)
	for reader.Scan() {
		line := reader.Bytes()
		if !pretty {
			fmt.Println(string(line))
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			fmt.Println(string(line))
			continue
		}
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
	if err := reader.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func runEventWebSocket(wsURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[events] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(string(msg))
	}
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}
	return nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("anistream <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth login|admin-login|logout|state")
	fmt.Println("  titles search|show|save|delete")
	fmt.Println("  links browse")
	fmt.Println("  recent list")
	fmt.Println("  progress show|set")
	fmt.Println("  events listen|subscribe")
}
