// Command covergen is a terminal front end for the cover server: it browses
// the preset catalog and requests new covers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"coverstudio/internal/editor"
	"coverstudio/internal/infra"
	"coverstudio/internal/middleware"
	"coverstudio/pkg/client"
)

const usage = `usage: covergen <command> [flags]

commands:
  presets   list the cover catalog (-tab, -q, -id)
  generate  request a new cover from the server
  health    check that the server is up`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		exitWithError(errors.New(usage))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "presets":
		err = runPresets(os.Args[2:])
	case "generate":
		err = runGenerate(ctx, os.Args[2:])
	case "health":
		err = runHealth(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Println(usage)
	default:
		err = fmt.Errorf("unknown command %q\n%s", os.Args[1], usage)
	}
	if err != nil {
		exitWithError(err)
	}
}

func runPresets(args []string) error {
	fs := flag.NewFlagSet("presets", flag.ExitOnError)
	tab := fs.String("tab", editor.TabAll, "category tab to show")
	query := fs.String("q", "", "case-insensitive label search")
	id := fs.String("id", "", "show a single cover by ID")
	_ = fs.Parse(args)

	presets, err := editor.LoadPresets()
	if err != nil {
		return err
	}
	gallery := editor.NewGallery(presets)

	if *id != "" {
		item, ok := gallery.Lookup(strings.TrimSpace(*id))
		if !ok {
			return fmt.Errorf("%w: %q", editor.ErrNotInCatalog, *id)
		}
		fmt.Printf("id:       %s\nlabel:    %s\ncategory: %s\nref:      %s\n",
			item.ID, item.Label, editor.TabLabel(item.Category), item.Ref)
		return nil
	}

	labels := make([]string, 0, len(gallery.Tabs()))
	for _, t := range gallery.Tabs() {
		labels = append(labels, editor.TabLabel(t))
	}
	fmt.Printf("tabs: %s\n", strings.Join(labels, " | "))

	n := 0
	for item := range gallery.Filter(*tab, *query) {
		fmt.Printf("%-24s %-12s %s\n", item.ID, editor.TabLabel(item.Category), item.Label)
		n++
	}
	if n == 0 {
		fmt.Println("no covers match")
	}
	return nil
}

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		server  = fs.String("server", serverURL(), "cover server base URL")
		title   = fs.String("title", "", "event title")
		desc    = fs.String("desc", "", "short description (max 100 characters)")
		occ     = fs.String("occasion", "", "occasion, e.g. Birthday")
		vibe    = fs.String("vibe", "", "vibe, e.g. Elegant")
		style   = fs.String("style", "", "visual style, e.g. Watercolor")
		colors  = fs.String("colors", "", "comma separated dominant colours (max 5)")
		layout  = fs.String("layout", "", "layout or composition")
		light   = fs.String("lighting", "", "lighting")
		texture = fs.String("texture", "", "texture or finish")
		typo    = fs.String("typography", "", `typography direction, "no text" disables text`)
		noText  = fs.Bool("no-text", false, "do not render the title in the image")
		extra   = fs.String("extra", "", "extra details")
		out     = fs.String("out", "", "write the generated cover to this file")
		thumb   = fs.String("thumb", "", "also write a square PNG thumbnail to this file")
		archive = fs.String("zip", "", "also export the session's generated covers to this zip file")
		timeout = fs.Duration("timeout", 3*time.Minute, "overall request timeout")
		verbose = fs.Bool("v", false, "log generator state transitions")
		rid     = fs.String("request-id", "", "correlation ID sent as "+middleware.RequestIDHeader)
	)
	_ = fs.Parse(args)

	req := client.CoverRequest{
		EventTitle:   *title,
		Description:  *desc,
		Occasion:     *occ,
		Vibe:         *vibe,
		Style:        *style,
		Colors:       splitList(*colors),
		Layout:       *layout,
		Lighting:     *light,
		Texture:      *texture,
		Typography:   *typo,
		IncludeText:  client.Bool(!*noText),
		ExtraDetails: *extra,
	}

	var opts []client.RequestOption
	if *rid != "" {
		opts = append(opts, client.WithHeader(middleware.RequestIDHeader, *rid))
	}
	session, err := editor.NewSession(client.New(*server, opts...), editor.SessionOptions{})
	if err != nil {
		return err
	}
	defer session.Close()

	if *verbose {
		logger := infra.NewLogger("development").With().Str("cmd", "covergen").Logger()
		session.Generator.OnTransition(func(t editor.Transition) {
			ev := logger.Debug()
			if t.Err != nil {
				ev = logger.Warn().Err(t.Err)
			}
			ev.Stringer("from", t.From).Stringer("to", t.To).Msg("generator")
		})
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	item, err := session.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("generate cover: %w", err)
	}
	fmt.Printf("generated %s (%s)\n", item.ID, item.Label)

	data, handle, err := session.SelectedImage(ctx)
	if err != nil {
		return err
	}
	if *out != "" {
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			return fmt.Errorf("write cover: %w", err)
		}
		fmt.Printf("wrote %s (%s, %d bytes)\n", *out, handle.MIME, handle.Size)
	}
	if *thumb != "" {
		tile, err := editor.Thumbnail(data, editor.DefaultThumbnailSize)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*thumb, tile, 0o644); err != nil {
			return fmt.Errorf("write thumbnail: %w", err)
		}
		fmt.Printf("wrote %s\n", *thumb)
	}
	if *archive != "" {
		f, err := os.Create(*archive)
		if err != nil {
			return fmt.Errorf("create archive: %w", err)
		}
		n, err := session.ExportGenerated(ctx, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("export covers: %w", err)
		}
		fmt.Printf("wrote %s (%d covers)\n", *archive, n)
	}
	return nil
}

func runHealth(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	server := fs.String("server", serverURL(), "cover server base URL")
	_ = fs.Parse(args)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.New(*server).Health(ctx); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func serverURL() string {
	if v := strings.TrimSpace(os.Getenv("COVER_SERVER_URL")); v != "" {
		return v
	}
	return "http://localhost:5179"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
