// catalog-filter：命令行参考客户端；加载目录、按顺序应用控件切换并输出可见条目、徽标与可见标记
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resource-map/internal/catalog"
	"resource-map/internal/filter"
	"resource-map/internal/geocode"
	"resource-map/internal/logger"
	"resource-map/internal/mapsync"
	"resource-map/internal/page"
	"resource-map/internal/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type options struct {
	catalogPath  string
	clicks       []string
	features     []string
	categories   []string
	requirements []string
	geocode      bool
	timeout      time.Duration
	format       string

	// 测试注入；为空时按环境变量选择
	geocoder geocode.Geocoder
}

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	logger.Setup()
	if err := newRootCommand(&options{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog-filter",
		Short: "Filter a resource catalog by toggles and report visible map markers",
		Long: `Load a resource catalog, apply toggle clicks in order and print the
visible entries, the active category badges and the visible map markers.

--click toggles are applied first, in the order given, followed by
--category, --feature and --requirement toggles.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.catalogPath, "catalog", filepath.Join("data", "catalog.yaml"), "catalog YAML file")
	f.StringArrayVar(&opts.clicks, "click", nil, "toggle control id to click (repeatable)")
	f.StringArrayVar(&opts.categories, "category", nil, "category tag to toggle (repeatable)")
	f.StringArrayVar(&opts.features, "feature", nil, "feature tag to toggle (repeatable)")
	f.StringArrayVar(&opts.requirements, "requirement", nil, "requirement tag to toggle (repeatable)")
	f.BoolVar(&opts.geocode, "geocode", false, "resolve address-only map points before filtering")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall geocoding deadline")
	f.StringVar(&opts.format, "format", "text", "output format: text|json")
	return cmd
}

type report struct {
	City    string               `json:"city"`
	Visible []visibleEntry       `json:"visible"`
	Badges  []filter.Badge       `json:"badges"`
	Markers []string             `json:"markers"`
	Points  map[string]string    `json:"points"`
	Unknown []string             `json:"unknown_clicks,omitempty"`
	Center  *catalog.Coordinates `json:"center,omitempty"`
	Zoom    int                  `json:"zoom"`
}

type visibleEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MapPoint string `json:"map_point,omitempty"`
}

func run(ctx context.Context, out io.Writer, opts *options) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q", opts.format)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cat, err := catalog.LoadFile(opts.catalogPath)
	if err != nil {
		return err
	}
	reg := mapsync.NewRegistry(catalog.PopupHTML)
	p := page.New(cat, reg)

	var g geocode.Geocoder
	if opts.geocode {
		g = opts.geocoder
		if g == nil {
			g, _ = utils.GeocoderFromEnv(utils.OpenRedisFromEnv())
		}
		if g == nil {
			return errors.New("--geocode needs GOOGLE_MAPS_KEY or AMAP_SERVER_KEY")
		}
	}
	resolver := geocode.NewResolver(g, utils.EnvInt("GEOCODE_CONCURRENCY", 4))
	gctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	p.InitMap(gctx, resolver).Wait()

	rep := report{City: cat.City, Points: map[string]string{}}
	for _, id := range opts.clicks {
		if _, ok := p.Click(catalog.NormalizeTag(id)); !ok {
			rep.Unknown = append(rep.Unknown, id)
		}
	}
	for _, id := range opts.categories {
		p.Toggle(catalog.KindCategory, catalog.NormalizeTag(id))
	}
	for _, id := range opts.features {
		p.Toggle(catalog.KindFeature, catalog.NormalizeTag(id))
	}
	for _, id := range opts.requirements {
		p.Toggle(catalog.KindRequirement, catalog.NormalizeTag(id))
	}
	res := p.Refresh()

	rep.Visible = make([]visibleEntry, 0, len(res.Visible))
	for _, e := range res.Visible {
		rep.Visible = append(rep.Visible, visibleEntry{ID: e.ID, Name: e.Name, MapPoint: e.MapPoint})
	}
	rep.Badges = res.Badges
	if rep.Badges == nil {
		rep.Badges = []filter.Badge{}
	}
	rep.Markers = reg.Visible()
	for id, s := range resolver.Tracker().Snapshot() {
		rep.Points[id] = s.String()
	}
	if c, zoom, ok := p.Center(); ok {
		rep.Center = &c
		rep.Zoom = zoom
	} else {
		rep.Zoom = mapsync.DefaultZoom
	}

	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return writeText(out, rep)
}

func writeText(out io.Writer, rep report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "city: %s\n", rep.City)
	fmt.Fprintf(&b, "visible (%d):\n", len(rep.Visible))
	for _, e := range rep.Visible {
		fmt.Fprintf(&b, "  %s\t%s\n", e.ID, e.Name)
	}
	labels := make([]string, 0, len(rep.Badges))
	for _, bd := range rep.Badges {
		labels = append(labels, bd.Label)
	}
	fmt.Fprintf(&b, "badges: %s\n", strings.Join(labels, ", "))
	fmt.Fprintf(&b, "markers: %s\n", strings.Join(rep.Markers, ", "))
	if len(rep.Unknown) > 0 {
		fmt.Fprintf(&b, "unknown clicks: %s\n", strings.Join(rep.Unknown, ", "))
	}
	_, err := io.WriteString(out, b.String())
	return err
}
