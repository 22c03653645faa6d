package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/lunchorder/calendar"
	"github.com/yeremiapane/lunchorder/client"
	"github.com/yeremiapane/lunchorder/config"
	"github.com/yeremiapane/lunchorder/database"
	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/router"
	"github.com/yeremiapane/lunchorder/services"
	"github.com/yeremiapane/lunchorder/session"
	"github.com/yeremiapane/lunchorder/utils"
)

const usage = `usage: lunchorder [-quiet] <command> [flags]

commands:
  login -password <pw> <email|username>
  logout
  whoami
  week
  order  -date YYYY-MM-DD -restaurant ID [-text ...] [-notes ...] [-motd]
  change -date YYYY-MM-DD [-restaurant ID] [-text ...] [-notes ...] [-motd]
  cancel -date YYYY-MM-DD
  missing [-days N]
  admin availability [-restaurant ID -toggle WEEKDAY]
  admin motd [-weekday WEEKDAY] [-restaurant ID -text ...]
  admin menu [-id ID [-name ...] [-from YYYY-MM-DD] [-until YYYY-MM-DD|none] [-text ...]]
  admin email -date YYYY-MM-DD [-restaurant ID [-draft]]
  admin watch
  serve-stub
`

// app bundles what the client commands share.
type app struct {
	cfg  config.Config
	api  *client.Client
	sess *session.Session
	out  io.Writer
}

func main() {
	utils.InitLogger()
	cfg := config.Load()
	utils.SetLogLevel(cfg.LogLevel)

	quiet := flag.Bool("quiet", false, "discard log output")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if *quiet {
		utils.SilenceLoggers(io.Discard)
	}
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, args); err != nil {
		fmt.Fprintln(os.Stderr, client.DisplayMessage(err, err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, args []string) error {
	if args[0] == "serve-stub" {
		return serveStub(cfg)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami()
	}

	if !a.sess.IsAuthenticated() {
		return errors.New("not logged in, run: lunchorder login")
	}
	switch cmd {
	case "week":
		return a.week(ctx)
	case "order", "change":
		return a.order(ctx, cmd, rest)
	case "cancel":
		return a.cancel(ctx, rest)
	case "missing":
		return a.missing(ctx, rest)
	case "admin":
		if !a.sess.IsAdmin() {
			return errors.New("admin access required")
		}
		return a.admin(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	db, err := config.InitDB(cfg.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	store, err := session.NewGormStore(db)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	api := client.New(cfg.APIBaseURL,
		client.WithTimeout(cfg.APITimeout),
		client.WithRateLimit(cfg.APIRequestsPerSecond),
	)
	sess := session.New(api.Auth, api, store)
	if err := sess.Init(ctx); err != nil {
		return nil, err
	}
	return &app{cfg: cfg, api: api, sess: sess, out: os.Stdout}, nil
}

func serveStub(cfg config.Config) error {
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.StubDBPath)
	if err != nil {
		return fmt.Errorf("open stub database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.Seed(db, time.Now()); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	r := router.SetupRouter(db, cfg)
	utils.InfoLogger.Printf("Listening on port %s", cfg.StubPort)
	return r.Run(":" + cfg.StubPort)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	password := fs.String("password", os.Getenv("LUNCH_PASSWORD"), "account password (default $LUNCH_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || *password == "" {
		return errors.New("usage: lunchorder login -password <pw> <email|username>")
	}

	user, err := a.sess.Login(ctx, fs.Arg(0), *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.DisplayName(), user.Role)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if !a.sess.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	if err := a.sess.Logout(ctx); err != nil {
		// The local session is gone either way.
		utils.ErrorLogger.Warnf("logout: %v", err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *app) whoami() error {
	user, ok := a.sess.User()
	if !ok {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> role=%s\n", user.DisplayName(), user.Email, user.Role)
	return nil
}

func (a *app) week(ctx context.Context) error {
	user, _ := a.sess.User()
	store := services.NewOrderStore(a.api.Orders)
	week, err := services.NewWeekView(store, a.cfg.Workdays).Load(ctx, user)
	if err != nil {
		return err
	}

	if week.Birthday {
		fmt.Fprintf(a.out, "Happy birthday, %s!\n\n", user.FirstName)
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDAY\tRESTAURANT\tORDER\tSTATUS")
	for _, d := range week.Days {
		if d.Order == nil {
			fmt.Fprintf(w, "%s\t%s\t-\t-\t-\n", d.Date, d.Weekday)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Date, d.Weekday, d.Order.RestaurantName,
			strings.ReplaceAll(d.Order.OrderText, "\n", " / "), d.Order.Status.Label())
	}
	return w.Flush()
}

func (a *app) order(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	date := fs.String("date", "", "order date (YYYY-MM-DD)")
	restaurantID := fs.Uint("restaurant", 0, "restaurant id")
	text := fs.String("text", "", "order text")
	notes := fs.String("notes", "", "notes for the restaurant")
	motd := fs.Bool("motd", false, "append the restaurant's suggestion of the day")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *date == "" {
		return errors.New("-date is required")
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	store := services.NewOrderStore(a.api.Orders)
	if err := store.Load(ctx, []string{*date}); err != nil {
		return err
	}
	_, exists := store.Get(*date)
	switch {
	case cmd == "order" && exists:
		return fmt.Errorf("you already have an order for %s, use: lunchorder change", *date)
	case cmd == "change" && !exists:
		return fmt.Errorf("no order for %s, use: lunchorder order", *date)
	}

	resolver := services.NewAvailabilityResolver(a.api.Restaurants, a.api.Menus)
	editor := services.NewOrderEditor(resolver, store, a.api.Orders)
	avail, err := editor.Open(ctx, *date)
	if err != nil {
		return err
	}
	if avail.LoadFailed {
		return errors.New(editor.FormError())
	}
	if avail.Empty() {
		return fmt.Errorf("no restaurants deliver on %s", *date)
	}

	if set["restaurant"] {
		if err := editor.SelectRestaurant(uint(*restaurantID)); err != nil {
			printOptions(a.out, avail)
			return err
		}
	}
	if set["text"] {
		if err := editor.SetText(*text); err != nil {
			return err
		}
	}
	if *motd {
		if err := editor.ApplyMotd(); err != nil {
			return err
		}
	}
	if set["notes"] {
		if err := editor.SetNotes(*notes); err != nil {
			return err
		}
	}

	saved, err := editor.Submit(ctx)
	if err != nil {
		if msg := editor.FormError(); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	fmt.Fprintf(a.out, "Order #%d for %s: %s (%s)\n", saved.ID, saved.OrderDate, saved.OrderText, saved.Status.Label())
	return nil
}

func printOptions(w io.Writer, avail services.Availability) {
	fmt.Fprintf(w, "Restaurants on %s (%s):\n", avail.Date, avail.Weekday)
	for _, opt := range avail.Options {
		line := fmt.Sprintf("  %d  %s", opt.Restaurant.ID, opt.Restaurant.Name)
		if opt.MotdOption != nil {
			line += "  [today: " + *opt.MotdOption + "]"
		}
		fmt.Fprintln(w, line)
	}
}

func (a *app) cancel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ContinueOnError)
	date := fs.String("date", "", "order date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *date == "" {
		return errors.New("-date is required")
	}

	store := services.NewOrderStore(a.api.Orders)
	if err := store.Load(ctx, []string{*date}); err != nil {
		return err
	}
	order, err := services.NewOrderCanceller(a.api.Orders, store).Cancel(ctx, *date)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order #%d for %s cancelled\n", order.ID, order.OrderDate)
	return nil
}

func (a *app) missing(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("missing", flag.ContinueOnError)
	days := fs.Int("days", 7, "days ahead to check")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dates, err := a.api.Orders.MissingDays(ctx, *days)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		fmt.Fprintln(a.out, "No missing orders")
		return nil
	}
	for _, d := range dates {
		fmt.Fprintln(a.out, d)
	}
	return nil
}

func (a *app) admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: lunchorder admin availability|motd|menu|email|watch")
	}
	switch args[0] {
	case "availability":
		return a.adminAvailability(ctx, args[1:])
	case "motd":
		return a.adminMotd(ctx, args[1:])
	case "menu":
		return a.adminMenu(ctx, args[1:])
	case "email":
		return a.adminEmail(ctx, args[1:])
	case "watch":
		fmt.Fprintln(a.out, "Watching orders, Ctrl-C to stop")
		return a.api.Admin.WatchOrders(ctx, func(ev models.OrderEvent) {
			fmt.Fprintln(a.out, client.EventLine(ev))
		})
	default:
		return fmt.Errorf("unknown admin command %q", args[0])
	}
}

func (a *app) adminAvailability(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("availability", flag.ContinueOnError)
	restaurantID := fs.Uint("restaurant", 0, "restaurant id to change")
	toggle := fs.String("toggle", "", "weekday to flip (mon..fri or 0..4)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *toggle != "" && *restaurantID == 0 {
		return errors.New("-toggle needs -restaurant")
	}

	policy, err := services.ParseFailurePolicy(a.cfg.AvailabilityFailurePolicy)
	if err != nil {
		utils.ErrorLogger.Warn(err)
	}
	matrix := services.NewAvailabilityMatrix(a.api.Admin, policy)
	if err := matrix.Load(ctx); err != nil {
		return err
	}

	if *toggle != "" {
		wd, err := parseWeekday(*toggle)
		if err != nil {
			return err
		}
		if _, err := matrix.Toggle(ctx, uint(*restaurantID), wd); err != nil {
			return err
		}
	}

	restaurants, err := a.api.Restaurants.List(ctx, false)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprint(w, "ID\tRESTAURANT")
	for _, wd := range models.Workdays {
		fmt.Fprintf(w, "\t%s", wd.Short())
	}
	fmt.Fprintln(w)
	for _, r := range restaurants {
		cell := matrix.Cell(r.ID)
		fmt.Fprintf(w, "%d\t%s", r.ID, r.Name)
		for _, wd := range models.Workdays {
			mark := "."
			if cell.Available(wd) {
				mark = "x"
			}
			fmt.Fprintf(w, "\t%s", mark)
		}
		if cell.Kind != services.CellConfirmed {
			fmt.Fprintf(w, "\t(%s)", cell.Kind)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func (a *app) adminMotd(ctx context.Context, args []string) error {
	motd := services.NewMotdAdmin(a.api.Admin)
	fs := flag.NewFlagSet("motd", flag.ContinueOnError)
	weekdayFlag := fs.String("weekday", motd.DefaultWeekday().String(), "weekday (mon..fri or 0..4)")
	restaurantID := fs.Uint("restaurant", 0, "restaurant id to change")
	text := fs.String("text", "", "suggestion text; empty clears it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	weekday, err := parseWeekday(*weekdayFlag)
	if err != nil {
		return err
	}

	if *restaurantID != 0 {
		if err := motd.Save(ctx, weekday, uint(*restaurantID), *text); err != nil {
			return err
		}
	}

	rows, err := motd.Rows(ctx, weekday)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Suggestions for %s:\n", weekday)
	for _, row := range rows {
		option := "-"
		if row.MotdOption != nil {
			option = *row.MotdOption
		}
		fmt.Fprintf(a.out, "  %d  %s: %s\n", row.Restaurant.ID, row.Restaurant.Name, option)
	}
	return nil
}

// adminMenu lists menus, or edits one. Only the flags given are changed.
func (a *app) adminMenu(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("menu", flag.ContinueOnError)
	id := fs.Uint("id", 0, "menu id to edit")
	name := fs.String("name", "", "new name")
	from := fs.String("from", "", "first day (YYYY-MM-DD)")
	until := fs.String("until", "", `last day (YYYY-MM-DD), or "none" for no end date`)
	text := fs.String("text", "", "menu text")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *id == 0 {
		menus, err := a.api.Menus.List(ctx, models.MenuFilter{})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tRESTAURANT\tMENU\tFROM\tUNTIL")
		for _, m := range menus {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.RestaurantName, m.Name, m.AvailableFrom, m.AvailableUntil)
		}
		return w.Flush()
	}

	if *from != "" {
		if _, err := calendar.ParseDate(*from); err != nil {
			return err
		}
	}
	if *until != "" && *until != "none" {
		if _, err := calendar.ParseDate(*until); err != nil {
			return err
		}
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	menu, err := services.NewMenuAdmin(a.api.Menus).Edit(ctx, uint(*id), func(f *models.MenuForm) {
		if set["name"] {
			f.Name = *name
		}
		if set["from"] {
			f.AvailableFrom = *from
		}
		if set["until"] {
			f.SpecifyEndDate = *until != "" && *until != "none"
			f.AvailableUntil = ""
			if f.SpecifyEndDate {
				f.AvailableUntil = *until
			}
		}
		if set["text"] {
			f.MenuText = *text
		}
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Menu %d %q: %s to %s\n", menu.ID, menu.Name, menu.AvailableFrom, menu.AvailableUntil)
	return nil
}

func (a *app) adminEmail(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("email", flag.ContinueOnError)
	date := fs.String("date", "", "order date (YYYY-MM-DD)")
	restaurantID := fs.Uint("restaurant", 0, "send to one restaurant only")
	draft := fs.Bool("draft", false, "print the summary instead of sending it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *date == "" {
		*date = calendar.FormatDate(time.Now())
	}

	dispatcher := services.NewEmailDispatcher(a.api.Admin)
	if *restaurantID == 0 {
		res, err := dispatcher.SendAll(ctx, *date)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, res.Message)
		for _, s := range res.Skipped {
			fmt.Fprintf(a.out, "  skipped %s: %s\n", s.Name, s.Reason)
		}
		return nil
	}

	grouped, err := dispatcher.Orders(ctx, *date)
	if err != nil {
		return err
	}
	var target *models.Restaurant
	for i := range grouped.Groups {
		if grouped.Groups[i].Restaurant.ID == uint(*restaurantID) {
			target = &grouped.Groups[i].Restaurant
		}
	}
	if target == nil {
		return fmt.Errorf("no orders for restaurant %d on %s", *restaurantID, *date)
	}

	if *draft {
		d, err := dispatcher.Draft(ctx, *date, *target)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "To: %s\nSubject: %s\n\n%s\n", d.To, d.Subject, d.Body)
		return nil
	}
	msg, err := dispatcher.Send(ctx, *date, *target)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// parseWeekday accepts 0..4 or an English day name ("mon", "Tuesday").
func parseWeekday(s string) (models.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if wd := models.Weekday(n); wd.Valid() {
			return wd, nil
		}
		return 0, fmt.Errorf("weekday %d out of range 0..4", n)
	}
	for _, wd := range models.Workdays {
		if strings.HasPrefix(s, strings.ToLower(wd.String())) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
