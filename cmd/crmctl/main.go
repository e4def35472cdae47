// crmctl is a small command line front end for the CRM client: it logs in,
// inspects the pipeline and exercises the deal and document operations
// against a running backend (or the local stub).
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ma-crm/crm-go/internal/auth"
	"github.com/ma-crm/crm-go/internal/config"
	"github.com/ma-crm/crm-go/internal/services"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load the configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.SessionFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.SessionFile = filepath.Join(home, ".config", "crmctl", "session.json")
		}
	}

	svcs, err := services.Initialize(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize services")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, svcs, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func run(ctx context.Context, svcs *services.Services, command string, args []string) error {
	switch command {
	case "login":
		return runLogin(ctx, svcs, args)
	case "logout":
		svcs.Auth.Logout()
		fmt.Println("logged out")
		return nil
	case "whoami":
		return runWhoami(svcs)
	case "deals":
		return runDeals(ctx, svcs, args)
	case "kanban":
		return runKanban(ctx, svcs)
	case "move-stage":
		return runMoveStage(ctx, svcs, args)
	case "upload":
		return runUpload(ctx, svcs, args)
	case "my-tasks":
		return runMyTasks(ctx, svcs)
	default:
		usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func runLogin(ctx context.Context, svcs *services.Services, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("both -email and -password are required")
	}

	if err := svcs.Auth.Login(ctx, auth.Credentials{Email: *email, Password: *password}); err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", svcs.Auth.User().FullName)
	return nil
}

func runWhoami(svcs *services.Services) error {
	user := svcs.Auth.User()
	if user == nil {
		return fmt.Errorf("not logged in")
	}
	fmt.Printf("%s <%s> (%s)\n", user.FullName, user.Email, user.Role)

	if tokens := svcs.Auth.Tokens(); tokens != nil {
		if expiry, err := tokens.AccessExpiresAt(); err == nil {
			fmt.Printf("access token expires %s\n", expiry.Format(time.RFC3339))
		}
	}
	return nil
}

func runDeals(ctx context.Context, svcs *services.Services, args []string) error {
	fs := flag.NewFlagSet("deals", flag.ExitOnError)
	search := fs.String("search", "", "search filter")
	_ = fs.Parse(args)

	params := url.Values{}
	if *search != "" {
		params.Set("search", *search)
	}

	page, err := svcs.Deals.List(ctx, params)
	if err != nil {
		return err
	}
	fmt.Printf("%d deals\n", page.Count)
	for _, deal := range page.Results {
		fmt.Printf("  #%d %s [%s] %d%%\n", deal.ID, deal.Title, deal.StageName, deal.Probability)
	}
	return nil
}

func runKanban(ctx context.Context, svcs *services.Services) error {
	columns, err := svcs.Deals.Kanban(ctx)
	if err != nil {
		return err
	}
	for _, col := range columns {
		fmt.Printf("%s (%d)\n", col.Stage.Name, col.Count)
		for _, deal := range col.Deals {
			fmt.Printf("  #%d %s - %s\n", deal.ID, deal.Title, deal.CompanyName)
		}
	}
	return nil
}

func runMoveStage(ctx context.Context, svcs *services.Services, args []string) error {
	fs := flag.NewFlagSet("move-stage", flag.ExitOnError)
	dealID := fs.Int("deal", 0, "deal id")
	stageID := fs.Int("stage", 0, "target stage id")
	updateProbability := fs.Bool("update-probability", false, "reset probability to the stage default")
	_ = fs.Parse(args)

	if *dealID == 0 || *stageID == 0 {
		return fmt.Errorf("both -deal and -stage are required")
	}

	deal, err := svcs.Deals.MoveStage(ctx, *dealID, *stageID, *updateProbability)
	if err != nil {
		return err
	}
	fmt.Printf("#%d %s is now in %s (%d%%)\n", deal.ID, deal.Title, deal.StageName, deal.Probability)
	return nil
}

func runUpload(ctx context.Context, svcs *services.Services, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	path := fs.String("file", "", "path of the file to upload")
	dealID := fs.Int("deal", 0, "deal to attach the document to")
	_ = fs.Parse(args)

	if *path == "" {
		return fmt.Errorf("-file is required")
	}

	file, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer file.Close()

	doc, err := svcs.Documents.Upload(ctx, filepath.Base(*path), file, *dealID)
	if err != nil {
		return err
	}
	fmt.Printf("uploaded document #%d (%s)\n", doc.ID, doc.Filename)
	return nil
}

func runMyTasks(ctx context.Context, svcs *services.Services) error {
	page, err := svcs.Tasks.MyTasks(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d tasks\n", page.Count)
	for _, task := range page.Results {
		fmt.Printf("  #%d [%s] %s\n", task.ID, task.Status, task.Title)
	}
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: crmctl <command> [flags]

commands:
  login -email <email> -password <password>
  logout
  whoami
  deals [-search <text>]
  kanban
  move-stage -deal <id> -stage <id> [-update-probability]
  upload -file <path> [-deal <id>]
  my-tasks`)
}
