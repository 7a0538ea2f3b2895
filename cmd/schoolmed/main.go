package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DinhTQSE/schoolmed-client/authapi"
	"github.com/DinhTQSE/schoolmed-client/fetch"
	"github.com/DinhTQSE/schoolmed-client/health"
	"github.com/DinhTQSE/schoolmed-client/httpauth"
	"github.com/DinhTQSE/schoolmed-client/internal/config"
	"github.com/DinhTQSE/schoolmed-client/session"
	"github.com/DinhTQSE/schoolmed-client/token"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	c := config.New()

	if len(args) == 0 {
		displayAppname(c.GetAppName())
		usage()
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := buildApp(c)
	if err != nil {
		return err
	}

	switch args[0] {
	case "login":
		return cmdLogin(ctx, app, args[1:])
	case "logout":
		app.manager.Logout()
		fmt.Println("Logged out.")
		return nil
	case "register":
		return cmdRegister(ctx, app, args[1:])
	case "whoami":
		return cmdWhoami(ctx, app)
	case "declarations":
		return cmdList(ctx, app, func(ctx context.Context) (any, error) {
			rows, err := app.health.HealthDeclarations(ctx)
			return rows, err
		})
	case "medications":
		return cmdList(ctx, app, func(ctx context.Context) (any, error) {
			rows, err := app.health.MedicationRequests(ctx)
			return rows, err
		})
	case "vaccinations":
		return cmdList(ctx, app, func(ctx context.Context) (any, error) {
			rows, err := app.health.VaccinationRecords(ctx)
			return rows, err
		})
	case "checkups":
		return cmdList(ctx, app, func(ctx context.Context) (any, error) {
			rows, err := app.health.CheckupSchedules(ctx)
			return rows, err
		})
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

type app struct {
	manager *session.Manager
	health  *health.Service
}

func buildApp(c config.Config) (*app, error) {
	store, err := session.NewFileStore(c.GetStateFile())
	if err != nil {
		return nil, err
	}

	api := authapi.New(c.GetAPIBaseURL(), authapi.WithLogger(log.Logger))

	manager, err := session.NewManager(store, api,
		session.WithLogger(log.Logger),
		session.WithOnSessionExpired(func() {
			fmt.Fprintln(os.Stderr, "Session expired. Run `schoolmed login` to sign in again.")
		}),
	)
	if err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(c.GetHTTPTimeout())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.GetHTTPTimeout(), err)
	}

	factory, err := httpauth.New(store,
		httpauth.WithTimeout(timeout),
		httpauth.WithLogger(log.Logger),
		httpauth.WithOnUnauthorized(manager.SessionExpired),
	)
	if err != nil {
		return nil, err
	}

	fetcher, err := fetch.NewFetcher(factory, fetch.WithLogger(log.Logger))
	if err != nil {
		return nil, err
	}

	healthSvc, err := health.NewService(fetcher, manager, c.GetAPIBaseURL(), health.WithLogger(log.Logger))
	if err != nil {
		return nil, err
	}

	return &app{manager: manager, health: healthSvc}, nil
}

func cmdLogin(ctx context.Context, app *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		return errors.New("login: -username is required")
	}
	if *password == "" {
		fmt.Print("Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		*password = strings.TrimSpace(line)
	}

	result := app.manager.Login(ctx, *username, *password)
	if !result.Success {
		fmt.Println(result.Message)
		return errors.New("login failed")
	}

	fmt.Printf("Welcome, %s (%s)\n", result.User.DisplayName(), result.User.PrimaryRole())
	return nil
}

func cmdRegister(ctx context.Context, app *app, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "account username")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fullName := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number (optional)")
	role := fs.String("role", "", "role identifier (defaults to student)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result := app.manager.Register(ctx, session.RegisterRequest{
		Username: *username,
		Email:    *email,
		Password: *password,
		FullName: *fullName,
		Phone:    *phone,
		Role:     *role,
	})
	fmt.Println(result.Message)
	if !result.Success {
		return errors.New("registration failed")
	}
	return nil
}

func cmdWhoami(ctx context.Context, app *app) error {
	snap := app.manager.Initialize(ctx)
	if !snap.Authenticated() {
		fmt.Println("Not logged in.")
		return nil
	}

	user := snap.User
	fmt.Printf("%s <%s>\n", user.DisplayName(), user.Email)
	fmt.Printf("  username: %s\n", user.Username)
	fmt.Printf("  code:     %s\n", user.UserCode)
	fmt.Printf("  role:     %s\n", user.PrimaryRole())

	if claims, err := token.Inspect(snap.Token); err == nil && claims.ExpiresAt != nil {
		fmt.Printf("  token expires: %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func cmdList(ctx context.Context, app *app, load func(context.Context) (any, error)) error {
	snap := app.manager.Initialize(ctx)
	if !snap.Authenticated() {
		return errors.New("not logged in; run `schoolmed login` first")
	}

	rows, err := load(ctx)
	if err != nil {
		if errors.Is(err, health.ErrAccessDenied) {
			fmt.Println("Your role does not have access to this resource.")
			return nil
		}
		return err
	}

	printRows(rows)
	return nil
}

func printRows(rows any) {
	switch list := rows.(type) {
	case []health.HealthDeclaration:
		for _, d := range list {
			fmt.Printf("#%d %s [%s] %s - %s\n", d.ID, d.StudentName, d.StudentCode, strings.Join(d.Symptoms, ", "), d.Status)
		}
		fmt.Printf("%d declaration(s)\n", len(list))
	case []health.MedicationRequest:
		for _, m := range list {
			fmt.Printf("#%d %s: %s %s (%s) - %s\n", m.ID, m.StudentCode, m.Medication, m.Dosage, m.Schedule, m.Status)
		}
		fmt.Printf("%d request(s)\n", len(list))
	case []health.VaccinationRecord:
		for _, v := range list {
			state := "scheduled"
			if v.Administered {
				state = "administered"
			}
			fmt.Printf("#%d %s: %s dose %d - %s\n", v.ID, v.StudentCode, v.Vaccine, v.DoseNumber, state)
		}
		fmt.Printf("%d record(s)\n", len(list))
	case []health.CheckupSchedule:
		for _, c := range list {
			fmt.Printf("#%d %s (%s) at %s - %s\n", c.ID, c.Title, c.TargetGroup, c.Location, c.ScheduledAt.Local().Format(time.RFC1123))
		}
		fmt.Printf("%d checkup(s)\n", len(list))
	}
}

func usage() {
	fmt.Println(`Usage: schoolmed <command> [flags]

Commands:
  login          sign in (-username, -password)
  logout         clear the stored session
  register       create an account (-username, -email, -password, -name, -phone, -role)
  whoami         show the current session
  declarations   list health declarations
  medications    list medication requests
  vaccinations   list vaccination records
  checkups       list checkup schedules`)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
