// Command jobboard is the terminal client of the job board: it keeps the
// session, enforces route access and follows the notification feed.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
	"github.com/jobhub/jobboard/internal/core/service"
	"github.com/jobhub/jobboard/internal/pkg/config"
	"github.com/jobhub/jobboard/pkg/logger"
)

func main() {
	// ---- login / admin-login ----
	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginEmail := loginCmd.String("email", "", "account email")
	loginPass := loginCmd.String("password", "", "password (prompted when empty)")
	loginAdmin := loginCmd.Bool("admin", false, "use the admin realm")

	// ---- register ----
	registerCmd := flag.NewFlagSet("register", flag.ExitOnError)
	regName := registerCmd.String("name", "", "full name")
	regEmail := registerCmd.String("email", "", "account email")
	regPass := registerCmd.String("password", "", "password (prompted when empty)")
	regPhone := registerCmd.String("phone", "", "phone number (optional)")
	regRole := registerCmd.String("role", string(domain.RoleUser), "USER or EMPLOYER")

	// ---- verify ----
	verifyCmd := flag.NewFlagSet("verify", flag.ExitOnError)
	verifyEmail := verifyCmd.String("email", "", "account email")
	verifyCode := verifyCmd.String("code", "", "six-digit verification code")
	verifyAdmin := verifyCmd.Bool("admin", false, "use the admin realm")

	// ---- resend ----
	resendCmd := flag.NewFlagSet("resend", flag.ExitOnError)
	resendEmail := resendCmd.String("email", "", "account email")

	// ---- visit ----
	visitCmd := flag.NewFlagSet("visit", flag.ExitOnError)
	visitPath := visitCmd.String("path", domain.PathUserDashboard, "route to open")

	// ---- notifications ----
	notifCmd := flag.NewFlagSet("notifications", flag.ExitOnError)
	notifIDs := notifCmd.String("id", "", "notification id(s), comma separated")

	if len(os.Args) < 2 {
		usage()
		return
	}

	cfg := config.Load()
	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Output: os.Stderr, Service: "jobboard"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, os.Stdout)
	dieIf(err)
	defer a.Close()

	switch os.Args[1] {
	case "login", "admin-login":
		_ = loginCmd.Parse(os.Args[2:])
		realm := domain.NamespaceStandard
		if *loginAdmin || os.Args[1] == "admin-login" {
			realm = domain.NamespaceAdmin
		}
		dieIf(cmdLogin(ctx, a, realm, *loginEmail, *loginPass))

	case "register":
		_ = registerCmd.Parse(os.Args[2:])
		dieIf(cmdRegister(ctx, a, ports.RegisterInput{
			FullName: *regName,
			Email:    *regEmail,
			Password: *regPass,
			Phone:    *regPhone,
			Role:     domain.CanonicalRole(*regRole),
		}))

	case "verify":
		_ = verifyCmd.Parse(os.Args[2:])
		realm := domain.NamespaceStandard
		if *verifyAdmin {
			realm = domain.NamespaceAdmin
		}
		dieIf(cmdVerify(ctx, a, realm, *verifyEmail, *verifyCode))

	case "resend":
		_ = resendCmd.Parse(os.Args[2:])
		dieIf(required("email", *resendEmail))
		dieIf(a.auth.ResendOTP(ctx, *resendEmail))
		fmt.Println("Verification code sent to", *resendEmail)

	case "logout":
		dieIf(a.auth.Logout(ctx))

	case "whoami":
		dieIf(cmdWhoami(ctx, a))

	case "visit":
		_ = visitCmd.Parse(os.Args[2:])
		cmdVisit(ctx, a, *visitPath)

	case "notifications":
		if len(os.Args) < 3 {
			usage()
			return
		}
		_ = notifCmd.Parse(os.Args[3:])
		dieIf(cmdNotifications(ctx, a, os.Args[2], splitIDs(*notifIDs)))

	default:
		usage()
	}
}

// ============ Helper Functions ============

func usage() {
	fmt.Print(`jobboard commands:

  login         --email a@b.c [--password p] [--admin]
  admin-login   --email a@b.c [--password p]
  register      --name "Full Name" --email a@b.c [--password p] [--role USER|EMPLOYER] [--phone n]
  verify        --email a@b.c --code 123456 [--admin]
  resend        --email a@b.c
  logout
  whoami
  visit         --path /user/dashboard
  notifications list|unread|watch
  notifications read --id <ID[,ID...]>
  notifications read-all
  notifications delete --id <ID>

Environment:
  JOBBOARD_API_URL, JOBBOARD_PUSH_URL, JOBBOARD_STORAGE (file|redis|memory),
  JOBBOARD_SESSION_FILE, REDIS_ADDR, LOG_LEVEL

Examples:
  jobboard register --name "Nguyễn Văn A" --email a@example.com --role EMPLOYER
  jobboard verify --email a@example.com --code 123456
  jobboard visit --path /employer/dashboard
`)
}

func cmdLogin(ctx context.Context, a *app, realm domain.Namespace, email, password string) error {
	if err := required("email", email); err != nil {
		return err
	}
	if password == "" {
		p, err := promptSecret("Password: ")
		if err != nil {
			return err
		}
		password = p
	}

	rec, err := a.auth.Login(ctx, realm, email, password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", rec.Identity.DisplayName(), rec.Identity.Role)
	return nil
}

func cmdRegister(ctx context.Context, a *app, in ports.RegisterInput) error {
	if err := required("email", in.Email); err != nil {
		return err
	}
	if in.Password == "" {
		p, err := promptSecret("Password: ")
		if err != nil {
			return err
		}
		in.Password = p
	}

	res, err := a.auth.Register(ctx, in)
	if err != nil {
		return err
	}
	if res.Message != "" {
		fmt.Println(res.Message)
	}
	fmt.Printf("Next: jobboard verify --email %s --code <CODE>\n", in.Email)
	return nil
}

func cmdVerify(ctx context.Context, a *app, realm domain.Namespace, email, code string) error {
	if err := required("email", email); err != nil {
		return err
	}
	if err := required("code", code); err != nil {
		return err
	}

	rec, err := a.auth.VerifyOTP(ctx, realm, email, code)
	if err != nil {
		return err
	}
	if rec == nil {
		fmt.Println("Verified. Log in to continue.")
		return nil
	}
	fmt.Printf("Verified and logged in as %s (%s)\n", rec.Identity.DisplayName(), rec.Identity.Role)
	return nil
}

func cmdWhoami(ctx context.Context, a *app) error {
	rec, err := a.session(ctx)
	if err != nil {
		return err
	}
	claims, err := a.validator.ExtractIdentity(rec.Token)
	if err != nil {
		return err
	}

	fmt.Printf("%s <%s>\n", rec.Identity.DisplayName(), rec.Identity.Email)
	fmt.Printf("  id:        %s\n", rec.Identity.ID)
	fmt.Printf("  role:      %s\n", rec.Identity.Role)
	fmt.Printf("  realm:     %s\n", rec.Namespace)
	fmt.Printf("  token:     %s\n", claims.Format)
	if claims.ExpiresAt != nil {
		fmt.Printf("  expires:   %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("  landing:   %s\n", domain.LandingPage(rec.Identity.Role))
	return nil
}

func cmdVisit(ctx context.Context, a *app, path string) {
	if a.guard.Enforce(ctx, domain.LookupRoute(path), a.nav) {
		fmt.Println("✓", path)
	}
}

func cmdNotifications(ctx context.Context, a *app, sub string, ids []string) error {
	feed, err := a.feed(ctx)
	if err != nil {
		return err
	}

	if sub == "watch" {
		fmt.Println("Watching notifications, Ctrl+C to stop")
		var mu sync.Mutex
		last := -1
		feed.Subscribe(func(s service.FeedState) {
			mu.Lock()
			defer mu.Unlock()
			if s.Unread != last {
				last = s.Unread
				fmt.Fprintf(a.out, "%d unread\n", s.Unread)
			}
		})
		go feed.Listen(ctx, a.pushChannel())
		feed.Run(ctx)
		return nil
	}

	if err := feed.Refresh(ctx); err != nil {
		return err
	}

	switch sub {
	case "list":
		state := feed.Snapshot()
		for _, n := range state.Items {
			printNotification(a.out, n)
		}
		fmt.Printf("%d unread\n", state.Unread)
	case "unread":
		if err := feed.SyncUnreadCount(ctx); err != nil {
			return err
		}
		fmt.Println(feed.Snapshot().Unread)
	case "read":
		switch len(ids) {
		case 0:
			return errors.New("--id is required")
		case 1:
			return feed.MarkAsRead(ctx, ids[0])
		default:
			return feed.MarkManyAsRead(ctx, ids)
		}
	case "read-all":
		return feed.MarkAllAsRead(ctx)
	case "delete":
		if len(ids) != 1 {
			return errors.New("exactly one --id is required")
		}
		return feed.Delete(ctx, ids[0])
	default:
		usage()
	}
	return nil
}

func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	br := bufio.NewReader(os.Stdin)
	line, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func required(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("--%s is required", name)
	}
	return nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func dieIf(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", errorText(err))
		os.Exit(1)
	}
}

// errorText prefers the message a rejected call carried.
func errorText(err error) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
