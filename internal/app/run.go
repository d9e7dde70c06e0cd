package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/hitoshi/tosho/internal/announcement"
	"github.com/hitoshi/tosho/internal/attendance"
	"github.com/hitoshi/tosho/internal/config"
	"github.com/hitoshi/tosho/internal/loan"
	"github.com/hitoshi/tosho/internal/logger"
	"github.com/hitoshi/tosho/internal/model"
	"github.com/hitoshi/tosho/internal/storage"
)

// Init はアプリケーションの初期化を行う。
// カレントディレクトリに.envがあれば読み込み、環境変数からConfigを
// 読み込んでJSON構造化ログをセットアップする。ログは標準エラーに出力し、
// 標準出力はコマンド結果の表示に確保する。
func Init() (*config.Config, error) {
	// .env は任意。存在しなければ何もしない。
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.SetupDefault(nil, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応する処理を実行する。
// wにはコマンド結果の出力先、argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// help と version は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHelp {
		printUsage(w)
		return nil
	}

	cfg, err := Init()
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if cmd == CommandVersion {
		fmt.Fprintf(w, "%s %s\n", cfg.AppName, cfg.AppVersion)
		return nil
	}

	store, err := storage.NewFileStorage(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	client := NewClient(cfg, store, slog.Default())
	defer client.Close()

	client.OnSessionExpired(func() {
		fmt.Fprintln(w, "Session expired. Please login again.")
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.APITimeout+10*time.Second)
	defer cancel()

	slog.Info("starting command",
		slog.String("command", string(cmd)),
		slog.String("base_url", cfg.APIBaseURL),
	)

	switch cmd {
	case CommandLogin:
		return runLogin(ctx, client, w, args[1:])
	case CommandLogout:
		return runLogout(ctx, client, w)
	case CommandBooks:
		return runBooks(ctx, client, w, args[1:])
	case CommandBook:
		return runBook(ctx, client, w, args[1:])
	case CommandLoans:
		return runLoans(ctx, client, w)
	case CommandBorrow:
		return runBorrow(ctx, client, w, args[1:])
	case CommandAnnouncements:
		return runAnnouncements(ctx, client, w)
	case CommandAttendance:
		return runAttendance(ctx, client, w, args[1:])
	case CommandWhoami:
		return runWhoami(ctx, client, w)
	default:
		printUsage(w)
		return nil
	}
}

// printUsage は使い方を出力する。
func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: tosho <command> [arguments]

Commands:
  login <email> <password>     log in and save the session
  logout                       destroy the session and clear credentials
  books [query]                list books, optionally filtered
  book <id>                    show book details
  loans                        list your loan requests
  borrow <book-id>             request to borrow a book
  announcements                list library announcements
  attendance [check_in|check_out]
                               show or submit today's attendance
  whoami                       show the logged-in user
  version                      show version
`)
}

func runLogin(ctx context.Context, c *Client, w io.Writer, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: login <email> <password>")
	}

	err := c.Session.Login(ctx, model.LoginCredentials{
		Email:    args[0],
		Password: args[1],
	})
	if err != nil {
		c.Toasts.Enqueue(model.ToastError, c.Session.Err())
		fmt.Fprintf(w, "Login failed: %s\n", c.Session.Err())
		return err
	}

	sess := c.Session.Session()
	fmt.Fprintf(w, "Logged in as %s <%s>\n", sess.User.Name, sess.User.Email)
	return nil
}

func runLogout(ctx context.Context, c *Client, w io.Writer) error {
	c.Session.Logout(ctx)
	c.ResetStores()
	fmt.Fprintln(w, "Logged out.")
	return nil
}

func runBooks(ctx context.Context, c *Client, w io.Writer, args []string) error {
	var err error
	if len(args) > 0 {
		err = c.Catalog.Search(ctx, args[0])
	} else {
		err = c.Catalog.FetchAll(ctx)
	}
	if err != nil {
		fmt.Fprintf(w, "Failed to fetch books: %s\n", c.Catalog.Err())
		return err
	}

	books := c.Catalog.Books()
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found.")
		return nil
	}

	for _, b := range books {
		availability := "unavailable"
		if b.IsAvailable() {
			availability = fmt.Sprintf("%d/%d available", b.AvailableStock, b.TotalStock)
		}
		fmt.Fprintf(w, "%4d  %-40s  %-24s  %s\n", b.ID, b.Title, b.Author, availability)
	}
	return nil
}

func runBook(ctx context.Context, c *Client, w io.Writer, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: book <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid book id: %q", args[0])
	}

	book, err := c.Catalog.FetchByID(ctx, id)
	if err != nil {
		fmt.Fprintf(w, "Failed to fetch book: %s\n", c.Catalog.Err())
		return err
	}

	fmt.Fprintf(w, "Title:     %s\n", book.Title)
	fmt.Fprintf(w, "Author:    %s\n", book.Author)
	fmt.Fprintf(w, "Publisher: %s (%s)\n", book.Publisher, book.YearPublished)
	if book.ISBN != "" {
		fmt.Fprintf(w, "ISBN:      %s\n", book.ISBN)
	}
	fmt.Fprintf(w, "Stock:     %d/%d available\n", book.AvailableStock, book.TotalStock)
	if book.Description != "" {
		fmt.Fprintf(w, "\n%s\n", book.Description)
	}
	return nil
}

func runLoans(ctx context.Context, c *Client, w io.Writer) error {
	if err := c.Loans.FetchAll(ctx); err != nil {
		fmt.Fprintf(w, "Failed to fetch loan requests: %s\n", c.Loans.Err())
		return err
	}

	requests := c.Loans.Requests()
	if len(requests) == 0 {
		fmt.Fprintln(w, "No loan requests.")
		return nil
	}

	now := time.Now()
	for _, r := range requests {
		line := fmt.Sprintf("%4d  %-40s  %s", r.ID, r.Book.Title, loan.StatusLabel(r.Status))
		if days, ok := loan.DaysUntilDue(&r, now); ok && !r.Loan.IsReturned {
			switch {
			case days < 0:
				line += fmt.Sprintf("  (terlambat %d hari)", -days)
			default:
				line += fmt.Sprintf("  (jatuh tempo %d hari lagi)", days)
			}
		}
		fmt.Fprintln(w, line)
	}

	if overdue := c.Loans.Overdue(); len(overdue) > 0 {
		fmt.Fprintf(w, "\n%d loan(s) overdue.\n", len(overdue))
	}
	return nil
}

func runBorrow(ctx context.Context, c *Client, w io.Writer, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: borrow <book-id>")
	}
	bookID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid book id: %q", args[0])
	}

	created, err := c.Loans.Create(ctx, model.CreateLoanRequest{
		BookID:      bookID,
		RequestDate: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		c.Toasts.Enqueue(model.ToastError, c.Loans.Err())
		fmt.Fprintf(w, "Failed to create loan request: %s\n", c.Loans.Err())
		return err
	}

	c.Toasts.Enqueue(model.ToastSuccess, "Loan request created")
	fmt.Fprintf(w, "Loan request #%d created for %q (%s)\n",
		created.ID, created.Book.Title, loan.StatusLabel(created.Status))
	return nil
}

func runAnnouncements(ctx context.Context, c *Client, w io.Writer) error {
	if err := c.Announcements.FetchAll(ctx); err != nil {
		fmt.Fprintf(w, "Failed to fetch announcements: %s\n", c.Announcements.Err())
		return err
	}

	items := c.Announcements.Announcements()
	if len(items) == 0 {
		fmt.Fprintln(w, "No announcements.")
		return nil
	}

	now := time.Now()
	for i := range items {
		a := &items[i]
		fmt.Fprintf(w, "%s (%s)\n", a.Subject, announcement.RelativeTime(a.Date, now))
		fmt.Fprintf(w, "  %s\n", announcement.Excerpt(a, 120))
	}
	return nil
}

func runAttendance(ctx context.Context, c *Client, w io.Writer, args []string) error {
	if len(args) > 0 {
		typ := model.AttendanceType(args[0])
		if typ != model.AttendanceCheckIn && typ != model.AttendanceCheckOut {
			return fmt.Errorf("usage: attendance [check_in|check_out]")
		}
		today, err := c.Attendance.Submit(ctx, typ)
		if err != nil {
			c.Toasts.Enqueue(model.ToastError, c.Attendance.Err())
			fmt.Fprintf(w, "Failed to submit attendance: %s\n", c.Attendance.Err())
			return err
		}
		fmt.Fprintf(w, "Recorded %s at %s\n", typ, attendance.FormatTime(timeFor(typ, today)))
		return nil
	}

	if err := c.Attendance.FetchToday(ctx); err != nil {
		fmt.Fprintf(w, "Failed to fetch attendance: %s\n", c.Attendance.Err())
		return err
	}

	today := c.Attendance.Today()
	if today == nil {
		fmt.Fprintln(w, "No attendance record for today.")
		return nil
	}
	fmt.Fprintf(w, "Check-in:  %s\n", attendance.FormatTime(today.CheckIn))
	fmt.Fprintf(w, "Check-out: %s\n", attendance.FormatTime(today.CheckOut))
	return nil
}

// timeFor は打刻種別に対応する時刻フィールドを返す。
func timeFor(typ model.AttendanceType, today *model.TodayAttendance) string {
	if typ == model.AttendanceCheckOut {
		return today.CheckOut
	}
	return today.CheckIn
}

func runWhoami(ctx context.Context, c *Client, w io.Writer) error {
	if !c.Session.IsAuthenticated() {
		fmt.Fprintln(w, "Not logged in.")
		return nil
	}

	user, err := c.Session.FetchCurrentUser(ctx)
	if err != nil {
		fmt.Fprintf(w, "Failed to fetch user: %s\n", c.Session.Err())
		return err
	}

	fmt.Fprintf(w, "%s <%s> (%s)\n", user.Name, user.Email, user.Role)
	return nil
}
