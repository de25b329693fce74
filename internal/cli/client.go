package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"smartquiz/internal/app"
	"smartquiz/internal/config"
	"smartquiz/internal/domain"
	"smartquiz/internal/infra/memory"
	redisinfra "smartquiz/internal/infra/redis"
	"smartquiz/internal/infra/rest"
	"smartquiz/internal/logger"
)

// NewClientCmd builds the interactive terminal client.
func NewClientCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "client",
		Short: "Run the interactive quiz client",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd.Context(), *configPath)
		},
	}
}

// client drives the session state machine from terminal input. All rendering
// lives here; every state change goes through a session transition.
type client struct {
	session *app.Session
	baseURL string
	in      *bufio.Scanner
}

func runClient(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(firstNonEmpty(logLevel, cfg.Log.Level, "warn"), firstNonEmpty(logFormat, cfg.Log.Format))

	baseURL := firstNonEmpty(cfg.Client.APIBaseURL, "http://localhost:8080")
	gateway := rest.NewGateway(baseURL)

	var cache app.ScoreCache = memory.NewScoreCache()
	if cfg.Redis.Addr != "" {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = redisinfra.NewScoreCache(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	}

	session := app.NewSession(gateway, cache, app.Options{
		MinSplash:   config.TTLDuration(cfg.Client.SplashFloor, app.DefaultMinSplash),
		QuestionTTL: config.TTLDuration(cfg.Client.QuestionTTL, 10*time.Minute),
		SubmitPolicy: app.SubmitPolicy{
			AllowEmpty:        config.BoolDefault(cfg.Client.AllowEmptySubmit, true),
			ConfirmIncomplete: config.BoolDefault(cfg.Client.ConfirmIncomplete, true),
		},
		Logger: log,
	})

	c := &client{session: session, baseURL: baseURL, in: bufio.NewScanner(os.Stdin)}
	return c.run(ctx)
}

func (c *client) run(ctx context.Context) error {
	fmt.Println("SmartQuiz — connecting...")
	c.session.Bootstrap(ctx)

	for {
		switch view := c.session.CurrentView(); view.Kind {
		case app.ViewError:
			fmt.Println(c.session.LastError())
			if c.prompt("[r]etry or [q]uit: ") == "q" {
				return nil
			}
			if err := c.session.Retry(ctx); err != nil {
				return err
			}
		case app.ViewHome:
			if done := c.home(); done {
				return nil
			}
		case app.ViewLogin:
			c.login(ctx, view.Portal)
		case app.ViewAdminHome:
			c.adminHome(ctx)
		case app.ViewStudentHome:
			c.studentHome(ctx)
		default:
			return fmt.Errorf("unexpected view %s", view.Kind)
		}
	}
}

func (c *client) home() bool {
	fmt.Println("\n=== SmartQuiz ===")
	fmt.Println("  1) Admin portal")
	fmt.Println("  2) Student portal")
	fmt.Println("  q) Quit")
	switch c.prompt("> ") {
	case "1":
		_ = c.session.OpenPortal(domain.RoleAdmin)
	case "2":
		_ = c.session.OpenPortal(domain.RoleStudent)
	case "q":
		return true
	}
	return false
}

func (c *client) login(ctx context.Context, portal domain.Role) {
	fmt.Printf("\n--- %s login (blank username to go back) ---\n", strings.ToLower(string(portal)))
	username := c.prompt("username: ")
	if username == "" {
		c.session.Back()
		return
	}
	password := c.prompt("password: ")

	if err := c.session.Login(ctx, username, password); err != nil {
		if errors.Is(err, domain.ErrRoleMismatch) {
			fmt.Println(app.PortalMismatchMessage(portal))
			return
		}
		fmt.Println(app.UserMessage(err))
	}
}

func (c *client) studentHome(ctx context.Context) {
	identity := c.session.Identity()
	fmt.Printf("\n=== Student: %s ===\n", identity.DisplayName)
	fmt.Println("  1) Take quiz")
	fmt.Println("  2) My results")
	fmt.Println("  3) Logout")
	switch c.prompt("> ") {
	case "1":
		c.takeQuiz(ctx)
	case "2":
		c.myResults()
	case "3":
		c.session.Logout()
	}
}

func (c *client) takeQuiz(ctx context.Context) {
	attempt, err := c.session.StartQuiz(ctx)
	if err != nil {
		fmt.Println(app.UserMessage(err))
		return
	}
	if attempt.Total() == 0 {
		fmt.Println("No questions available. Please contact your administrator.")
		return
	}

	letters := []string{"a", "b", "c", "d"}
	for i, q := range attempt.Questions() {
		fmt.Printf("\n%d/%d: %s\n", i+1, attempt.Total(), q.Prompt)
		for j, opt := range q.Options {
			fmt.Printf("  %s) %s\n", letters[j], opt)
		}
		choice := c.prompt("answer (a-d, blank to skip): ")
		if idx := indexOfLetter(letters, choice); idx >= 0 && idx < len(q.Options) {
			_ = attempt.SelectAnswer(q.ID, q.Options[idx])
		}
	}

	if attempt.NeedsConfirmation() {
		fmt.Printf("You answered %d of %d questions.\n", attempt.AnsweredCount(), attempt.Total())
		if c.prompt("Submit anyway? [y/N]: ") != "y" {
			return
		}
	}

	outcome, err := c.session.SubmitAttempt(ctx, attempt)
	if err != nil {
		fmt.Println(app.UserMessage(err))
		return
	}
	fmt.Printf("\nScore: %d/%d (%d%%), time %s\n",
		outcome.Result.CorrectCount, outcome.Result.TotalQuestions,
		outcome.Result.Percentage(), formatElapsed(outcome.Result.Elapsed))
	if outcome.Notice != "" {
		fmt.Println(outcome.Notice)
	}
}

func (c *client) myResults() {
	records := c.session.MyScores()
	if len(records) == 0 {
		fmt.Println("No attempts yet.")
		return
	}
	fmt.Printf("\nBest %d%%  Average %d%%  Attempts %d",
		app.BestPercentage(records), app.AveragePercentage(records), len(records))
	if trend, ok := app.Trend(records); ok {
		fmt.Printf("  Trend %+d%%", trend)
	}
	fmt.Println()
	for _, rec := range records {
		fmt.Printf("  %s  %d/%d (%d%%)\n",
			rec.Timestamp.Format("2006-01-02 15:04"), rec.CorrectCount, rec.TotalQuestions, rec.Percentage())
	}
	if c.session.ScoresStale() {
		fmt.Println("  (latest attempt pending sync)")
	}
}

func (c *client) adminHome(ctx context.Context) {
	identity := c.session.Identity()
	fmt.Printf("\n=== Admin: %s ===\n", identity.DisplayName)
	fmt.Println("  1) Overview")
	fmt.Println("  2) Question bank")
	fmt.Println("  3) Student results")
	fmt.Println("  4) Live score feed")
	fmt.Println("  5) Refresh data")
	fmt.Println("  6) Logout")
	switch c.prompt("> ") {
	case "1":
		c.overview(ctx)
	case "2":
		c.questionBank(ctx)
	case "3":
		c.studentResults()
	case "4":
		c.liveFeed()
	case "5":
		c.session.RefreshScores(ctx)
		fmt.Println("Data refreshed.")
	case "6":
		c.session.Logout()
	}
}

// liveFeed streams newly saved scores over the server's websocket until the
// user presses Enter.
func (c *client) liveFeed() {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/scores/feed"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		fmt.Println("Live feed unavailable:", app.UserMessage(fmt.Errorf("%w: %s", domain.ErrNetworkUnavailable, wsURL)))
		return
	}

	names := make(map[string]string)
	for _, u := range c.session.Users() {
		names[u.ID] = u.DisplayName
	}

	fmt.Println("Watching saved scores (press Enter to stop)...")
	go func() {
		for {
			var rec domain.ScoreRecord
			if err := conn.ReadJSON(&rec); err != nil {
				return
			}
			name := names[rec.UserID]
			if name == "" {
				name = rec.UserID
			}
			fmt.Printf("  %s scored %d/%d (%d%%)\n", name, rec.CorrectCount, rec.TotalQuestions, rec.Percentage())
		}
	}()

	c.prompt("")
	conn.Close()
}

func (c *client) overview(ctx context.Context) {
	all := make([]domain.ScoreRecord, 0)
	for _, recs := range c.session.ScoresByUser() {
		all = append(all, recs...)
	}
	dist := app.Distribute(all)
	fmt.Printf("\nStudents: %d  Questions: %d  Attempts: %d  Average: %d%%\n",
		len(c.session.Students()), c.session.QuestionCount(ctx), len(all), app.AveragePercentage(all))
	fmt.Printf("Distribution: excellent %d, good %d, average %d, below average %d\n",
		dist.Excellent, dist.Good, dist.Average, dist.BelowAverage)
}

func (c *client) questionBank(ctx context.Context) {
	questions, err := c.session.Questions(ctx)
	if err != nil {
		fmt.Println(app.UserMessage(err))
		return
	}
	for i, q := range questions {
		fmt.Printf("  %d) [%s] %s\n", i+1, q.ID, q.Prompt)
	}
	fmt.Println("  a) Add question   d) Delete question   b) Back")
	switch c.prompt("> ") {
	case "a":
		c.addQuestion(ctx)
	case "d":
		id := c.prompt("question id: ")
		if err := c.session.DeleteQuestion(ctx, id); err != nil {
			fmt.Println(app.UserMessage(err))
			return
		}
		fmt.Println("Question deleted.")
	}
}

func (c *client) addQuestion(ctx context.Context) {
	q := domain.Question{Prompt: c.prompt("prompt: ")}
	for i := 0; i < domain.OptionCount; i++ {
		q.Options = append(q.Options, c.prompt(fmt.Sprintf("option %d: ", i+1)))
	}
	q.CorrectOption = c.prompt("correct option (exact text): ")

	if _, err := c.session.CreateQuestion(ctx, q); err != nil {
		fmt.Println(app.UserMessage(err))
		return
	}
	fmt.Println("Question added.")
}

func (c *client) studentResults() {
	grouped := c.session.ScoresByUser()
	if len(grouped) == 0 {
		fmt.Println("No attempts recorded yet.")
		return
	}
	names := make(map[string]string)
	for _, u := range c.session.Users() {
		names[u.ID] = u.DisplayName
	}
	for userID, records := range grouped {
		name := names[userID]
		if name == "" {
			name = userID
		}
		fmt.Printf("\n%s — attempts %d, best %d%%, average %d%%\n",
			name, len(records), app.BestPercentage(records), app.AveragePercentage(records))
	}
}

func (c *client) prompt(label string) string {
	fmt.Print(label)
	if !c.in.Scan() {
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}

func indexOfLetter(letters []string, choice string) int {
	choice = strings.ToLower(choice)
	for i, l := range letters {
		if l == choice {
			return i
		}
	}
	return -1
}

func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	return strconv.Itoa(total/60) + ":" + fmt.Sprintf("%02d", total%60)
}
