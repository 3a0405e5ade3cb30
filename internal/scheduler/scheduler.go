package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"SignalSentinel/internal/backtest"
	"SignalSentinel/internal/marketdata"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"

	"github.com/robfig/cron/v3"
)

// PrimaryAPI is the broker-side surface the scheduler calls outside a batch:
// the connection test and the security-id lookup.
type PrimaryAPI interface {
	Ping(ctx context.Context) error
	FindSecurityID(ctx context.Context, symbol string) (string, error)
}

// Scheduler owns the cron tasks and the interactive command surface.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   *backtest.Runner
	Recorder recorder.Recorder
	Notifier *notifier.TelegramNotifier
	Primary  PrimaryAPI              // nil when the broker provider is not configured
	IDs      *marketdata.SecurityIDs // nil when id maintenance is not wired
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner *backtest.Runner, rec recorder.Recorder, tn *notifier.TelegramNotifier, primary PrimaryAPI, ids *marketdata.SecurityIDs) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Recorder: rec,
		Notifier: tn,
		Primary:  primary,
		IDs:      ids,
		Ctx:      ctx,
	}
}

// RegisterAll registers the nightly backtest and weekly maintenance tasks.
func (s *Scheduler) RegisterAll(dailyCron, vacuumCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if _, err := s.Cron.AddFunc(vacuumCron, s.vacuumTask); err != nil {
		return fmt.Errorf("register vacuum task: %w", err)
	}
	return nil
}

// retainDays is how long resolved outcomes are kept before weekly cleanup.
const retainDays = 90

func (s *Scheduler) vacuumTask() {
	cutoff := time.Now().In(model.ISTLocation()).AddDate(0, 0, -retainDays).Format("2006-01-02")
	n, err := s.Recorder.DeleteOutcomesBefore(cutoff)
	if err != nil {
		log.Printf("[ERROR] vacuum outcomes: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[INFO] vacuumed %d outcomes older than %s", n, cutoff)
	}
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunTodayNow executes today's backtest immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunTodayNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	date := time.Now().In(model.ISTLocation()).Format("2006-01-02")
	log.Printf("[INFO] running scheduled backtest for %s", date)
	s.runBacktest(date)
}

func (s *Scheduler) runBacktest(date string) {
	sigs, err := s.Recorder.SignalsForDate(date)
	if err != nil {
		log.Printf("[ERROR] load signals for %s: %v", date, err)
		s.trySend(fmt.Sprintf("❌ Could not load signals for %s: %v", date, err))
		return
	}
	if len(sigs) == 0 {
		s.trySend(fmt.Sprintf("No signals stored for %s, nothing to backtest.", date))
		return
	}

	// Coarse progress at quarter intervals; one message, edited in place,
	// so a long batch stays observable without flooding the chat.
	var lastReported, progressMsgID int
	progress := func(done, total int) {
		if total < 8 || done == total || done-lastReported < total/4 {
			return
		}
		lastReported = done
		text := fmt.Sprintf("⏳ Backtest %s: %d/%d done", date, done, total)
		if progressMsgID == 0 {
			id, err := s.Notifier.SendReturningID(s.baseCtx(), text)
			if err != nil {
				log.Printf("[WARN] send progress: %v", err)
				return
			}
			progressMsgID = id
			return
		}
		if err := s.Notifier.EditMessage(s.baseCtx(), progressMsgID, text); err != nil {
			log.Printf("[WARN] edit progress: %v", err)
		}
	}

	res, err := s.Runner.Run(s.Ctx, sigs, date, progress)
	if err != nil {
		var rejected *backtest.RunRejectedError
		if errors.As(err, &rejected) {
			s.trySend(fmt.Sprintf("🚫 Backtest not run: %s", rejected.Reason))
			return
		}
		log.Printf("[ERROR] backtest %s: %v", date, err)
		s.trySend(fmt.Sprintf("❌ Backtest for %s failed: %v", date, err))
		return
	}

	s.trySend(notifier.FormatBatchReport(res))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}

	switch fields[0] {
	case "/backtest":
		date := time.Now().In(model.ISTLocation()).Format("2006-01-02")
		if len(fields) > 1 {
			date = fields[1]
		}
		if _, err := model.ParseDate(date); err != nil {
			return fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD.", date)
		}
		go s.runBacktest(date)
		return fmt.Sprintf("Backtest for %s started…", date)

	case "/status":
		sum, err := s.Recorder.LastRun()
		if err != nil {
			return fmt.Sprintf("Could not read last run: %v", err)
		}
		return notifier.FormatRunStatus(sum)

	case "/signals":
		date := time.Now().In(model.ISTLocation()).Format("2006-01-02")
		if len(fields) > 1 {
			date = fields[1]
		}
		sigs, err := s.Recorder.SignalsForDate(date)
		if err != nil {
			return fmt.Sprintf("Could not load signals: %v", err)
		}
		return notifier.FormatSignalList(date, sigs)

	case "/load":
		if len(fields) < 2 {
			return "Usage: /load <path-to-signal-json>"
		}
		stored, dropped, err := s.LoadSignalFile(fields[1])
		if err != nil {
			return fmt.Sprintf("❌ Load failed: %v", err)
		}
		return fmt.Sprintf("Stored %d signals (%d dropped at intake).", stored, dropped)

	case "/findid":
		if s.IDs == nil {
			return "Security-id maintenance is not configured."
		}
		if s.Primary == nil {
			return "Primary provider is not configured."
		}
		if len(fields) < 2 {
			return "Usage: /findid <SYMBOL>"
		}
		symbol := strings.ToUpper(fields[1])
		ctx, cancel := context.WithTimeout(s.baseCtx(), 30*time.Second)
		defer cancel()
		id, err := s.Primary.FindSecurityID(ctx, symbol)
		if err != nil {
			return fmt.Sprintf("❌ Lookup for %s failed: %v", symbol, err)
		}
		if err := s.IDs.Put(symbol, id); err != nil {
			return fmt.Sprintf("❌ Store id failed: %v", err)
		}
		return fmt.Sprintf("Security id for %s resolved to %s (%d known).", symbol, id, s.IDs.Len())

	case "/setid":
		if s.IDs == nil {
			return "Security-id maintenance is not configured."
		}
		if len(fields) < 3 {
			return "Usage: /setid <SYMBOL> <security-id>"
		}
		symbol, id := fields[1], fields[2]
		if err := s.IDs.Put(symbol, id); err != nil {
			return fmt.Sprintf("❌ Store id failed: %v", err)
		}
		return fmt.Sprintf("Security id for %s set to %s (%d known).", symbol, id, s.IDs.Len())

	case "/ping":
		if s.Primary == nil {
			return "Primary provider is not configured."
		}
		ctx, cancel := context.WithTimeout(s.baseCtx(), 10*time.Second)
		defer cancel()
		if err := s.Primary.Ping(ctx); err != nil {
			return fmt.Sprintf("❌ Primary provider unreachable: %v", err)
		}
		return "✅ Primary provider connection OK."

	default:
		return "Commands:\n• /backtest [YYYY-MM-DD]\n• /status\n• /signals [YYYY-MM-DD]\n• /load <file>\n• /findid <SYMBOL>\n• /setid <SYMBOL> <id>\n• /ping"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.baseCtx(), text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

func (s *Scheduler) baseCtx() context.Context {
	if s.Ctx != nil {
		return s.Ctx
	}
	return context.Background()
}

var _ PrimaryAPI = (*marketdata.DhanProvider)(nil)
