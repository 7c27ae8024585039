package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow/internal/clock"
	"taskflow/internal/pomodoro"
	"taskflow/internal/service"
)

var errNoOwner = errors.New("no owner chat yet, send /start first")

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTaskName
	stageTaskQuadrant
	stagePlanName
	stagePlanEnd
	stagePlanQuadrant
	stageReview
)

type conversationState struct {
	stage conversationStage
	task  service.TaskInput
	plan  service.PlanInput
	score int
}

// Services groups the use cases the bot exposes.
type Services struct {
	Tasks     *service.TaskService
	Plans     *service.PlanService
	Quadrants *service.QuadrantService
	Reviews   *service.ReviewService
	Summary   *service.SummaryService
	Settings  *service.SettingsService
	Reminder  *service.ReminderService
}

// Bot is the Telegram front-end of the planner. It serves a single owner
// chat.
type Bot struct {
	api   *tgbotapi.BotAPI
	svc   Services
	loop  *pomodoro.Loop
	timer *pomodoro.Timer
	clock clock.Clock
	log   *zap.Logger

	mu            sync.Mutex
	owner         int64
	conversations map[int64]*conversationState
	lastTasks     []uuid.UUID
	lastPlans     []uuid.UUID
	live          *liveStatus
}

// New connects to Telegram. The timer is only touched through loop, which
// must not be running yet so the completion hooks can be registered.
func New(token string, owner int64, svc Services, loop *pomodoro.Loop, timer *pomodoro.Timer, c clock.Clock, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log = log.Named("bot")
	log.Info("bot authorized", zap.String("account", api.Self.UserName))

	b := &Bot{
		api:           api,
		svc:           svc,
		loop:          loop,
		timer:         timer,
		clock:         c,
		log:           log,
		owner:         owner,
		conversations: make(map[int64]*conversationState),
	}
	timer.OnComplete(b.onTimerComplete)
	timer.Subscribe(b.onTimerChange)
	return b, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Error("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Error("handle message", zap.Error(err))
			}
		}
	}

	return nil
}

// Notify sends text to the owner chat.
func (b *Bot) Notify(_ context.Context, text string) error {
	owner := b.ownerID()
	if owner == 0 {
		return errNoOwner
	}
	return b.sendText(owner, text)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if !b.authorize(msg.Chat.ID, msg.IsCommand() && msg.Command() == "start") {
		b.log.Warn("message from foreign chat", zap.Int64("chat", msg.Chat.ID))
		return b.sendText(msg.Chat.ID, "🔒 This planner belongs to someone else.")
	}

	if !msg.IsCommand() && isCancelInput(msg.Text) {
		b.clearConversation(msg.Chat.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.log.Info("command", zap.String("command", msg.Command()), zap.String("args", msg.CommandArguments()))
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.Chat.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Try /today, /newtask or /help.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "today":
		return b.sendToday(ctx, msg.Chat.ID)
	case "newtask":
		return b.startNewTask(msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "move":
		return b.handleMove(ctx, msg)
	case "edittask":
		return b.handleEditTask(ctx, msg)
	case "deltask":
		return b.handleDeleteTask(ctx, msg)
	case "plans":
		return b.sendPlans(ctx, msg.Chat.ID)
	case "newplan":
		return b.startNewPlan(msg)
	case "editplan":
		return b.handleEditPlan(ctx, msg)
	case "pomodoro":
		return b.handlePomodoro(ctx, msg)
	case "pause":
		return b.timerCommand(ctx, msg.Chat.ID, func(t *pomodoro.Timer) { t.Pause() })
	case "resume":
		return b.timerCommand(ctx, msg.Chat.ID, func(t *pomodoro.Timer) { t.Resume() })
	case "relax":
		return b.timerCommand(ctx, msg.Chat.ID, func(t *pomodoro.Timer) { t.StartRelax() })
	case "stop":
		return b.handleStop(ctx, msg.Chat.ID)
	case "status":
		return b.sendStatus(ctx, msg.Chat.ID)
	case "review":
		return b.handleReview(ctx, msg)
	case "summary":
		return b.handleSummary(ctx, msg)
	case "settings":
		return b.handleSettings(ctx, msg)
	case "reminder":
		return b.handleReminder(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "cancel":
		b.clearConversation(msg.Chat.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I keep your day in order: tasks, plans and pomodoros.</b>\n\n"+
			"Start with /today to see your matrix or /pomodoro to focus.\n"+
			"Everything else is in /help.",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /today — today's tasks by quadrant\n" +
		"• /newtask — add a task for today\n" +
		"• /done &lt;n&gt; — toggle task n finished\n" +
		"• /move &lt;n&gt; &lt;1-4&gt; — move task n to a quadrant\n" +
		"• /edittask &lt;n&gt; &lt;field&gt; &lt;value&gt; — edit task n\n" +
		"• /deltask &lt;n&gt; — delete task n\n" +
		"• /plans — your plans\n" +
		"• /newplan — start a multi-day plan\n" +
		"• /editplan &lt;n&gt; &lt;field&gt; &lt;value&gt; — edit plan n\n" +
		"• /pomodoro [n] — focus, optionally on task n\n" +
		"• /pause, /resume, /relax, /stop — control the timer\n" +
		"• /status — timer state\n" +
		"• /review [score] [text] — today's review\n" +
		"• /summary [today|week|month|year|total] — statistics\n" +
		"• /settings [work relax] — pomodoro lengths\n" +
		"• /reminder [on|off|HH:MM] — evening review reminder\n" +
		"• /report — the reminder, right now\n" +
		"• /cancel — cancel the current input"
	return b.sendText(msg.Chat.ID, text)
}

// authorize adopts the first chat that sends /start when no owner is
// configured and rejects every other chat afterwards.
func (b *Bot) authorize(chatID int64, isStart bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.owner == 0 && isStart {
		b.owner = chatID
		b.log.Info("owner chat adopted", zap.Int64("chat", chatID))
	}
	return b.owner == chatID
}

func (b *Bot) ownerID() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.owner
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

// sendError reports a failed operation to the chat. Validation and lookup
// failures are shown as-is, anything else is logged.
func (b *Bot) sendError(chatID int64, action string, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return b.sendText(chatID, "Not found. It may have been deleted.")
	case errors.Is(err, service.ErrInvalidArgs):
		return b.sendText(chatID, fmt.Sprintf("⚠️ %s", escape(err.Error())))
	}
	b.log.Error(action, zap.Error(err))
	return b.sendText(chatID, fmt.Sprintf("Could not %s, please try again.", action))
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		b.log.Warn("callback ack", zap.Error(err))
	}
}

func (b *Bot) setConversation(chatID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[chatID] = state
}

func (b *Bot) getConversation(chatID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[chatID]
}

func (b *Bot) hasConversation(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[chatID]
	return ok
}

func (b *Bot) clearConversation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, chatID)
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.Chat.ID)
	if state == nil {
		return nil
	}

	switch state.stage {
	case stageTaskName, stageTaskQuadrant:
		return b.continueNewTask(ctx, msg, state)
	case stagePlanName, stagePlanEnd, stagePlanQuadrant:
		return b.continueNewPlan(ctx, msg, state)
	case stageReview:
		b.clearConversation(msg.Chat.ID)
		return b.saveReview(ctx, msg.Chat.ID, state.score, msg.Text)
	default:
		b.clearConversation(msg.Chat.ID)
		return b.sendText(msg.Chat.ID, "Input reset. Please start again.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelToday):
		return true, b.sendToday(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTask(msg)
	case strings.ToLower(menuLabelFocus):
		return true, b.sendStatus(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelPlans):
		return true, b.sendPlans(ctx, msg.Chat.ID)
	default:
		return false, nil
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID
	if !b.authorize(chatID, false) {
		b.answerCallback(cb, "")
		return nil
	}

	action, id, err := parseCallback(cb.Data)
	if err != nil {
		b.answerCallback(cb, "")
		b.log.Warn("bad callback data", zap.String("data", cb.Data), zap.Error(err))
		return nil
	}
	b.log.Info("callback", zap.String("action", action), zap.Stringer("id", id))

	switch action {
	case cbTaskDone, cbTaskFocus, cbTaskMove, cbTaskMoveTo1, cbTaskMoveTo2, cbTaskMoveTo3, cbTaskMoveTo4:
		return b.handleTaskCallback(ctx, cb, action, id)
	case cbPlanFinish, cbPlanAbandon, cbPlanDelete, cbPlanAddToday:
		return b.handlePlanCallback(ctx, cb, action, id)
	case cbTimerRelax, cbTimerWork:
		return b.handleTimerCallback(ctx, cb, action)
	default:
		b.answerCallback(cb, "")
		return nil
	}
}
