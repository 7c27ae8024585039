package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow/internal/model"
	"taskflow/internal/pomodoro"
)

var errTimerBusy = errors.New("timer already running")

const notifyTimeout = 10 * time.Second

// liveStatus is the status message kept up to date while a countdown runs.
type liveStatus struct {
	chatID    int64
	messageID int
	state     pomodoro.State
}

func (b *Bot) handlePomodoro(ctx context.Context, msg *tgbotapi.Message) error {
	var taskID *uuid.UUID
	if arg := msg.CommandArguments(); arg != "" {
		id, err := b.taskArg(arg)
		if err != nil {
			return b.sendError(msg.Chat.ID, "find the task", err)
		}
		taskID = &id
	}
	return b.focusOn(ctx, msg.Chat.ID, taskID)
}

// focusOn starts a work session, attributed to taskID when given.
func (b *Bot) focusOn(ctx context.Context, chatID int64, taskID *uuid.UUID) error {
	err := b.loop.Do(ctx, func(context.Context) error {
		if b.timer.Snapshot().State != pomodoro.Idle {
			return errTimerBusy
		}
		if taskID != nil {
			b.timer.SelectTask(taskID)
		}
		b.timer.StartWork()
		return nil
	})
	if errors.Is(err, errTimerBusy) {
		if err := b.sendText(chatID, "A session is already running. /stop it first."); err != nil {
			return err
		}
		return b.sendStatus(ctx, chatID)
	}
	if err != nil {
		return b.sendError(chatID, "start the timer", err)
	}
	return b.sendStatus(ctx, chatID)
}

func (b *Bot) timerCommand(ctx context.Context, chatID int64, fn func(*pomodoro.Timer)) error {
	err := b.loop.Do(ctx, func(context.Context) error {
		fn(b.timer)
		return nil
	})
	if err != nil {
		return b.sendError(chatID, "control the timer", err)
	}
	return b.sendStatus(ctx, chatID)
}

func (b *Bot) handleStop(ctx context.Context, chatID int64) error {
	var (
		session *model.PomodoroSession
		wasWork bool
	)
	err := b.loop.Do(ctx, func(loopCtx context.Context) error {
		wasWork = b.timer.Snapshot().State.Work()
		s, err := b.timer.End(loopCtx, true)
		session = s
		return err
	})
	if err != nil {
		return b.sendError(chatID, "stop the timer", err)
	}
	switch {
	case session != nil:
		return b.sendText(chatID, fmt.Sprintf("⏹ Focus stopped after %d min and recorded as abandoned.", *session.FinishedMinutes))
	case wasWork:
		return b.sendText(chatID, "⏹ Focus stopped.")
	default:
		return b.sendText(chatID, "⏹ Timer reset.")
	}
}

func (b *Bot) sendStatus(ctx context.Context, chatID int64) error {
	var snap pomodoro.Snapshot
	err := b.loop.Do(ctx, func(context.Context) error {
		snap = b.timer.Snapshot()
		return nil
	})
	if err != nil {
		return b.sendError(chatID, "read the timer", err)
	}

	msg := tgbotapi.NewMessage(chatID, formatSnapshot(snap, b.taskName(ctx, snap)))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	sent, err := b.api.Send(msg)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if snap.State == pomodoro.Idle {
		b.live = nil
	} else {
		b.live = &liveStatus{chatID: chatID, messageID: sent.MessageID, state: snap.State}
	}
	b.mu.Unlock()
	return nil
}

func (b *Bot) handleTimerCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, action string) error {
	chatID := cb.Message.Chat.ID
	b.answerCallback(cb, "")

	switch action {
	case cbTimerRelax:
		return b.timerCommand(ctx, chatID, func(t *pomodoro.Timer) { t.StartRelax() })
	default:
		return b.focusOn(ctx, chatID, nil)
	}
}

// onTimerChange runs on the loop. The live status message is refreshed once
// a minute and on every state change.
func (b *Bot) onTimerChange(snap pomodoro.Snapshot) {
	b.mu.Lock()
	live := b.live
	if live == nil {
		b.mu.Unlock()
		return
	}
	changed := live.state != snap.State
	live.state = snap.State
	if snap.State == pomodoro.Idle {
		b.live = nil
	}
	b.mu.Unlock()

	if !changed && snap.Remaining%60 != 0 {
		return
	}
	target := *live
	go b.editStatus(target, snap)
}

func (b *Bot) editStatus(live liveStatus, snap pomodoro.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	edit := tgbotapi.NewEditMessageText(live.chatID, live.messageID, formatSnapshot(snap, b.taskName(ctx, snap)))
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		b.log.Debug("edit status", zap.Error(err))
	}
}

// onTimerComplete runs on the loop; delivery happens off it.
func (b *Bot) onTimerComplete(c pomodoro.Completion) {
	var (
		text   string
		markup tgbotapi.InlineKeyboardMarkup
	)
	switch c.Kind {
	case pomodoro.WorkCompleted:
		if c.Session != nil {
			text = fmt.Sprintf("🍅 Focus complete! %d min recorded. Time for a break?", *c.Session.FinishedMinutes)
		} else {
			text = "🍅 Focus complete, but it could not be saved. Time for a break?"
		}
		markup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("☕ Start break", callbackData(cbTimerRelax, uuid.Nil)),
			tgbotapi.NewInlineKeyboardButtonData("🍅 Keep going", callbackData(cbTimerWork, uuid.Nil)),
		))
	case pomodoro.RelaxCompleted:
		text = "☕ Break is over. Ready for the next one?"
		markup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍅 Focus", callbackData(cbTimerWork, uuid.Nil)),
		))
	default:
		return
	}

	owner := b.ownerID()
	if owner == 0 {
		b.log.Warn("timer completed without owner chat", zap.Stringer("kind", c.Kind))
		return
	}
	go func() {
		if err := b.sendWithReplyMarkup(owner, text, markup); err != nil {
			b.log.Error("send timer completion", zap.Error(err))
		}
	}()
}
