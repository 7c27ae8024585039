package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskflow/internal/model"
	"taskflow/internal/service"
)

func (b *Bot) handleReview(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		review, err := b.svc.Reviews.Today(ctx)
		if err != nil {
			return b.sendError(msg.Chat.ID, "load the review", err)
		}
		if review == nil || !review.Written() {
			return b.sendText(msg.Chat.ID, "📝 No review yet. Send /review &lt;score 0-10&gt; &lt;how it went&gt;.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("📝 <b>Today's review</b> · %d/%d\n%s", review.Score, model.MaxReviewScore, escape(review.Content)))
	}

	score, text, err := parseReviewArgs(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, escape(err.Error()))
	}
	if text == "" {
		b.setConversation(msg.Chat.ID, &conversationState{stage: stageReview, score: score})
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ How did today go?", cancelKeyboard())
	}
	return b.saveReview(ctx, msg.Chat.ID, score, text)
}

func (b *Bot) saveReview(ctx context.Context, chatID int64, score int, text string) error {
	review, err := b.svc.Reviews.SaveToday(ctx, text, score)
	if err != nil {
		return b.sendError(chatID, "save the review", err)
	}
	return b.sendText(chatID, fmt.Sprintf("📝 Review saved, score %d/%d.", review.Score, model.MaxReviewScore))
}

func (b *Bot) handleSummary(ctx context.Context, msg *tgbotapi.Message) error {
	kind, err := service.ParseRangeKind(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Use /summary today, week, month, year or total.")
	}
	r, metrics, err := b.svc.Summary.Summary(ctx, kind)
	if err != nil {
		return b.sendError(msg.Chat.ID, "build the summary", err)
	}
	return b.sendText(msg.Chat.ID, formatMetrics(kind, r, metrics))
}

func (b *Bot) handleSettings(ctx context.Context, msg *tgbotapi.Message) error {
	current, err := b.svc.Settings.Load(ctx)
	if err != nil {
		return b.sendError(msg.Chat.ID, "load settings", err)
	}

	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, formatSettings(current)+"\n\nChange with /settings &lt;focus&gt; &lt;break&gt;, e.g. /settings 50 10.")
	}

	work, relax, err := parseDurations(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, escape(err.Error()))
	}
	current.WorkMinutes = work
	current.RelaxMinutes = relax
	updated, err := b.svc.Settings.Update(ctx, current)
	if err != nil {
		return b.sendError(msg.Chat.ID, "save settings", err)
	}
	return b.sendText(msg.Chat.ID, formatSettings(updated))
}

func (b *Bot) handleReminder(ctx context.Context, msg *tgbotapi.Message) error {
	current, err := b.svc.Settings.Load(ctx)
	if err != nil {
		return b.sendError(msg.Chat.ID, "load settings", err)
	}

	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, formatSettings(current)+"\n\nUse /reminder on, /reminder off or /reminder 21:30.")
	}

	next, err := applyReminderArg(current, args)
	if err != nil {
		return b.sendText(msg.Chat.ID, escape(err.Error()))
	}
	updated, err := b.svc.Settings.Update(ctx, next)
	if err != nil {
		return b.sendError(msg.Chat.ID, "save settings", err)
	}
	return b.sendText(msg.Chat.ID, formatSettings(updated))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := b.svc.Reminder.Text(ctx, b.clock.Now())
	if err != nil {
		return b.sendError(msg.Chat.ID, "build the report", err)
	}
	return b.sendText(msg.Chat.ID, text)
}
