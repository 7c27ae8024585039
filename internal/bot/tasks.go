package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow/internal/model"
	"taskflow/internal/pomodoro"
	"taskflow/internal/service"
)

func (b *Bot) sendToday(ctx context.Context, chatID int64) error {
	quadrants, err := b.svc.Quadrants.Today(ctx)
	if err != nil {
		return b.sendError(chatID, "load today's tasks", err)
	}

	text, ids := formatToday(quadrants)
	b.mu.Lock()
	b.lastTasks = ids
	b.mu.Unlock()

	if len(ids) == 0 {
		return b.sendText(chatID, "📋 Nothing planned for today. Add something with /newtask.")
	}

	var buttons [][]tgbotapi.InlineKeyboardButton
	n := 0
	for _, q := range model.Quadrants {
		for _, task := range quadrants[q] {
			n++
			done := "✅"
			if task.IsFinished {
				done = "↩️"
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %d · %s", done, n, shortTitle(task.Name, 20)), callbackData(cbTaskDone, task.ID)),
				tgbotapi.NewInlineKeyboardButtonData("🍅", callbackData(cbTaskFocus, task.ID)),
				tgbotapi.NewInlineKeyboardButtonData("↔️", callbackData(cbTaskMove, task.ID)),
			))
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) startNewTask(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		b.setConversation(msg.Chat.ID, &conversationState{stage: stageTaskName})
		return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task for today.\nWhat should it be called?", cancelKeyboard())
	}
	b.setConversation(msg.Chat.ID, &conversationState{stage: stageTaskQuadrant, task: service.TaskInput{Name: name}})
	return b.sendWithReplyMarkup(msg.Chat.ID, "Which quadrant does it belong to?", quadrantKeyboard())
}

func (b *Bot) continueNewTask(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTaskName:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The name cannot be empty.", cancelKeyboard())
		}
		state.task.Name = text
		state.stage = stageTaskQuadrant
		return b.sendWithReplyMarkup(msg.Chat.ID, "Which quadrant does it belong to?", quadrantKeyboard())
	default:
		q, err := parseQuadrant(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, escape(err.Error()), quadrantKeyboard())
		}
		state.task.Priority, state.task.IsUrgent = q.Attributes()
		b.clearConversation(msg.Chat.ID)

		task, err := b.svc.Tasks.Create(ctx, state.task)
		if err != nil {
			return b.sendError(msg.Chat.ID, "save the task", err)
		}
		b.log.Info("task created", zap.Stringer("id", task.ID), zap.Int("quadrant", int(q)))
		if err := b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Added <b>%s</b> to %s.", escape(task.Name), escape(q.Title()))); err != nil {
			return err
		}
		return b.sendToday(ctx, msg.Chat.ID)
	}
}

func (b *Bot) taskArg(arg string) (uuid.UUID, error) {
	b.mu.Lock()
	ids := b.lastTasks
	b.mu.Unlock()
	id, err := resolveIndex(arg, ids)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v (see /today)", service.ErrInvalidArgs, err)
	}
	return id, nil
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := b.taskArg(msg.CommandArguments())
	if err != nil {
		return b.sendError(msg.Chat.ID, "find the task", err)
	}
	return b.toggleTask(ctx, msg.Chat.ID, id)
}

func (b *Bot) toggleTask(ctx context.Context, chatID int64, id uuid.UUID) error {
	task, err := b.svc.Tasks.ToggleFinished(ctx, id)
	if err != nil {
		return b.sendError(chatID, "update the task", err)
	}
	state := "open again"
	if task.IsFinished {
		state = "finished"
	}
	return b.sendText(chatID, fmt.Sprintf("✅ <b>%s</b> is %s.", escape(task.Name), state))
}

func (b *Bot) handleMove(ctx context.Context, msg *tgbotapi.Message) error {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) != 2 {
		return b.sendText(msg.Chat.ID, "Usage: /move &lt;n&gt; &lt;1-4&gt;")
	}
	id, err := b.taskArg(fields[0])
	if err != nil {
		return b.sendError(msg.Chat.ID, "find the task", err)
	}
	q, err := parseQuadrant(fields[1])
	if err != nil {
		return b.sendText(msg.Chat.ID, escape(err.Error()))
	}
	return b.moveTask(ctx, msg.Chat.ID, id, q)
}

func (b *Bot) moveTask(ctx context.Context, chatID int64, id uuid.UUID, q model.Quadrant) error {
	task, err := b.svc.Quadrants.Reclassify(ctx, id, q)
	if err != nil {
		return b.sendError(chatID, "move the task", err)
	}
	if err := b.sendText(chatID, fmt.Sprintf("↔️ <b>%s</b> moved to %s.", escape(task.Name), escape(q.Title()))); err != nil {
		return err
	}
	return b.sendToday(ctx, chatID)
}

const editTaskUsage = "Usage: /edittask &lt;n&gt; &lt;field&gt; &lt;value&gt;\n" +
	"Fields: name, priority, urgent, tag, note, review, location, date, remind. Send - to clear."

func (b *Bot) handleEditTask(ctx context.Context, msg *tgbotapi.Message) error {
	ref, field, value, err := parseEditArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, editTaskUsage)
	}
	id, err := b.taskArg(ref)
	if err != nil {
		return b.sendError(msg.Chat.ID, "find the task", err)
	}
	task, err := b.svc.Tasks.Get(ctx, id)
	if err != nil {
		return b.sendError(msg.Chat.ID, "find the task", err)
	}

	loc := b.clock.Now().Location()
	input, err := applyTaskEdit(service.TaskInputOf(*task), field, value, loc)
	if err != nil {
		return b.sendText(msg.Chat.ID, escape(err.Error())+"\n\n"+editTaskUsage)
	}
	updated, err := b.svc.Tasks.Update(ctx, id, input)
	if err != nil {
		return b.sendError(msg.Chat.ID, "update the task", err)
	}
	b.log.Info("task edited", zap.Stringer("id", id), zap.String("field", field))
	return b.sendText(msg.Chat.ID, formatTaskDetail(*updated, loc))
}

func (b *Bot) handleDeleteTask(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := b.taskArg(msg.CommandArguments())
	if err != nil {
		return b.sendError(msg.Chat.ID, "find the task", err)
	}
	task, err := b.svc.Tasks.Get(ctx, id)
	if err != nil {
		return b.sendError(msg.Chat.ID, "find the task", err)
	}
	if err := b.svc.Tasks.Delete(ctx, id); err != nil {
		return b.sendError(msg.Chat.ID, "delete the task", err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 <b>%s</b> deleted.", escape(task.Name)))
}

func (b *Bot) handleTaskCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, action string, id uuid.UUID) error {
	chatID := cb.Message.Chat.ID
	b.answerCallback(cb, "")

	switch action {
	case cbTaskDone:
		return b.toggleTask(ctx, chatID, id)
	case cbTaskFocus:
		return b.focusOn(ctx, chatID, &id)
	case cbTaskMove:
		var rows [][]tgbotapi.InlineKeyboardButton
		for i, q := range model.Quadrants {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(quadrantButton(q), callbackData(moveActions[i], id)),
			))
		}
		return b.sendWithReplyMarkup(chatID, "Move to which quadrant?", tgbotapi.NewInlineKeyboardMarkup(rows...))
	default:
		for i, a := range moveActions {
			if a == action {
				return b.moveTask(ctx, chatID, id, model.Quadrants[i])
			}
		}
		return nil
	}
}

var moveActions = []string{cbTaskMoveTo1, cbTaskMoveTo2, cbTaskMoveTo3, cbTaskMoveTo4}

// taskName looks up the name of the task the timer is attributed to.
func (b *Bot) taskName(ctx context.Context, snap pomodoro.Snapshot) string {
	if snap.TaskID == nil {
		return ""
	}
	task, err := b.svc.Tasks.Get(ctx, *snap.TaskID)
	if err != nil {
		return ""
	}
	return task.Name
}
