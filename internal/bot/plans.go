package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow/internal/model"
	"taskflow/internal/service"
)

func (b *Bot) sendPlans(ctx context.Context, chatID int64) error {
	plans, err := b.svc.Plans.List(ctx)
	if err != nil {
		return b.sendError(chatID, "load plans", err)
	}

	ids := make([]uuid.UUID, 0, len(plans))
	for _, p := range plans {
		ids = append(ids, p.ID)
	}
	b.mu.Lock()
	b.lastPlans = ids
	b.mu.Unlock()

	if len(plans) == 0 {
		return b.sendText(chatID, "🎯 No plans yet. Start one with /newplan.")
	}

	loc := b.clock.Now().Location()
	var builder strings.Builder
	builder.WriteString("🎯 <b>Plans</b>\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for i, p := range plans {
		builder.WriteString(formatPlan(i+1, p, loc))

		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("➕ %d today", i+1), callbackData(cbPlanAddToday, p.ID)),
		}
		if p.Status.Open() {
			row = append(row,
				tgbotapi.NewInlineKeyboardButtonData("🏁", callbackData(cbPlanFinish, p.ID)),
				tgbotapi.NewInlineKeyboardButtonData("🚫", callbackData(cbPlanAbandon, p.ID)),
			)
		} else if p.Status == model.PlanFinished {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("↩️", callbackData(cbPlanFinish, p.ID)))
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑", callbackData(cbPlanDelete, p.ID)))
		buttons = append(buttons, row)
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) startNewPlan(msg *tgbotapi.Message) error {
	state := &conversationState{stage: stagePlanName}
	if name := strings.TrimSpace(msg.CommandArguments()); name != "" {
		state.plan.Name = name
		state.stage = stagePlanEnd
		b.setConversation(msg.Chat.ID, state)
		return b.sendWithReplyMarkup(msg.Chat.ID, planEndPrompt, skipKeyboard())
	}
	b.setConversation(msg.Chat.ID, state)
	return b.sendWithReplyMarkup(msg.Chat.ID, "🎯 New plan.\nWhat is the goal?", cancelKeyboard())
}

const planEndPrompt = "📆 When do you expect to finish? Send a date like <code>2025-11-30</code> or skip."

func (b *Bot) continueNewPlan(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stagePlanName:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The goal cannot be empty.", cancelKeyboard())
		}
		state.plan.Name = text
		state.stage = stagePlanEnd
		return b.sendWithReplyMarkup(msg.Chat.ID, planEndPrompt, skipKeyboard())
	case stagePlanEnd:
		if !isSkipInput(text) {
			end, err := parseDate(text, b.clock.Now().Location())
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, escape(err.Error())+" or skip.", skipKeyboard())
			}
			state.plan.EstimatedEndTime = &end
		}
		state.stage = stagePlanQuadrant
		return b.sendWithReplyMarkup(msg.Chat.ID, "How important and urgent is it?", quadrantKeyboard())
	default:
		q, err := parseQuadrant(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, escape(err.Error()), quadrantKeyboard())
		}
		priority, urgent := q.Attributes()
		state.plan.Priority = &priority
		state.plan.IsUrgent = urgent
		b.clearConversation(msg.Chat.ID)

		plan, err := b.svc.Plans.Create(ctx, state.plan)
		if err != nil {
			return b.sendError(msg.Chat.ID, "save the plan", err)
		}
		b.log.Info("plan created", zap.Stringer("id", plan.ID))
		if _, _, err := b.svc.Plans.AddTodayTask(ctx, plan.ID); err != nil {
			b.log.Warn("add today task for new plan", zap.Error(err))
		}
		if err := b.sendText(msg.Chat.ID, fmt.Sprintf("🎯 Plan <b>%s</b> added. A task for it will show up every day.", escape(plan.Name))); err != nil {
			return err
		}
		return b.sendPlans(ctx, msg.Chat.ID)
	}
}

func (b *Bot) planArg(arg string) (uuid.UUID, error) {
	b.mu.Lock()
	ids := b.lastPlans
	b.mu.Unlock()
	id, err := resolveIndex(arg, ids)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v (see /plans)", service.ErrInvalidArgs, err)
	}
	return id, nil
}

const editPlanUsage = "Usage: /editplan &lt;n&gt; &lt;field&gt; &lt;value&gt;\n" +
	"Fields: name, status, priority, urgent, start, end, note, review. Send - to clear."

func (b *Bot) handleEditPlan(ctx context.Context, msg *tgbotapi.Message) error {
	ref, field, value, err := parseEditArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, editPlanUsage)
	}
	id, err := b.planArg(ref)
	if err != nil {
		return b.sendError(msg.Chat.ID, "find the plan", err)
	}
	plan, err := b.svc.Plans.Get(ctx, id)
	if err != nil {
		return b.sendError(msg.Chat.ID, "find the plan", err)
	}

	input, err := applyPlanEdit(service.PlanInputOf(*plan), field, value, b.clock.Now().Location())
	if err != nil {
		return b.sendText(msg.Chat.ID, escape(err.Error())+"\n\n"+editPlanUsage)
	}
	updated, err := b.svc.Plans.Update(ctx, id, input)
	if err != nil {
		return b.sendError(msg.Chat.ID, "update the plan", err)
	}
	b.log.Info("plan edited", zap.Stringer("id", id), zap.String("field", field))
	if err := b.sendText(msg.Chat.ID, fmt.Sprintf("✏️ <b>%s</b> updated.", escape(updated.Name))); err != nil {
		return err
	}
	return b.sendPlans(ctx, msg.Chat.ID)
}

func (b *Bot) handlePlanCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, action string, id uuid.UUID) error {
	chatID := cb.Message.Chat.ID
	b.answerCallback(cb, "")

	var (
		plan *model.Plan
		err  error
		text string
	)
	switch action {
	case cbPlanFinish:
		plan, err = b.svc.Plans.ToggleFinished(ctx, id)
		if err == nil {
			text = fmt.Sprintf("🏁 <b>%s</b> is %s.", escape(plan.Name), strings.ToLower(plan.Status.DisplayName()))
		}
	case cbPlanAbandon:
		plan, err = b.svc.Plans.Abandon(ctx, id)
		if err == nil {
			text = fmt.Sprintf("🚫 <b>%s</b> abandoned.", escape(plan.Name))
		}
	case cbPlanDelete:
		err = b.svc.Plans.Delete(ctx, id)
		text = "🗑 Plan deleted. Its tasks are hidden."
	case cbPlanAddToday:
		task, created, addErr := b.svc.Plans.AddTodayTask(ctx, id)
		err = addErr
		if err == nil {
			if created {
				text = fmt.Sprintf("➕ <b>%s</b> added to today.", escape(task.Name))
			} else {
				text = fmt.Sprintf("Already on today's list: <b>%s</b>.", escape(task.Name))
			}
		}
	}
	if err != nil {
		return b.sendError(chatID, "update the plan", err)
	}
	if err := b.sendText(chatID, text); err != nil {
		return err
	}
	return b.sendPlans(ctx, chatID)
}
