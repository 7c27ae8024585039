package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"taskflow/internal/model"
	"taskflow/internal/pomodoro"
	"taskflow/internal/service"
)

const (
	cbTaskDone     = "td"
	cbTaskFocus    = "tf"
	cbTaskMove     = "tm"
	cbTaskMoveTo1  = "t1"
	cbTaskMoveTo2  = "t2"
	cbTaskMoveTo3  = "t3"
	cbTaskMoveTo4  = "t4"
	cbPlanFinish   = "pf"
	cbPlanAbandon  = "pa"
	cbPlanDelete   = "pd"
	cbPlanAddToday = "pt"
	cbTimerRelax   = "relax"
	cbTimerWork    = "work"
)

const (
	btnSkip          = "⏭️ Skip"
	btnCancel        = "⏪ Cancel"
	menuLabelToday   = "📋 Today"
	menuLabelNewTask = "➕ New task"
	menuLabelFocus   = "🍅 Focus"
	menuLabelPlans   = "🎯 Plans"
	dateLayout       = "2006-01-02"
	clockLayout      = "15:04"
	clearValue       = "-"
)

var quadrantIcons = map[model.Quadrant]string{
	model.QuadrantUrgentImportant: "🔴",
	model.QuadrantImportant:       "🟠",
	model.QuadrantUrgent:          "🟡",
	model.QuadrantNeither:         "🟢",
}

func callbackData(action string, id uuid.UUID) string {
	if id == uuid.Nil {
		return action
	}
	return action + ":" + id.String()
}

// parseCallback splits "action[:uuid]".
func parseCallback(data string) (string, uuid.UUID, error) {
	action, raw, found := strings.Cut(data, ":")
	if action == "" {
		return "", uuid.Nil, fmt.Errorf("empty callback action")
	}
	if !found {
		return action, uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("parse callback id: %w", err)
	}
	return action, id, nil
}

// parseQuadrant accepts "1".."4", "q1".."q4" or a quadrant title.
func parseQuadrant(text string) (model.Quadrant, error) {
	value := strings.ToLower(strings.TrimSpace(text))
	value = strings.TrimPrefix(value, "q")
	if n, err := strconv.Atoi(value); err == nil {
		q := model.Quadrant(n)
		if q.Valid() {
			return q, nil
		}
	}
	for _, q := range model.Quadrants {
		if strings.EqualFold(strings.TrimSpace(text), quadrantButton(q)) || strings.EqualFold(strings.TrimSpace(text), q.Title()) {
			return q, nil
		}
	}
	return 0, fmt.Errorf("unknown quadrant %q, use 1-4", text)
}

// resolveIndex maps a 1-based list position or a full id to an id.
func resolveIndex(arg string, ids []uuid.UUID) (uuid.UUID, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return uuid.Nil, fmt.Errorf("missing number")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(ids) {
			return uuid.Nil, fmt.Errorf("no item #%d in the last list", n)
		}
		return ids[n-1], nil
	}
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%q is neither a list number nor an id", arg)
	}
	return id, nil
}

// parseReviewArgs reads "<score> [text]".
func parseReviewArgs(args string) (int, string, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return 0, "", fmt.Errorf("missing score")
	}
	score, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", fmt.Errorf("score must be a number")
	}
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(args), fields[0]))
	return score, text, nil
}

// parseDurations reads "<work> <relax>" in minutes.
func parseDurations(args string) (int, int, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected two numbers: work and relax minutes")
	}
	work, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("work minutes must be a number")
	}
	relax, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("relax minutes must be a number")
	}
	return work, relax, nil
}

// applyReminderArg returns settings changed by "on", "off" or "HH:MM".
func applyReminderArg(current model.Settings, arg string) (model.Settings, error) {
	value := strings.ToLower(strings.TrimSpace(arg))
	switch value {
	case "on":
		current.ReviewReminderEnabled = true
	case "off":
		current.ReviewReminderEnabled = false
	default:
		if !strings.Contains(value, ":") {
			return current, fmt.Errorf("use on, off or a time like 18:15")
		}
		current.ReviewReminderEnabled = true
		current.ReviewReminderTime = value
	}
	return current, nil
}

func parseDate(text string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(text), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("use the format %s", dateLayout)
	}
	return t, nil
}

// parseEditArgs splits "<n> <field> [value]". The value keeps its inner
// spacing.
func parseEditArgs(args string) (ref, field, value string, err error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", "", "", fmt.Errorf("expected a list number and a field")
	}
	rest := strings.TrimSpace(args)
	rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[0]))
	rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[1]))
	return fields[0], strings.ToLower(fields[1]), rest, nil
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "on", "true", "1":
		return true, nil
	case "no", "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("use yes or no")
}

func parsePriority(value string) (model.Priority, error) {
	p := model.Priority(strings.ToLower(strings.TrimSpace(value)))
	if p != model.PriorityNormal && p != model.PriorityHigh {
		return "", fmt.Errorf("priority is normal or high")
	}
	return p, nil
}

// parsePlanStatus accepts "in progress", "in-progress" and "in_progress".
func parsePlanStatus(value string) (model.PlanStatus, error) {
	normalized := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(value)))
	status := model.PlanStatus(normalized)
	if !status.Valid() {
		return "", fmt.Errorf("status is one of not_started, in_progress, delayed, finished, abandoned")
	}
	return status, nil
}

// clearable maps the clear marker to an empty value.
func clearable(value string) string {
	if value == clearValue {
		return ""
	}
	return value
}

// applyTaskEdit changes one field of in. Dates and reminder times are read in
// loc; the reminder falls on the task's day.
func applyTaskEdit(in service.TaskInput, field, value string, loc *time.Location) (service.TaskInput, error) {
	var err error
	switch field {
	case "name":
		in.Name = value
	case "priority":
		in.Priority, err = parsePriority(value)
	case "urgent":
		in.IsUrgent, err = parseSwitch(value)
	case "tag":
		in.Tag = clearable(value)
	case "note":
		in.Note = clearable(value)
	case "review":
		in.Review = clearable(value)
	case "location":
		in.Location = clearable(value)
	case "date":
		in.Date, err = parseDate(value, loc)
	case "remind":
		if value == clearValue {
			in.NotificationTime = nil
			break
		}
		at, parseErr := time.ParseInLocation(clockLayout, value, loc)
		if parseErr != nil {
			return in, fmt.Errorf("use a time like 18:30 or %s to clear", clearValue)
		}
		day := in.Date.In(loc)
		when := time.Date(day.Year(), day.Month(), day.Day(), at.Hour(), at.Minute(), 0, 0, loc)
		in.NotificationTime = &when
	default:
		return in, fmt.Errorf("unknown field %q", field)
	}
	return in, err
}

// applyPlanEdit changes one field of in. Dates are read in loc.
func applyPlanEdit(in service.PlanInput, field, value string, loc *time.Location) (service.PlanInput, error) {
	switch field {
	case "name":
		in.Name = value
	case "status":
		status, err := parsePlanStatus(value)
		if err != nil {
			return in, err
		}
		in.Status = status
	case "priority":
		p, err := parsePriority(value)
		if err != nil {
			return in, err
		}
		in.Priority = &p
	case "urgent":
		urgent, err := parseSwitch(value)
		if err != nil {
			return in, err
		}
		in.IsUrgent = urgent
	case "start":
		start, err := parseDate(value, loc)
		if err != nil {
			return in, err
		}
		in.StartTime = start
	case "end":
		if value == clearValue {
			in.EstimatedEndTime = nil
			break
		}
		end, err := parseDate(value, loc)
		if err != nil {
			return in, err
		}
		in.EstimatedEndTime = &end
	case "note":
		in.Note = clearable(value)
	case "review":
		in.Review = clearable(value)
	default:
		return in, fmt.Errorf("unknown field %q", field)
	}
	return in, nil
}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func quadrantButton(q model.Quadrant) string {
	return fmt.Sprintf("%s Q%d %s", quadrantIcons[q], int(q), q.Title())
}

// formatToday renders the matrix and returns task ids in display order.
func formatToday(q service.Quadrants) (string, []uuid.UUID) {
	var sb strings.Builder
	var ids []uuid.UUID

	sb.WriteString("📋 <b>Today</b>\n")
	for _, quadrant := range model.Quadrants {
		sb.WriteString(fmt.Sprintf("\n%s <b>%s</b>\n", quadrantIcons[quadrant], escape(quadrant.Title())))
		tasks := q[quadrant]
		if len(tasks) == 0 {
			sb.WriteString("   —\n")
			continue
		}
		for _, task := range tasks {
			ids = append(ids, task.ID)
			mark := "⬜"
			if task.IsFinished {
				mark = "✅"
			}
			sb.WriteString(fmt.Sprintf("%d. %s %s", len(ids), mark, escape(strings.TrimSpace(task.Name))))
			if task.Tag != nil && strings.TrimSpace(*task.Tag) != "" {
				sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(strings.TrimSpace(*task.Tag))))
			}
			sb.WriteByte('\n')
		}
	}
	return strings.TrimSpace(sb.String()), ids
}

func formatTaskDetail(t model.Task, loc *time.Location) string {
	var sb strings.Builder
	q := t.Quadrant()
	sb.WriteString(fmt.Sprintf("✏️ <b>%s</b>\n", escape(strings.TrimSpace(t.Name))))
	sb.WriteString(fmt.Sprintf("%s %s · 📆 %s\n", quadrantIcons[q], escape(q.Title()), t.Date.In(loc).Format(dateLayout)))
	optionalLine := func(icon string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			sb.WriteString(fmt.Sprintf("%s %s\n", icon, escape(strings.TrimSpace(*v))))
		}
	}
	optionalLine("🏷", t.Tag)
	optionalLine("📍", t.Location)
	if t.NotificationTime != nil {
		sb.WriteString(fmt.Sprintf("⏰ %s\n", t.NotificationTime.In(loc).Format(clockLayout)))
	}
	optionalLine("📝", t.Note)
	optionalLine("💭", t.Review)
	return strings.TrimSpace(sb.String())
}

func formatPlan(n int, p model.Plan, loc *time.Location) string {
	var sb strings.Builder
	icon := quadrantIcons[model.QuadrantOf(p.IsUrgent, p.EffectivePriority() == model.PriorityHigh)]
	sb.WriteString(fmt.Sprintf("%d. %s <b>%s</b> · %s\n", n, icon, escape(strings.TrimSpace(p.Name)), p.Status.DisplayName()))
	sb.WriteString(fmt.Sprintf("   📆 %s", p.StartTime.In(loc).Format(dateLayout)))
	if p.EstimatedEndTime != nil {
		sb.WriteString(fmt.Sprintf(" → %s", p.EstimatedEndTime.In(loc).Format(dateLayout)))
	}
	if p.EndTime != nil {
		sb.WriteString(fmt.Sprintf(" · done %s", p.EndTime.In(loc).Format(dateLayout)))
	}
	if p.Note != nil && strings.TrimSpace(*p.Note) != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", escape(strings.TrimSpace(*p.Note))))
	}
	if p.Review != nil && strings.TrimSpace(*p.Review) != "" {
		sb.WriteString(fmt.Sprintf("\n   💭 %s", escape(strings.TrimSpace(*p.Review))))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func formatSnapshot(s pomodoro.Snapshot, taskName string) string {
	var sb strings.Builder
	switch s.State {
	case pomodoro.Idle:
		sb.WriteString(fmt.Sprintf("⏹ Idle · next focus %d min, break %d min", s.WorkMinutes, s.RelaxMinutes))
	case pomodoro.Working:
		sb.WriteString(fmt.Sprintf("🍅 Focus · <b>%s</b> left", s.Clock()))
	case pomodoro.WorkingPaused:
		sb.WriteString(fmt.Sprintf("⏸ Focus paused · <b>%s</b> left", s.Clock()))
	case pomodoro.Relaxing:
		sb.WriteString(fmt.Sprintf("☕ Break · <b>%s</b> left", s.Clock()))
	case pomodoro.RelaxingPaused:
		sb.WriteString(fmt.Sprintf("⏸ Break paused · <b>%s</b> left", s.Clock()))
	}
	if taskName != "" {
		sb.WriteString(fmt.Sprintf("\n📌 %s", escape(taskName)))
	}
	return sb.String()
}

func formatMetrics(kind service.RangeKind, r service.Range, m service.Metrics) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 <b>%s</b>\n", kind.Title()))
	sb.WriteString(fmt.Sprintf("🗓 %s — %s\n\n", r.Start.Format(dateLayout), r.End.Format(dateLayout)))
	sb.WriteString(fmt.Sprintf("🍅 Pomodoros: %d finished, %d abandoned\n", m.FinishedPomodoros, m.AbandonedPomodoros))
	sb.WriteString(fmt.Sprintf("✅ Tasks: %d finished, %d pending\n", m.FinishedTasks, m.PendingTasks))
	sb.WriteString(fmt.Sprintf("🎯 Plans: %d finished, %d overdue\n", m.FinishedPlans, m.OverduePlans))
	sb.WriteString(fmt.Sprintf("📝 Reviews: %d written, %d missing", m.ReviewsWritten, m.ReviewsMissing))
	return sb.String()
}

func formatSettings(s model.Settings) string {
	reminder := "off"
	if s.ReviewReminderEnabled {
		reminder = "at " + s.ReviewReminderTime
	}
	return fmt.Sprintf("⚙️ <b>Settings</b>\n🍅 Focus: %d min\n☕ Break: %d min\n🔔 Review reminder: %s",
		s.WorkMinutes, s.RelaxMinutes, reminder)
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelToday),
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelFocus),
			tgbotapi.NewKeyboardButton(menuLabelPlans),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func quadrantKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for _, q := range model.Quadrants {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(quadrantButton(q))))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "cancel"
}
