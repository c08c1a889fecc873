package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tg "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/safememefi/riskscan/internal/analyzer"
	"github.com/safememefi/riskscan/internal/health"
	"github.com/safememefi/riskscan/internal/token"
	"github.com/safememefi/riskscan/internal/tracker"
)

// WatchStore persists which mints are being watched.
type WatchStore interface {
	AddWatch(ctx context.Context, mint string) error
	RemoveWatch(ctx context.Context, mint string) error
	ListWatches(ctx context.Context) ([]string, error)
}

const helpText = `
🤖 <b>SafeMemeFi Risk Bot</b>

Send me a Solana token address for analysis!

Example: <code>EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v</code>

📊 I'll analyze:
- Risk Score
- Market Cap
- Holders
- Technical Analysis
- Price Changes

<b>Commands:</b>
- <code>/watch &lt;mint&gt;</code> - Alert on on-chain activity
- <code>/unwatch &lt;mint&gt;</code> - Stop watching
- <code>/watched</code> - List watched mints
- <code>/health</code> - Show service health
`

// Handler coordinates Telegram <-> analyzer/tracker/store/health.
type Handler struct {
	bot      *tg.Bot
	adminID  int64
	an       *analyzer.Analyzer
	tm       *tracker.Manager
	st       WatchStore
	hlth     *health.Health
	commands map[string]func(ctx context.Context, chatID int64, arg string)
}

// New constructs the Telegram Handler and builds its command table.
func New(bot *tg.Bot, an *analyzer.Analyzer, tm *tracker.Manager, st WatchStore, hlth *health.Health, adminID int64) *Handler {
	h := &Handler{
		bot:     bot,
		adminID: adminID,
		an:      an,
		tm:      tm,
		st:      st,
		hlth:    hlth,
	}
	h.commands = map[string]func(ctx context.Context, chatID int64, arg string){
		"/help":    func(ctx context.Context, chatID int64, _ string) { h.sendHTML(ctx, chatID, strings.TrimSpace(helpText)) },
		"/start":   func(ctx context.Context, chatID int64, _ string) { h.sendHTML(ctx, chatID, strings.TrimSpace(helpText)) },
		"/health":  h.cmdHealth,
		"/watch":   h.cmdWatch,
		"/unwatch": h.cmdUnwatch,
		"/watched": h.cmdWatched,
	}
	return h
}

// NotifyActivity is wired into the tracker manager: it alerts the admin
// chat about fresh on-chain activity for a watched mint.
func (h *Handler) NotifyActivity(mint, signature string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	addr := token.Address(mint)
	msg := fmt.Sprintf(
		"🚨 <b>Activity on watched token %s</b>\n\n<a href=\"https://solscan.io/tx/%s\">%s...%s</a>",
		addr.Short(), signature, signature[:6], signature[len(signature)-6:],
	)
	h.sendHTML(ctx, h.adminID, msg)
}

// Run registers handlers and long-polls until ctx is done.
func (h *Handler) Run(ctx context.Context) {
	h.bot.RegisterHandler(tg.HandlerTypeMessageText, "", tg.MatchTypePrefix, func(c context.Context, b *tg.Bot, u *models.Update) {
		if u.Message == nil {
			return
		}
		h.handleMessage(c, u.Message)
	})
	h.bot.RegisterHandler(tg.HandlerTypeCallbackQueryData, "buy_", tg.MatchTypePrefix, func(c context.Context, b *tg.Bot, u *models.Update) {
		h.handleTradeCallback(c, u, "buy")
	})
	h.bot.RegisterHandler(tg.HandlerTypeCallbackQueryData, "sell_", tg.MatchTypePrefix, func(c context.Context, b *tg.Bot, u *models.Update) {
		h.handleTradeCallback(c, u, "sell")
	})
	h.bot.Start(ctx)
}

func (h *Handler) handleMessage(ctx context.Context, m *models.Message) {
	raw := strings.TrimSpace(m.Text)
	if strings.HasPrefix(raw, "/") {
		h.dispatchCommand(ctx, m.Chat.ID, raw)
		return
	}

	candidate, ok := token.Extract(raw)
	if !ok {
		h.sendHTML(ctx, m.Chat.ID, strings.TrimSpace(helpText))
		return
	}

	h.sendHTML(ctx, m.Chat.ID, "🔍 Analyzing token... Please wait...")

	res, err := h.an.Analyze(ctx, candidate)
	if err != nil {
		h.sendHTML(ctx, m.Chat.ID, "❌ Could not analyze this token. Please check the address.")
		return
	}

	h.sendAnalysis(ctx, m.Chat.ID, res)
}

func (h *Handler) dispatchCommand(ctx context.Context, chatID int64, raw string) {
	name := raw
	arg := ""
	if i := strings.IndexAny(raw, " \t"); i != -1 {
		name, arg = raw[:i], strings.TrimSpace(raw[i+1:])
	}
	name = strings.ToLower(name)
	if i := strings.IndexRune(name, '@'); i != -1 {
		name = name[:i]
	}

	cmd, ok := h.commands[name]
	if !ok {
		h.sendHTML(ctx, chatID, "unknown command. try <code>/help</code>")
		return
	}
	cmd(ctx, chatID, arg)
}

// sendAnalysis delivers the verbose report with the trade keyboard.
func (h *Handler) sendAnalysis(ctx context.Context, chatID int64, res *analyzer.Result) {
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "🟢 BUY", CallbackData: "buy_" + res.Address.String()},
				{Text: "🔴 SELL", CallbackData: "sell_" + res.Address.String()},
			},
			{
				{Text: "📊 Full Analysis", URL: analyzer.AnalyzerURL(res.Address)},
				{Text: "📈 Chart", URL: analyzer.ChartURL(res.Address)},
			},
		},
	}

	disable := true
	_, err := h.bot.SendMessage(ctx, &tg.SendMessageParams{
		ChatID:      chatID,
		Text:        analyzer.RenderVerbose(res),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: keyboard,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: &disable,
		},
	})
	if err != nil {
		log.Printf("[telegram] send analysis error: %v", err)
	}
}

// handleTradeCallback answers a BUY/SELL button press with the swap-link
// block for the encoded token. No analysis is re-run.
func (h *Handler) handleTradeCallback(ctx context.Context, u *models.Update, action string) {
	q := u.CallbackQuery
	if q == nil {
		return
	}

	_, err := h.bot.AnswerCallbackQuery(ctx, &tg.AnswerCallbackQueryParams{CallbackQueryID: q.ID})
	if err != nil {
		log.Printf("[telegram] answer callback error: %v", err)
	}

	raw := strings.TrimPrefix(q.Data, action+"_")
	addr, err := token.Parse(raw)
	if err != nil {
		log.Printf("[telegram] callback with bad address %q: %v", raw, err)
		return
	}

	chatID := q.From.ID
	if q.Message.Message != nil {
		chatID = q.Message.Message.Chat.ID
	}
	h.sendHTML(ctx, chatID, analyzer.SwapLinks(action, addr))
}

func (h *Handler) cmdHealth(ctx context.Context, chatID int64, _ string) {
	if chatID != h.adminID {
		return
	}
	rep := h.hlth.Snapshot(ctx)
	msg := fmt.Sprintf(
		"📊 <b>Health Report</b>\n"+
			"- Poll cycles: <code>%d</code>\n"+
			"- Replies sent: <code>%d</code>\n"+
			"- Replies failed: <code>%d</code>\n"+
			"- Last poll: <code>%s</code>\n"+
			"- Watched (memory): <code>%d</code>\n"+
			"- Open subs: <code>%d</code>\n"+
			"- Dropped: <code>%d</code>\n"+
			"- Seen mentions (store): <code>%d</code>\n"+
			"- Time: <code>%s</code>",
		rep.Loop.Cycles, rep.Loop.RepliesSent, rep.Loop.RepliesFailed,
		rep.Loop.LastPollAt.Format(time.RFC3339),
		rep.Watched, rep.Open, len(rep.Dropped), rep.SeenMentions,
		rep.GeneratedAt.Format(time.RFC3339),
	)
	h.sendHTML(ctx, chatID, msg)
}

func (h *Handler) cmdWatch(ctx context.Context, chatID int64, arg string) {
	if chatID != h.adminID {
		return
	}
	addr, err := token.Parse(arg)
	if err != nil {
		h.sendHTML(ctx, chatID, "usage: <code>/watch &lt;mint&gt;</code>")
		return
	}
	if err := h.st.AddWatch(ctx, addr.String()); err != nil {
		h.sendHTML(ctx, chatID, fmt.Sprintf("watch failed: <code>%v</code>", err))
		return
	}
	if err := h.tm.Watch(ctx, addr.String()); err != nil {
		h.sendHTML(ctx, chatID, fmt.Sprintf("subscriber failed: <code>%v</code>", err))
		return
	}
	h.sendHTML(ctx, chatID, "watching <b>"+escapeHTML(addr.String())+"</b>")
}

func (h *Handler) cmdUnwatch(ctx context.Context, chatID int64, arg string) {
	if chatID != h.adminID {
		return
	}
	if arg == "" {
		h.sendHTML(ctx, chatID, "usage: <code>/unwatch &lt;mint&gt;</code>")
		return
	}
	_ = h.tm.Unwatch(ctx, arg)
	if err := h.st.RemoveWatch(ctx, arg); err != nil {
		h.sendHTML(ctx, chatID, fmt.Sprintf("unwatch failed: <code>%v</code>", err))
		return
	}
	h.sendHTML(ctx, chatID, "unwatched <b>"+escapeHTML(arg)+"</b>")
}

func (h *Handler) cmdWatched(ctx context.Context, chatID int64, _ string) {
	if chatID != h.adminID {
		return
	}
	list := h.tm.List()
	if len(list) == 0 {
		h.sendHTML(ctx, chatID, "<b>No mints watched.</b>")
		return
	}
	var b strings.Builder
	b.WriteString("📋 <b>Watched Mints:</b>\n")
	for _, m := range list {
		b.WriteString("- <code>")
		b.WriteString(escapeHTML(m))
		b.WriteString("</code>\n")
	}
	h.sendHTML(ctx, chatID, b.String())
}

func (h *Handler) sendHTML(ctx context.Context, chatID int64, html string) {
	disable := true
	_, err := h.bot.SendMessage(ctx, &tg.SendMessageParams{
		ChatID:    chatID,
		Text:      html,
		ParseMode: models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: &disable,
		},
	})
	if err != nil {
		log.Printf("[telegram] send error: %v", err)
	}
}

func escapeHTML(s string) string {
	replacer := strings.NewReplacer(
		`&`, "&amp;",
		`<`, "&lt;",
		`>`, "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}
