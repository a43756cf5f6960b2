package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SwingSentinel/internal/model"
)

type recordingSender struct {
	name   string
	err    error
	mu     sync.Mutex
	titles []string
}

func (r *recordingSender) Send(_ context.Context, title, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return r.err
}

func (r *recordingSender) Name() string { return r.name }

func TestNotifier_DeliversToAllAndAggregatesErrors(t *testing.T) {
	bad := &recordingSender{name: "bad", err: errors.New("smtp down")}
	good := &recordingSender{name: "good"}
	n := NewNotifier(zerolog.Nop(), bad, nil, good)

	assert.Equal(t, []string{"bad", "good"}, n.Senders())

	err := n.Notify(context.Background(), "🚨 BUY AAPL", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 sender(s) failed")
	assert.Contains(t, err.Error(), "bad: smtp down")
	assert.Equal(t, []string{"🚨 BUY AAPL"}, good.titles)

	assert.NoError(t, NewNotifier(zerolog.Nop()).Notify(context.Background(), "t", "b"))
}

func TestEmailSender_ComposesAndSends(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  []byte
	)
	e := NewEmailSender("smtp.example.com", 587, "bot@example.com", "secret", func() []string {
		return []string{"a@example.com", "b@example.com"}
	})
	e.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}
	e.now = func() time.Time { return time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC) }

	require.NoError(t, e.Send(context.Background(), "🚨 SELL MSFT", "Price: $168.00\nAll SELL conditions met"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, gotTo)

	r, err := mail.CreateReader(strings.NewReader(string(gotMsg)))
	require.NoError(t, err)
	subject, err := r.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "🚨 SELL MSFT", subject)
	to, err := r.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 2)
	assert.Equal(t, "b@example.com", to[1].Address)

	part, err := r.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	assert.Equal(t, "Price: $168.00\nAll SELL conditions met", strings.ReplaceAll(string(body), "\r\n", "\n"))
}

func TestEmailSender_NoRecipientsIsNoop(t *testing.T) {
	called := false
	e := NewEmailSender("smtp.example.com", 587, "u", "p", func() []string { return nil })
	e.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}
	require.NoError(t, e.Send(context.Background(), "t", "b"))
	assert.False(t, called)
}

func TestEmailSender_WrapsErrors(t *testing.T) {
	e := NewEmailSender("smtp.example.com", 587, "u", "p", func() []string { return []string{"x@example.com"} })
	e.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("535 auth failed") }
	assert.ErrorContains(t, e.Send(context.Background(), "t", "b"), "535 auth failed")
	assert.Equal(t, "email", e.Name())
}

func TestTelegramSender_Send(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegramSender("TOKEN", "42", "", zerolog.Nop())
	tg.BaseURL = srv.URL
	require.NoError(t, tg.Send(context.Background(), "🚨 BUY AAPL", "RSI<55 & rising"))

	assert.Equal(t, "42", payload["chat_id"])
	assert.Equal(t, "HTML", payload["parse_mode"])
	assert.Equal(t, "<b>🚨 BUY AAPL</b>\nRSI&lt;55 &amp; rising", payload["text"])
}

func TestTelegramSender_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	tg := NewTelegramSender("TOKEN", "42", "", zerolog.Nop())
	tg.BaseURL = srv.URL
	assert.ErrorContains(t, tg.Send(context.Background(), "t", "b"), "chat not found")
}

func TestTelegramSender_PollingAnswersKnownChat(t *testing.T) {
	var polls int32
	replies := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if atomic.AddInt32(&polls, 1) == 1 {
				w.Write([]byte(`{"ok":true,"result":[
					{"update_id":10,"message":{"text":"/status","chat":{"id":7}}},
					{"update_id":11,"message":{"text":" /tickers ","chat":{"id":42}}}]}`))
				return
			}
			assert.Equal(t, "12", r.URL.Query().Get("offset"))
			<-r.Context().Done()
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var p map[string]string
			json.NewDecoder(r.Body).Decode(&p)
			replies <- p["text"]
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	tg := NewTelegramSender("TOKEN", "42", "", zerolog.Nop())
	tg.BaseURL = srv.URL

	var commands []string
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		tg.StartPolling(ctx, func(_ context.Context, cmd string) string {
			commands = append(commands, cmd)
			return "reply to " + cmd
		})
	}()

	select {
	case reply := <-replies:
		assert.Equal(t, "reply to /tickers", reply)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
	assert.Equal(t, []string{"/tickers"}, commands)
}

func TestFormatter(t *testing.T) {
	a := &model.Alert{Symbol: "AAPL", Signal: model.SignalBuy, Price: 132, Reason: "All BUY conditions met: RSI_4H=60.0"}
	assert.Equal(t, "🚨 BUY AAPL", AlertTitle(a))
	assert.Equal(t, "Price: $132.00\nAll BUY conditions met: RSI_4H=60.0", AlertBody(a))
	a.Commentary = "Breakout setup."
	assert.True(t, strings.HasSuffix(AlertBody(a), "\n\nAI analysis: Breakout setup."))

	assert.Contains(t, StartupBody([]string{"AAPL", "MSFT"}, time.Minute), "Monitoring: AAPL, MSFT")

	at := time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)
	status := FormatStatus(map[string]model.Decision{
		"MSFT": {Symbol: "MSFT", Signal: model.SignalSell, Price: 168, Trigger: model.TriggerRules,
			Snapshot: model.IndicatorSnapshot{RSICoarse: 40, RSIDaily: math.NaN(), Squeeze: model.SqueezeExpanded}},
		"AAPL": {Symbol: "AAPL", Signal: model.SignalBuy, Price: 100.5, Trigger: model.TriggerYearLow},
	}, at)
	assert.Contains(t, status, "2025-07-01 09:30")
	assert.Less(t, strings.Index(status, "AAPL"), strings.Index(status, "MSFT"))
	assert.Contains(t, status, "🔴 <b>MSFT</b> SELL $168.00 | RSI 40.0 / n/a | expanded")
	assert.Contains(t, status, "🟢 <b>AAPL</b> BUY $100.50 | YEAR_LOW")
	assert.Contains(t, FormatStatus(nil, at), "No evaluations yet.")

	assert.Equal(t, "👀 <b>Watching 2 tickers</b>\nAAPL, MU", FormatTickers([]string{"AAPL", "MU"}))
	assert.Contains(t, FormatDecision(model.Decision{Symbol: "MU", Signal: model.SignalHold, Price: 90, Reason: "Insufficient data"}), "⚪ <b>MU</b>: HOLD at $90.00")
	checked := FormatDecision(model.Decision{Symbol: "AAPL", Signal: model.SignalBuy, Price: 150, Trigger: model.TriggerRules,
		Snapshot: model.IndicatorSnapshot{YearPosition: 0.63}})
	assert.Contains(t, checked, "52-week range position: 63%")
	assert.NotContains(t, FormatDecision(model.Decision{Symbol: "MU", Trigger: model.TriggerRules,
		Snapshot: model.IndicatorSnapshot{YearPosition: math.NaN()}}), "52-week")
	assert.Equal(t, "No alerts sent yet.", FormatRecentAlerts(nil))
	assert.Contains(t, FormatRecentAlerts([]model.Alert{{Timestamp: at, Symbol: "AAPL", Signal: model.SignalBuy, Price: 1}}), "07-01 09:30 BUY AAPL $1.00")
}
