package server

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/gymbot/internal/report"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	period, err := report.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "period must be week, month, or quarter"})
		return
	}

	summary, err := report.Summarize(r.Context(), s.store, period, time.Now())
	if err != nil {
		s.log.Error("summary error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDailyChart(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := parsePositiveInt(v, 365)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be 1-365"})
			return
		}
		days = parsed
	}

	end := time.Now()
	rows, err := s.store.DailyActivity(r.Context(), end.AddDate(0, 0, -days), end)
	if err != nil {
		s.log.Error("daily chart error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleCronNudges(w http.ResponseWriter, r *http.Request) {
	if err := s.bot.CheckDeadlineNudges(r.Context()); err != nil {
		s.log.Error("cron nudges error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCronGreeting(w http.ResponseWriter, r *http.Request) {
	if err := s.bot.MorningGreeting(r.Context()); err != nil {
		s.log.Error("cron greeting error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Telegram-Bot-Api-Secret-Token")
	if s.webhookSecret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.webhookSecret)) != 1 {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body"})
		return
	}

	if err := s.bot.HandleTelegramUpdate(r.Context(), body); err != nil {
		s.log.Error("webhook update error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusOK)
}

func parsePositiveInt(s string, max int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > max {
		return 0, fmt.Errorf("value %d out of range", n)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
