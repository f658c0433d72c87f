package server

import (
	"encoding/json"
	"net/http"

	"telegram-chat-analytics/internal/domain"
)

type stateResponse struct {
	Status       domain.LoadStatus `json:"status"`
	View         domain.View       `json:"view"`
	Path         string            `json:"path"`
	AttemptID    string            `json:"attempt_id,omitempty"`
	Filename     string            `json:"filename,omitempty"`
	ErrorKind    string            `json:"error_kind,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Chat         *chatSummary      `json:"chat,omitempty"`
}

type chatSummary struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Events int    `json:"events"`
}

type memberResponse struct {
	Rank     int     `json:"rank"`
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Messages int     `json:"messages"`
	Share    float64 `json:"share"`
}

type membersResponse struct {
	TotalMessages int `json:"total_messages"`
	Pagination    struct {
		CurrentPage int `json:"current_page"`
		PageSize    int `json:"page_size"`
		TotalItems  int `json:"total_items"`
		TotalPages  int `json:"total_pages"`
	} `json:"pagination"`
	Data []memberResponse `json:"data"`
}

func newStateResponse(st domain.LoadState) stateResponse {
	view := domain.ViewFor(st)
	resp := stateResponse{View: view, Path: view.Path(), Status: domain.StatusEmpty}
	if st == nil {
		return resp
	}
	resp.Status = st.Status()

	switch s := st.(type) {
	case domain.Loaded:
		resp.AttemptID = s.AttemptID
		resp.Filename = s.Filename
		if s.Chat != nil {
			resp.Chat = &chatSummary{ID: s.Chat.ID, Name: s.Chat.Name, Type: s.Chat.Type, Events: len(s.Chat.Events)}
		}
	case domain.Failed:
		resp.AttemptID = s.AttemptID
		if s.Err != nil {
			resp.ErrorKind = s.Err.Kind()
			resp.ErrorMessage = domain.UserMessage(s.Err)
			switch e := s.Err.(type) {
			case domain.ParseFailure:
				resp.Filename = e.Filename
			case domain.ReadFailure:
				resp.Filename = e.Filename
			}
		}
	case domain.Empty:
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
