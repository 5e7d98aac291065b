package web

import (
	"errors"
	"net/http"

	"github.com/keapril/webinventory/internal/assistant"
)

type assistantData struct {
	PageData
	Transcript []assistant.Message
	Busy       bool
	Question   string
}

// AssistantPage handles GET /assistant.
func (s *Server) AssistantPage(w http.ResponseWriter, r *http.Request) {
	s.renderAssistant(w, r, http.StatusOK, "", "")
}

// AssistantSubmit handles POST /assistant. It blocks until the model
// answers; a second question while one is outstanding is refused.
func (s *Server) AssistantSubmit(w http.ResponseWriter, r *http.Request) {
	question := r.FormValue("question")
	_, err := s.Assistant.Ask(r.Context(), question, s.Session.Items())
	switch {
	case errors.Is(err, assistant.ErrBusy):
		s.renderAssistant(w, r, http.StatusTooManyRequests, "AI 助理正在回覆上一個問題，請稍候", question)
		return
	case errors.Is(err, assistant.ErrEmptyQuestion):
		s.renderAssistant(w, r, http.StatusBadRequest, "請輸入問題", "")
		return
	}
	redirect(w, r, "/assistant", "")
}

func (s *Server) renderAssistant(w http.ResponseWriter, r *http.Request, status int, errMsg, question string) {
	data := assistantData{
		PageData:   pageData(r, "AI 助理", "assistant"),
		Transcript: s.Assistant.Transcript(),
		Busy:       s.Assistant.Busy(),
		Question:   question,
	}
	data.Error = errMsg
	s.Templates.Render(w, status, "assistant.html", &data)
}
