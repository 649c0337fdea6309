package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/hyperifyio/note2tex/internal/template"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// cannedSection returns a body long enough to pass validation. The title
// block carries \title and \maketitle, which only that section may use.
func cannedSection(user string) string {
	if strings.Contains(user, "Current Section: **TITLE_ABSTRACT**") || strings.Contains(user, "SECTION NAME: title_abstract") {
		return "\\title{Stub Report}\n\\maketitle\n\\begin{abstract}\nThis report was produced against a local stub model.\n\\end{abstract}"
	}
	return "This section was produced by the local stub model. It discusses the assignment with a formula $E = mc^2$ and a short list.\n\\begin{itemize}\n\\item First observation.\n\\item Second observation.\n\\end{itemize}"
}

// userSection pulls the body out of a fixer or stylist prompt so the stub can
// echo it back; a fixer answer then still has to pass validation.
func userSection(user, startMarker, endMarker string) string {
	i := strings.Index(user, startMarker)
	if i < 0 {
		return ""
	}
	rest := user[i+len(startMarker):]
	if j := strings.Index(rest, endMarker); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		sys, user := "", ""
		if len(req.Messages) > 0 {
			sys = strings.TrimSpace(req.Messages[0].Content)
		}
		if len(req.Messages) >= 2 {
			user = req.Messages[1].Content
		}
		var content string
		switch {
		case strings.HasPrefix(sys, template.FixerSystem):
			content = cannedSection(user)
		case strings.HasPrefix(sys, template.StylistSystem):
			content = userSection(user, "INPUT DOCUMENT:", "CRITICAL SYNTAX RULES")
		case sys != "":
			// Writer, including overridden writer prompts.
			content = cannedSection(user)
		default:
			http.Error(w, "unexpected system", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})

	log.Printf("openai-stub listening on %s (model=%s)", addr, model)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
