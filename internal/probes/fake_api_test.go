package probes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"chatcheck/internal/auth"
	"chatcheck/internal/gateway"
	"chatcheck/internal/registry"
)

const fakeBearer = "mock-bearer-token"

// chatRecord is one conversation entry stored by the fake API.
type chatRecord struct {
	ChatID string
	Title  string
}

// fakeAPI simulates the target chatbot API in mock-auth mode: callers are
// identified by the App-Id simulation header, role grants are enforced per
// endpoint, and conversational state is kept per caller with optional
// mutualization links.
type fakeAPI struct {
	mu           sync.Mutex
	grants       map[string][]string // app id -> granted roles
	fetchHistory map[string]bool     // app id -> history access
	mutual       map[string]string   // dependent app id -> origin app id
	chats        map[string][]chatRecord
	nextChatID   int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		grants:       map[string][]string{},
		fetchHistory: map[string]bool{},
		mutual:       map[string]string{},
		chats:        map[string][]chatRecord{},
	}
}

// grant registers a caller with its roles.
func (f *fakeAPI) grant(appID string, fetchHistory bool, roles ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants[appID] = roles
	f.fetchHistory[appID] = fetchHistory
}

// mutualize links dependent to origin's conversational state.
func (f *fakeAPI) mutualize(dependent, origin string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutual[dependent] = origin
}

func (f *fakeAPI) hasRole(appID, role string) bool {
	for _, r := range f.grants[appID] {
		if r == role {
			return true
		}
	}
	return false
}

func (f *fakeAPI) recordChat(appID, chatID, title string) {
	f.chats[appID] = append(f.chats[appID], chatRecord{ChatID: chatID, Title: title})
}

// visibleChats returns the caller's own chats plus the origin's when the
// caller is mutualized.
func (f *fakeAPI) visibleChats(appID string) []chatRecord {
	visible := append([]chatRecord{}, f.chats[appID]...)
	if origin, ok := f.mutual[appID]; ok {
		visible = append(visible, f.chats[origin]...)
	}
	return visible
}

var endpointRoles = map[string]string{
	PathAnswerStream:   RoleAnswerStream,
	PathExpertAnswer:   RoleChatbotExpert,
	PathExtractKB:      RoleExtractKB,
	PathProductsSearch: RoleProductsSearch,
	PathVisitReport:    RoleVisitReport,
}

func (f *fakeAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+fakeBearer {
			writeJSONError(w, http.StatusUnauthorized, "missing or invalid bearer token")
			return
		}
		appID := r.Header.Get("App-Id")
		if appID == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing App-Id")
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		if role, protected := endpointRoles[r.URL.Path]; protected && !f.hasRole(appID, role) {
			writeJSONError(w, http.StatusForbidden, fmt.Sprintf("role %s not granted", role))
			return
		}

		switch r.URL.Path {
		case PathChatID:
			f.nextChatID++
			io.WriteString(w, fmt.Sprintf("chat-%d\n", f.nextChatID))

		case PathAnswerStream:
			r.ParseMultipartForm(1 << 20)
			chatID := r.FormValue("chat_id")
			question := r.FormValue("user_question")
			f.recordChat(appID, chatID, question)
			w.Header().Set("Content-Type", "text/event-stream")
			io.WriteString(w, `data: {"role":"assistant","content":"Bonjour, "}`+"\n")
			io.WriteString(w, `data: {"event_type":"answer_chunk","answer":"je peux aider."}`+"\n")

		case PathExpertAnswer:
			r.ParseMultipartForm(1 << 20)
			f.recordChat(appID, r.FormValue("chat_id"), r.FormValue("user_question"))
			writeJSON(w, map[string]string{"answer": "réponse experte"})

		case PathExtractKB:
			writeJSON(w, KBExtractResponse{Results: []KBResult{
				{Content: "extrait KB", Metadata: KBMetadata{Source: "doc.pdf", Page: 3}},
			}})

		case PathProductsSearch:
			r.ParseMultipartForm(1 << 20)
			f.recordChat(appID, r.FormValue("chat_id"), r.FormValue("user_question"))
			writeJSON(w, map[string]interface{}{
				"results": []map[string]interface{}{
					{"reference": "A9R11225", "name": "disjoncteur differentiel 30mA"},
				},
			})

		case PathVisitReport:
			writeJSON(w, VisitReportResponse{VisitReport: VisitReport{
				Summary: "Visite client du 12 mars",
				Topics: []Topic{
					{Topic: "Renouvellement tableau", TopicDetails: "Le client souhaite moderniser le tableau principal."},
				},
			}})

		case PathRecentChats:
			if !f.fetchHistory[appID] {
				writeJSONError(w, http.StatusForbidden, "fetch_history not enabled")
				return
			}
			items := []ChatItem{}
			for _, chat := range f.visibleChats(appID) {
				items = append(items, ChatItem{ChatID: chat.ChatID, ChatTitle: chat.Title})
			}
			writeJSON(w, items)

		case PathLoadPreviousChat:
			if !f.fetchHistory[appID] {
				writeJSONError(w, http.StatusForbidden, "fetch_history not enabled")
				return
			}
			chatID := r.URL.Query().Get("chat_id")
			for _, chat := range f.visibleChats(appID) {
				if chat.ChatID == chatID {
					writeJSON(w, PreviousChat{
						ID: chat.ChatID,
						Messages: []MessageObject{
							{Role: "user", TextContent: chat.Title},
							{Role: "assistant", TextContent: "réponse enregistrée"},
						},
					})
					return
				}
			}
			writeJSONError(w, http.StatusNotFound, "chat not found")

		default:
			writeJSONError(w, http.StatusNotFound, "unknown endpoint")
		}
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// newHarness starts a fake API and returns a probe client in mock-auth mode.
func newHarness(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	api := newFakeAPI()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	provider := auth.NewProvider(auth.WithMockToken(fakeBearer))
	gw := gateway.New(server.URL, provider)
	return api, NewClient(gw)
}

// testIdentity builds an application-priority identity the fake API can
// recognize by id.
func testIdentity(id string, roles ...string) *registry.ApplicationIdentity {
	return &registry.ApplicationIdentity{
		ID:              id,
		Name:            "App " + id,
		Priority:        registry.PriorityApplication,
		Roles:           roles,
		SubscriptionKey: "sub-" + id,
		OAuth: registry.OAuthConfig{
			TenantID:        "tenant-1",
			Scope:           "api://chatbot/.default",
			ClientIDEnv:     "CID",
			ClientSecretEnv: "SECRET",
		},
	}
}
