package probes

import "fmt"

// Role names granted to identities in the identity source.
const (
	RoleChatbotExpert  = "chatbot_expert"
	RoleProductsSearch = "products_search"
	RoleVisitReport    = "crm_visit_report"
	RoleExtractKB      = "extract_from_kb"
	RoleAnswerStream   = "get_answer_stream"
)

// SupportedLanguages lists the language codes the target API accepts.
var SupportedLanguages = []string{
	"en", "nl", "fi", "fr", "de", "ga", "it", "sv", "ca", "hr", "cs", "da",
	"et", "is", "lv", "lt", "lb", "no", "pl", "pt", "ro", "ru", "sr", "sk",
	"sl", "es", "zh", "hi", "ar", "bn", "ja", "pa",
}

// SupportedSegments lists the customer segments the target API accepts.
var SupportedSegments = []string{"IND", "TER", "RES"}

// ValidateLanguage checks that a language code is supported.
func ValidateLanguage(lang string) error {
	for _, l := range SupportedLanguages {
		if l == lang {
			return nil
		}
	}
	return fmt.Errorf("language %q not supported", lang)
}

// ValidateSegment checks that a customer segment is supported.
func ValidateSegment(segment string) error {
	for _, s := range SupportedSegments {
		if s == segment {
			return nil
		}
	}
	return fmt.Errorf("segment %q not supported", segment)
}

// Topic is one topic of a CRM visit report.
type Topic struct {
	Topic        string   `json:"topic"`
	TopicDetails string   `json:"topic_details"`
	NextActions  []string `json:"next_actions,omitempty"`
	DueDate      string   `json:"due_date,omitempty"`
	Innovative   *bool    `json:"innovative,omitempty"`
}

// VisitReport is the generated CRM visit report.
type VisitReport struct {
	Summary string  `json:"summary"`
	Topics  []Topic `json:"topics"`
}

// VisitReportResponse is the /crm-visit-report success payload.
type VisitReportResponse struct {
	VisitReport VisitReport `json:"visit_report"`
}

// Validate checks the business-rule shape of a visit report: a non-empty
// summary and at least one fully described topic.
func (r *VisitReportResponse) Validate() error {
	if r.VisitReport.Summary == "" {
		return fmt.Errorf("visit_report.summary is empty")
	}
	if len(r.VisitReport.Topics) == 0 {
		return fmt.Errorf("visit_report.topics is empty")
	}
	for i, topic := range r.VisitReport.Topics {
		if topic.Topic == "" {
			return fmt.Errorf("visit_report.topics[%d].topic is empty", i)
		}
		if topic.TopicDetails == "" {
			return fmt.Errorf("visit_report.topics[%d].topic_details is empty", i)
		}
	}
	return nil
}

// ChatItem is one entry of the recent-chats listing.
type ChatItem struct {
	ChatID    string `json:"chat_id"`
	ChatTitle string `json:"chat_title"`
}

// MessageObject is one message of a loaded chat history.
type MessageObject struct {
	Role        string `json:"role"`
	TextContent string `json:"text_content"`
}

// PreviousChat is the /load_previous_chat success payload.
type PreviousChat struct {
	ID          string          `json:"id"`
	Mode        string          `json:"mode,omitempty"`
	ModeID      string          `json:"mode_id,omitempty"`
	ModeVersion string          `json:"mode_version,omitempty"`
	KB          string          `json:"kb,omitempty"`
	Messages    []MessageObject `json:"message_objects_list"`
}

// Validate checks the shape of a loaded chat: an id and well-formed messages.
func (c *PreviousChat) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("previous chat id is empty")
	}
	for i, msg := range c.Messages {
		if msg.Role == "" {
			return fmt.Errorf("message_objects_list[%d].role is empty", i)
		}
	}
	return nil
}

// KBMetadata describes where a knowledge-base result came from.
type KBMetadata struct {
	Source     string `json:"source,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	ChunkID    string `json:"chunk_id,omitempty"`
	Title      string `json:"title,omitempty"`
	Page       int    `json:"page,omitempty"`
}

// KBResult is one knowledge-base extraction result.
type KBResult struct {
	Content  string     `json:"content"`
	Metadata KBMetadata `json:"metadata"`
}

// KBExtractResponse is the /extract_from_knowledge_base success payload.
type KBExtractResponse struct {
	Results []KBResult `json:"results"`
}

// SearchResponse is the /products-search success payload. Product entries
// are implementation-defined, so they stay untyped.
type SearchResponse struct {
	Results []map[string]interface{} `json:"results"`
}

// ExpertAnswerResponse is the /get_chatbot_expert_answer success payload.
type ExpertAnswerResponse struct {
	Answer string `json:"answer"`
}
