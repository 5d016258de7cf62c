package probes

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"chatcheck/internal/gateway"
	"chatcheck/internal/registry"
)

// Endpoint paths of the target API.
const (
	PathChatID           = "/get_chat_id"
	PathAnswerStream     = "/get_answer_stream"
	PathExpertAnswer     = "/get_chatbot_expert_answer"
	PathExtractKB        = "/extract_from_knowledge_base"
	PathProductsSearch   = "/products-search"
	PathVisitReport      = "/crm-visit-report"
	PathRecentChats      = "/get_recent_chats"
	PathLoadPreviousChat = "/load_previous_chat"
)

// Client issues endpoint probes through a gateway.
type Client struct {
	gw *gateway.Gateway
}

// NewClient creates a probe client on top of the given gateway.
func NewClient(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

// NewChatID obtains a fresh conversation id from the id-issuing endpoint.
// The id is transient: it carries one scenario and is discarded afterwards.
func (c *Client) NewChatID(ctx context.Context, identity *registry.ApplicationIdentity) (string, error) {
	resp, err := c.gw.Get(ctx, PathChatID, identity, nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("get_chat_id returned HTTP %d: %s", resp.StatusCode, resp.APIError())
	}
	chatID := resp.Text()
	if chatID == "" {
		return "", fmt.Errorf("get_chat_id returned an empty id")
	}
	return chatID, nil
}

// StreamRequest drives one streamed chat exchange.
type StreamRequest struct {
	ChatID    string
	Question  string
	ModelName string
}

// StreamResult is the collected outcome of a streamed chat exchange.
type StreamResult struct {
	Status  int
	Events  []gateway.Event
	Content string
}

// AnswerStream sends a question to the streaming chat endpoint and drains
// the SSE response. Non-200 responses are returned with an empty event list
// so the caller can assert on the status.
func (c *Client) AnswerStream(ctx context.Context, identity *registry.ApplicationIdentity, req StreamRequest) (*StreamResult, error) {
	form := map[string]string{
		"chat_id":       req.ChatID,
		"user_question": req.Question,
	}
	if req.ModelName != "" {
		form["model_name"] = req.ModelName
	}

	resp, err := c.gw.PostStream(ctx, PathAnswerStream, identity, form)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Close()
		return &StreamResult{Status: resp.StatusCode}, nil
	}

	events, content, err := resp.Events().CollectEvents()
	if err != nil {
		return nil, fmt.Errorf("consuming answer stream: %w", err)
	}
	return &StreamResult{Status: resp.StatusCode, Events: events, Content: content}, nil
}

// ExpertAnswer asks the non-streaming expert endpoint.
func (c *Client) ExpertAnswer(ctx context.Context, identity *registry.ApplicationIdentity, chatID, question string) (*ExpertAnswerResponse, *gateway.Response, error) {
	resp, err := c.gw.Post(ctx, PathExpertAnswer, identity, map[string]string{
		"chat_id":       chatID,
		"user_question": question,
	})
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp, nil
	}

	var payload ExpertAnswerResponse
	if err := resp.JSON(&payload); err != nil {
		return nil, resp, err
	}
	return &payload, resp, nil
}

// ExtractRequest drives one knowledge-base extraction.
type ExtractRequest struct {
	ChatID   string
	Question string
	Lang     string
	TopK     int
}

// ExtractFromKB queries the knowledge-base extraction endpoint.
func (c *Client) ExtractFromKB(ctx context.Context, identity *registry.ApplicationIdentity, req ExtractRequest) (*KBExtractResponse, *gateway.Response, error) {
	form := map[string]string{
		"chat_id":       req.ChatID,
		"user_question": req.Question,
	}
	if req.Lang != "" {
		if err := ValidateLanguage(req.Lang); err != nil {
			return nil, nil, err
		}
		form["lang"] = req.Lang
	}
	if req.TopK > 0 {
		form["top_k"] = strconv.Itoa(req.TopK)
	}

	resp, err := c.gw.Post(ctx, PathExtractKB, identity, form)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp, nil
	}

	var payload KBExtractResponse
	if err := resp.JSON(&payload); err != nil {
		return nil, resp, err
	}
	return &payload, resp, nil
}

// SearchRequest drives one product search.
type SearchRequest struct {
	ChatID     string
	Question   string
	Country    string
	SearchMode string
	Catalog    string
	Banner     string
}

// ProductsSearch queries the product-search endpoint.
func (c *Client) ProductsSearch(ctx context.Context, identity *registry.ApplicationIdentity, req SearchRequest) (*SearchResponse, *gateway.Response, error) {
	form := map[string]string{
		"chat_id":       req.ChatID,
		"user_question": req.Question,
	}
	if req.Country != "" {
		form["country"] = req.Country
	}
	if req.SearchMode != "" {
		form["search_mode"] = req.SearchMode
	}
	if req.Catalog != "" {
		form["product_catalog"] = req.Catalog
	}
	if req.Banner != "" {
		form["solr_banner"] = req.Banner
	}

	resp, err := c.gw.Post(ctx, PathProductsSearch, identity, form)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp, nil
	}

	var payload SearchResponse
	if err := resp.JSON(&payload); err != nil {
		return nil, resp, err
	}
	return &payload, resp, nil
}

// VisitReportRequest drives one CRM visit-report generation.
type VisitReportRequest struct {
	ChatID  string
	Lang    string
	Segment string
	Notes   string
	Audio   *gateway.File
}

// GenerateVisitReport calls the CRM visit-report endpoint, uploading the
// optional audio recording as multipart content.
func (c *Client) GenerateVisitReport(ctx context.Context, identity *registry.ApplicationIdentity, req VisitReportRequest) (*VisitReportResponse, *gateway.Response, error) {
	if req.Lang != "" {
		if err := ValidateLanguage(req.Lang); err != nil {
			return nil, nil, err
		}
	}
	if req.Segment != "" {
		if err := ValidateSegment(req.Segment); err != nil {
			return nil, nil, err
		}
	}

	form := map[string]string{"chat_id": req.ChatID}
	if req.Lang != "" {
		form["lang"] = req.Lang
	}
	if req.Segment != "" {
		form["segment"] = req.Segment
	}
	if req.Notes != "" {
		form["notes"] = req.Notes
	}

	greq := gateway.Request{
		Method:   http.MethodPost,
		Path:     PathVisitReport,
		Identity: identity,
		Form:     form,
	}
	if req.Audio != nil {
		greq.Files = map[string]gateway.File{"audio_file": *req.Audio}
	}

	resp, err := c.gw.Send(ctx, greq)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp, nil
	}

	var payload VisitReportResponse
	if err := resp.JSON(&payload); err != nil {
		return nil, resp, err
	}
	if err := payload.Validate(); err != nil {
		return nil, resp, err
	}
	return &payload, resp, nil
}

// RecentChats lists the identity's visible chats. Access requires the
// identity's history-fetch grant; without it the target answers 401/403,
// which the caller asserts on.
func (c *Client) RecentChats(ctx context.Context, identity *registry.ApplicationIdentity) ([]ChatItem, *gateway.Response, error) {
	resp, err := c.gw.Get(ctx, PathRecentChats, identity, nil)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp, nil
	}

	var items []ChatItem
	if err := resp.JSON(&items); err != nil {
		return nil, resp, err
	}
	return items, resp, nil
}

// LoadPreviousChat loads one chat's full history.
func (c *Client) LoadPreviousChat(ctx context.Context, identity *registry.ApplicationIdentity, chatID string) (*PreviousChat, *gateway.Response, error) {
	resp, err := c.gw.Get(ctx, PathLoadPreviousChat, identity, url.Values{"chat_id": {chatID}})
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp, nil
	}

	var chat PreviousChat
	if err := resp.JSON(&chat); err != nil {
		return nil, resp, err
	}
	if err := chat.Validate(); err != nil {
		return nil, resp, err
	}
	return &chat, resp, nil
}
