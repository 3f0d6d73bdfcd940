// Package backend is the HTTP client for the Academy REST API. The API
// is an external collaborator: this package maps its wire shapes onto
// domain types and nothing else in the repository speaks HTTP to it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/academy/internal/domain"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("authentication required")
)

// Client talks to the Academy REST backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Config holds configuration for the backend client
type Config struct {
	BaseURL string
	Token   string // bearer token, optional for public endpoints
}

// NewClient creates a new Academy API client
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: newHTTPClient(),
	}
}

// courseItemPayload is the wire shape of a course item: content_data
// carries either exercise or video fields depending on content_type.
type courseItemPayload struct {
	ID          int64           `json:"id"`
	CourseID    int64           `json:"course_id"`
	Order       int             `json:"order"`
	ContentType string          `json:"content_type"`
	Required    bool            `json:"is_required"`
	ContentData json.RawMessage `json:"content_data"`
}

func (p *courseItemPayload) toDomain() (*domain.CourseItem, error) {
	item := &domain.CourseItem{
		ID:          p.ID,
		CourseID:    p.CourseID,
		Order:       p.Order,
		ContentType: domain.ContentType(p.ContentType),
		Required:    p.Required,
	}

	switch item.ContentType {
	case domain.ContentExercise:
		var ex domain.Exercise
		if err := json.Unmarshal(p.ContentData, &ex); err != nil {
			return nil, fmt.Errorf("decode exercise payload: %w", err)
		}
		item.Exercise = &ex
	case domain.ContentVideo:
		var v domain.Video
		if err := json.Unmarshal(p.ContentData, &v); err != nil {
			return nil, fmt.Errorf("decode video payload: %w", err)
		}
		item.Video = &v
	default:
		return nil, fmt.Errorf("unknown content type: %q", p.ContentType)
	}

	return item, nil
}

// GetCourseItem fetches a course item with its embedded content.
func (c *Client) GetCourseItem(ctx context.Context, itemID int64) (*domain.CourseItem, error) {
	var payload courseItemPayload
	if err := c.get(ctx, fmt.Sprintf("/api/academy/course-items/%d/", itemID), &payload); err != nil {
		return nil, err
	}
	return payload.toDomain()
}

type coursePayload struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Slug        string              `json:"slug"`
	Description string              `json:"description"`
	Level       string              `json:"level"`
	Items       []courseItemPayload `json:"items"`
	Progress    *domain.Progress    `json:"user_progress"`
}

// GetCourse fetches a course with its items and the caller's progress.
func (c *Client) GetCourse(ctx context.Context, courseID int64) (*domain.Course, error) {
	var payload coursePayload
	if err := c.get(ctx, fmt.Sprintf("/api/academy/courses/%d/", courseID), &payload); err != nil {
		return nil, err
	}

	course := &domain.Course{
		ID:          payload.ID,
		Title:       payload.Title,
		Slug:        payload.Slug,
		Description: payload.Description,
		Level:       payload.Level,
		Progress:    payload.Progress,
	}
	for i := range payload.Items {
		item, err := payload.Items[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", payload.Items[i].ID, err)
		}
		course.Items = append(course.Items, *item)
	}
	return course, nil
}

// StartCourse initializes the caller's progress for a course. The
// backend treats repeat calls as a no-op, so callers may retry freely.
func (c *Client) StartCourse(ctx context.Context, courseID int64) error {
	return c.post(ctx, fmt.Sprintf("/api/academy/courses/%d/start/", courseID), nil, nil)
}

// CompleteItem records completion of an item and returns the next item
// in order, or nil when the course is finished.
func (c *Client) CompleteItem(ctx context.Context, courseID, itemID int64) (*domain.CourseItem, error) {
	req := map[string]int64{"item_id": itemID}
	var resp struct {
		NextItem *courseItemPayload `json:"next_item"`
	}
	if err := c.post(ctx, fmt.Sprintf("/api/academy/courses/%d/complete_item/", courseID), req, &resp); err != nil {
		return nil, err
	}
	if resp.NextItem == nil {
		return nil, nil
	}
	return resp.NextItem.toDomain()
}

// Execute sends code to the judge endpoint for an ungraded run.
func (c *Client) Execute(ctx context.Context, exerciseID int64, code, stdin string) (*domain.ExecutionResult, error) {
	req := map[string]string{"code": code, "stdin": stdin}
	var result domain.ExecutionResult
	if err := c.post(ctx, fmt.Sprintf("/api/academy/exercises/%d/execute/", exerciseID), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Submit sends code to the validation endpoint for grading.
func (c *Client) Submit(ctx context.Context, exerciseID int64, code string) (*domain.SubmissionResult, error) {
	req := map[string]string{"code": code}
	var result domain.SubmissionResult
	if err := c.post(ctx, fmt.Sprintf("/api/academy/exercises/%d/submit/", exerciseID), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSolution fetches the canonical solution code. The backend has
// shipped both field names over time; accept either.
func (c *Client) GetSolution(ctx context.Context, exerciseID int64) (string, error) {
	var resp struct {
		Solution     string `json:"solution"`
		SolutionCode string `json:"solution_code"`
	}
	if err := c.get(ctx, fmt.Sprintf("/api/academy/exercises/%d/solution/", exerciseID), &resp); err != nil {
		return "", err
	}
	if resp.Solution != "" {
		return resp.Solution, nil
	}
	return resp.SolutionCode, nil
}

// get issues a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// post issues a POST request with a JSON body and decodes the response.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
