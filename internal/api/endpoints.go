package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// ParamKind says where a parameter travels in the request.
type ParamKind int

const (
	PathParam ParamKind = iota
	QueryParam
	BodyParam
)

// Param describes one endpoint parameter.
type Param struct {
	Name     string
	Kind     ParamKind
	Required bool
	Hint     string // placeholder shown in forms
}

// Endpoint is one backend operation the console can invoke.
type Endpoint struct {
	Name   string // "users.get"
	Group  string
	Method string
	Path   string // "/api/v1/users/{user_id}"
	Doc    string
	Params []Param
}

// Catalog lists every backend route the probe knows about, grouped the way
// the backend mounts its routers.
func Catalog() []Endpoint {
	return catalog
}

// Lookup finds an endpoint by name.
func Lookup(name string) (Endpoint, bool) {
	for _, ep := range catalog {
		if ep.Name == name {
			return ep, true
		}
	}
	return Endpoint{}, false
}

// Groups returns the catalog group names in display order.
func Groups() []string {
	var groups []string
	seen := map[string]bool{}
	for _, ep := range catalog {
		if !seen[ep.Group] {
			seen[ep.Group] = true
			groups = append(groups, ep.Group)
		}
	}
	return groups
}

// Invoke substitutes parameters into the endpoint and executes it. Parameter
// values are raw strings from a form or the command line; body values are
// coerced so "3" becomes a number and "{...}" an object.
func (c *Client) Invoke(ctx context.Context, ep Endpoint, params map[string]string) (*Result, error) {
	path := ep.Path
	query := url.Values{}
	var body map[string]any

	for _, p := range ep.Params {
		value, ok := params[p.Name]
		if !ok || value == "" {
			if p.Required {
				return nil, fmt.Errorf("missing required parameter %q", p.Name)
			}
			continue
		}

		switch p.Kind {
		case PathParam:
			path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(value))
		case QueryParam:
			query.Set(p.Name, value)
		case BodyParam:
			if body == nil {
				body = map[string]any{}
			}
			body[p.Name] = coerceParam(value)
		}
	}

	if rest := unfilledPathParams(path); len(rest) > 0 {
		return nil, fmt.Errorf("missing required parameter %q", rest[0])
	}

	var payload any
	if body != nil {
		payload = body
	} else if ep.Method == "POST" || ep.Method == "PATCH" {
		// FastAPI rejects POST/PATCH without a JSON body.
		payload = map[string]any{}
	}

	return c.do(ctx, ep.Method, path, query, payload)
}

// coerceParam interprets a form value as JSON when possible, so numbers,
// booleans, arrays and objects survive the round trip; everything else is
// sent as a string.
func coerceParam(value string) any {
	var v any
	if err := json.Unmarshal([]byte(value), &v); err == nil {
		return v
	}
	return value
}

func unfilledPathParams(path string) []string {
	var names []string
	for {
		open := strings.IndexByte(path, '{')
		if open < 0 {
			return names
		}
		end := strings.IndexByte(path[open:], '}')
		if end < 0 {
			return names
		}
		names = append(names, path[open+1:open+end])
		path = path[open+end+1:]
	}
}

var catalog = []Endpoint{
	// Service
	{Name: "service.root", Group: "service", Method: "GET", Path: "/",
		Doc: "Service banner with name, version and docs URL"},
	{Name: "service.health", Group: "service", Method: "GET", Path: "/health",
		Doc: "Liveness check"},

	// Users
	{Name: "users.create", Group: "users", Method: "POST", Path: "/api/v1/users/",
		Doc: "Create a user",
		Params: []Param{
			{Name: "username", Kind: BodyParam, Required: true, Hint: "alice"},
			{Name: "email", Kind: BodyParam, Required: true, Hint: "alice@example.com"},
			{Name: "password", Kind: BodyParam, Required: true, Hint: "secret"},
		}},
	{Name: "users.get", Group: "users", Method: "GET", Path: "/api/v1/users/{user_id}",
		Doc: "Fetch a user by id",
		Params: []Param{
			{Name: "user_id", Kind: PathParam, Required: true, Hint: "1"},
		}},
	{Name: "users.list", Group: "users", Method: "GET", Path: "/api/v1/users/",
		Doc: "List users",
		Params: []Param{
			{Name: "skip", Kind: QueryParam, Hint: "0"},
			{Name: "limit", Kind: QueryParam, Hint: "100"},
		}},

	// Profiles
	{Name: "profiles.create", Group: "profiles", Method: "POST", Path: "/api/v1/profiles/",
		Doc: "Create a learning profile",
		Params: []Param{
			{Name: "user_id", Kind: BodyParam, Required: true, Hint: "1"},
			{Name: "learning_pace", Kind: BodyParam, Hint: "medium"},
			{Name: "preferred_format", Kind: BodyParam, Hint: "text"},
			{Name: "current_difficulty", Kind: BodyParam, Hint: "normal"},
			{Name: "topic_mastery", Kind: BodyParam, Hint: `{"algebra": 0.5}`},
		}},
	{Name: "profiles.get_by_user", Group: "profiles", Method: "GET", Path: "/api/v1/profiles/user/{user_id}",
		Doc: "Fetch the profile belonging to a user",
		Params: []Param{
			{Name: "user_id", Kind: PathParam, Required: true, Hint: "1"},
		}},
	{Name: "profiles.get", Group: "profiles", Method: "GET", Path: "/api/v1/profiles/{profile_id}",
		Doc: "Fetch a profile by id",
		Params: []Param{
			{Name: "profile_id", Kind: PathParam, Required: true, Hint: "1"},
		}},
	{Name: "profiles.update", Group: "profiles", Method: "PATCH", Path: "/api/v1/profiles/user/{user_id}",
		Doc: "Update a user's profile",
		Params: []Param{
			{Name: "user_id", Kind: PathParam, Required: true, Hint: "1"},
			{Name: "learning_pace", Kind: BodyParam, Hint: "fast"},
			{Name: "preferred_format", Kind: BodyParam, Hint: "visual"},
			{Name: "current_difficulty", Kind: BodyParam, Hint: "hard"},
			{Name: "topic_mastery", Kind: BodyParam, Hint: `{"algebra": 0.8}`},
		}},
	{Name: "profiles.delete", Group: "profiles", Method: "DELETE", Path: "/api/v1/profiles/user/{user_id}",
		Doc: "Delete a user's profile",
		Params: []Param{
			{Name: "user_id", Kind: PathParam, Required: true, Hint: "1"},
		}},

	// Dialogs
	{Name: "dialogs.create", Group: "dialogs", Method: "POST", Path: "/api/v1/dialogs/",
		Doc: "Start a dialog session",
		Params: []Param{
			{Name: "user_id", Kind: BodyParam, Required: true, Hint: "1"},
			{Name: "dialog_type", Kind: BodyParam, Required: true, Hint: "educational"},
			{Name: "topic", Kind: BodyParam, Hint: "algebra"},
		}},
	{Name: "dialogs.get", Group: "dialogs", Method: "GET", Path: "/api/v1/dialogs/{dialog_id}",
		Doc: "Fetch a dialog by id",
		Params: []Param{
			{Name: "dialog_id", Kind: PathParam, Required: true, Hint: "1"},
		}},
	{Name: "dialogs.list_user", Group: "dialogs", Method: "GET", Path: "/api/v1/dialogs/user/{user_id}",
		Doc: "List a user's dialogs",
		Params: []Param{
			{Name: "user_id", Kind: PathParam, Required: true, Hint: "1"},
			{Name: "skip", Kind: QueryParam, Hint: "0"},
			{Name: "limit", Kind: QueryParam, Hint: "50"},
		}},
	{Name: "dialogs.end", Group: "dialogs", Method: "PATCH", Path: "/api/v1/dialogs/{dialog_id}/end",
		Doc: "Mark a dialog as ended",
		Params: []Param{
			{Name: "dialog_id", Kind: PathParam, Required: true, Hint: "1"},
		}},

	// Messages
	{Name: "messages.create", Group: "messages", Method: "POST", Path: "/api/v1/messages/",
		Doc: "Append a message to a dialog",
		Params: []Param{
			{Name: "dialog_id", Kind: BodyParam, Required: true, Hint: "1"},
			{Name: "sender_type", Kind: BodyParam, Required: true, Hint: "user"},
			{Name: "content", Kind: BodyParam, Required: true, Hint: "What is a quadratic equation?"},
			{Name: "is_question", Kind: BodyParam, Hint: "true"},
		}},
	{Name: "messages.list_dialog", Group: "messages", Method: "GET", Path: "/api/v1/messages/dialog/{dialog_id}",
		Doc: "List a dialog's messages",
		Params: []Param{
			{Name: "dialog_id", Kind: PathParam, Required: true, Hint: "1"},
		}},

	// Content
	{Name: "content.create", Group: "content", Method: "POST", Path: "/api/v1/content/",
		Doc: "Create a content item",
		Params: []Param{
			{Name: "title", Kind: BodyParam, Required: true, Hint: "Quadratic Equations 101"},
			{Name: "topic", Kind: BodyParam, Required: true, Hint: "algebra"},
			{Name: "subtopic", Kind: BodyParam, Hint: "quadratic_equations"},
			{Name: "difficulty_level", Kind: BodyParam, Required: true, Hint: "normal"},
			{Name: "format", Kind: BodyParam, Required: true, Hint: "text"},
			{Name: "content_type", Kind: BodyParam, Required: true, Hint: "lesson"},
			{Name: "content_data", Kind: BodyParam, Required: true, Hint: `{"text": "..."}`},
			{Name: "skills", Kind: BodyParam, Hint: `["factoring"]`},
		}},
	{Name: "content.list", Group: "content", Method: "GET", Path: "/api/v1/content/",
		Doc: "List content items with optional filters",
		Params: []Param{
			{Name: "topic", Kind: QueryParam, Hint: "algebra"},
			{Name: "difficulty", Kind: QueryParam, Hint: "normal"},
			{Name: "format", Kind: QueryParam, Hint: "text"},
			{Name: "content_type", Kind: QueryParam, Hint: "lesson"},
			{Name: "skip", Kind: QueryParam, Hint: "0"},
			{Name: "limit", Kind: QueryParam, Hint: "50"},
		}},
	{Name: "content.get", Group: "content", Method: "GET", Path: "/api/v1/content/{content_id}",
		Doc: "Fetch a content item by id",
		Params: []Param{
			{Name: "content_id", Kind: PathParam, Required: true, Hint: "1"},
		}},
	{Name: "content.update", Group: "content", Method: "PATCH", Path: "/api/v1/content/{content_id}",
		Doc: "Update a content item",
		Params: []Param{
			{Name: "content_id", Kind: PathParam, Required: true, Hint: "1"},
			{Name: "title", Kind: BodyParam, Hint: "New title"},
			{Name: "difficulty_level", Kind: BodyParam, Hint: "hard"},
		}},
	{Name: "content.delete", Group: "content", Method: "DELETE", Path: "/api/v1/content/{content_id}",
		Doc: "Delete a content item",
		Params: []Param{
			{Name: "content_id", Kind: PathParam, Required: true, Hint: "1"},
		}},

	// Recommendations
	{Name: "recommendations.next", Group: "recommendations", Method: "POST", Path: "/api/v1/recommendations/next",
		Doc: "Get the next personalized content recommendation",
		Params: []Param{
			{Name: "user_id", Kind: BodyParam, Required: true, Hint: "1"},
			{Name: "current_topic", Kind: BodyParam, Hint: "algebra"},
			{Name: "session_context", Kind: BodyParam, Hint: `{"session_length": 3}`},
		}},
	{Name: "recommendations.history", Group: "recommendations", Method: "GET", Path: "/api/v1/recommendations/history",
		Doc: "Recently recommended content for a user",
		Params: []Param{
			{Name: "user_id", Kind: QueryParam, Required: true, Hint: "1"},
			{Name: "limit", Kind: QueryParam, Hint: "10"},
		}},
	{Name: "recommendations.strategy", Group: "recommendations", Method: "GET", Path: "/api/v1/recommendations/strategy",
		Doc: "Active adaptation strategy metadata"},

	// Experiments
	{Name: "experiments.create", Group: "experiments", Method: "POST", Path: "/api/v1/experiments/",
		Doc: "Assign a user to an experiment variant",
		Params: []Param{
			{Name: "user_id", Kind: BodyParam, Required: true, Hint: "1"},
			{Name: "experiment_name", Kind: BodyParam, Required: true, Hint: "bandit_rollout"},
			{Name: "variant_name", Kind: BodyParam, Required: true, Hint: "control"},
		}},
	{Name: "experiments.get", Group: "experiments", Method: "GET", Path: "/api/v1/experiments/{experiment_id}",
		Doc: "Fetch an experiment assignment by id",
		Params: []Param{
			{Name: "experiment_id", Kind: PathParam, Required: true, Hint: "1"},
		}},
	{Name: "experiments.list_user", Group: "experiments", Method: "GET", Path: "/api/v1/experiments/user/{user_id}",
		Doc: "List a user's experiment assignments",
		Params: []Param{
			{Name: "user_id", Kind: PathParam, Required: true, Hint: "1"},
		}},
	{Name: "experiments.list", Group: "experiments", Method: "GET", Path: "/api/v1/experiments/",
		Doc: "List experiment assignments",
		Params: []Param{
			{Name: "skip", Kind: QueryParam, Hint: "0"},
			{Name: "limit", Kind: QueryParam, Hint: "100"},
		}},
	{Name: "experiments.end", Group: "experiments", Method: "PATCH", Path: "/api/v1/experiments/{experiment_id}/end",
		Doc: "End an experiment assignment",
		Params: []Param{
			{Name: "experiment_id", Kind: PathParam, Required: true, Hint: "1"},
		}},
	{Name: "experiments.update", Group: "experiments", Method: "PATCH", Path: "/api/v1/experiments/{experiment_id}",
		Doc: "Update an experiment assignment",
		Params: []Param{
			{Name: "experiment_id", Kind: PathParam, Required: true, Hint: "1"},
			{Name: "extra_data", Kind: BodyParam, Hint: `{"note": "promoted"}`},
		}},
	{Name: "experiments.delete", Group: "experiments", Method: "DELETE", Path: "/api/v1/experiments/{experiment_id}",
		Doc: "Delete an experiment assignment",
		Params: []Param{
			{Name: "experiment_id", Kind: PathParam, Required: true, Hint: "1"},
		}},

	// Metrics
	{Name: "metrics.create", Group: "metrics", Method: "POST", Path: "/api/v1/metrics/",
		Doc: "Record a metric sample",
		Params: []Param{
			{Name: "user_id", Kind: BodyParam, Required: true, Hint: "1"},
			{Name: "metric_name", Kind: BodyParam, Required: true, Hint: "accuracy"},
			{Name: "metric_value_f", Kind: BodyParam, Hint: "0.85"},
			{Name: "dialog_id", Kind: BodyParam, Hint: "1"},
			{Name: "context", Kind: BodyParam, Hint: `{"topic": "algebra"}`},
		}},
	{Name: "metrics.list_user", Group: "metrics", Method: "GET", Path: "/api/v1/metrics/user/{user_id}",
		Doc: "List a user's metric samples",
		Params: []Param{
			{Name: "user_id", Kind: PathParam, Required: true, Hint: "1"},
		}},
	{Name: "metrics.list_dialog", Group: "metrics", Method: "GET", Path: "/api/v1/metrics/dialog/{dialog_id}",
		Doc: "List a dialog's metric samples",
		Params: []Param{
			{Name: "dialog_id", Kind: PathParam, Required: true, Hint: "1"},
		}},
	{Name: "metrics.get", Group: "metrics", Method: "GET", Path: "/api/v1/metrics/{metric_id}",
		Doc: "Fetch a metric sample by id",
		Params: []Param{
			{Name: "metric_id", Kind: PathParam, Required: true, Hint: "1"},
		}},
}
