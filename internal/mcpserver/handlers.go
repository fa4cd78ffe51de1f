package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

type (
	createResult struct {
		Status string `json:"status"`
		ID     int64  `json:"id"`
	}

	updateResult struct {
		Status      string `json:"status"`
		RowsUpdated int64  `json:"rows_updated"`
	}

	deleteResult struct {
		Status      string `json:"status"`
		RowsDeleted int64  `json:"rows_deleted"`
	}

	errorStatus struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
)

func (s *Server) handleAddExpense(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return errResult(err.Error()), nil
	}
	amount, err := req.RequireFloat("amount")
	if err != nil {
		return errResult(err.Error()), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return errResult(err.Error()), nil
	}

	expense := core.Expense{
		Date:        date,
		Amount:      amount,
		Category:    category,
		Subcategory: req.GetString("subcategory", ""),
		Note:        req.GetString("note", ""),
	}

	id, err := s.store.CreateExpense(ctx, expense)
	if err != nil {
		return errResult(err.Error()), nil
	}

	return jsonResult(createResult{Status: "ok", ID: id})
}

func (s *Server) handleListExpenses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startDate, err := req.RequireString("start_date")
	if err != nil {
		return errResult(err.Error()), nil
	}
	endDate, err := req.RequireString("end_date")
	if err != nil {
		return errResult(err.Error()), nil
	}

	expenses, err := s.store.ListExpenses(ctx, startDate, endDate)
	if err != nil {
		return errResult(err.Error()), nil
	}

	return jsonResult(expenses)
}

func (s *Server) handleSummarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startDate, err := req.RequireString("start_date")
	if err != nil {
		return errResult(err.Error()), nil
	}
	endDate, err := req.RequireString("end_date")
	if err != nil {
		return errResult(err.Error()), nil
	}
	category := req.GetString("category", "")

	summaries, err := s.store.Summarize(ctx, startDate, endDate, category)
	if err != nil {
		return errResult(err.Error()), nil
	}

	return jsonResult(summaries)
}

func (s *Server) handleEditExpense(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("expense_id")
	if err != nil {
		return errResult(err.Error()), nil
	}

	// Presence is read from the raw argument map: a field that was sent
	// updates the column even when its value is empty or zero, a field
	// that was omitted is left alone.
	args := req.GetArguments()

	var patch core.ExpensePatch
	if patch.Date, err = stringArg(args, "date"); err != nil {
		return errResult(err.Error()), nil
	}
	if patch.Amount, err = floatArg(args, "amount"); err != nil {
		return errResult(err.Error()), nil
	}
	if patch.Category, err = stringArg(args, "category"); err != nil {
		return errResult(err.Error()), nil
	}
	if patch.Subcategory, err = stringArg(args, "subcategory"); err != nil {
		return errResult(err.Error()), nil
	}
	if patch.Note, err = stringArg(args, "note"); err != nil {
		return errResult(err.Error()), nil
	}

	if patch.Fields() == 0 {
		return errResult("No fields provided to update"), nil
	}

	updated, err := s.store.PatchExpense(ctx, int64(id), patch)
	if err != nil {
		if errors.Is(err, storage.ErrNoFields) {
			return errResult("No fields provided to update"), nil
		}
		return errResult(err.Error()), nil
	}

	return jsonResult(updateResult{Status: "ok", RowsUpdated: updated})
}

func (s *Server) handleDeleteExpense(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("expense_id")
	if err != nil {
		return errResult(err.Error()), nil
	}

	deleted, err := s.store.DeleteExpense(ctx, int64(id))
	if err != nil {
		return errResult(err.Error()), nil
	}

	return jsonResult(deleteResult{Status: "ok", RowsDeleted: deleted})
}

func (s *Server) handleSearchExpenses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keyword, err := req.RequireString("keyword")
	if err != nil {
		return errResult(err.Error()), nil
	}

	expenses, err := s.store.SearchExpenses(ctx, keyword)
	if err != nil {
		return errResult(err.Error()), nil
	}

	return jsonResult(expenses)
}

func (s *Server) handleMonthlyReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Accept the year both as a number and as a string.
	var year string
	switch v := req.GetArguments()["year"].(type) {
	case string:
		year = v
	case float64:
		year = strconv.Itoa(int(v))
	case int:
		year = strconv.Itoa(v)
	default:
		return errResult("year must be a four-digit year"), nil
	}

	summaries, err := s.store.MonthlyReport(ctx, year)
	if err != nil {
		return errResult(err.Error()), nil
	}

	return jsonResult(summaries)
}

// handleCategories serves the categories document. Failures degrade to a
// JSON error payload instead of a protocol fault so a misconfigured file
// path never breaks the resource listing.
func (s *Server) handleCategories(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	doc, err := s.categories.Read()
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read categories document", "error", err)
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		doc = string(payload)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     doc,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errResult(message string) *mcp.CallToolResult {
	data, _ := json.Marshal(errorStatus{Status: "error", Message: message})
	return mcp.NewToolResultText(string(data))
}

func stringArg(args map[string]any, key string) (*string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("argument '%s' must be a string", key)
	}
	return &s, nil
}

func floatArg(args map[string]any, key string) (*float64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case float64:
		return &v, nil
	case int:
		f := float64(v)
		return &f, nil
	default:
		return nil, fmt.Errorf("argument '%s' must be a number", key)
	}
}
