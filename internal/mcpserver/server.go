// Package mcpserver exposes the expense ledger over the Model Context
// Protocol: one tool per ledger operation plus the categories resource.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"expensetracker/internal/categories"
	"expensetracker/internal/storage"
)

const (
	serverName    = "ExpenseTracker"
	serverVersion = "0.2.0"

	// CategoriesURI identifies the read-only categories resource.
	CategoriesURI = "expense://categories"
)

type Server struct {
	store      *storage.SQLiteRepository
	categories *categories.Provider
	mcp        *server.MCPServer
}

func New(store *storage.SQLiteRepository, cats *categories.Provider) *Server {
	s := &Server{
		store:      store,
		categories: cats,
	}

	m := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)

	m.AddTool(mcp.NewTool("add_expense",
		mcp.WithDescription("Add a new expense entry to the ledger."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Expense date as ISO YYYY-MM-DD")),
		mcp.WithNumber("amount", mcp.Required(), mcp.Description("Amount spent; negative values record refunds")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Expense category")),
		mcp.WithString("subcategory", mcp.Description("Optional subcategory")),
		mcp.WithString("note", mcp.Description("Optional free-text note")),
	), s.handleAddExpense)

	m.AddTool(mcp.NewTool("list_expenses",
		mcp.WithDescription("List expense entries within an inclusive date range, newest first."),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("Range start as ISO YYYY-MM-DD, inclusive")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("Range end as ISO YYYY-MM-DD, inclusive")),
	), s.handleListExpenses)

	m.AddTool(mcp.NewTool("summarize",
		mcp.WithDescription("Summarize expenses by category within an inclusive date range, largest total first."),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("Range start as ISO YYYY-MM-DD, inclusive")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("Range end as ISO YYYY-MM-DD, inclusive")),
		mcp.WithString("category", mcp.Description("Optional exact-match category filter")),
	), s.handleSummarize)

	m.AddTool(mcp.NewTool("edit_expense",
		mcp.WithDescription("Edit an existing expense by id. Only provided fields are updated; an explicit empty string clears a text field."),
		mcp.WithNumber("expense_id", mcp.Required(), mcp.Description("Id of the expense to edit")),
		mcp.WithString("date", mcp.Description("New date as ISO YYYY-MM-DD")),
		mcp.WithNumber("amount", mcp.Description("New amount")),
		mcp.WithString("category", mcp.Description("New category")),
		mcp.WithString("subcategory", mcp.Description("New subcategory")),
		mcp.WithString("note", mcp.Description("New note")),
	), s.handleEditExpense)

	m.AddTool(mcp.NewTool("delete_expense",
		mcp.WithDescription("Delete an expense by id."),
		mcp.WithNumber("expense_id", mcp.Required(), mcp.Description("Id of the expense to delete")),
	), s.handleDeleteExpense)

	m.AddTool(mcp.NewTool("search_expenses",
		mcp.WithDescription("Search expenses by keyword across note, category and subcategory, newest first."),
		mcp.WithString("keyword", mcp.Required(), mcp.Description("Case-insensitive substring to search for")),
	), s.handleSearchExpenses)

	m.AddTool(mcp.NewTool("monthly_report",
		mcp.WithDescription("Report expense totals per month for one calendar year."),
		mcp.WithNumber("year", mcp.Required(), mcp.Description("Four-digit year")),
	), s.handleMonthlyReport)

	m.AddResource(mcp.NewResource(CategoriesURI, "categories",
		mcp.WithResourceDescription("Known expense categories"),
		mcp.WithMIMEType("application/json"),
	), s.handleCategories)

	s.mcp = m
	return s
}

// ServeStdio runs the server on stdin/stdout until the stream closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// StreamableHTTP returns an HTTP host for the server; the caller owns
// its lifecycle.
func (s *Server) StreamableHTTP() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.mcp)
}
